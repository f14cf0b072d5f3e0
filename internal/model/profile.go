package model

import "time"

// UserProfile はユーザーの身体情報と健康目標を表す。ユーザーごとに最大1件。
type UserProfile struct {
	ID                int64   `gorm:"primaryKey"`
	UserID            string  `gorm:"not null;uniqueIndex"`
	Age               int     `gorm:"not null"`
	Gender            string  `gorm:"not null"`
	Height            int     `gorm:"not null"`
	Weight            float64 `gorm:"not null"`
	ActivityLevel     string  `gorm:"not null"`
	HealthGoal        string  `gorm:"not null"`
	TargetWeight      *float64
	DietaryPreference string `gorm:"not null"`
	Allergies         *string
	MedicalConditions *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DefaultDietaryPreference は食事制限が未指定の場合の値。
const DefaultDietaryPreference = "none"

// 画面で選択肢として提示されるプロフィールの語彙。サーバー側では強制しない。
var (
	Genders            = []string{"male", "female", "other"}
	ActivityLevels     = []string{"sedentary", "lightly_active", "moderately_active", "very_active", "extremely_active"}
	HealthGoals        = []string{"lose_weight", "gain_weight", "maintain_weight", "build_muscle", "improve_health"}
	DietaryPreferences = []string{"none", "vegetarian", "vegan", "pescatarian", "keto", "paleo", "mediterranean", "low_carb"}
)
