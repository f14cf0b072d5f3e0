package model

import (
	"regexp"
	"time"
)

// datePattern は日付パラメータの形式（YYYY-MM-DD）。暦として妥当かは検証しない。
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValidDate は文字列がYYYY-MM-DD形式かどうかを返す。
func IsValidDate(s string) bool {
	return datePattern.MatchString(s)
}

// DailyNutrition は1日分の栄養摂取記録を表す。
// (UserID, Date) に一意制約はなく、同じ日に複数件登録できる。
type DailyNutrition struct {
	ID               int64   `gorm:"primaryKey"`
	UserID           string  `gorm:"not null;index:idx_daily_nutrition_user_date"`
	Date             string  `gorm:"not null;index:idx_daily_nutrition_user_date"`
	CaloriesConsumed float64 `gorm:"column:calories_consumed;not null"`
	ProteinG         float64 `gorm:"column:protein_g;not null"`
	CarbsG           float64 `gorm:"column:carbs_g;not null"`
	FatG             float64 `gorm:"column:fat_g;not null"`
	FiberG           float64 `gorm:"column:fiber_g;not null"`
	WaterMl          float64 `gorm:"column:water_ml;not null"`
	CreatedAt        time.Time
}

// TableName はGORMのテーブル名を返す。
func (DailyNutrition) TableName() string {
	return "daily_nutrition"
}
