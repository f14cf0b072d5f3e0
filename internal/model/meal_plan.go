package model

import (
	"time"

	"gorm.io/datatypes"
)

// MealPlan はユーザーが作成した献立を表す。
// MealDataはクライアントが定義する任意のJSONで、サーバーは内容を解釈しない。
type MealPlan struct {
	ID             int64  `gorm:"primaryKey"`
	UserID         string `gorm:"not null;index"`
	Name           string `gorm:"not null"`
	Description    *string
	TargetCalories float64        `gorm:"not null"`
	MealData       datatypes.JSON `gorm:"not null"`
	IsActive       bool           `gorm:"not null"`
	CreatedAt      time.Time
}

// MealPlanPatch は献立の部分更新を表す。nilのフィールドは変更しない。
type MealPlanPatch struct {
	Name           *string
	Description    **string
	TargetCalories *float64
	MealData       datatypes.JSON
	IsActive       *bool
}

// IsEmpty は変更対象のフィールドが1つもないかどうかを返す。
func (p MealPlanPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.TargetCalories == nil && p.MealData == nil && p.IsActive == nil
}
