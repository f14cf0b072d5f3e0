package model

import "time"

// Achievement はユーザーが獲得した実績を表す。追記のみで更新はしない。
type Achievement struct {
	ID              int64  `gorm:"primaryKey"`
	UserID          string `gorm:"not null;index"`
	AchievementType string `gorm:"not null"`
	Title           string `gorm:"not null"`
	Description     string `gorm:"not null"`
	EarnedAt        time.Time
}
