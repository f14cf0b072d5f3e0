package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormAchievementRepo はGORMを使用した実績リポジトリ。
type GormAchievementRepo struct {
	db *gorm.DB
}

var _ AchievementRepository = (*GormAchievementRepo)(nil)

// NewGormAchievementRepo はGormAchievementRepoを生成する。
func NewGormAchievementRepo(db *gorm.DB) *GormAchievementRepo {
	return &GormAchievementRepo{db: db}
}

// ListByUserID はユーザーの実績を獲得日時の降順で返す。
func (r *GormAchievementRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Achievement, error) {
	achievements := []*model.Achievement{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&achievements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

// Create は実績を記録する。
func (r *GormAchievementRepo) Create(ctx context.Context, achievement *model.Achievement) error {
	if err := r.db.WithContext(ctx).Create(achievement).Error; err != nil {
		return fmt.Errorf("failed to create achievement: %w", err)
	}
	return nil
}
