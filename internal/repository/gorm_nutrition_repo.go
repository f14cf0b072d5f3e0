package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormNutritionRepo はGORMを使用した日次栄養記録リポジトリ。
type GormNutritionRepo struct {
	db *gorm.DB
}

var _ NutritionRepository = (*GormNutritionRepo)(nil)

// NewGormNutritionRepo はGormNutritionRepoを生成する。
func NewGormNutritionRepo(db *gorm.DB) *GormNutritionRepo {
	return &GormNutritionRepo{db: db}
}

// FindByUserAndDate は指定日の記録のうち最後に登録されたものを返す。見つからない場合はnilを返す。
func (r *GormNutritionRepo) FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyNutrition, error) {
	var entry model.DailyNutrition
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id DESC").
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find nutrition entry: %w", err)
	}
	return &entry, nil
}

// Create は記録を作成する。
func (r *GormNutritionRepo) Create(ctx context.Context, entry *model.DailyNutrition) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create nutrition entry: %w", err)
	}
	return nil
}
