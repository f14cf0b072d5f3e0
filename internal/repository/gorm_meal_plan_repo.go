package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormMealPlanRepo はGORMを使用した献立リポジトリ。
type GormMealPlanRepo struct {
	db *gorm.DB
}

var _ MealPlanRepository = (*GormMealPlanRepo)(nil)

// NewGormMealPlanRepo はGormMealPlanRepoを生成する。
func NewGormMealPlanRepo(db *gorm.DB) *GormMealPlanRepo {
	return &GormMealPlanRepo{db: db}
}

// ListByUserID はユーザーの献立を作成日時の降順で返す。
func (r *GormMealPlanRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error) {
	plans := []*model.MealPlan{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	return plans, nil
}

// FindByIDAndUser は呼び出しユーザーが所有する献立を取得する。見つからない場合はnilを返す。
func (r *GormMealPlanRepo) FindByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	return findMealPlan(r.db.WithContext(ctx), id, userID)
}

// Create は献立を作成する。
func (r *GormMealPlanRepo) Create(ctx context.Context, plan *model.MealPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("failed to create meal plan: %w", err)
	}
	return nil
}

// Update は所有者が一致する献立に部分更新を適用し、更新後の行を返す。
func (r *GormMealPlanRepo) Update(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
	var updated *model.MealPlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := findMealPlan(tx, id, userID)
		if err != nil || plan == nil {
			return err
		}

		if !patch.IsEmpty() {
			result := tx.Model(&model.MealPlan{}).
				Where("id = ? AND user_id = ?", id, userID).
				Updates(mealPlanAssignments(patch))
			if result.Error != nil {
				return fmt.Errorf("failed to update meal plan: %w", result.Error)
			}

			if plan, err = findMealPlan(tx, id, userID); err != nil {
				return err
			}
		}

		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByIDAndUser は所有者が一致する献立を削除し、削除した行を返す。
func (r *GormMealPlanRepo) DeleteByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	var deleted *model.MealPlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := findMealPlan(tx, id, userID)
		if err != nil || plan == nil {
			return err
		}

		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.MealPlan{}).Error; err != nil {
			return fmt.Errorf("failed to delete meal plan: %w", err)
		}

		deleted = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func findMealPlan(db *gorm.DB, id int64, userID string) (*model.MealPlan, error) {
	var plan model.MealPlan
	err := db.Where("id = ? AND user_id = ?", id, userID).Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find meal plan: %w", err)
	}
	return &plan, nil
}

// mealPlanAssignments はpatchの非nilフィールドをカラム名のmapに変換する。
// mapを使うことでfalseや0などのゼロ値も更新対象になる。
func mealPlanAssignments(patch model.MealPlanPatch) map[string]interface{} {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.TargetCalories != nil {
		updates["target_calories"] = *patch.TargetCalories
	}
	if patch.MealData != nil {
		updates["meal_data"] = patch.MealData
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	return updates
}
