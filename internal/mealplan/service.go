// Package mealplan は献立のドメインロジックを提供する。
package mealplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
	"github.com/hitoshi/nutricoach/internal/security"
)

// ErrCodeInvalidName は献立名が空白のみの場合のエラーコード。
const ErrCodeInvalidName = "INVALID_NAME"

// CreateInput は献立作成の入力値。
type CreateInput struct {
	Name           string
	Description    *string
	TargetCalories float64
	MealData       datatypes.JSON
	IsActive       bool
}

// Service は献立のサービス層。
type Service struct {
	repo      repository.MealPlanRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.MealPlanRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer, now: time.Now}
}

// List はユーザーの献立を新しい順に返す。
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error) {
	plans, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("献立一覧の取得に失敗しました: %w", err)
	}
	return plans, nil
}

// Create は献立を作成する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.MealPlan, error) {
	name, err := s.cleanName(in.Name)
	if err != nil {
		return nil, err
	}

	plan := &model.MealPlan{
		UserID:         userID,
		Name:           name,
		Description:    security.SanitizePtr(s.sanitizer, in.Description),
		TargetCalories: in.TargetCalories,
		MealData:       in.MealData,
		IsActive:       in.IsActive,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("献立の作成に失敗しました: %w", err)
	}
	return plan, nil
}

// Get は呼び出しユーザーが所有する献立を返す。所有していない場合はNOT_FOUND。
func (s *Service) Get(ctx context.Context, userID string, id int64) (*model.MealPlan, error) {
	plan, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("献立の取得に失敗しました: %w", err)
	}
	if plan == nil {
		return nil, newMealPlanNotFoundError()
	}
	return plan, nil
}

// Update は献立を部分更新する。所有していない献立は存在しないものとして扱い、
// 入力値の検証より先にNOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, userID string, id int64, patch model.MealPlanPatch) (*model.MealPlan, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, err := s.cleanName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		desc := security.SanitizePtr(s.sanitizer, *patch.Description)
		patch.Description = &desc
	}

	plan, err := s.repo.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("献立の更新に失敗しました: %w", err)
	}
	if plan == nil {
		return nil, newMealPlanNotFoundError()
	}
	return plan, nil
}

// Delete は献立を削除し、削除した献立を返す。
func (s *Service) Delete(ctx context.Context, userID string, id int64) (*model.MealPlan, error) {
	plan, err := s.repo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("献立の削除に失敗しました: %w", err)
	}
	if plan == nil {
		return nil, newMealPlanNotFoundError()
	}
	return plan, nil
}

func (s *Service) cleanName(raw string) (string, error) {
	name := s.sanitizer.Sanitize(strings.TrimSpace(raw))
	if name == "" {
		return "", model.NewValidationError(ErrCodeInvalidName, "Name cannot be empty")
	}
	return name, nil
}

func newMealPlanNotFoundError() *model.APIError {
	return model.NewNotFoundError(model.ErrCodeNotFound, "Meal plan not found")
}
