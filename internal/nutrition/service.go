// Package nutrition は日次栄養記録のドメインロジックを提供する。
package nutrition

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
)

// Input は栄養記録の入力値。
type Input struct {
	Date             string
	CaloriesConsumed float64
	ProteinG         float64
	CarbsG           float64
	FatG             float64
	FiberG           float64
	WaterMl          float64
}

// Service は栄養記録のサービス層。
type Service struct {
	repo repository.NutritionRepository
	now  func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.NutritionRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetDaily は指定日の記録を返す。同日に複数件ある場合は最後に登録されたもの。
func (s *Service) GetDaily(ctx context.Context, userID, date string) (*model.DailyNutrition, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("栄養記録の取得に失敗しました: %w", err)
	}
	if entry == nil {
		return nil, model.NewNotFoundError(model.ErrCodeNotFound, "Nutrition log not found")
	}
	return entry, nil
}

// Log は栄養記録を追加する。同じ日付の既存記録は上書きしない。
func (s *Service) Log(ctx context.Context, userID string, in Input) (*model.DailyNutrition, error) {
	if err := validateDate(in.Date); err != nil {
		return nil, err
	}

	entry := &model.DailyNutrition{
		UserID:           userID,
		Date:             in.Date,
		CaloriesConsumed: in.CaloriesConsumed,
		ProteinG:         in.ProteinG,
		CarbsG:           in.CarbsG,
		FatG:             in.FatG,
		FiberG:           in.FiberG,
		WaterMl:          in.WaterMl,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("栄養記録の作成に失敗しました: %w", err)
	}
	return entry, nil
}

func validateDate(date string) error {
	if date == "" {
		return model.NewValidationError(model.ErrCodeMissingDate, "Date is required")
	}
	if !model.IsValidDate(date) {
		return model.NewInvalidDateFormatError()
	}
	return nil
}
