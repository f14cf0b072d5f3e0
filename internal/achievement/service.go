// Package achievement は実績のドメインロジックを提供する。
package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
	"github.com/hitoshi/nutricoach/internal/security"
)

// エラーコード
const (
	ErrCodeMissingAchievementType = "MISSING_ACHIEVEMENT_TYPE"
	ErrCodeMissingTitle           = "MISSING_TITLE"
	ErrCodeMissingDescription     = "MISSING_DESCRIPTION"
)

// Input は実績記録の入力値。
type Input struct {
	AchievementType string
	Title           string
	Description     string
}

// Service は実績のサービス層。
type Service struct {
	repo      repository.AchievementRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.AchievementRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer, now: time.Now}
}

// List はユーザーの実績を獲得日時の新しい順に返す。
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]*model.Achievement, error) {
	list, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("実績一覧の取得に失敗しました: %w", err)
	}
	return list, nil
}

// Record は実績を記録する。獲得日時は現在時刻。
func (s *Service) Record(ctx context.Context, userID string, in Input) (*model.Achievement, error) {
	a := &model.Achievement{
		UserID:          userID,
		AchievementType: s.sanitizer.Sanitize(in.AchievementType),
		Title:           s.sanitizer.Sanitize(in.Title),
		Description:     s.sanitizer.Sanitize(in.Description),
		EarnedAt:        s.now().UTC(),
	}

	switch {
	case a.AchievementType == "":
		return nil, model.NewValidationError(ErrCodeMissingAchievementType, "Achievement type is required")
	case a.Title == "":
		return nil, model.NewValidationError(ErrCodeMissingTitle, "Title is required")
	case a.Description == "":
		return nil, model.NewValidationError(ErrCodeMissingDescription, "Description is required")
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("実績の記録に失敗しました: %w", err)
	}
	return a, nil
}
