// Package profile はユーザープロフィールのドメインロジックを提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
	"github.com/hitoshi/nutricoach/internal/security"
)

// マークアップ除去後に空になった必須項目のエラーコード。
const (
	ErrCodeMissingGender        = "MISSING_GENDER"
	ErrCodeMissingActivityLevel = "MISSING_ACTIVITY_LEVEL"
	ErrCodeMissingHealthGoal    = "MISSING_HEALTH_GOAL"
)

// Input はプロフィール登録・更新の入力値。
// 必須項目の存在チェックと数値変換はハンドラー層で済んでいる前提とする。
type Input struct {
	Age               int
	Gender            string
	Height            int
	Weight            float64
	ActivityLevel     string
	HealthGoal        string
	TargetWeight      *float64
	DietaryPreference string
	Allergies         *string
	MedicalConditions *string
}

// Service はプロフィールのサービス層。
type Service struct {
	repo      repository.ProfileRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProfileRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Get は指定ユーザーのプロフィールを返す。
// 呼び出しユーザー以外のプロフィールは参照できない。
func (s *Service) Get(ctx context.Context, callerID, userID string) (*model.UserProfile, error) {
	if userID == "" {
		return nil, model.NewValidationError(model.ErrCodeMissingUserID, "User ID is required")
	}
	if userID != callerID {
		return nil, model.NewForbiddenError("Cannot access another user's profile")
	}

	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil {
		return nil, model.NewNotFoundError(model.ErrCodeProfileNotFound, "Profile not found")
	}
	return profile, nil
}

// Upsert は呼び出しユーザーのプロフィールを作成または全項目置き換えで更新する。
// 新規作成した場合はcreatedにtrueを返す。
func (s *Service) Upsert(ctx context.Context, userID string, in Input) (profile *model.UserProfile, created bool, err error) {
	now := s.now().UTC()
	profile, err = s.build(userID, in)
	if err != nil {
		return nil, false, err
	}
	profile.UpdatedAt = now

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	if existing != nil {
		updated, err := s.repo.Update(ctx, profile)
		if err != nil {
			return nil, false, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
		}
		if updated {
			return profile, false, nil
		}
		// 取得後に削除された場合は新規作成にフォールバックする
		slog.Warn("更新対象のプロフィールが見つからないため新規作成します",
			slog.String("user_id", userID),
		)
	}

	profile.CreatedAt = now
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("プロフィールの作成に失敗しました: %w", err)
	}
	return profile, true, nil
}

// build は入力値を正規化してモデルに変換する。
// 必須の文字列項目がマークアップ除去後に空になった場合は未指定として扱う。
func (s *Service) build(userID string, in Input) (*model.UserProfile, error) {
	required := []struct {
		value *string
		code  string
		label string
	}{
		{&in.Gender, ErrCodeMissingGender, "Gender"},
		{&in.ActivityLevel, ErrCodeMissingActivityLevel, "Activity level"},
		{&in.HealthGoal, ErrCodeMissingHealthGoal, "Health goal"},
	}
	for _, f := range required {
		*f.value = s.sanitizer.Sanitize(*f.value)
		if *f.value == "" {
			return nil, model.NewValidationError(f.code, f.label+" is required")
		}
	}

	pref := s.sanitizer.Sanitize(in.DietaryPreference)
	if pref == "" {
		pref = model.DefaultDietaryPreference
	}

	return &model.UserProfile{
		UserID:            userID,
		Age:               in.Age,
		Gender:            in.Gender,
		Height:            in.Height,
		Weight:            in.Weight,
		ActivityLevel:     in.ActivityLevel,
		HealthGoal:        in.HealthGoal,
		TargetWeight:      in.TargetWeight,
		DietaryPreference: pref,
		Allergies:         security.SanitizePtr(s.sanitizer, in.Allergies),
		MedicalConditions: security.SanitizePtr(s.sanitizer, in.MedicalConditions),
	}, nil
}
