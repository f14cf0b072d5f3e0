// Package dashboard はダッシュボード表示用の集約データを提供する。
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
)

const (
	// mealPlanLimit はダッシュボードに含める献立の件数。
	mealPlanLimit = 10
	// achievementLimit はダッシュボードに含める最近の実績の件数。
	achievementLimit = 5
)

// Summary はダッシュボードの表示内容。
// Profile、Nutrition、ActiveMealPlanは存在しない場合nil。
type Summary struct {
	Date               string
	Profile            *model.UserProfile
	Nutrition          *model.DailyNutrition
	MealPlans          []*model.MealPlan
	ActiveMealPlan     *model.MealPlan
	RecentAchievements []*model.Achievement
}

// Service はダッシュボードのサービス層。
type Service struct {
	profiles     repository.ProfileRepository
	nutrition    repository.NutritionRepository
	mealPlans    repository.MealPlanRepository
	achievements repository.AchievementRepository
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	profiles repository.ProfileRepository,
	nutrition repository.NutritionRepository,
	mealPlans repository.MealPlanRepository,
	achievements repository.AchievementRepository,
) *Service {
	return &Service{
		profiles:     profiles,
		nutrition:    nutrition,
		mealPlans:    mealPlans,
		achievements: achievements,
		now:          time.Now,
	}
}

// Get は指定日のダッシュボードを返す。dateが空の場合はUTCの今日。
func (s *Service) Get(ctx context.Context, userID, date string) (*Summary, error) {
	if date == "" {
		date = s.now().UTC().Format(time.DateOnly)
	}
	if !model.IsValidDate(date) {
		return nil, model.NewInvalidDateFormatError()
	}

	summary := &Summary{Date: date}
	var err error

	if summary.Profile, err = s.profiles.FindByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if summary.Nutrition, err = s.nutrition.FindByUserAndDate(ctx, userID, date); err != nil {
		return nil, fmt.Errorf("栄養記録の取得に失敗しました: %w", err)
	}
	if summary.MealPlans, err = s.mealPlans.ListByUserID(ctx, userID, mealPlanLimit, 0); err != nil {
		return nil, fmt.Errorf("献立一覧の取得に失敗しました: %w", err)
	}
	if summary.RecentAchievements, err = s.achievements.ListByUserID(ctx, userID, achievementLimit, 0); err != nil {
		return nil, fmt.Errorf("実績一覧の取得に失敗しました: %w", err)
	}

	for _, p := range summary.MealPlans {
		if p.IsActive {
			summary.ActiveMealPlan = p
			break
		}
	}

	return summary, nil
}
