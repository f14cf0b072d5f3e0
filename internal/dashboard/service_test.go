package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/nutricoach/internal/model"
)

// --- モック ---

type stubProfileRepo struct {
	profile *model.UserProfile
	err     error
}

func (s *stubProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	return s.profile, s.err
}
func (s *stubProfileRepo) Create(ctx context.Context, p *model.UserProfile) error { return nil }
func (s *stubProfileRepo) Update(ctx context.Context, p *model.UserProfile) (bool, error) {
	return true, nil
}

type stubNutritionRepo struct {
	gotDate string
	entry   *model.DailyNutrition
}

func (s *stubNutritionRepo) FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyNutrition, error) {
	s.gotDate = date
	return s.entry, nil
}
func (s *stubNutritionRepo) Create(ctx context.Context, e *model.DailyNutrition) error { return nil }

type stubMealPlanRepo struct {
	gotLimit int
	plans    []*model.MealPlan
}

func (s *stubMealPlanRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error) {
	s.gotLimit = limit
	return s.plans, nil
}
func (s *stubMealPlanRepo) FindByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	return nil, nil
}
func (s *stubMealPlanRepo) Create(ctx context.Context, p *model.MealPlan) error { return nil }
func (s *stubMealPlanRepo) Update(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
	return nil, nil
}
func (s *stubMealPlanRepo) DeleteByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	return nil, nil
}

type stubAchievementRepo struct {
	gotLimit int
}

func (s *stubAchievementRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Achievement, error) {
	s.gotLimit = limit
	return []*model.Achievement{}, nil
}
func (s *stubAchievementRepo) Create(ctx context.Context, a *model.Achievement) error { return nil }

// --- テスト ---

func TestService_Get_DefaultsToTodayUTC(t *testing.T) {
	nutrition := &stubNutritionRepo{}
	svc := NewService(&stubProfileRepo{}, nutrition, &stubMealPlanRepo{}, &stubAchievementRepo{})
	svc.now = func() time.Time {
		return time.Date(2024, 1, 15, 23, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	}

	summary, err := svc.Get(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary.Date != "2024-01-15" || nutrition.gotDate != "2024-01-15" {
		t.Errorf("date = %q / %q, want 2024-01-15", summary.Date, nutrition.gotDate)
	}
}

func TestService_Get_InvalidDate(t *testing.T) {
	svc := NewService(&stubProfileRepo{}, &stubNutritionRepo{}, &stubMealPlanRepo{}, &stubAchievementRepo{})

	_, err := svc.Get(context.Background(), "user-1", "yesterday")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidDateFormat {
		t.Errorf("error = %v, want INVALID_DATE_FORMAT", err)
	}
}

func TestService_Get_PicksFirstActivePlanAndLimits(t *testing.T) {
	plans := &stubMealPlanRepo{plans: []*model.MealPlan{
		{ID: 3, IsActive: false},
		{ID: 2, IsActive: true},
		{ID: 1, IsActive: true},
	}}
	achievements := &stubAchievementRepo{}
	svc := NewService(&stubProfileRepo{profile: &model.UserProfile{ID: 1}}, &stubNutritionRepo{}, plans, achievements)

	summary, err := svc.Get(context.Background(), "user-1", "2024-01-15")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary.ActiveMealPlan == nil || summary.ActiveMealPlan.ID != 2 {
		t.Errorf("ActiveMealPlan = %+v, want ID 2", summary.ActiveMealPlan)
	}
	if plans.gotLimit != mealPlanLimit || achievements.gotLimit != achievementLimit {
		t.Errorf("limits = %d/%d, want %d/%d", plans.gotLimit, achievements.gotLimit, mealPlanLimit, achievementLimit)
	}
	if summary.Profile == nil || summary.Nutrition != nil {
		t.Errorf("Profile = %v, Nutrition = %v", summary.Profile, summary.Nutrition)
	}
}

func TestService_Get_NoActivePlan(t *testing.T) {
	plans := &stubMealPlanRepo{plans: []*model.MealPlan{{ID: 1, IsActive: false}}}
	svc := NewService(&stubProfileRepo{}, &stubNutritionRepo{}, plans, &stubAchievementRepo{})

	summary, err := svc.Get(context.Background(), "user-1", "2024-01-15")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary.ActiveMealPlan != nil {
		t.Errorf("ActiveMealPlan = %+v, want nil", summary.ActiveMealPlan)
	}
}

func TestService_Get_RepositoryError(t *testing.T) {
	repoErr := errors.New("boom")
	svc := NewService(&stubProfileRepo{err: repoErr}, &stubNutritionRepo{}, &stubMealPlanRepo{}, &stubAchievementRepo{})

	if _, err := svc.Get(context.Background(), "user-1", "2024-01-15"); !errors.Is(err, repoErr) {
		t.Errorf("error = %v, want wrapped %v", err, repoErr)
	}
}
