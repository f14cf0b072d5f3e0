package mealplan

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/security"
)

// --- モック ---

type mockMealPlanRepo struct {
	listFn   func(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error)
	findFn   func(ctx context.Context, id int64, userID string) (*model.MealPlan, error)
	createFn func(ctx context.Context, plan *model.MealPlan) error
	updateFn func(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error)
	deleteFn func(ctx context.Context, id int64, userID string) (*model.MealPlan, error)
}

func (m *mockMealPlanRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, limit, offset)
	}
	return []*model.MealPlan{}, nil
}
func (m *mockMealPlanRepo) FindByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id, userID)
	}
	return &model.MealPlan{ID: id, UserID: userID}, nil
}
func (m *mockMealPlanRepo) Create(ctx context.Context, plan *model.MealPlan) error {
	if m.createFn != nil {
		return m.createFn(ctx, plan)
	}
	return nil
}
func (m *mockMealPlanRepo) Update(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, userID, patch)
	}
	return nil, nil
}
func (m *mockMealPlanRepo) DeleteByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil, nil
}

func newTestService(repo *mockMealPlanRepo) *Service {
	return NewService(repo, security.NewTextSanitizer())
}

func apiErrorCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	return apiErr.Code
}

func strPtr(s string) *string { return &s }

// --- テスト ---

func TestService_List_PassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	svc := newTestService(&mockMealPlanRepo{
		listFn: func(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.MealPlan{{ID: 1, UserID: userID}}, nil
		},
	})

	plans, err := svc.List(context.Background(), "user-1", 10, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(plans) != 1 || gotLimit != 10 || gotOffset != 20 {
		t.Errorf("List() = %d plans, limit=%d offset=%d", len(plans), gotLimit, gotOffset)
	}
}

func TestService_Create_TrimsAndSanitizes(t *testing.T) {
	var stored *model.MealPlan
	svc := newTestService(&mockMealPlanRepo{
		createFn: func(ctx context.Context, plan *model.MealPlan) error {
			stored = plan
			return nil
		},
	})

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:           "  Mediterranean Weight Loss Plan ",
		Description:    strPtr(" <i>Balanced</i> plan "),
		TargetCalories: 1600,
		MealData:       datatypes.JSON(`{"breakfast":{}}`),
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if stored.Name != "Mediterranean Weight Loss Plan" {
		t.Errorf("Name = %q", stored.Name)
	}
	if stored.Description == nil || *stored.Description != "Balanced plan" {
		t.Errorf("Description = %v", stored.Description)
	}
	if stored.UserID != "user-1" || !stored.IsActive {
		t.Errorf("stored = %+v", stored)
	}
}

func TestService_Create_BlankName(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{
		createFn: func(ctx context.Context, plan *model.MealPlan) error {
			t.Error("Create should not be called")
			return nil
		},
	})

	_, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "   "})
	if code := apiErrorCode(t, err); code != ErrCodeInvalidName {
		t.Errorf("code = %q, want %q", code, ErrCodeInvalidName)
	}
}

func TestService_Get_NotOwned_ReturnsNotFound(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{
		findFn: func(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
			if id != 999 || userID != "intruder" {
				t.Errorf("FindByIDAndUser(%d, %q), want (999, intruder)", id, userID)
			}
			return nil, nil
		},
	})

	_, err := svc.Get(context.Background(), "intruder", 999)
	if code := apiErrorCode(t, err); code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, model.ErrCodeNotFound)
	}
}

func TestService_Get_RepoError_IsWrapped(t *testing.T) {
	boom := errors.New("db down")
	svc := newTestService(&mockMealPlanRepo{
		findFn: func(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
			return nil, boom
		},
	})

	if _, err := svc.Get(context.Background(), "user-1", 1); !errors.Is(err, boom) {
		t.Errorf("Get() error = %v, want wrapping %v", err, boom)
	}
}

func TestService_Update_NotOwned_ReturnsNotFound(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{
		findFn: func(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
			return nil, nil
		},
		updateFn: func(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
			t.Error("Update should not be called for a plan the caller does not own")
			return nil, nil
		},
	})

	// 名前が不正でも所有していなければNOT_FOUNDを優先する
	for _, name := range []string{"x", "  "} {
		_, err := svc.Update(context.Background(), "user-2", 1, model.MealPlanPatch{Name: &name})
		if code := apiErrorCode(t, err); code != model.ErrCodeNotFound {
			t.Errorf("name %q: code = %q, want %q", name, code, model.ErrCodeNotFound)
		}
	}
}

func TestService_Update_RowVanished_ReturnsNotFound(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{
		updateFn: func(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
			return nil, nil
		},
	})

	active := false
	_, err := svc.Update(context.Background(), "user-1", 1, model.MealPlanPatch{IsActive: &active})
	if code := apiErrorCode(t, err); code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, model.ErrCodeNotFound)
	}
}

func TestService_Update_NormalizesPatch(t *testing.T) {
	var gotPatch model.MealPlanPatch
	svc := newTestService(&mockMealPlanRepo{
		updateFn: func(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error) {
			gotPatch = patch
			return &model.MealPlan{ID: id, UserID: userID}, nil
		},
	})

	name := "  New name "
	blank := strPtr("   ")
	_, err := svc.Update(context.Background(), "user-1", 5, model.MealPlanPatch{
		Name:        &name,
		Description: &blank,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if gotPatch.Name == nil || *gotPatch.Name != "New name" {
		t.Errorf("patch.Name = %v", gotPatch.Name)
	}
	if gotPatch.Description == nil {
		t.Fatal("patch.Description should be set")
	}
	if *gotPatch.Description != nil {
		t.Errorf("*patch.Description = %q, want nil", **gotPatch.Description)
	}
}

func TestService_Update_BlankName(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{})

	name := " "
	_, err := svc.Update(context.Background(), "user-1", 5, model.MealPlanPatch{Name: &name})
	if code := apiErrorCode(t, err); code != ErrCodeInvalidName {
		t.Errorf("code = %q, want %q", code, ErrCodeInvalidName)
	}
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(&mockMealPlanRepo{
		deleteFn: func(ctx context.Context, id int64, userID string) (*model.MealPlan, error) {
			if userID != "user-1" {
				return nil, nil
			}
			return &model.MealPlan{ID: id, UserID: userID}, nil
		},
	})

	deleted, err := svc.Delete(context.Background(), "user-1", 9)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != 9 {
		t.Errorf("deleted.ID = %d, want 9", deleted.ID)
	}

	_, err = svc.Delete(context.Background(), "user-2", 9)
	if code := apiErrorCode(t, err); code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, model.ErrCodeNotFound)
	}
}
