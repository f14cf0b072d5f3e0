package handler

import (
	"context"
	"net/http"

	"gorm.io/datatypes"

	"github.com/hitoshi/nutricoach/internal/mealplan"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
)

// defaultMealPlansPerPage は献立一覧の1回の取得件数（デフォルト）。
const defaultMealPlansPerPage = 10

// MealPlanServiceInterface は献立ハンドラーが必要とするサービスインターフェース。
type MealPlanServiceInterface interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error)
	Get(ctx context.Context, userID string, id int64) (*model.MealPlan, error)
	Create(ctx context.Context, userID string, in mealplan.CreateInput) (*model.MealPlan, error)
	Update(ctx context.Context, userID string, id int64, patch model.MealPlanPatch) (*model.MealPlan, error)
	Delete(ctx context.Context, userID string, id int64) (*model.MealPlan, error)
}

// MealPlanHandler は献立のHTTPハンドラー。
type MealPlanHandler struct {
	service MealPlanServiceInterface
}

// NewMealPlanHandler はMealPlanHandlerを生成する。
func NewMealPlanHandler(service MealPlanServiceInterface) *MealPlanHandler {
	return &MealPlanHandler{service: service}
}

// ListMealPlans は呼び出しユーザーの献立一覧を返す。
// GET /api/meal-plans?limit=10&offset=0
func (h *MealPlanHandler) ListMealPlans(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	limit, offset := pagination(r, defaultMealPlansPerPage)
	plans, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMealPlanResponses(plans))
}

// CreateMealPlan は献立を作成する。
// POST /api/meal-plans
func (h *MealPlanHandler) CreateMealPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	body, apiErr := decodeBody(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	in, apiErr := parseMealPlanCreate(body)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	plan, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMealPlanResponse(plan))
}

// UpdateMealPlan は献立を部分更新する。
// 所有者の確認はボディの読み込みより先に行い、他人の献立にはボディの内容に関わらずNOT_FOUNDを返す。
// PUT /api/meal-plans?id=1
func (h *MealPlanHandler) UpdateMealPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id, apiErr := parseID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	if _, err := h.service.Get(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	body, apiErr := decodeBody(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	patch, apiErr := parseMealPlanPatch(body)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	plan, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMealPlanResponse(plan))
}

// DeleteMealPlan は献立を削除する。
// DELETE /api/meal-plans?id=1
func (h *MealPlanHandler) DeleteMealPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id, apiErr := parseID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	plan, err := h.service.Delete(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mealPlanDeletedResponse{
		Message: "Meal plan deleted successfully",
		Deleted: toMealPlanResponse(plan),
	})
}

func parseMealPlanCreate(body requestBody) (mealplan.CreateInput, *model.APIError) {
	var in mealplan.CreateInput

	if !body.truthy("name") {
		return in, missingField("MISSING_NAME", "Name")
	}
	if body.isNull("targetCalories") || (!body.truthy("targetCalories") && !isZeroNumber(body, "targetCalories")) {
		return in, missingField("MISSING_TARGET_CALORIES", "Target calories")
	}
	if !body.truthy("mealData") {
		return in, missingField("MISSING_MEAL_DATA", "Meal data")
	}

	name, ok := body.str("name")
	if !ok {
		return in, model.NewValidationError(mealplan.ErrCodeInvalidName, "Name cannot be empty")
	}
	in.Name = name

	target, ok := body.number("targetCalories")
	if !ok {
		return in, invalidField("INVALID_TARGET_CALORIES", "Target calories")
	}
	in.TargetCalories = target

	in.MealData = datatypes.JSON(body.raw("mealData"))

	var apiErr *model.APIError
	if in.Description, apiErr = optionalString(body, "description", "INVALID_DESCRIPTION", "Description"); apiErr != nil {
		return in, apiErr
	}

	in.IsActive = true
	if body.has("isActive") {
		in.IsActive = body.truthy("isActive")
	}

	return in, nil
}

// parseMealPlanPatch はボディに含まれるフィールドだけを更新対象にする。
func parseMealPlanPatch(body requestBody) (model.MealPlanPatch, *model.APIError) {
	var patch model.MealPlanPatch

	if body.has("name") {
		name, ok := body.str("name")
		if !ok {
			return patch, model.NewValidationError(mealplan.ErrCodeInvalidName, "Name cannot be empty")
		}
		patch.Name = &name
	}

	if body.has("description") {
		desc, apiErr := optionalString(body, "description", "INVALID_DESCRIPTION", "Description")
		if apiErr != nil {
			return patch, apiErr
		}
		patch.Description = &desc
	}

	if !body.isNull("targetCalories") {
		target, ok := body.number("targetCalories")
		if !ok {
			return patch, invalidField("INVALID_TARGET_CALORIES", "Target calories")
		}
		patch.TargetCalories = &target
	}

	if body.has("mealData") {
		patch.MealData = datatypes.JSON(body.raw("mealData"))
	}

	if body.has("isActive") {
		active := body.truthy("isActive")
		patch.IsActive = &active
	}

	return patch, nil
}

// isZeroNumber は値が数値の0（"0"のような文字列を除く）かを返す。
func isZeroNumber(body requestBody, key string) bool {
	if _, isString := body.str(key); isString {
		return false
	}
	n, ok := body.number(key)
	return ok && n == 0
}
