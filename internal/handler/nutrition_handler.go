package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/nutrition"
)

// NutritionServiceInterface は栄養記録ハンドラーが必要とするサービスインターフェース。
type NutritionServiceInterface interface {
	GetDaily(ctx context.Context, userID, date string) (*model.DailyNutrition, error)
	Log(ctx context.Context, userID string, in nutrition.Input) (*model.DailyNutrition, error)
}

// NutritionHandler は日次栄養記録のHTTPハンドラー。
type NutritionHandler struct {
	service NutritionServiceInterface
}

// NewNutritionHandler はNutritionHandlerを生成する。
func NewNutritionHandler(service NutritionServiceInterface) *NutritionHandler {
	return &NutritionHandler{service: service}
}

// GetDaily は指定日の栄養記録を返す。
// GET /api/nutrition/daily?date=YYYY-MM-DD
func (h *NutritionHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	entry, err := h.service.GetDaily(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toNutritionResponse(entry))
}

// LogDaily は栄養記録を追加する。
// POST /api/nutrition/daily
func (h *NutritionHandler) LogDaily(w http.ResponseWriter, r *http.Request) {
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

	in, apiErr := parseNutritionInput(body)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	entry, err := h.service.Log(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toNutritionResponse(entry))
}

// nutrientFields は栄養素フィールドの検証順。0は有効な値で、nullは未指定として扱う。
var nutrientFields = []struct {
	key, missingCode, invalidCode, label string
	set                                  func(in *nutrition.Input, v float64)
}{
	{"caloriesConsumed", "MISSING_CALORIES", "INVALID_CALORIES", "Calories consumed", func(in *nutrition.Input, v float64) { in.CaloriesConsumed = v }},
	{"proteinG", "MISSING_PROTEIN", "INVALID_PROTEIN", "Protein", func(in *nutrition.Input, v float64) { in.ProteinG = v }},
	{"carbsG", "MISSING_CARBS", "INVALID_CARBS", "Carbs", func(in *nutrition.Input, v float64) { in.CarbsG = v }},
	{"fatG", "MISSING_FAT", "INVALID_FAT", "Fat", func(in *nutrition.Input, v float64) { in.FatG = v }},
	{"fiberG", "MISSING_FIBER", "INVALID_FIBER", "Fiber", func(in *nutrition.Input, v float64) { in.FiberG = v }},
	{"waterMl", "MISSING_WATER", "INVALID_WATER", "Water", func(in *nutrition.Input, v float64) { in.WaterMl = v }},
}

// parseNutritionInput は全フィールドの有無を先に検証し、その後で値の型を検証する。
// 日付形式の検証はサービス層が行う。
func parseNutritionInput(body requestBody) (nutrition.Input, *model.APIError) {
	var in nutrition.Input

	if !body.truthy("date") {
		return in, model.NewValidationError(model.ErrCodeMissingDate, "Date is required")
	}
	for _, f := range nutrientFields {
		if body.isNull(f.key) {
			return in, missingField(f.missingCode, f.label)
		}
	}

	date, ok := body.str("date")
	if !ok {
		return in, model.NewInvalidDateFormatError()
	}
	in.Date = date

	for _, f := range nutrientFields {
		v, ok := body.number(f.key)
		if !ok {
			return in, invalidField(f.invalidCode, f.label)
		}
		f.set(&in, v)
	}

	return in, nil
}
