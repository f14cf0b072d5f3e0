package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Get(ctx context.Context, callerID, userID string) (*model.UserProfile, error)
	Upsert(ctx context.Context, userID string, in profile.Input) (*model.UserProfile, bool, error)
}

// ProfileHandler はプロフィールのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile は指定ユーザーのプロフィールを返す。
// GET /api/profile?userId=xxx
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	p, err := h.service.Get(r.Context(), callerID, r.URL.Query().Get("userId"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// UpsertProfile は呼び出しユーザーのプロフィールを作成または更新する。
// POST /api/profile
func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
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

	in, apiErr := parseProfileInput(body)
	if apiErr != nil {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	p, created, err := h.service.Upsert(r.Context(), userID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProfileResponse(p))
}

// parseProfileInput は必須項目の有無を検証してから値を取り出す。
// 必須項目は偽と評価される値（0や空文字列）も未指定として扱う。
func parseProfileInput(body requestBody) (profile.Input, *model.APIError) {
	var in profile.Input

	required := []struct {
		key, code, label string
	}{
		{"age", "MISSING_AGE", "Age"},
		{"gender", "MISSING_GENDER", "Gender"},
		{"height", "MISSING_HEIGHT", "Height"},
		{"weight", "MISSING_WEIGHT", "Weight"},
		{"activityLevel", "MISSING_ACTIVITY_LEVEL", "Activity level"},
		{"healthGoal", "MISSING_HEALTH_GOAL", "Health goal"},
	}
	for _, f := range required {
		if !body.truthy(f.key) {
			return in, missingField(f.code, f.label)
		}
	}

	age, ok := body.number("age")
	if ok {
		in.Age, ok = toInt32(age)
	}
	if !ok {
		return in, invalidField("INVALID_AGE", "Age")
	}
	height, ok := body.number("height")
	if ok {
		in.Height, ok = toInt32(height)
	}
	if !ok {
		return in, invalidField("INVALID_HEIGHT", "Height")
	}
	weight, ok := body.number("weight")
	if !ok {
		return in, invalidField("INVALID_WEIGHT", "Weight")
	}
	in.Weight = weight

	if in.Gender, ok = body.str("gender"); !ok {
		return in, invalidField("INVALID_GENDER", "Gender")
	}
	if in.ActivityLevel, ok = body.str("activityLevel"); !ok {
		return in, invalidField("INVALID_ACTIVITY_LEVEL", "Activity level")
	}
	if in.HealthGoal, ok = body.str("healthGoal"); !ok {
		return in, invalidField("INVALID_HEALTH_GOAL", "Health goal")
	}

	if body.truthy("targetWeight") {
		tw, ok := body.number("targetWeight")
		if !ok {
			return in, invalidField("INVALID_TARGET_WEIGHT", "Target weight")
		}
		in.TargetWeight = &tw
	}

	if body.truthy("dietaryPreference") {
		if in.DietaryPreference, ok = body.str("dietaryPreference"); !ok {
			return in, invalidField("INVALID_DIETARY_PREFERENCE", "Dietary preference")
		}
	}

	var apiErr *model.APIError
	if in.Allergies, apiErr = optionalString(body, "allergies", "INVALID_ALLERGIES", "Allergies"); apiErr != nil {
		return in, apiErr
	}
	if in.MedicalConditions, apiErr = optionalString(body, "medicalConditions", "INVALID_MEDICAL_CONDITIONS", "Medical conditions"); apiErr != nil {
		return in, apiErr
	}

	return in, nil
}

// optionalString は任意の文字列フィールドを取り出す。偽と評価される値はnil。
func optionalString(body requestBody, key, code, label string) (*string, *model.APIError) {
	if !body.truthy(key) {
		return nil, nil
	}
	s, ok := body.str(key)
	if !ok {
		return nil, invalidField(code, label)
	}
	return &s, nil
}
