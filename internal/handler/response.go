package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/hitoshi/nutricoach/internal/dashboard"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
)

// --- レスポンス型 ---

type profileResponse struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"userId"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Height            int       `json:"height"`
	Weight            float64   `json:"weight"`
	ActivityLevel     string    `json:"activityLevel"`
	HealthGoal        string    `json:"healthGoal"`
	TargetWeight      *float64  `json:"targetWeight"`
	DietaryPreference string    `json:"dietaryPreference"`
	Allergies         *string   `json:"allergies"`
	MedicalConditions *string   `json:"medicalConditions"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type nutritionResponse struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"userId"`
	Date             string    `json:"date"`
	CaloriesConsumed float64   `json:"caloriesConsumed"`
	ProteinG         float64   `json:"proteinG"`
	CarbsG           float64   `json:"carbsG"`
	FatG             float64   `json:"fatG"`
	FiberG           float64   `json:"fiberG"`
	WaterMl          float64   `json:"waterMl"`
	CreatedAt        time.Time `json:"createdAt"`
}

type mealPlanResponse struct {
	ID             int64          `json:"id"`
	UserID         string         `json:"userId"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	TargetCalories float64        `json:"targetCalories"`
	MealData       datatypes.JSON `json:"mealData"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type mealPlanDeletedResponse struct {
	Message string           `json:"message"`
	Deleted mealPlanResponse `json:"deleted"`
}

type chatMessageResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type chatExchangeResponse struct {
	UserMessage      chatMessageResponse `json:"userMessage"`
	AssistantMessage chatMessageResponse `json:"assistantMessage"`
}

type achievementResponse struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	AchievementType string    `json:"achievementType"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	EarnedAt        time.Time `json:"earnedAt"`
}

type dashboardResponse struct {
	Date               string                `json:"date"`
	Profile            *profileResponse      `json:"profile"`
	Nutrition          *nutritionResponse    `json:"nutrition"`
	MealPlans          []mealPlanResponse    `json:"mealPlans"`
	ActiveMealPlan     *mealPlanResponse     `json:"activeMealPlan"`
	RecentAchievements []achievementResponse `json:"recentAchievements"`
}

type userResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         *string   `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type sessionInfo struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type sessionResponse struct {
	User    userResponse `json:"user"`
	Session sessionInfo  `json:"session"`
}

// --- 変換 ---

func toProfileResponse(p *model.UserProfile) profileResponse {
	return profileResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Age:               p.Age,
		Gender:            p.Gender,
		Height:            p.Height,
		Weight:            p.Weight,
		ActivityLevel:     p.ActivityLevel,
		HealthGoal:        p.HealthGoal,
		TargetWeight:      p.TargetWeight,
		DietaryPreference: p.DietaryPreference,
		Allergies:         p.Allergies,
		MedicalConditions: p.MedicalConditions,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toNutritionResponse(n *model.DailyNutrition) nutritionResponse {
	return nutritionResponse{
		ID:               n.ID,
		UserID:           n.UserID,
		Date:             n.Date,
		CaloriesConsumed: n.CaloriesConsumed,
		ProteinG:         n.ProteinG,
		CarbsG:           n.CarbsG,
		FatG:             n.FatG,
		FiberG:           n.FiberG,
		WaterMl:          n.WaterMl,
		CreatedAt:        n.CreatedAt,
	}
}

func toMealPlanResponse(p *model.MealPlan) mealPlanResponse {
	data := p.MealData
	if len(data) == 0 {
		data = datatypes.JSON("null")
	}
	return mealPlanResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		Description:    p.Description,
		TargetCalories: p.TargetCalories,
		MealData:       data,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}

func toMealPlanResponses(plans []*model.MealPlan) []mealPlanResponse {
	out := make([]mealPlanResponse, len(plans))
	for i, p := range plans {
		out[i] = toMealPlanResponse(p)
	}
	return out
}

func toChatMessageResponse(m *model.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

func toChatMessageResponses(msgs []*model.ChatMessage) []chatMessageResponse {
	out := make([]chatMessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toChatMessageResponse(m)
	}
	return out
}

func toAchievementResponse(a *model.Achievement) achievementResponse {
	return achievementResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		AchievementType: a.AchievementType,
		Title:           a.Title,
		Description:     a.Description,
		EarnedAt:        a.EarnedAt,
	}
}

func toAchievementResponses(list []*model.Achievement) []achievementResponse {
	out := make([]achievementResponse, len(list))
	for i, a := range list {
		out[i] = toAchievementResponse(a)
	}
	return out
}

func toDashboardResponse(s *dashboard.Summary) dashboardResponse {
	resp := dashboardResponse{
		Date:               s.Date,
		MealPlans:          toMealPlanResponses(s.MealPlans),
		RecentAchievements: toAchievementResponses(s.RecentAchievements),
	}
	if s.Profile != nil {
		p := toProfileResponse(s.Profile)
		resp.Profile = &p
	}
	if s.Nutrition != nil {
		n := toNutritionResponse(s.Nutrition)
		resp.Nutrition = &n
	}
	if s.ActiveMealPlan != nil {
		a := toMealPlanResponse(s.ActiveMealPlan)
		resp.ActiveMealPlan = &a
	}
	return resp
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// --- 書き込みヘルパー ---

// writeJSON はステータスコードとともにJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
}

// writeUnauthorized は401 AUTHENTICATION_REQUIREDを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, model.NewAuthenticationRequiredError())
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w, err)
}

// mapAPIErrorToHTTPStatus はAPIErrorの分類からHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Category {
	case model.CategoryValidation:
		return http.StatusBadRequest
	case model.CategoryAuth:
		return http.StatusUnauthorized
	case model.CategoryForbidden:
		return http.StatusForbidden
	case model.CategoryNotFound:
		return http.StatusNotFound
	case model.CategoryConflict:
		return http.StatusConflict
	case model.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
