package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutricoach/internal/achievement"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
)

// defaultAchievementsPerPage は実績一覧の1回の取得件数（デフォルト）。
const defaultAchievementsPerPage = 20

// AchievementServiceInterface は実績ハンドラーが必要とするサービスインターフェース。
type AchievementServiceInterface interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*model.Achievement, error)
	Record(ctx context.Context, userID string, in achievement.Input) (*model.Achievement, error)
}

// AchievementHandler は実績のHTTPハンドラー。
type AchievementHandler struct {
	service AchievementServiceInterface
}

// NewAchievementHandler はAchievementHandlerを生成する。
func NewAchievementHandler(service AchievementServiceInterface) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// ListAchievements は実績を獲得日時の新しい順に返す。
// GET /api/achievements?limit=20&offset=0
func (h *AchievementHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	limit, offset := pagination(r, defaultAchievementsPerPage)
	list, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAchievementResponses(list))
}

// RecordAchievement は実績を記録する。
// POST /api/achievements
func (h *AchievementHandler) RecordAchievement(w http.ResponseWriter, r *http.Request) {
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

	// 文字列以外の値は未指定として扱う
	achievementType, _ := body.str("achievementType")
	title, _ := body.str("title")
	description, _ := body.str("description")

	a, err := h.service.Record(r.Context(), userID, achievement.Input{
		AchievementType: achievementType,
		Title:           title,
		Description:     description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAchievementResponse(a))
}
