package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/nutricoach/internal/chat"
	"github.com/hitoshi/nutricoach/internal/middleware"
	"github.com/hitoshi/nutricoach/internal/model"
)

// defaultChatMessagesPerPage はチャット履歴の1回の取得件数（デフォルト）。
const defaultChatMessagesPerPage = 50

// ChatServiceInterface はチャットハンドラーが必要とするサービスインターフェース。
type ChatServiceInterface interface {
	History(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error)
	Append(ctx context.Context, userID, role, message string) (*model.ChatMessage, error)
	Ask(ctx context.Context, userID, message string) (*chat.Exchange, error)
}

// ChatHandler はチャット履歴とコーチへの質問のHTTPハンドラー。
type ChatHandler struct {
	service ChatServiceInterface
}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler(service ChatServiceInterface) *ChatHandler {
	return &ChatHandler{service: service}
}

// ListHistory はチャット履歴を新しい順に返す。
// GET /api/chat-history?limit=50&offset=0
func (h *ChatHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	limit, offset := pagination(r, defaultChatMessagesPerPage)
	msgs, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChatMessageResponses(msgs))
}

// AppendHistory はメッセージを1件保存する。
// POST /api/chat-history
func (h *ChatHandler) AppendHistory(w http.ResponseWriter, r *http.Request) {
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

	if !body.truthy("role") {
		writeAPIErrorResponse(w, missingField(chat.ErrCodeMissingRole, "Role"))
		return
	}
	if !body.truthy("message") {
		writeAPIErrorResponse(w, missingField(chat.ErrCodeMissingMessage, "Message"))
		return
	}
	role, ok := body.str("role")
	if !ok {
		writeAPIErrorResponse(w, model.NewValidationError(chat.ErrCodeInvalidRole, "Role must be either 'user' or 'assistant'"))
		return
	}
	message, ok := body.str("message")
	if !ok {
		writeAPIErrorResponse(w, invalidField("INVALID_MESSAGE", "Message"))
		return
	}

	msg, err := h.service.Append(r.Context(), userID, role, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChatMessageResponse(msg))
}

// Ask はコーチに質問し、質問と応答の両方を返す。
// POST /api/chat
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
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

	message, ok := body.str("message")
	if !ok && body.truthy("message") {
		writeAPIErrorResponse(w, invalidField("INVALID_MESSAGE", "Message"))
		return
	}

	ex, err := h.service.Ask(r.Context(), userID, message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, chatExchangeResponse{
		UserMessage:      toChatMessageResponse(ex.UserMessage),
		AssistantMessage: toChatMessageResponse(ex.AssistantMessage),
	})
}
