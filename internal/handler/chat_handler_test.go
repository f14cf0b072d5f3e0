package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/nutricoach/internal/chat"
	"github.com/hitoshi/nutricoach/internal/model"
)

type mockChatService struct {
	historyFn func(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error)
	appendFn  func(ctx context.Context, userID, role, message string) (*model.ChatMessage, error)
	askFn     func(ctx context.Context, userID, message string) (*chat.Exchange, error)
}

func (m *mockChatService) History(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockChatService) Append(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, userID, role, message)
	}
	return nil, nil
}

func (m *mockChatService) Ask(ctx context.Context, userID, message string) (*chat.Exchange, error) {
	if m.askFn != nil {
		return m.askFn(ctx, userID, message)
	}
	return nil, nil
}

func chatMessage(id int64, userID string, role model.ChatRole, text string) *model.ChatMessage {
	return &model.ChatMessage{ID: id, UserID: userID, Role: role, Message: text, CreatedAt: time.Now().UTC()}
}

func TestChatHandler_ListHistory_DefaultLimit(t *testing.T) {
	svc := &mockChatService{
		historyFn: func(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error) {
			if limit != 50 || offset != 0 {
				t.Errorf("limit/offset = %d/%d, want 50/0", limit, offset)
			}
			return []*model.ChatMessage{chatMessage(1, userID, model.ChatRoleUser, "hi")}, nil
		},
	}
	h := NewChatHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/chat-history", nil), "user-1")
	w := httptest.NewRecorder()
	h.ListHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestChatHandler_AppendHistory_Success(t *testing.T) {
	svc := &mockChatService{
		appendFn: func(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
			if role != "assistant" || message != "Eat greens" {
				t.Errorf("Append(%q, %q)", role, message)
			}
			return chatMessage(1, userID, model.ChatRoleAssistant, message), nil
		},
	}
	h := NewChatHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/chat-history", `{"role":"assistant","message":"Eat greens"}`), "user-1")
	w := httptest.NewRecorder()
	h.AppendHistory(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	got := decodeJSONBody(t, w)
	if got["role"] != "assistant" {
		t.Errorf("role = %v, want assistant", got["role"])
	}
}

func TestChatHandler_AppendHistory_ValidationOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"userIdを含む", `{"userId":"x","role":"user","message":"hi"}`, model.ErrCodeUserIDNotAllowed},
		{"両方欠落はroleが先", `{}`, chat.ErrCodeMissingRole},
		{"message欠落", `{"role":"user"}`, chat.ErrCodeMissingMessage},
		{"roleが数値でもmessage欠落が先", `{"role":5}`, chat.ErrCodeMissingMessage},
		{"roleが数値", `{"role":5,"message":"hi"}`, chat.ErrCodeInvalidRole},
		{"messageがオブジェクト", `{"role":"user","message":{"text":"hi"}}`, "INVALID_MESSAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChatService{
				appendFn: func(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
					t.Error("Append should not be called")
					return nil, nil
				},
			}
			h := NewChatHandler(svc)

			req := withUserID(newJSONRequest(http.MethodPost, "/api/chat-history", tt.body), "user-1")
			w := httptest.NewRecorder()
			h.AppendHistory(w, req)

			assertErrorResponse(t, w, http.StatusBadRequest, tt.wantCode)
		})
	}
}

func TestChatHandler_AppendHistory_UnknownRole_PassesServiceError(t *testing.T) {
	svc := &mockChatService{
		appendFn: func(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
			return nil, model.NewValidationError(chat.ErrCodeInvalidRole, "Role must be either 'user' or 'assistant'")
		},
	}
	h := NewChatHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/chat-history", `{"role":"system","message":"hi"}`), "user-1")
	w := httptest.NewRecorder()
	h.AppendHistory(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, chat.ErrCodeInvalidRole)
}

func TestChatHandler_Ask_ReturnsBothTurns(t *testing.T) {
	svc := &mockChatService{
		askFn: func(ctx context.Context, userID, message string) (*chat.Exchange, error) {
			if message != "How much protein?" {
				t.Errorf("message = %q", message)
			}
			return &chat.Exchange{
				UserMessage:      chatMessage(1, userID, model.ChatRoleUser, message),
				AssistantMessage: chatMessage(2, userID, model.ChatRoleAssistant, "Protein is essential..."),
			}, nil
		},
	}
	h := NewChatHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/chat", `{"message":"How much protein?"}`), "user-1")
	w := httptest.NewRecorder()
	h.Ask(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	got := decodeJSONBody(t, w)
	user, _ := got["userMessage"].(map[string]any)
	assistant, _ := got["assistantMessage"].(map[string]any)
	if user["role"] != "user" || assistant["role"] != "assistant" {
		t.Errorf("body = %v", got)
	}
}

func TestChatHandler_Ask_NonStringMessage_ReturnsInvalidMessage(t *testing.T) {
	h := NewChatHandler(&mockChatService{})

	req := withUserID(newJSONRequest(http.MethodPost, "/api/chat", `{"message":["a"]}`), "user-1")
	w := httptest.NewRecorder()
	h.Ask(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, "INVALID_MESSAGE")
}

func TestChatHandler_Ask_MissingMessage_PassesEmptyToService(t *testing.T) {
	svc := &mockChatService{
		askFn: func(ctx context.Context, userID, message string) (*chat.Exchange, error) {
			if message != "" {
				t.Errorf("message = %q, want empty", message)
			}
			return nil, model.NewValidationError(chat.ErrCodeMissingMessage, "Message is required")
		},
	}
	h := NewChatHandler(svc)

	req := withUserID(newJSONRequest(http.MethodPost, "/api/chat", `{}`), "user-1")
	w := httptest.NewRecorder()
	h.Ask(w, req)

	assertErrorResponse(t, w, http.StatusBadRequest, chat.ErrCodeMissingMessage)
}
