// Package chat はコーチとの会話履歴のドメインロジックを提供する。
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/nutricoach/internal/coach"
	"github.com/hitoshi/nutricoach/internal/metrics"
	"github.com/hitoshi/nutricoach/internal/model"
	"github.com/hitoshi/nutricoach/internal/repository"
	"github.com/hitoshi/nutricoach/internal/security"
)

// エラーコード
const (
	ErrCodeMissingRole    = "MISSING_ROLE"
	ErrCodeInvalidRole    = "INVALID_ROLE"
	ErrCodeMissingMessage = "MISSING_MESSAGE"
)

// Exchange はコーチへの質問1往復の結果。
type Exchange struct {
	UserMessage      *model.ChatMessage
	AssistantMessage *model.ChatMessage
}

// Service はチャット履歴のサービス層。
type Service struct {
	repo      repository.ChatRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.ChatRepository, sanitizer security.TextSanitizer, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// History はユーザーのメッセージを新しい順に返す。
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error) {
	msgs, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("チャット履歴の取得に失敗しました: %w", err)
	}
	return msgs, nil
}

// Append はメッセージを1件履歴に追記する。
func (s *Service) Append(ctx context.Context, userID, role, message string) (*model.ChatMessage, error) {
	r := model.ChatRole(s.sanitizer.Sanitize(role))
	if r == "" {
		return nil, model.NewValidationError(ErrCodeMissingRole, "Role is required")
	}
	if !r.Valid() {
		return nil, model.NewValidationError(ErrCodeInvalidRole, "Role must be either 'user' or 'assistant'")
	}

	text, err := s.cleanMessage(message)
	if err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		UserID:    userID,
		Role:      r,
		Message:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("チャットメッセージの保存に失敗しました: %w", err)
	}
	return msg, nil
}

// Ask はユーザーの質問とコーチの応答を同一トランザクションで履歴に追記する。
func (s *Service) Ask(ctx context.Context, userID, message string) (*Exchange, error) {
	text, err := s.cleanMessage(message)
	if err != nil {
		return nil, err
	}

	topic, reply := coach.Respond(text)
	now := s.now().UTC()

	ex := &Exchange{
		UserMessage: &model.ChatMessage{
			UserID:    userID,
			Role:      model.ChatRoleUser,
			Message:   text,
			CreatedAt: now,
		},
		AssistantMessage: &model.ChatMessage{
			UserID:    userID,
			Role:      model.ChatRoleAssistant,
			Message:   reply,
			CreatedAt: now,
		},
	}
	if err := s.repo.CreateAll(ctx, []*model.ChatMessage{ex.UserMessage, ex.AssistantMessage}); err != nil {
		return nil, fmt.Errorf("チャットメッセージの保存に失敗しました: %w", err)
	}

	s.metrics.RecordCoachReply(string(topic))
	slog.Debug("コーチが応答しました",
		slog.String("user_id", userID),
		slog.String("topic", string(topic)),
	)
	return ex, nil
}

func (s *Service) cleanMessage(raw string) (string, error) {
	text := s.sanitizer.Sanitize(raw)
	if text == "" {
		return "", model.NewValidationError(ErrCodeMissingMessage, "Message is required")
	}
	return text, nil
}
