package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormChatRepo はGORMを使用したチャット履歴リポジトリ。
type GormChatRepo struct {
	db *gorm.DB
}

var _ ChatRepository = (*GormChatRepo)(nil)

// NewGormChatRepo はGormChatRepoを生成する。
func NewGormChatRepo(db *gorm.DB) *GormChatRepo {
	return &GormChatRepo{db: db}
}

// ListByUserID はユーザーのメッセージを作成日時の降順で返す。
func (r *GormChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error) {
	msgs := []*model.ChatMessage{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	return msgs, nil
}

// Create はメッセージを1件追記する。
func (r *GormChatRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// CreateAll は複数のメッセージを同一トランザクションで追記する。
func (r *GormChatRepo) CreateAll(ctx context.Context, msgs []*model.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, msg := range msgs {
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create chat messages: %w", err)
	}
	return nil
}
