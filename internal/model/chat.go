package model

import "time"

// ChatRole はチャットメッセージの送信者を表す。
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// Valid はroleが許可された値かどうかを返す。
func (r ChatRole) Valid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatMessage はコーチとの会話履歴の1件を表す。追記のみで更新はしない。
type ChatMessage struct {
	ID        int64    `gorm:"primaryKey"`
	UserID    string   `gorm:"not null;index"`
	Role      ChatRole `gorm:"not null;type:varchar(16)"`
	Message   string   `gorm:"not null"`
	CreatedAt time.Time
}

// TableName はGORMのテーブル名を返す。
func (ChatMessage) TableName() string {
	return "chat_history"
}
