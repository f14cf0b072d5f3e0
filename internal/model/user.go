// Package model はドメインモデルを定義する。
package model

import "time"

// ProviderCredential はメールアドレスとパスワードによるアカウントのプロバイダーID。
const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
)

// User はサービス利用ユーザーを表す。
type User struct {
	ID            string `gorm:"primaryKey;type:text"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"not null;uniqueIndex"`
	EmailVerified bool   `gorm:"not null"`
	Image         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Account はユーザーの認証手段（パスワードまたは外部IdP）を表す。
// (ProviderID, AccountID) の組で一意となる。
type Account struct {
	ID           string `gorm:"primaryKey;type:text"`
	UserID       string `gorm:"not null;index"`
	ProviderID   string `gorm:"not null;uniqueIndex:idx_accounts_provider_account"`
	AccountID    string `gorm:"not null;uniqueIndex:idx_accounts_provider_account"`
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはJWTのjtiクレームとして発行される。
type Session struct {
	ID        string    `gorm:"primaryKey;type:text"`
	UserID    string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IPAddress *string
	UserAgent *string
	CreatedAt time.Time
}
