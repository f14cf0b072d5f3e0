// Package repository はデータ永続化のインターフェースを定義する。
// すべての所有リソースの操作はユーザーIDをWHERE条件に含めて実行する。
package repository

import (
	"context"

	"github.com/hitoshi/nutricoach/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateWithAccount はユーザーとaccountを同一トランザクションで作成する。
	CreateWithAccount(ctx context.Context, user *model.User, account *model.Account) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するすべての行はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// AccountRepository は認証手段の永続化インターフェース。
type AccountRepository interface {
	// FindByProviderAndAccountID はproviderとaccount_idでaccountを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndAccountID(ctx context.Context, providerID, accountID string) (*model.Account, error)
	// Create は既存ユーザーにaccountを追加する。
	Create(ctx context.Context, account *model.Account) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ProfileRepository はユーザープロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID はユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.UserProfile) error
	// Update はprofile.UserIDのプロフィールを全フィールド置き換えで更新する。
	// 対象行が存在しない場合はfalseを返す。
	Update(ctx context.Context, profile *model.UserProfile) (bool, error)
}

// NutritionRepository は日次栄養記録の永続化インターフェース。
type NutritionRepository interface {
	// FindByUserAndDate は指定日の記録を取得する。
	// 同日に複数件ある場合は最後に登録されたものを返す。見つからない場合はnilを返す。
	FindByUserAndDate(ctx context.Context, userID, date string) (*model.DailyNutrition, error)
	// Create は記録を作成する。
	Create(ctx context.Context, entry *model.DailyNutrition) error
}

// MealPlanRepository は献立の永続化インターフェース。
type MealPlanRepository interface {
	// ListByUserID はユーザーの献立を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.MealPlan, error)
	// FindByIDAndUser は呼び出しユーザーが所有する献立を取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error)
	// Create は献立を作成する。
	Create(ctx context.Context, plan *model.MealPlan) error
	// Update は所有者が一致する献立に部分更新を適用し、更新後の行を返す。
	// 見つからない場合はnilを返し、行は変更しない。
	Update(ctx context.Context, id int64, userID string, patch model.MealPlanPatch) (*model.MealPlan, error)
	// DeleteByIDAndUser は所有者が一致する献立を削除し、削除した行を返す。
	// 見つからない場合はnilを返す。
	DeleteByIDAndUser(ctx context.Context, id int64, userID string) (*model.MealPlan, error)
}

// ChatRepository はチャット履歴の永続化インターフェース。
type ChatRepository interface {
	// ListByUserID はユーザーのメッセージを作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.ChatMessage, error)
	// Create はメッセージを1件追記する。
	Create(ctx context.Context, msg *model.ChatMessage) error
	// CreateAll は複数のメッセージを同一トランザクションで追記する。
	CreateAll(ctx context.Context, msgs []*model.ChatMessage) error
}

// AchievementRepository は実績の永続化インターフェース。
type AchievementRepository interface {
	// ListByUserID はユーザーの実績を獲得日時の降順で返す。
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Achievement, error)
	// Create は実績を記録する。
	Create(ctx context.Context, achievement *model.Achievement) error
}
