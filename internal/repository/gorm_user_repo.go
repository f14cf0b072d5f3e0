package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormUserRepo はGORMを使用したユーザーリポジトリ。
type GormUserRepo struct {
	db *gorm.DB
}

var _ UserRepository = (*GormUserRepo)(nil)

// NewGormUserRepo はGormUserRepoを生成する。
func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *GormUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &user, nil
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *GormUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// CreateWithAccount はユーザーとaccountを同一トランザクションで作成する。
// メールアドレスの重複はgorm.ErrDuplicatedKeyをラップして返す。
func (r *GormUserRepo) CreateWithAccount(ctx context.Context, user *model.User, account *model.Account) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to insert account: %w", err)
		}
		return nil
	})
}

// DeleteByID は指定IDのユーザーを削除する。
// ユーザーが存在しない場合はUSER_NOT_FOUNDエラーを返す。
func (r *GormUserRepo) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.NewUserNotFoundError()
	}
	return nil
}
