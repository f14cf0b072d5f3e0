package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// GormAccountRepo はGORMを使用したaccountリポジトリ。
type GormAccountRepo struct {
	db *gorm.DB
}

var _ AccountRepository = (*GormAccountRepo)(nil)

// NewGormAccountRepo はGormAccountRepoを生成する。
func NewGormAccountRepo(db *gorm.DB) *GormAccountRepo {
	return &GormAccountRepo{db: db}
}

// FindByProviderAndAccountID はproviderとaccount_idでaccountを検索する。
// 見つからない場合はnilを返す。
func (r *GormAccountRepo) FindByProviderAndAccountID(ctx context.Context, providerID, accountID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND account_id = ?", providerID, accountID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}

// Create は既存ユーザーにaccountを追加する。
func (r *GormAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}
