package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hitoshi/nutricoach/internal/model"
)

// profileUpdateColumns はUpdateで置き換えるカラム。id、user_id、created_atは変更しない。
var profileUpdateColumns = []string{
	"age", "gender", "height", "weight", "activity_level", "health_goal",
	"target_weight", "dietary_preference", "allergies", "medical_conditions", "updated_at",
}

// GormProfileRepo はGORMを使用したプロフィールリポジトリ。
type GormProfileRepo struct {
	db *gorm.DB
}

var _ ProfileRepository = (*GormProfileRepo)(nil)

// NewGormProfileRepo はGormProfileRepoを生成する。
func NewGormProfileRepo(db *gorm.DB) *GormProfileRepo {
	return &GormProfileRepo{db: db}
}

// FindByUserID はユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *GormProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

// Create はプロフィールを作成する。
func (r *GormProfileRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update はprofile.UserIDのプロフィールを全フィールド置き換えで更新する。
// 成功した場合はprofileのIDとCreatedAtを保存済みの値で埋める。
func (r *GormProfileRepo) Update(ctx context.Context, profile *model.UserProfile) (bool, error) {
	var updated bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserProfile{}).
			Where("user_id = ?", profile.UserID).
			Select(profileUpdateColumns).
			Updates(profile)
		if result.Error != nil {
			return fmt.Errorf("failed to update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var stored model.UserProfile
		if err := tx.Where("user_id = ?", profile.UserID).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload profile: %w", err)
		}
		*profile = stored
		updated = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}
