package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hitoshi/nutricoach/internal/model"
)

// newTestDB はインメモリSQLite上にスキーマを作成したGORMハンドルを返す。
// :memory:は接続ごとに別DBになるため、接続数を1に固定する。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("テスト用DBのオープンに失敗: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DBの取得に失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Session{},
		&model.UserProfile{},
		&model.DailyNutrition{},
		&model.MealPlan{},
		&model.ChatMessage{},
		&model.Achievement{},
	); err != nil {
		t.Fatalf("AutoMigrateに失敗: %v", err)
	}

	return db
}

// seedUser はテスト用のユーザーを作成する。
func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	user := &model.User{
		ID:        id,
		Name:      "User " + id,
		Email:     id + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("ユーザー作成に失敗: %v", err)
	}
	return user
}

func strPtr(s string) *string { return &s }
