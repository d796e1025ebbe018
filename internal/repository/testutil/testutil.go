package testutil

import (
	"context"
	"faang_prep_backend/internal/model"
	"faang_prep_backend/pkg/database"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 每个测试一个临时 SQLite 文件库，已完成迁移但未写入题库
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeededDB 写入默认题库与徽章
func SeededDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := DB(tb)
	if err := database.Seed(db); err != nil {
		tb.Fatalf("seed: %v", err)
	}
	return db
}

func CreateUser(tb testing.TB, db *gorm.DB, user *model.User) *model.User {
	tb.Helper()
	if user.Level == 0 {
		user.Level = 1
	}
	if err := db.WithContext(context.Background()).Create(user).Error; err != nil {
		tb.Fatalf("create user: %v", err)
	}
	return user
}
