// Package dbtest 提供测试用的 sqlite 数据库
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewProvider 在临时目录创建已迁移的 sqlite 数据库
func NewProvider(t testing.TB) database.Provider {
	t.Helper()

	dsn := fmt.Sprintf("%s?_foreign_keys=on", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	provider := database.NewGormProviderFromDB(db, "sqlite")
	require.NoError(t, provider.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

// CreateUser 插入一个测试用户
func CreateUser(t testing.TB, provider database.Provider, name string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    name + "@example.com",
		Name:     name,
		Password: "unused",
		IsActive: true,
	}
	require.NoError(t, provider.DB().Create(user).Error)
	return user
}
