package database

import (
	"context"
	"testing"

	"campus/internal/config"
	"campus/internal/middleware"
	"campus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: NewSlogLogger(middleware.Logger)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))

	m := db.Migrator()
	assert.True(t, m.HasTable(&models.Post{}))
	assert.True(t, m.HasTable(&models.Like{}))
	assert.True(t, m.HasTable(&models.User{}))
	assert.True(t, m.HasColumn(&models.Post{}, "reply_to_id"))
	assert.True(t, m.HasIndex(&models.Like{}, "idx_likes_user_post"))
	assert.True(t, m.HasIndex(&models.Post{}, "idx_posts_thread"))

	// idempotent
	require.NoError(t, Migrate(db))
}

func TestMigrate_LikeUniqueness(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.Like{UserID: 1, PostID: 1}).Error)
	assert.Error(t, db.Create(&models.Like{UserID: 1, PostID: 1}).Error)
}

func TestPingAndClose(t *testing.T) {
	db := openSQLite(t)
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, Close(db))
	assert.Error(t, Ping(context.Background(), db))
}

func TestSlogLogger_LogMode(t *testing.T) {
	l := NewSlogLogger(middleware.Logger)
	silent := l.LogMode(logger.Silent).(*SlogLogger)
	assert.Equal(t, logger.Silent, silent.Config.LogLevel)
	assert.Equal(t, logger.Warn, l.Config.LogLevel)
}
