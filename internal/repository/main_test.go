package repository

import (
	"context"
	"testing"

	"campus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

func uintPtr(v uint) *uint { return &v }

func createRoot(t *testing.T, repo PostRepository, author uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{Content: content, CreatedBy: author, UserID: author}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

// createReply inserts a comment under root, answering replyTo when it is not nil.
func createReply(t *testing.T, repo PostRepository, root *models.Post, replyTo *models.Post, author uint, content string) *models.Post {
	t.Helper()
	c := &models.Post{
		Content:      content,
		CreatedBy:    author,
		UserID:       author,
		ParentPostID: uintPtr(root.ID),
		CommentDepth: 1,
	}
	if replyTo != nil {
		c.ReplyToID = uintPtr(replyTo.ID)
		c.CommentDepth = replyTo.CommentDepth + 1
	}
	require.NoError(t, repo.CreateComment(context.Background(), c))
	return c
}

func reload(t *testing.T, db *gorm.DB, id uint) *models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, id).Error)
	return &p
}
