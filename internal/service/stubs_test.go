package service

import (
	"context"
	"testing"

	"campus/internal/models"
	"campus/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	createCommentFn func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listTopLevelFn  func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	listRepliesFn   func(context.Context, []uint) ([]*models.Post, error)
	updateContentFn func(context.Context, *models.Post, string) error
	deleteFn        func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) CreateComment(ctx context.Context, comment *models.Post) error {
	return s.createCommentFn(ctx, comment)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListTopLevelComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Post, int64, error) {
	return s.listTopLevelFn(ctx, postID, limit, offset)
}
func (s *postRepoStub) ListReplies(ctx context.Context, ids []uint) ([]*models.Post, error) {
	return s.listRepliesFn(ctx, ids)
}
func (s *postRepoStub) UpdateContent(ctx context.Context, post *models.Post, content string) error {
	return s.updateContentFn(ctx, post, content)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		createCommentFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, CreatedBy: 1, UserID: 1}, nil
		},
		listTopLevelFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, int64, error) {
			return []*models.Post{}, 0, nil
		},
		listRepliesFn:   func(_ context.Context, _ []uint) ([]*models.Post, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _ *models.Post, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ *models.Post) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return nil, models.NewNotFoundError("User", email)
}
func (s *userRepoStub) Create(_ context.Context, _ *models.User) error { return nil }

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn     func(context.Context, uint, uint) (bool, int, error)
	existsFn     func(context.Context, uint, uint) (bool, error)
	listByPostFn func(context.Context, uint, int, int) ([]repository.Liker, int64, error)
	listLikedFn  func(context.Context, uint, int, int) ([]*models.Post, int64, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, userID, postID uint) (bool, int, error) {
	return s.toggleFn(ctx, userID, postID)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]repository.Liker, int64, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *likeRepoStub) ListLikedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	return s.listLikedFn(ctx, userID, limit, offset)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		toggleFn: func(_ context.Context, _, _ uint) (bool, int, error) { return true, 1, nil },
		existsFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]repository.Liker, int64, error) {
			return []repository.Liker{}, 0, nil
		},
		listLikedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, int64, error) {
			return []*models.Post{}, 0, nil
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func uintPtr(v uint) *uint { return &v }
