package service

import (
	"context"

	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/repository"
)

// LikeService toggles and reads likes.
type LikeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
}

// LikeState is the outcome of a toggle.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type LikersPage struct {
	Likes      []repository.Liker `json:"likes"`
	Pagination Pagination         `json:"pagination"`
}

type LikedPostsPage struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository) *LikeService {
	return &LikeService{likes: likes, posts: posts}
}

func (s *LikeService) ToggleLike(ctx context.Context, postID, userID uint) (state *LikeState, err error) {
	defer func() { middleware.ObserveOperation("toggle_like", err) }()

	if userID == 0 {
		return nil, models.NewValidationError("userId is required")
	}
	liked, count, err := s.likes.Toggle(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, LikeCount: count}, nil
}

func (s *LikeService) GetLikeCount(ctx context.Context, postID uint) (int, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	return post.LikeCount, nil
}

func (s *LikeService) CheckLikeStatus(ctx context.Context, postID, userID uint) (bool, error) {
	if userID == 0 {
		return false, models.NewValidationError("userId is required")
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return false, err
	}
	return s.likes.Exists(ctx, userID, postID)
}

// GetPostLikes lists who liked a post, most recent first.
func (s *LikeService) GetPostLikes(ctx context.Context, postID uint, page, limit int) (*LikersPage, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)
	likers, total, err := s.likes.ListByPost(ctx, postID, limit, offsetOf(page, limit))
	if err != nil {
		return nil, err
	}
	return &LikersPage{Likes: likers, Pagination: newPagination(page, limit, total)}, nil
}

func (s *LikeService) GetUserLikedPosts(ctx context.Context, userID uint, page, limit int) (*LikedPostsPage, error) {
	if userID == 0 {
		return nil, models.NewValidationError("userId is required")
	}
	page, limit = normalizePage(page, limit)
	posts, total, err := s.likes.ListLikedPosts(ctx, userID, limit, offsetOf(page, limit))
	if err != nil {
		return nil, err
	}
	return &LikedPostsPage{Posts: posts, Pagination: newPagination(page, limit, total)}, nil
}
