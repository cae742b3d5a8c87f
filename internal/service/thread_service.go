// Package service implements thread store operations on top of the repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/repository"
	"campus/internal/thread"

	"github.com/samber/lo"
)

const maxContentLen = 10000

// ThreadService creates, reads, edits and deletes posts, comments and replies.
type ThreadService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

type CreatePostInput struct {
	AuthorID     uint
	AuthorHandle string
	Content      string
	Media        []string
	ClubID       uint
}

type CreateCommentInput struct {
	PostID uint
	// ParentCommentID is the comment being answered; nil for a top-level comment.
	ParentCommentID *uint
	AuthorID        uint
	AuthorHandle    string
	Content         string
	Media           []string
}

type GetCommentsInput struct {
	PostID         uint
	Page           int
	Limit          int
	IncludeReplies bool
}

// CommentsPage is one page of top-level comments, optionally with nested replies.
type CommentsPage struct {
	Comments   []*models.Post `json:"comments"`
	Pagination Pagination     `json:"pagination"`
}

type UpdatePostInput struct {
	PostID      uint
	RequesterID uint
	Content     string
}

type DeletePostInput struct {
	PostID      uint
	RequesterID uint
}

// NewThreadService creates a ThreadService. users may be nil, in which case
// author handles are stored only when the caller supplies them.
func NewThreadService(posts repository.PostRepository, users repository.UserRepository) *ThreadService {
	return &ThreadService{posts: posts, users: users}
}

func (s *ThreadService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	defer func() { middleware.ObserveOperation("create_post", err) }()

	if in.AuthorID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	media := cleanMedia(in.Media)
	if err := validateBody(in.Content, media); err != nil {
		return nil, err
	}

	post = &models.Post{
		Content:      in.Content,
		Media:        media,
		CreatedBy:    in.AuthorID,
		UserID:       in.AuthorID,
		AuthorHandle: s.resolveHandle(ctx, in.AuthorID, in.AuthorHandle),
		ClubID:       in.ClubID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ThreadService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Post, err error) {
	defer func() { middleware.ObserveOperation("create_comment", err) }()

	if in.PostID == 0 {
		return nil, models.NewValidationError("postId is required")
	}
	if in.AuthorID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	media := cleanMedia(in.Media)
	if err := validateBody(in.Content, media); err != nil {
		return nil, err
	}

	root, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if root.IsComment() {
		return nil, models.NewValidationError("postId must reference a top-level post")
	}

	comment = &models.Post{
		Content:      in.Content,
		Media:        media,
		CreatedBy:    in.AuthorID,
		UserID:       in.AuthorID,
		AuthorHandle: s.resolveHandle(ctx, in.AuthorID, in.AuthorHandle),
		ClubID:       root.ClubID,
		ParentPostID: &root.ID,
		CommentDepth: 1,
	}

	// answering the root itself is a top-level comment
	if in.ParentCommentID != nil && *in.ParentCommentID != 0 && *in.ParentCommentID != root.ID {
		parent, err := s.posts.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return nil, models.NewNotFoundError("Comment", *in.ParentCommentID)
			}
			return nil, err
		}
		if parent.ParentPostID == nil || *parent.ParentPostID != root.ID {
			return nil, models.NewValidationError("parentCommentId belongs to a different thread")
		}
		comment.ReplyToID = &parent.ID
		comment.CommentDepth = parent.CommentDepth + 1
	}

	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetComments returns a page of a post's top-level comments, oldest first. With
// IncludeReplies every comment carries its full reply subtree, loaded one depth
// level per query.
func (s *ThreadService) GetComments(ctx context.Context, in GetCommentsInput) (page *CommentsPage, err error) {
	defer func() { middleware.ObserveOperation("get_comments", err) }()

	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	p, limit := normalizePage(in.Page, in.Limit)
	comments, total, err := s.posts.ListTopLevelComments(ctx, in.PostID, limit, offsetOf(p, limit))
	if err != nil {
		return nil, err
	}

	if in.IncludeReplies && len(comments) > 0 {
		if err := s.attachReplies(ctx, comments); err != nil {
			return nil, err
		}
	}

	return &CommentsPage{Comments: comments, Pagination: newPagination(p, limit, total)}, nil
}

func (s *ThreadService) attachReplies(ctx context.Context, roots []*models.Post) error {
	seen := make(map[uint]struct{}, len(roots))
	frontier := lo.Map(roots, func(p *models.Post, _ int) uint { return p.ID })
	for _, id := range frontier {
		seen[id] = struct{}{}
	}

	var replies []*models.Post
	levels := 0
	for len(frontier) > 0 {
		level, err := s.posts.ListReplies(ctx, frontier)
		if err != nil {
			return err
		}
		next := make([]uint, 0, len(level))
		for _, r := range level {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			replies = append(replies, r)
			next = append(next, r.ID)
		}
		if len(next) > 0 {
			levels++
		}
		frontier = next
	}

	thread.Attach(roots, thread.NewIndex(replies))
	middleware.ThreadFetchDepth.Observe(float64(levels))
	return nil
}

func (s *ThreadService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

func (s *ThreadService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	defer func() { middleware.ObserveOperation("update_post", err) }()

	if in.RequesterID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	post, err = s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID() != in.RequesterID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if err := validateBody(in.Content, post.Media); err != nil {
		return nil, err
	}

	if err := s.posts.UpdateContent(ctx, post, in.Content); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *ThreadService) DeletePost(ctx context.Context, in DeletePostInput) (post *models.Post, err error) {
	defer func() { middleware.ObserveOperation("delete_post", err) }()

	if in.RequesterID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	post, err = s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID() != in.RequesterID {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// resolveHandle returns handle, or the author's stored handle when none was given.
// Lookup failures leave the handle empty.
func (s *ThreadService) resolveHandle(ctx context.Context, authorID uint, handle string) string {
	handle = strings.TrimSpace(handle)
	if handle != "" || s.users == nil {
		return handle
	}
	user, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			middleware.Logger.WarnContext(ctx, "author handle lookup failed",
				slog.Uint64("user_id", uint64(authorID)), slog.String("error", err.Error()))
		}
		return ""
	}
	return user.Handle
}

func validateBody(content string, media []string) error {
	if !models.HasBody(content, media) {
		return models.NewValidationError("content or media is required")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("content too long (max 10000 characters)")
	}
	return nil
}

func cleanMedia(media []string) []string {
	return lo.Compact(lo.Map(media, func(m string, _ int) string { return strings.TrimSpace(m) }))
}
