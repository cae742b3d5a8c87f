// Package repository implements thread store persistence on GORM.
package repository

import (
	"context"

	"campus/internal/cache"
	"campus/internal/models"
	"campus/internal/observability"

	"gorm.io/gorm"
)

// PostRepository persists posts, comments and replies together with their counters.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// CreateComment inserts a comment or reply and bumps the root's comment_count
	// (and the answered comment's reply_count) in one transaction.
	CreateComment(ctx context.Context, comment *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListTopLevelComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Post, int64, error)
	ListReplies(ctx context.Context, commentIDs []uint) ([]*models.Post, error)
	UpdateContent(ctx context.Context, post *models.Post, content string) error
	// Delete hard-deletes post and its likes and decrements the counters that
	// referenced it. Children are left in place.
	Delete(ctx context.Context, post *models.Post) error
}

type postRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewPostRepository creates a post repository. c may be nil to disable caching.
func NewPostRepository(db *gorm.DB, c *cache.Cache) PostRepository {
	return &postRepository{db: db, cache: c}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return storeError(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) CreateComment(ctx context.Context, comment *models.Post) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, "CreateComment", "posts")
	defer func() { observability.EndSpan(span, err) }()

	rootID := *comment.ParentPostID
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Post{}).Where("id = ?", rootID).
			UpdateColumn("comment_count", increment("comment_count"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", rootID)
		}

		if comment.ReplyToID != nil {
			res = tx.Model(&models.Post{}).Where("id = ?", *comment.ReplyToID).
				UpdateColumn("reply_count", increment("reply_count"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Comment", *comment.ReplyToID)
			}
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}

	r.cache.InvalidatePosts(ctx, rootID, derefID(comment.ReplyToID))
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) ListTopLevelComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Scopes(topLevelComments(postID)).
		Count(&total).Error; err != nil {
		return nil, 0, storeError(err)
	}

	comments := make([]*models.Post, 0)
	if total == 0 {
		return comments, 0, nil
	}

	err := r.db.WithContext(ctx).
		Scopes(topLevelComments(postID), chronological, paginate(limit, offset)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, storeError(err)
	}
	return comments, total, nil
}

func (r *postRepository) ListReplies(ctx context.Context, commentIDs []uint) ([]*models.Post, error) {
	replies := make([]*models.Post, 0)
	if len(commentIDs) == 0 {
		return replies, nil
	}
	err := r.db.WithContext(ctx).
		Where("reply_to_id IN ?", commentIDs).
		Scopes(chronological).
		Find(&replies).Error
	if err != nil {
		return nil, storeError(err)
	}
	return replies, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, post *models.Post, content string) error {
	post.Content = content
	res := r.db.WithContext(ctx).Model(post).Select("content", "updated_at").Updates(post)
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.cache.InvalidatePosts(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, "DeletePost", "posts")
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", post.ID)
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		if post.ParentPostID != nil {
			if err := tx.Model(&models.Post{}).Where("id = ?", *post.ParentPostID).
				UpdateColumn("comment_count", decrement("comment_count")).Error; err != nil {
				return err
			}
		}
		if post.ReplyToID != nil {
			if err := tx.Model(&models.Post{}).Where("id = ?", *post.ReplyToID).
				UpdateColumn("reply_count", decrement("reply_count")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}

	r.cache.InvalidatePosts(ctx, post.ID, derefID(post.ParentPostID), derefID(post.ReplyToID))
	return nil
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
