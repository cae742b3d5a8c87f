package repository

import (
	"context"
	"time"

	"campus/internal/cache"
	"campus/internal/models"
	"campus/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Liker is one like on a post together with the liking user's handle.
type Liker struct {
	UserID  uint      `json:"user_id"`
	Handle  string    `json:"handle"`
	LikedAt time.Time `json:"liked_at"`
}

// LikeRepository persists likes and keeps posts.like_count in step with them.
type LikeRepository interface {
	// Toggle flips the like of userID on postID and returns the new state and like_count.
	Toggle(ctx context.Context, userID, postID uint) (bool, int, error)
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]Liker, int64, error)
	ListLikedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error)
}

type likeRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewLikeRepository creates a like repository. c may be nil to disable caching.
func NewLikeRepository(db *gorm.DB, c *cache.Cache) LikeRepository {
	return &likeRepository{db: db, cache: c}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (liked bool, count int, err error) {
	ctx, span := observability.StartStoreSpan(ctx, "ToggleLike", "likes")
	defer func() { observability.EndSpan(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		like := models.Like{UserID: userID, PostID: postID}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&like)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 {
			liked = true
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", increment("like_count")).Error; err != nil {
				return err
			}
		} else {
			del := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
			if del.Error != nil {
				return del.Error
			}
			if del.RowsAffected > 0 {
				if err := tx.Model(&models.Post{}).Where("id = ?", postID).
					UpdateColumn("like_count", decrement("like_count")).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.Post{}).Select("like_count").Where("id = ?", postID).Scan(&count).Error
	})
	if err != nil {
		return false, 0, storeError(err)
	}

	r.cache.InvalidatePosts(ctx, postID)
	return liked, count, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return false, storeError(err)
	}
	return n > 0, nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]Liker, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&total).Error; err != nil {
		return nil, 0, storeError(err)
	}

	likers := make([]Liker, 0)
	if total == 0 {
		return likers, 0, nil
	}

	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("likes.user_id AS user_id, COALESCE(users.handle, '') AS handle, likes.created_at AS liked_at").
		Joins("LEFT JOIN users ON users.id = likes.user_id").
		Where("likes.post_id = ?", postID).
		Order("likes.created_at DESC").Order("likes.id DESC").
		Scopes(paginate(limit, offset)).
		Scan(&likers).Error
	if err != nil {
		return nil, 0, storeError(err)
	}
	return likers, total, nil
}

func (r *likeRepository) ListLikedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	likedBy := func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN likes ON likes.post_id = posts.id").Where("likes.user_id = ?", userID)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(likedBy).Count(&total).Error; err != nil {
		return nil, 0, storeError(err)
	}

	posts := make([]*models.Post, 0)
	if total == 0 {
		return posts, 0, nil
	}

	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("posts.*").
		Scopes(likedBy, paginate(limit, offset)).
		Order("likes.created_at DESC").Order("likes.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, 0, storeError(err)
	}
	return posts, total, nil
}
