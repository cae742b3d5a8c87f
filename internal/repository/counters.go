package repository

import (
	"context"

	"campus/internal/cache"
	"campus/internal/models"

	"gorm.io/gorm"
)

// CounterDrift is a post whose stored counters disagree with the rows they summarize.
type CounterDrift struct {
	ID           uint
	CommentCount int
	ReplyCount   int
	LikeCount    int
	TrueComments int
	TrueReplies  int
	TrueLikes    int
}

// CounterRepository finds and repairs denormalized counter drift.
type CounterRepository interface {
	Drifted(ctx context.Context) ([]CounterDrift, error)
	// Repair recomputes all three counters of a post from the live rows in one statement.
	Repair(ctx context.Context, postID uint) error
}

type counterRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewCounterRepository creates a counter repository. c may be nil to disable caching.
func NewCounterRepository(db *gorm.DB, c *cache.Cache) CounterRepository {
	return &counterRepository{db: db, cache: c}
}

const driftQuery = `
SELECT id, comment_count, reply_count, like_count, true_comments, true_replies, true_likes
FROM (
	SELECT p.id, p.comment_count, p.reply_count, p.like_count,
		(SELECT COUNT(*) FROM posts c WHERE c.parent_post_id = p.id) AS true_comments,
		(SELECT COUNT(*) FROM posts r WHERE r.reply_to_id = p.id) AS true_replies,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS true_likes
	FROM posts p
) counts
WHERE comment_count <> true_comments OR reply_count <> true_replies OR like_count <> true_likes
ORDER BY id`

func (r *counterRepository) Drifted(ctx context.Context) ([]CounterDrift, error) {
	drifts := make([]CounterDrift, 0)
	if err := r.db.WithContext(ctx).Raw(driftQuery).Scan(&drifts).Error; err != nil {
		return nil, storeError(err)
	}
	return drifts, nil
}

func (r *counterRepository) Repair(ctx context.Context, postID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumns(map[string]interface{}{
			"comment_count": gorm.Expr("(SELECT COUNT(*) FROM posts c WHERE c.parent_post_id = posts.id)"),
			"reply_count":   gorm.Expr("(SELECT COUNT(*) FROM posts r WHERE r.reply_to_id = posts.id)"),
			"like_count":    gorm.Expr("(SELECT COUNT(*) FROM likes l WHERE l.post_id = posts.id)"),
		}).Error
	if err != nil {
		return storeError(err)
	}
	r.cache.InvalidatePosts(ctx, postID)
	return nil
}
