// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Post is the single entity behind top-level posts, comments and replies.
// CommentDepth discriminates them: 0 is a post, 1 a comment, n+1 a reply to a depth-n comment.
//
// ParentPostID always points at the root post of the thread. ReplyToID points at the
// comment a reply answers and is nil for top-level posts and depth-1 comments.
type Post struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Content      string                      `gorm:"type:text;not null;default:''" json:"content"`
	Media        datatypes.JSONSlice[string] `json:"media"`
	CreatedBy    uint                        `gorm:"column:createdby;not null;index" json:"createdby"`
	UserID       uint                        `gorm:"not null;index" json:"user_id"`
	AuthorHandle string                      `gorm:"size:64" json:"author_handle"`
	ClubID       uint                        `gorm:"column:club;not null;default:0;index" json:"club_id"`
	ParentPostID *uint                       `gorm:"index:idx_posts_thread,priority:1" json:"parent_post_id"`
	ReplyToID    *uint                       `gorm:"index" json:"reply_to_id"`
	CommentDepth int                         `gorm:"not null;default:0" json:"comment_depth"`
	// CommentCount is the number of rows whose ParentPostID is this post.
	CommentCount int `gorm:"not null;default:0" json:"comment_count"`
	// ReplyCount is the number of rows whose ReplyToID is this post.
	ReplyCount int       `gorm:"not null;default:0" json:"reply_count"`
	LikeCount  int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt  time.Time `gorm:"index:idx_posts_thread,priority:2" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Replies is populated only when a thread is assembled for a response. A leaf in an
	// assembled thread carries an empty, non-nil slice and serializes as [].
	Replies []*Post `gorm:"-" json:"replies,omitzero"`
}

// IsComment reports whether the post is a comment or reply rather than a top-level post.
func (p *Post) IsComment() bool {
	return p.CommentDepth > 0
}

// AuthorID returns the author id, preferring CreatedBy and falling back to UserID.
func (p *Post) AuthorID() uint {
	if p.CreatedBy != 0 {
		return p.CreatedBy
	}
	return p.UserID
}

// HasBody reports whether the post carries text or at least one media reference.
func HasBody(content string, media []string) bool {
	return strings.TrimSpace(content) != "" || len(media) > 0
}
