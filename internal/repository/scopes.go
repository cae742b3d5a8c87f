package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// topLevelComments selects the depth-1 comments of a thread.
func topLevelComments(postID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_post_id = ? AND reply_to_id IS NULL AND comment_depth > 0", postID)
	}
}

// chronological orders siblings by creation time, breaking ties by id.
func chronological(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}

func increment(column string) clause.Expr {
	return gorm.Expr(column+" + ?", 1)
}

// decrement lowers column by one without going below zero.
func decrement(column string) clause.Expr {
	return gorm.Expr("CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END")
}
