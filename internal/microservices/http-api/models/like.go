package models

import "time"

// CommentLike records one registered user liking one comment. The unique
// index keeps the relation idempotent; comments.like_count is the
// denormalized counter kept in step inside the same transaction.
type CommentLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentID int64     `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_user"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_comment_user"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
