package repository

import (
	"errors"

	"threadhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyLiked = errors.New("comment already liked by this user")
	ErrNotLiked     = errors.New("comment not liked by this user")
)

type LikeRepository interface {
	Like(commentID int64, userID string) (int, error)
	Unlike(commentID int64, userID string) (int, error)
	Count(commentID int64) (int, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Like inserts the like row and bumps the denormalized counter in one
// transaction. Returns the new count.
func (r *likeRepository) Like(commentID int64, userID string) (int, error) {
	var count int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CommentLike{CommentID: commentID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyLiked
		}
		if err := tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Pluck("like_count", &count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Unlike removes the like row and decrements the counter, never below zero.
func (r *likeRepository) Unlike(commentID int64, userID string) (int, error) {
	var count int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotLiked
		}
		if err := tx.Model(&models.Comment{}).
			Where("id = ? AND like_count > 0", commentID).
			Update("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Pluck("like_count", &count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *likeRepository) Count(commentID int64) (int, error) {
	var count int
	err := r.db.Model(&models.Comment{}).
		Where("id = ?", commentID).
		Pluck("like_count", &count).Error
	return count, err
}
