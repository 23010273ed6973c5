package repository

import (
	"threadhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	UpdateContent(commentID int64, content string) error
	SoftDelete(commentID int64) error
	GetByID(commentID int64) (*models.Comment, error)
	GetByPost(postID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// UpdateContent replaces the body of a comment. Ownership is checked in the
// service layer; only content moves here so author fields stay immutable.
func (r *commentRepository) UpdateContent(commentID int64, content string) error {
	return r.db.Model(&models.Comment{}).
		Where("id = ?", commentID).
		Update("content", content).Error
}

// SoftDelete flips is_deleted and keeps the row, so replies stay reachable.
// The flag never flips back.
func (r *commentRepository) SoftDelete(commentID int64) error {
	return r.db.Model(&models.Comment{}).
		Where("id = ?", commentID).
		Update("is_deleted", true).Error
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Where("id = ?", commentID).
		Preload("User").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByPost retrieves every comment of a post as a flat list in creation
// order, deleted placeholders included. Clients rebuild the tree themselves.
func (r *commentRepository) GetByPost(postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ?", postID).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
