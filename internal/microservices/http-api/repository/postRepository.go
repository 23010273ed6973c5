package repository

import (
	"threadhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type PostRepository interface {
	FindByID(id int64) (*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FindByID loads the post together with its board, so callers can read the
// board policy without a second query.
func (r *postRepository) FindByID(id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Board").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
