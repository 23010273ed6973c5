package repository

import (
	"threadhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type BoardRepository interface {
	FindByCategory(category string) (*models.Board, error)
	FindByID(id int64) (*models.Board, error)
}

type boardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) FindByCategory(category string) (*models.Board, error) {
	var board models.Board
	if err := r.db.Where("category = ?", category).First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) FindByID(id int64) (*models.Board, error) {
	var board models.Board
	if err := r.db.First(&board, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}
