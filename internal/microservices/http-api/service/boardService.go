package service

import (
	"errors"

	"threadhub/internal/microservices/http-api/dto"
	"threadhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrBoardNotFound = errors.New("board not found")

// BoardService exposes the per-board posting policy. Clients read it before
// offering guest authorship in their comment forms.
type BoardService interface {
	RuleForCategory(category string) (*dto.BoardRuleResponse, error)
}

type boardService struct {
	boardRepo repository.BoardRepository
}

func NewBoardService(boardRepo repository.BoardRepository) BoardService {
	return &boardService{boardRepo: boardRepo}
}

func (s *boardService) RuleForCategory(category string) (*dto.BoardRuleResponse, error) {
	board, err := s.boardRepo.FindByCategory(category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return dto.FromModelToBoardRuleResponse(board), nil
}
