package dto

import "threadhub/internal/microservices/http-api/models"

// BoardRuleResponse exposes the posting policy a client needs before it
// offers guest authorship in its comment form.
type BoardRuleResponse struct {
	Category       string `json:"category"`
	Name           string `json:"name"`
	AllowAnonymous bool   `json:"allow_anonymous"`
}

func FromModelToBoardRuleResponse(board *models.Board) *BoardRuleResponse {
	return &BoardRuleResponse{
		Category:       board.Category,
		Name:           board.Name,
		AllowAnonymous: board.AllowAnonymous,
	}
}
