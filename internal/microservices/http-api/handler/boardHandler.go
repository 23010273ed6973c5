package handler

import (
	"errors"
	"net/http"

	"threadhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardService service.BoardService
}

func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

func (h *BoardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/:category", h.GetRule)
}

// GetRule returns the posting policy of a board
// GET /api/boards/:category
func (h *BoardHandler) GetRule(c *gin.Context) {
	rule, err := h.boardService.RuleForCategory(c.Param("category"))
	if err != nil {
		if errors.Is(err, service.ErrBoardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rule)
}
