package handler

import (
	"errors"
	"net/http"
	"strconv"

	"threadhub/internal/microservices/http-api/dto"
	"threadhub/internal/microservices/http-api/service"
	"threadhub/internal/shared"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment-related routes.
// The group is expected to already carry OptionalAuthMiddleware so guests can
// reach the create endpoints; like routes re-check for a resolved viewer.
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/:post_id/comments")
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.POST("/:comment_id/replies", h.CreateReply)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
		comments.POST("/:comment_id/like", h.Like)
		comments.DELETE("/:comment_id/like", h.Unlike)
	}
}

// List returns all comments for a post as a flat collection
// GET /api/posts/:post_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	result, err := h.commentService.ListByPost(postID)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create creates a new top-level comment
// POST /api/posts/:post_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.Create(postID, &req, viewerClaims(c))
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// CreateReply creates a reply under a top-level comment
// POST /api/posts/:post_id/comments/:comment_id/replies
func (h *CommentHandler) CreateReply(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	parentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateReply(postID, parentID, &req, viewerClaims(c))
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Update replaces the comment content (registered owner only)
// PATCH /api/posts/:post_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateContent(postID, commentID, viewerClaims(c), req.Content)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete soft-deletes a comment (owner, or guest password via query param)
// DELETE /api/posts/:post_id/comments/:comment_id?password=
func (h *CommentHandler) Delete(c *gin.Context) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	password := c.Query("password")

	if err := h.commentService.SoftDelete(postID, commentID, viewerClaims(c), password); err != nil {
		respondCommentError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Like records the viewer's like
// POST /api/posts/:post_id/comments/:comment_id/like
func (h *CommentHandler) Like(c *gin.Context) {
	h.setLike(c, true)
}

// Unlike removes the viewer's like
// DELETE /api/posts/:post_id/comments/:comment_id/like
func (h *CommentHandler) Unlike(c *gin.Context) {
	h.setLike(c, false)
}

func (h *CommentHandler) setLike(c *gin.Context, liked bool) {
	postID, ok := pathID(c, "post_id")
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var (
		count int
		err   error
	)
	if liked {
		count, err = h.commentService.Like(postID, commentID, viewerClaims(c))
	} else {
		count, err = h.commentService.Unlike(postID, commentID, viewerClaims(c))
	}
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"like_count": count})
}

// pathID parses a numeric path parameter, responding 400 on garbage
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// viewerClaims returns the resolved viewer, or nil for guests
func viewerClaims(c *gin.Context) *shared.AuthClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*shared.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// respondCommentError maps service errors onto HTTP statuses
func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrAnonymousDisallowed),
		errors.Is(err, service.ErrNicknameRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrReplyDepth),
		errors.Is(err, service.ErrPasswordRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
