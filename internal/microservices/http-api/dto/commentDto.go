package dto

import (
	"time"

	"threadhub/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a top-level comment or a reply.
// Anonymous requests guest authorship; Nickname and Password only apply then.
type CreateCommentDTO struct {
	Content   string `json:"content" binding:"required,min=1,max=5000"`
	Anonymous bool   `json:"anonymous"`
	Nickname  string `json:"nickname,omitempty" binding:"omitempty,max=30"`
	Password  string `json:"password,omitempty" binding:"omitempty,max=72"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// AuthorResponse is the discriminated author of a comment: either a
// registered nickname or a guest display label, never both.
type AuthorResponse struct {
	Anonymous bool   `json:"anonymous"`
	Name      string `json:"name"`
}

// CommentResponse mirrors one comment node. The list endpoint returns these
// flat (ParentID tells reply from top-level); clients rebuild the tree.
type CommentResponse struct {
	ID        int64          `json:"id"`
	PostID    int64          `json:"post_id"`
	ParentID  *int64         `json:"parent_id,omitempty"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	Deleted   bool           `json:"deleted"`
	LikeCount int            `json:"like_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO.
// Deleted comments keep their place in the thread but never leak content.
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:       comment.ID,
		PostID:   comment.PostID,
		ParentID: comment.ParentID,
		Author: AuthorResponse{
			Anonymous: comment.IsGuest,
			Name:      comment.AuthorName(),
		},
		Deleted:   comment.IsDeleted,
		LikeCount: comment.LikeCount,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if !comment.IsDeleted {
		resp.Content = comment.Content
	}
	return resp
}

// CommentListResponse for returning all comments of a post
type CommentListResponse struct {
	Data  []CommentResponse `json:"data"`
	Total int               `json:"total"`
}

// NewCommentListResponse builds the flat list response in input order
func NewCommentListResponse(comments []models.Comment) *CommentListResponse {
	data := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		data = append(data, *FromModelToCommentResponse(&comments[i]))
	}
	return &CommentListResponse{Data: data, Total: len(data)}
}
