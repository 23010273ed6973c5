package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps the comment REST API. Every method funnels failures into the
// normalized *Error taxonomy; callers never see a raw transport error.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	token       string
	rateLimiter *rate.Limiter
}

// request/response wire shapes

type CreateCommentRequest struct {
	Content   string `json:"content"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Password  string `json:"password,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type authorPayload struct {
	Anonymous bool   `json:"anonymous"`
	Name      string `json:"name"`
}

type commentPayload struct {
	ID        int64         `json:"id"`
	PostID    int64         `json:"post_id"`
	ParentID  *int64        `json:"parent_id,omitempty"`
	Author    authorPayload `json:"author"`
	Content   string        `json:"content"`
	Deleted   bool          `json:"deleted"`
	LikeCount int           `json:"like_count"`
	CreatedAt time.Time     `json:"created_at"`
}

type commentListPayload struct {
	Data  []commentPayload `json:"data"`
	Total int              `json:"total"`
}

type boardRulePayload struct {
	Category       string `json:"category"`
	AllowAnonymous bool   `json:"allow_anonymous"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// constructor for the API client
func NewClient(apiURL string) *Client {
	return &Client{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(10), 20), // 10 req/sec with burst of 20
	}
}

// SetToken attaches the viewer's bearer token to subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// ListComments fetches the complete comment collection of a post, flat.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]*Comment, error) {
	var result commentListPayload
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}

	comments := make([]*Comment, 0, len(result.Data))
	for i := range result.Data {
		comments = append(comments, toComment(&result.Data[i]))
	}
	return comments, nil
}

// CreateComment posts a new top-level comment.
func (c *Client) CreateComment(ctx context.Context, postID int64, req *CreateCommentRequest) (*Comment, error) {
	var result commentPayload
	path := fmt.Sprintf("/api/posts/%d/comments", postID)
	if err := c.do(ctx, http.MethodPost, path, req, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return toComment(&result), nil
}

// CreateReply posts a reply under a top-level comment.
func (c *Client) CreateReply(ctx context.Context, postID, parentID int64, req *CreateCommentRequest) (*Comment, error) {
	var result commentPayload
	path := fmt.Sprintf("/api/posts/%d/comments/%d/replies", postID, parentID)
	if err := c.do(ctx, http.MethodPost, path, req, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return toComment(&result), nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, postID, commentID int64, content string) (*Comment, error) {
	var result commentPayload
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	req := UpdateCommentRequest{Content: content}
	if err := c.do(ctx, http.MethodPatch, path, req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return toComment(&result), nil
}

// DeleteComment soft-deletes a comment; the optional guest password travels
// as a query parameter and is verified server-side only.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64, password string) error {
	path := fmt.Sprintf("/api/posts/%d/comments/%d", postID, commentID)
	if password != "" {
		path += "?password=" + url.QueryEscape(password)
	}
	return c.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil)
}

// LikeComment records the viewer's like.
func (c *Client) LikeComment(ctx context.Context, postID, commentID int64) error {
	path := fmt.Sprintf("/api/posts/%d/comments/%d/like", postID, commentID)
	return c.do(ctx, http.MethodPost, path, nil, http.StatusOK, nil)
}

// UnlikeComment removes the viewer's like.
func (c *Client) UnlikeComment(ctx context.Context, postID, commentID int64) error {
	path := fmt.Sprintf("/api/posts/%d/comments/%d/like", postID, commentID)
	return c.do(ctx, http.MethodDelete, path, nil, http.StatusOK, nil)
}

// BoardRule fetches whether the board category accepts guest comments.
func (c *Client) BoardRule(ctx context.Context, category string) (bool, error) {
	var result boardRulePayload
	if err := c.do(ctx, http.MethodGet, "/api/boards/"+url.PathEscape(category), nil, http.StatusOK, &result); err != nil {
		return false, err
	}
	return result.AllowAnonymous, nil
}

// do runs one API round-trip: rate limit, marshal, send, check status,
// decode. Non-2xx statuses map onto the error taxonomy by status class.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return wrapTransport(method+" "+path, err)
	}

	var reader *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return wrapTransport(method+" "+path, err)
		}
		reader = bytes.NewBuffer(jsonData)
	} else {
		reader = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return wrapTransport(method+" "+path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransport(method+" "+path, err)
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode != wantStatus {
		return statusError(resp.StatusCode, decodeErrorMessage(resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return wrapTransport(method+" "+path, err)
		}
	}
	return nil
}

func decodeErrorMessage(resp *http.Response) string {
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return resp.Status
}

func statusError(status int, message string) *Error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusConflict:
		return newValidationError(message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newAuthorizationError(message)
	case status == http.StatusNotFound:
		return newNotFoundError(message)
	default:
		return &Error{
			Kind:    KindTransport,
			Message: "the request could not be completed, please try again",
			Err:     fmt.Errorf("unexpected status %d: %s", status, message),
		}
	}
}

func toComment(p *commentPayload) *Comment {
	author := Author{Kind: AuthorRegistered, Nickname: p.Author.Name}
	if p.Author.Anonymous {
		author = Author{Kind: AuthorAnonymous, Label: p.Author.Name}
	}
	return &Comment{
		ID:        p.ID,
		PostID:    p.PostID,
		ParentID:  p.ParentID,
		Author:    author,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Deleted:   p.Deleted,
		LikeCount: p.LikeCount,
	}
}
