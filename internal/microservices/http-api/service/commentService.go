package service

import (
	"context"
	"errors"
	"strings"

	"threadhub/internal/microservices/http-api/dto"
	"threadhub/internal/microservices/http-api/middleware/auth"
	"threadhub/internal/microservices/http-api/models"
	"threadhub/internal/microservices/http-api/repository"
	"threadhub/internal/shared"

	"gorm.io/gorm"
)

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrParentNotFound      = errors.New("parent comment not found")
	ErrEmptyContent        = errors.New("comment content is required")
	ErrAnonymousDisallowed = errors.New("anonymous comments are not allowed on this board")
	ErrNicknameRequired    = errors.New("a nickname is required for anonymous comments")
	ErrPasswordTooShort    = errors.New("guest password must be at least 4 characters")
	ErrReplyDepth          = errors.New("replies cannot be nested further")
	ErrNotOwner            = errors.New("you don't have permission to modify this comment")
	ErrWrongPassword       = errors.New("password does not match")
	ErrPasswordRequired    = errors.New("a password is required to delete an anonymous comment")
	ErrLoginRequired       = errors.New("login is required for this action")
)

// MinGuestPasswordLen is the floor for per-comment guest passwords.
const MinGuestPasswordLen = 4

type CommentService interface {
	ListByPost(postID int64) (*dto.CommentListResponse, error)
	Create(postID int64, req *dto.CreateCommentDTO, viewer *shared.AuthClaims) (*dto.CommentResponse, error)
	CreateReply(postID, parentID int64, req *dto.CreateCommentDTO, viewer *shared.AuthClaims) (*dto.CommentResponse, error)
	UpdateContent(postID, commentID int64, viewer *shared.AuthClaims, content string) (*dto.CommentResponse, error)
	SoftDelete(postID, commentID int64, viewer *shared.AuthClaims, password string) error
	Like(postID, commentID int64, viewer *shared.AuthClaims) (int, error)
	Unlike(postID, commentID int64, viewer *shared.AuthClaims) (int, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	postRepo    repository.PostRepository
	likeCache   *repository.LikeCountCache
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	likeCache *repository.LikeCountCache,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		likeCache:   likeCache,
	}
}

// ListByPost returns the full flat comment list of a post in creation order.
// Deleted comments stay in the list as placeholders so their replies remain
// attached; the DTO layer blanks their content.
func (s *commentService) ListByPost(postID int64) (*dto.CommentListResponse, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := s.commentRepo.GetByPost(postID)
	if err != nil {
		return nil, err
	}

	// Overlay cached like counters where present; the DB value is the
	// fallback and the source of truth.
	ctx := context.Background()
	for i := range comments {
		if count, hit, err := s.likeCache.Get(ctx, comments[i].ID); err == nil && hit {
			comments[i].LikeCount = count
		}
	}

	return dto.NewCommentListResponse(comments), nil
}

// Create adds a top-level comment to a post.
func (s *commentService) Create(postID int64, req *dto.CreateCommentDTO, viewer *shared.AuthClaims) (*dto.CommentResponse, error) {
	return s.create(postID, nil, req, viewer)
}

// CreateReply adds a reply under an existing top-level comment. Depth is
// capped at one level: replying to a reply is rejected outright.
func (s *commentService) CreateReply(postID, parentID int64, req *dto.CreateCommentDTO, viewer *shared.AuthClaims) (*dto.CommentResponse, error) {
	parent, err := s.commentRepo.GetByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	if parent.PostID != postID {
		return nil, ErrParentNotFound
	}
	if !parent.IsTopLevel() {
		return nil, ErrReplyDepth
	}
	// Replying to a deleted comment is fine; the placeholder keeps the thread.
	return s.create(postID, &parentID, req, viewer)
}

func (s *commentService) create(postID int64, parentID *int64, req *dto.CreateCommentDTO, viewer *shared.AuthClaims) (*dto.CommentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		ParentID: parentID,
		Content:  req.Content,
	}

	anonymous := req.Anonymous || viewer == nil
	if anonymous {
		if !post.Board.AllowAnonymous {
			return nil, ErrAnonymousDisallowed
		}
		if strings.TrimSpace(req.Nickname) == "" {
			return nil, ErrNicknameRequired
		}
		comment.IsGuest = true
		comment.GuestNickname = strings.TrimSpace(req.Nickname)
		if req.Password != "" {
			if len(req.Password) < MinGuestPasswordLen {
				return nil, ErrPasswordTooShort
			}
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				return nil, err
			}
			comment.GuestPasswordHash = hash
		}
	} else {
		userID := viewer.UserID
		comment.UserID = &userID
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with user data
	created, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(created), nil
}

// UpdateContent replaces a comment's body. Ownership only: the viewer's
// registered identity must match the author. Guest comments cannot be edited
// at all, password or not — deletion is the only password-gated operation.
func (s *commentService) UpdateContent(postID, commentID int64, viewer *shared.AuthClaims, content string) (*dto.CommentResponse, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	comment, err := s.getPostComment(postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.IsDeleted {
		return nil, ErrCommentNotFound
	}
	if comment.IsGuest || comment.UserID == nil || *comment.UserID != viewer.UserID {
		return nil, ErrNotOwner
	}

	if err := s.commentRepo.UpdateContent(commentID, content); err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(updated), nil
}

// SoftDelete hides a comment's content while keeping its node, so replies
// survive. Permitted for the registered owner, or for anyone presenting the
// matching guest password on an anonymous comment.
func (s *commentService) SoftDelete(postID, commentID int64, viewer *shared.AuthClaims, password string) error {
	comment, err := s.getPostComment(postID, commentID)
	if err != nil {
		return err
	}
	if comment.IsDeleted {
		// Already a placeholder; deleting again changes nothing.
		return nil
	}

	switch {
	case !comment.IsGuest:
		if viewer == nil || comment.UserID == nil || *comment.UserID != viewer.UserID {
			return ErrNotOwner
		}
	case password == "":
		return ErrPasswordRequired
	case comment.GuestPasswordHash == "":
		return ErrNotOwner
	default:
		if err := auth.VerifyPassword(comment.GuestPasswordHash, password); err != nil {
			return ErrWrongPassword
		}
	}

	return s.commentRepo.SoftDelete(commentID)
}

// Like records a like by the viewer and returns the new count.
func (s *commentService) Like(postID, commentID int64, viewer *shared.AuthClaims) (int, error) {
	return s.setLike(postID, commentID, viewer, true)
}

// Unlike removes the viewer's like and returns the new count.
func (s *commentService) Unlike(postID, commentID int64, viewer *shared.AuthClaims) (int, error) {
	return s.setLike(postID, commentID, viewer, false)
}

func (s *commentService) setLike(postID, commentID int64, viewer *shared.AuthClaims, liked bool) (int, error) {
	if viewer == nil {
		return 0, ErrLoginRequired
	}
	if _, err := s.getPostComment(postID, commentID); err != nil {
		return 0, err
	}

	var (
		count int
		err   error
	)
	if liked {
		count, err = s.likeRepo.Like(commentID, viewer.UserID)
	} else {
		count, err = s.likeRepo.Unlike(commentID, viewer.UserID)
	}
	if errors.Is(err, repository.ErrAlreadyLiked) || errors.Is(err, repository.ErrNotLiked) {
		// Duplicate press from an optimistic client; report the current
		// count instead of failing.
		count, err = s.likeRepo.Count(commentID)
	}
	if err != nil {
		return 0, err
	}

	// Refresh the cached counter; a cache error must not fail the mutation
	_ = s.likeCache.Set(context.Background(), commentID, count)
	return count, nil
}

func (s *commentService) getPostComment(postID, commentID int64) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.PostID != postID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
