package engine

import (
	"context"
	"strings"
)

// MinGuestPasswordLen mirrors the backend's floor for guest passwords, so
// obviously short ones are rejected without wasting a round-trip.
const MinGuestPasswordLen = 4

// Gateway validates mutation intent locally, runs the backend call, and on
// success hands control to the Reconciler for the full refresh. The local
// checks encode the dual-identity rules: registered viewers own their
// comments by nickname, guests protect theirs with a per-comment password —
// and the password opens deletion only, never editing.
type Gateway struct {
	client     *Client
	store      *Store
	reconciler *Reconciler
	auth       AuthContext
	rules      BoardRuleProvider
	notify     NotificationSink
}

func NewGateway(client *Client, store *Store, reconciler *Reconciler, auth AuthContext, rules BoardRuleProvider, notify NotificationSink) *Gateway {
	if notify == nil {
		notify = NopSink{}
	}
	return &Gateway{
		client:     client,
		store:      store,
		reconciler: reconciler,
		auth:       auth,
		rules:      rules,
		notify:     notify,
	}
}

// CreateTopLevel posts a new top-level comment under the given identity.
func (g *Gateway) CreateTopLevel(ctx context.Context, postID int64, content string, identity Identity) error {
	req, err := g.validateCreate(ctx, postID, content, identity)
	if err != nil {
		return err
	}

	if _, err := g.client.CreateComment(ctx, postID, req); err != nil {
		g.notify.Error(err.Error())
		return err
	}

	g.notify.Success("comment posted")
	return g.reconciler.Reconcile(ctx, postID, &CreatedRef{})
}

// CreateReply posts a reply under an existing top-level comment. The parent
// must be present as a top-level node in the currently loaded tree.
func (g *Gateway) CreateReply(ctx context.Context, postID, parentID int64, content string, identity Identity) error {
	req, err := g.validateCreate(ctx, postID, content, identity)
	if err != nil {
		return err
	}

	parent := g.store.FindTopLevel(parentID)
	if parent == nil {
		return newNotFoundError("the comment you are replying to no longer exists")
	}

	if _, err := g.client.CreateReply(ctx, postID, parentID, req); err != nil {
		g.notify.Error(err.Error())
		return err
	}

	g.notify.Success("reply posted")
	return g.reconciler.Reconcile(ctx, postID, &CreatedRef{ParentID: &parentID})
}

// UpdateContent replaces a comment's body. Ownership only: the viewer's
// registered nickname must match the comment's registered author. A guest
// password never unlocks editing, even though the same password would be
// accepted for deletion.
func (g *Gateway) UpdateContent(ctx context.Context, postID, commentID int64, newContent string) error {
	if strings.TrimSpace(newContent) == "" {
		return newValidationError("comment content is required")
	}

	comment := g.store.Find(commentID)
	if comment == nil {
		return newNotFoundError("the comment no longer exists")
	}

	viewer := g.auth.Viewer()
	if !viewer.LoggedIn || comment.Author.Kind != AuthorRegistered || comment.Author.Nickname != viewer.Nickname {
		return newAuthorizationError("only the author can edit this comment")
	}

	if _, err := g.client.UpdateComment(ctx, postID, commentID, newContent); err != nil {
		g.notify.Error(err.Error())
		return err
	}

	g.notify.Success("comment updated")
	return g.reconciler.Reconcile(ctx, postID, nil)
}

// SoftDelete removes a comment's content while keeping its node. Permitted
// for the registered owner, or with a password on an anonymous comment; the
// password itself is verified server-side only, presence is all that is
// checked here.
func (g *Gateway) SoftDelete(ctx context.Context, postID, commentID int64, password string) error {
	comment := g.store.Find(commentID)
	if comment == nil {
		return newNotFoundError("the comment no longer exists")
	}

	viewer := g.auth.Viewer()
	owns := viewer.LoggedIn && comment.Author.Kind == AuthorRegistered && comment.Author.Nickname == viewer.Nickname

	forwarded := ""
	switch {
	case owns:
		// Owner deletes without a password
	case comment.Author.Kind == AuthorAnonymous:
		if password == "" {
			return newValidationError("a password is required to delete an anonymous comment")
		}
		forwarded = password
	default:
		return newAuthorizationError("only the author can delete this comment")
	}

	if err := g.client.DeleteComment(ctx, postID, commentID, forwarded); err != nil {
		g.notify.Error(err.Error())
		return err
	}

	g.notify.Success("comment deleted")
	return g.reconciler.Reconcile(ctx, postID, nil)
}

// ToggleLike flips the viewer's like on a comment. The overlay updates
// optimistically before the call resolves, and no reconciliation follows: a
// failed call leaves the flag visibly out of step with the server until the
// next refresh resets it. There is deliberately no rollback here.
func (g *Gateway) ToggleLike(ctx context.Context, postID, commentID int64, currentlyLiked bool) error {
	if !g.auth.Viewer().LoggedIn {
		g.notify.Error("please log in to like comments")
		return newAuthorizationError("login is required to like comments")
	}

	if g.store.Find(commentID) == nil {
		return newNotFoundError("the comment no longer exists")
	}

	// Optimistic flip, before the network call
	g.store.SetLiked(commentID, !currentlyLiked)

	var err error
	if currentlyLiked {
		err = g.client.UnlikeComment(ctx, postID, commentID)
	} else {
		err = g.client.LikeComment(ctx, postID, commentID)
	}
	if err != nil {
		g.notify.Error(err.Error())
		return err
	}
	return nil
}

// validateCreate runs the shared local checks for create and reply. On
// rejection no network call is made.
func (g *Gateway) validateCreate(ctx context.Context, postID int64, content string, identity Identity) (*CreateCommentRequest, error) {
	if strings.TrimSpace(content) == "" {
		return nil, newValidationError("comment content is required")
	}

	req := &CreateCommentRequest{Content: content}

	if identity.Guest {
		// Identity checks come first so a malformed guest identity is
		// rejected without the board rule lookup.
		if strings.TrimSpace(identity.Nickname) == "" {
			return nil, newValidationError("a nickname is required for anonymous comments")
		}
		if identity.Password != "" && len(identity.Password) < MinGuestPasswordLen {
			return nil, newValidationError("guest password must be at least 4 characters")
		}
		allowed, err := g.rules.AllowAnonymous(ctx, postID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, newValidationError("anonymous comments are not allowed on this board")
		}
		req.Anonymous = true
		req.Nickname = identity.Nickname
		req.Password = identity.Password
	} else if !g.auth.Viewer().LoggedIn {
		return nil, newAuthorizationError("login is required to comment")
	}

	return req, nil
}
