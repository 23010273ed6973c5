// Package engine is the client-side threaded discussion core: it rebuilds
// comment trees from the API's flat lists, holds the per-view overlay state
// (likes, expanded threads, highlight), validates mutations locally before
// they reach the network, and reconciles the view after every mutation by
// refetching the authoritative state.
package engine

import (
	"context"
	"time"
)

// AuthorKind discriminates the two authorship models. Branch on the tag,
// never on the display string.
type AuthorKind int

const (
	AuthorRegistered AuthorKind = iota
	AuthorAnonymous
)

// Author identifies who wrote a comment: a registered nickname or a guest
// display label. The field for the other kind is always empty.
type Author struct {
	Kind     AuthorKind
	Nickname string // registered author
	Label    string // anonymous author
}

// Comment is one node of a post's discussion as the client sees it.
// ParentID nil marks a top-level comment. Replies is nil on flat records
// straight from the API and non-nil once BuildTree has run; replies never
// have replies of their own.
type Comment struct {
	ID        int64
	PostID    int64
	ParentID  *int64
	Author    Author
	Content   string
	CreatedAt time.Time
	Deleted   bool
	LikeCount int
	Replies   []*Comment
}

// IsTopLevel reports whether the comment sits directly under the post.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// Identity is the authorship a mutation is attempted under.
type Identity struct {
	Guest    bool
	Nickname string // guest display label
	Password string // optional guest password, guards later deletion
}

// Authenticated is the identity of a logged-in viewer.
func Authenticated() Identity {
	return Identity{}
}

// Guest builds an anonymous identity with an optional password.
func Guest(nickname, password string) Identity {
	return Identity{Guest: true, Nickname: nickname, Password: password}
}

// Viewer is the current user as reported by the auth context.
type Viewer struct {
	LoggedIn bool
	Nickname string
}

// LikeState is the overlay the view layers over a comment: the viewer's own
// liked flag (client-only, reset on every reconcile) and the counter.
type LikeState struct {
	Liked bool
	Count int
}

// AuthContext supplies the current viewer. The engine never manages
// sessions itself.
type AuthContext interface {
	Viewer() Viewer
}

// BoardRuleProvider reports whether the post's board accepts guest
// authorship. Read-only input to mutation validation.
type BoardRuleProvider interface {
	AllowAnonymous(ctx context.Context, postID int64) (bool, error)
}

// NotificationSink receives human-readable messages. The engine only
// produces the strings; rendering is someone else's job.
type NotificationSink interface {
	Success(message string)
	Error(message string)
}

// NopSink discards all messages.
type NopSink struct{}

func (NopSink) Success(string) {}
func (NopSink) Error(string)   {}
