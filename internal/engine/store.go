package engine

import (
	"sync"
	"time"
)

// HighlightDuration is how long a freshly created comment stays highlighted.
const HighlightDuration = 2 * time.Second

// Store holds the current comment tree plus the client-only overlay state:
// per-comment like state, the expanded-thread set, and the highlight target.
// One store belongs to exactly one view; there is no cross-view sharing.
// The mutex exists because highlight timers fire on their own goroutine.
type Store struct {
	mu          sync.Mutex
	tree        []*Comment
	likes       map[int64]LikeState
	expanded    map[int64]struct{}
	highlightID int64
	timers      map[int64]*time.Timer
	loading     bool
	closed      bool
}

func NewStore() *Store {
	return &Store{
		tree:     []*Comment{},
		likes:    make(map[int64]LikeState),
		expanded: make(map[int64]struct{}),
		timers:   make(map[int64]*time.Timer),
	}
}

// Tree returns the current tree. Callers must treat it as read-only.
func (s *Store) Tree() []*Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Find locates a comment anywhere in the two-level tree.
func (s *Store) Find(id int64) *Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findInTree(s.tree, id)
}

// FindTopLevel locates a top-level comment by id.
func (s *Store) FindTopLevel(id int64) *Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.tree {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ReplaceTree installs a freshly rebuilt tree and re-derives the overlay:
//   - the like overlay resets to {liked:false, count:server count} for every
//     node; the viewer's own liked flag is not persisted by the backend, so
//     it cannot survive a refresh
//   - the expanded set becomes the union of the previous set and every id
//     that currently owns at least one reply; the recomputation only adds
//     ids, so an explicit collapse may be undone by an unrelated refresh
func (s *Store) ReplaceTree(tree []*Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.tree = tree
	s.likes = make(map[int64]LikeState, len(tree))
	for _, c := range tree {
		s.likes[c.ID] = LikeState{Liked: false, Count: c.LikeCount}
		for _, r := range c.Replies {
			s.likes[r.ID] = LikeState{Liked: false, Count: r.LikeCount}
		}
		if len(c.Replies) > 0 {
			s.expanded[c.ID] = struct{}{}
		}
	}
}

// Like returns the overlay state of a comment.
func (s *Store) Like(id int64) (LikeState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.likes[id]
	return state, ok
}

// SetLiked flips the viewer's liked flag and adjusts the counter with it.
// This is the optimistic update: it runs before the network call resolves
// and has no rollback path if that call later fails.
func (s *Store) SetLiked(id int64, liked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.likes[id]
	if state.Liked == liked {
		return
	}
	state.Liked = liked
	if liked {
		state.Count++
	} else if state.Count > 0 {
		state.Count--
	}
	s.likes[id] = state
}

// Expanded reports whether a thread is open.
func (s *Store) Expanded(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expanded[id]
	return ok
}

// Expand opens a thread.
func (s *Store) Expand(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[id] = struct{}{}
}

// Collapse closes a thread. Not guaranteed to survive the next refresh.
func (s *Store) Collapse(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expanded, id)
}

// Highlight marks a node for scroll-into-view and starts the auto-clear
// timer. Re-highlighting the same node restarts its timer.
func (s *Store) Highlight(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}
	s.highlightID = id
	s.timers[id] = time.AfterFunc(HighlightDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.timers, id)
		// Another node may have been highlighted meanwhile
		if s.highlightID == id {
			s.highlightID = 0
		}
	})
}

// Highlighted returns the current highlight target, 0 when none.
func (s *Store) Highlighted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightID
}

// TryBeginLoad claims the loading flag; a second concurrent initial load is
// refused. EndLoad releases it.
func (s *Store) TryBeginLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading || s.closed {
		return false
	}
	s.loading = true
	return true
}

func (s *Store) EndLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// Close tears the store down: pending highlight timers stop and any
// response still in flight is discarded on arrival rather than applied.
// The requests themselves are not aborted.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.highlightID = 0
}

func findInTree(tree []*Comment, id int64) *Comment {
	for _, c := range tree {
		if c.ID == id {
			return c
		}
		for _, r := range c.Replies {
			if r.ID == id {
				return r
			}
		}
	}
	return nil
}
