package engine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"threadhub/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- FAKE BACKEND ---

// wireComment mirrors the API's comment JSON shape.
type wireComment struct {
	ID        int64      `json:"id"`
	PostID    int64      `json:"post_id"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	Author    wireAuthor `json:"author"`
	Content   string     `json:"content"`
	Deleted   bool       `json:"deleted"`
	LikeCount int        `json:"like_count"`
	CreatedAt time.Time  `json:"created_at"`
}

type wireAuthor struct {
	Anonymous bool   `json:"anonymous"`
	Name      string `json:"name"`
}

// fakeBackend is an in-memory comment API good enough for the engine's
// round-trips: flat list, create, reply, update, delete, like.
type fakeBackend struct {
	mu             sync.Mutex
	comments       []*wireComment
	nextID         int64
	requests       int
	allowAnonymous bool
}

func newFakeBackend(seed ...*wireComment) *fakeBackend {
	b := &fakeBackend{nextID: 100, allowAnonymous: true}
	b.comments = append(b.comments, seed...)
	for _, c := range seed {
		if c.ID >= b.nextID {
			b.nextID = c.ID + 1
		}
	}
	return b
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/boards/{category}", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		json.NewEncoder(w).Encode(map[string]any{
			"category":        r.PathValue("category"),
			"allow_anonymous": b.allowAnonymous,
		})
	})

	mux.HandleFunc("GET /api/posts/{post}/comments", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"data": b.comments, "total": len(b.comments)})
	})

	mux.HandleFunc("POST /api/posts/{post}/comments", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		b.insert(w, r, nil)
	})

	mux.HandleFunc("POST /api/posts/{post}/comments/{id}/replies", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		parentID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.insert(w, r, &parentID)
	})

	mux.HandleFunc("PATCH /api/posts/{post}/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var body struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range b.comments {
			if c.ID == id {
				c.Content = body.Content
				json.NewEncoder(w).Encode(c)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "comment not found"})
	})

	mux.HandleFunc("DELETE /api/posts/{post}/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range b.comments {
			if c.ID == id {
				if c.Author.Anonymous && r.URL.Query().Get("password") == "" {
					w.WriteHeader(http.StatusBadRequest)
					json.NewEncoder(w).Encode(map[string]string{"error": "a password is required"})
					return
				}
				c.Deleted = true
				c.Content = ""
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "comment not found"})
	})

	mux.HandleFunc("POST /api/posts/{post}/comments/{id}/like", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		b.adjustLikes(w, r, +1)
	})

	mux.HandleFunc("DELETE /api/posts/{post}/comments/{id}/like", func(w http.ResponseWriter, r *http.Request) {
		b.count()
		b.adjustLikes(w, r, -1)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (b *fakeBackend) insert(w http.ResponseWriter, r *http.Request, parentID *int64) {
	var body struct {
		Content   string `json:"content"`
		Anonymous bool   `json:"anonymous"`
		Nickname  string `json:"nickname"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	name := body.Nickname
	if !body.Anonymous {
		name = "alice"
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c := &wireComment{
		ID:        b.nextID,
		PostID:    1,
		ParentID:  parentID,
		Author:    wireAuthor{Anonymous: body.Anonymous, Name: name},
		Content:   body.Content,
		CreatedAt: time.Now().UTC(),
	}
	b.nextID++
	b.comments = append(b.comments, c)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (b *fakeBackend) adjustLikes(w http.ResponseWriter, r *http.Request, delta int) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.comments {
		if c.ID == id {
			c.LikeCount += delta
			json.NewEncoder(w).Encode(map[string]int{"like_count": c.LikeCount})
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "comment not found"})
}

func (b *fakeBackend) count() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests++
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// --- FAKE COLLABORATORS ---

type fakeAuth struct {
	viewer engine.Viewer
}

func (a fakeAuth) Viewer() engine.Viewer { return a.viewer }

type recordingSink struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (s *recordingSink) Success(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, message)
}

func (s *recordingSink) Error(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

// --- SETUP ---

type gatewayFixture struct {
	backend *fakeBackend
	store   *engine.Store
	gateway *engine.Gateway
	sink    *recordingSink
}

func setupGateway(t *testing.T, backend *fakeBackend, viewer engine.Viewer) *gatewayFixture {
	t.Helper()
	srv := backend.server(t)

	client := engine.NewClient(srv.URL)
	store := engine.NewStore()
	t.Cleanup(store.Close)
	reconciler := engine.NewReconciler(client, store)
	sink := &recordingSink{}
	gw := engine.NewGateway(client, store, reconciler, fakeAuth{viewer: viewer}, boardRuleClient{client}, sink)

	require.NoError(t, reconciler.InitialLoad(context.Background(), 1))
	return &gatewayFixture{backend: backend, store: store, gateway: gw, sink: sink}
}

// boardRuleClient resolves the anonymous-comment policy from the API, the
// way the CLI wires it.
type boardRuleClient struct {
	client *engine.Client
}

func (b boardRuleClient) AllowAnonymous(ctx context.Context, postID int64) (bool, error) {
	return b.client.BoardRule(ctx, "general")
}

func seedComments() []*wireComment {
	parentID := int64(1)
	return []*wireComment{
		{ID: 1, PostID: 1, Author: wireAuthor{Name: "alice"}, Content: "root", LikeCount: 2, CreatedAt: time.Now().UTC()},
		{ID: 2, PostID: 1, ParentID: &parentID, Author: wireAuthor{Anonymous: true, Name: "anon"}, Content: "guest reply", CreatedAt: time.Now().UTC()},
		{ID: 3, PostID: 1, Author: wireAuthor{Name: "bob"}, Content: "other root", CreatedAt: time.Now().UTC()},
	}
}

func loggedIn(name string) engine.Viewer {
	return engine.Viewer{LoggedIn: true, Nickname: name}
}

// --- TESTS ---

func TestGateway_CreateTopLevel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.CreateTopLevel(context.Background(), 1, "hello there", engine.Authenticated())
		require.NoError(t, err)

		tree := f.store.Tree()
		require.Len(t, tree, 3)
		newest := tree[2]
		assert.Equal(t, "hello there", newest.Content)
		assert.Equal(t, newest.ID, f.store.Highlighted())
		assert.Contains(t, f.sink.successes, "comment posted")
	})

	t.Run("EmptyContentRejectedLocally", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, loggedIn("alice"))
		before := backend.requestCount()

		err := f.gateway.CreateTopLevel(context.Background(), 1, "   \n\t ", engine.Authenticated())
		require.Error(t, err)
		assert.Equal(t, engine.KindValidation, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount(), "no request should reach the backend")
	})

	t.Run("LoginRequiredWithoutGuestIdentity", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, engine.Viewer{})
		before := backend.requestCount()

		err := f.gateway.CreateTopLevel(context.Background(), 1, "hi", engine.Authenticated())
		require.Error(t, err)
		assert.Equal(t, engine.KindAuthorization, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
	})

	t.Run("GuestAllowed", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), engine.Viewer{})

		err := f.gateway.CreateTopLevel(context.Background(), 1, "drive by", engine.Guest("visitor", "s3cret"))
		require.NoError(t, err)

		tree := f.store.Tree()
		newest := tree[len(tree)-1]
		assert.Equal(t, engine.AuthorAnonymous, newest.Author.Kind)
		assert.Equal(t, "visitor", newest.Author.Label)
	})

	t.Run("GuestDisallowedByBoard", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		backend.allowAnonymous = false
		f := setupGateway(t, backend, engine.Viewer{})

		err := f.gateway.CreateTopLevel(context.Background(), 1, "hi", engine.Guest("visitor", ""))
		require.Error(t, err)
		assert.Equal(t, engine.KindValidation, engine.KindOf(err))
	})

	t.Run("GuestNicknameRequired", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, engine.Viewer{})
		before := backend.requestCount()

		err := f.gateway.CreateTopLevel(context.Background(), 1, "hi", engine.Guest("  ", ""))
		require.Error(t, err)
		assert.Equal(t, engine.KindValidation, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
	})

	t.Run("GuestPasswordTooShort", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, engine.Viewer{})
		before := backend.requestCount()

		err := f.gateway.CreateTopLevel(context.Background(), 1, "hi", engine.Guest("visitor", "abc"))
		require.Error(t, err)
		assert.Equal(t, engine.KindValidation, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
	})
}

func TestGateway_CreateReply(t *testing.T) {
	t.Run("SuccessExpandsAndHighlights", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.CreateReply(context.Background(), 1, 3, "nested take", engine.Authenticated())
		require.NoError(t, err)

		parent := f.store.FindTopLevel(3)
		require.NotNil(t, parent)
		require.Len(t, parent.Replies, 1)
		assert.Equal(t, "nested take", parent.Replies[0].Content)
		assert.True(t, f.store.Expanded(3))
		assert.Equal(t, parent.Replies[0].ID, f.store.Highlighted())
	})

	t.Run("UnknownParent", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.CreateReply(context.Background(), 1, 999, "into the void", engine.Authenticated())
		require.Error(t, err)
		assert.Equal(t, engine.KindNotFound, engine.KindOf(err))
	})

	t.Run("ReplyToReplyRefused", func(t *testing.T) {
		// Comment 2 exists but is itself a reply, so it is not a valid parent
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.CreateReply(context.Background(), 1, 2, "too deep", engine.Authenticated())
		require.Error(t, err)
		assert.Equal(t, engine.KindNotFound, engine.KindOf(err))
	})
}

func TestGateway_UpdateContent(t *testing.T) {
	t.Run("OwnerCanEdit", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.UpdateContent(context.Background(), 1, 1, "edited root")
		require.NoError(t, err)

		assert.Equal(t, "edited root", f.store.Find(1).Content)
	})

	t.Run("NonOwnerRefused", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, loggedIn("mallory"))
		before := backend.requestCount()

		err := f.gateway.UpdateContent(context.Background(), 1, 1, "hijacked")
		require.Error(t, err)
		assert.Equal(t, engine.KindAuthorization, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
	})

	t.Run("GuestCommentNotEditable", func(t *testing.T) {
		// The guest password opens deletion, never editing: an anonymous
		// comment cannot be edited by anyone
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.UpdateContent(context.Background(), 1, 2, "rewritten")
		require.Error(t, err)
		assert.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})
}

func TestGateway_SoftDelete(t *testing.T) {
	t.Run("OwnerWithoutPassword", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.SoftDelete(context.Background(), 1, 1, "")
		require.NoError(t, err)

		// The node survives deletion so its reply stays attached
		deleted := f.store.FindTopLevel(1)
		require.NotNil(t, deleted)
		assert.True(t, deleted.Deleted)
		assert.Len(t, deleted.Replies, 1)
	})

	t.Run("AnonymousNeedsPassword", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, engine.Viewer{})
		before := backend.requestCount()

		err := f.gateway.SoftDelete(context.Background(), 1, 2, "")
		require.Error(t, err)
		assert.Equal(t, engine.KindValidation, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
	})

	t.Run("AnonymousWithPassword", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), engine.Viewer{})

		err := f.gateway.SoftDelete(context.Background(), 1, 2, "s3cret")
		require.NoError(t, err)
		assert.True(t, f.store.Find(2).Deleted)
	})

	t.Run("StrangerRefused", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("mallory"))

		err := f.gateway.SoftDelete(context.Background(), 1, 1, "")
		require.Error(t, err)
		assert.Equal(t, engine.KindAuthorization, engine.KindOf(err))
	})
}

func TestGateway_ToggleLike(t *testing.T) {
	t.Run("RequiresLogin", func(t *testing.T) {
		backend := newFakeBackend(seedComments()...)
		f := setupGateway(t, backend, engine.Viewer{})
		before := backend.requestCount()

		err := f.gateway.ToggleLike(context.Background(), 1, 1, false)
		require.Error(t, err)
		assert.Equal(t, engine.KindAuthorization, engine.KindOf(err))
		assert.Equal(t, before, backend.requestCount())
		assert.Contains(t, f.sink.errors, "please log in to like comments")
	})

	t.Run("OptimisticLike", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))

		err := f.gateway.ToggleLike(context.Background(), 1, 1, false)
		require.NoError(t, err)

		// No reconcile after a like: the optimistic overlay is the result
		state, ok := f.store.Like(1)
		require.True(t, ok)
		assert.True(t, state.Liked)
		assert.Equal(t, 3, state.Count)
	})

	t.Run("OptimisticUnlike", func(t *testing.T) {
		f := setupGateway(t, newFakeBackend(seedComments()...), loggedIn("alice"))
		f.store.SetLiked(1, true)

		err := f.gateway.ToggleLike(context.Background(), 1, 1, true)
		require.NoError(t, err)

		state, _ := f.store.Like(1)
		assert.False(t, state.Liked)
		assert.Equal(t, 2, state.Count)
	})
}
