package engine

import "context"

// Reconciler restores a consistent view after a successful mutation. The
// engine never patches the tree incrementally: every mutation is followed by
// a full refetch, a rebuild, and a re-derivation of the overlay state.
type Reconciler struct {
	client *Client
	store  *Store
}

func NewReconciler(client *Client, store *Store) *Reconciler {
	return &Reconciler{client: client, store: store}
}

// CreatedRef tells the reconciler where a create/reply landed so the new
// node can be located for scroll and highlight. Nil ParentID means a
// top-level create.
type CreatedRef struct {
	ParentID *int64
}

// InitialLoad runs the first fetch for a post. A duplicate concurrent
// initial load is refused via the store's loading guard.
func (r *Reconciler) InitialLoad(ctx context.Context, postID int64) error {
	if !r.store.TryBeginLoad() {
		return nil
	}
	defer r.store.EndLoad()
	return r.refresh(ctx, postID, nil)
}

// Reconcile refetches the authoritative comment collection, rebuilds the
// tree, re-derives the overlay, and — after a create or reply — locates the
// new node and marks it for scroll plus a timed highlight.
//
// The viewer's liked flags do not survive this: the backend contract has no
// per-viewer like state, so the overlay resets to unliked with the server's
// counts. That is a structural limitation of the contract, not a bug here.
func (r *Reconciler) Reconcile(ctx context.Context, postID int64, created *CreatedRef) error {
	return r.refresh(ctx, postID, created)
}

func (r *Reconciler) refresh(ctx context.Context, postID int64, created *CreatedRef) error {
	comments, err := r.client.ListComments(ctx, postID)
	if err != nil {
		return err
	}

	tree := BuildTree(comments)
	// ReplaceTree is a no-op after Close: a torn-down view discards the
	// response instead of applying it.
	r.store.ReplaceTree(tree)

	if created != nil {
		if id, ok := locateNewest(tree, created); ok {
			if created.ParentID != nil {
				r.store.Expand(*created.ParentID)
			}
			r.store.Highlight(id)
		}
	}
	return nil
}

// locateNewest finds the node a create/reply just inserted: the last reply
// of the target parent, or the last top-level node.
func locateNewest(tree []*Comment, created *CreatedRef) (int64, bool) {
	if created.ParentID == nil {
		if len(tree) == 0 {
			return 0, false
		}
		return tree[len(tree)-1].ID, true
	}

	for _, c := range tree {
		if c.ID == *created.ParentID && len(c.Replies) > 0 {
			return c.Replies[len(c.Replies)-1].ID, true
		}
	}
	return 0, false
}
