package engine

// BuildTree turns a flat comment collection into the two-level thread shape:
// top-level comments in input order, each carrying its replies in input
// order. O(n) time and space.
//
// Inputs that are already nested (first element has a non-nil Replies slice)
// are returned unchanged, so BuildTree(BuildTree(x)) == BuildTree(x).
//
// Two deliberate edge rules:
//   - a reply under a deleted top-level comment still attaches; deletion
//     never orphans children
//   - a reply whose parent is absent from the batch is dropped silently;
//     this is a best-effort render policy, not a validation boundary
func BuildTree(comments []*Comment) []*Comment {
	if len(comments) == 0 {
		return []*Comment{}
	}

	// Pre-nested input passes through untouched
	if comments[0].Replies != nil {
		return comments
	}

	// First pass: bucket replies by parent id, keeping input order
	children := make(map[int64][]*Comment)
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	// Second pass: top-level nodes in input order, attaching their buckets.
	// Replies pointing at a non-top-level or unknown id fall on the floor.
	tree := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			continue
		}
		replies := children[c.ID]
		if replies == nil {
			replies = []*Comment{}
		}
		for _, r := range replies {
			if r.Replies == nil {
				r.Replies = []*Comment{}
			}
		}
		c.Replies = replies
		tree = append(tree, c)
	}

	return tree
}
