package blog

import "time"

// PostVisible decides whether viewer may see post at the given instant.
// Staff see everything; authors see their own drafts and future-dated posts.
// Everyone else sees the post only when it is published, its publication
// time has passed (the boundary is inclusive: a post published exactly at
// now is visible) and its category, if any, is published too.
//
// The category argument must be the post's category, or nil for an
// uncategorized post.
func PostVisible(post *Post, category *Category, viewer Viewer, now time.Time) bool {
	if viewer.IsStaff {
		return true
	}

	if viewer.Is(post.AuthorID) {
		return true
	}

	if !post.IsPublished {
		return false
	}

	if post.PublishedAt.After(now) {
		return false
	}

	if category != nil && !category.IsPublished {
		return false
	}

	return true
}
