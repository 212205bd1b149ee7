package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type scopeKind int

const (
	scopeAllFeed scopeKind = iota
	scopeByCategory
	scopeByAuthor
)

// Scope selects the candidate set for a post listing: the global feed, a
// single category addressed by slug, or a single author's posts.
type Scope struct {
	kind         scopeKind
	categorySlug string
	authorID     string
}

func AllFeed() Scope {
	return Scope{kind: scopeAllFeed}
}

func ByCategory(slug string) Scope {
	return Scope{kind: scopeByCategory, categorySlug: slug}
}

func ByAuthor(userID string) Scope {
	return Scope{kind: scopeByAuthor, authorID: userID}
}

// PostItem is a listed post together with its comment count. The count is
// derived per request, never stored.
type PostItem struct {
	*Post

	CommentCount int
}

// PostPage is one page of a filtered, ordered listing. TotalCount counts all
// posts visible to the viewer in the scope, not just the returned items.
type PostPage struct {
	Items      []*PostItem
	TotalCount int
	PageNumber int
	PageSize   int
	HasNext    bool
	HasPrev    bool
}

// ListPosts returns the page-th page (1-indexed) of posts in scope that are
// visible to viewer, ordered by publication time descending with id
// descending as tie-break. The total count and the page slice are computed
// from one filtered, ordered snapshot. An out-of-range page yields an empty
// item list with the correct counters, not an error; so does an unknown or
// hidden category slug.
func (svc *Service) ListPosts(ctx context.Context, scope Scope, viewer Viewer, page int) (*PostPage, error) {
	params := ListPostsParams{}

	switch scope.kind {
	case scopeByCategory:
		category, err := svc.categoryRepo.FindBySlug(ctx, scope.categorySlug)
		if err != nil {
			var notFoundErr *CategoryBySlugNotFoundError
			if errors.As(err, &notFoundErr) {
				return emptyPage(page, svc.cfg.PageSize), nil
			}

			return nil, fmt.Errorf("failed to find category by slug: %w", err)
		}

		params.CategoryID = category.ID
	case scopeByAuthor:
		params.AuthorID = scope.authorID
	case scopeAllFeed:
	}

	candidates, err := svc.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	categories, err := svc.categoriesByID(ctx)
	if err != nil {
		return nil, err
	}

	now := svc.clock.Now()

	visible := make([]*Post, 0, len(candidates))

	for _, post := range candidates {
		if PostVisible(post, categoryOf(post, categories), viewer, now) {
			visible = append(visible, post)
		}
	}

	sortPosts(visible)

	return svc.paginate(ctx, visible, page)
}

func (svc *Service) categoriesByID(ctx context.Context) (map[string]*Category, error) {
	categories, err := svc.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	byID := make(map[string]*Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	return byID, nil
}

func categoryOf(post *Post, categories map[string]*Category) *Category {
	if post.CategoryID == nil {
		return nil
	}

	return categories[*post.CategoryID]
}

// sortPosts orders newest-first, with id descending on equal publication
// times, so repeated listings are deterministic regardless of storage order.
func sortPosts(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}

		return strings.Compare(posts[i].ID, posts[j].ID) > 0
	})
}

func (svc *Service) paginate(ctx context.Context, posts []*Post, page int) (*PostPage, error) {
	pageSize := svc.cfg.PageSize
	total := len(posts)

	// Compare against the last page instead of multiplying page by
	// pageSize, so an arbitrarily large requested page cannot overflow
	// into a negative slice offset.
	lastPage := (total + pageSize - 1) / pageSize

	if page < 1 || page > lastPage {
		result := emptyPage(page, pageSize)
		result.TotalCount = total
		result.HasPrev = page > 1 && total > 0

		return result, nil
	}

	start := (page - 1) * pageSize

	end := start + pageSize
	if end > total {
		end = total
	}

	items, err := svc.attachCommentCounts(ctx, posts[start:end])
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Items:      items,
		TotalCount: total,
		PageNumber: page,
		PageSize:   pageSize,
		HasNext:    end < total,
		HasPrev:    page > 1,
	}, nil
}

func emptyPage(page, pageSize int) *PostPage {
	return &PostPage{
		Items:      []*PostItem{},
		TotalCount: 0,
		PageNumber: page,
		PageSize:   pageSize,
		HasNext:    false,
		HasPrev:    false,
	}
}

func (svc *Service) attachCommentCounts(ctx context.Context, posts []*Post) ([]*PostItem, error) {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	counts, err := svc.commentCounter.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	items := make([]*PostItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, &PostItem{Post: post, CommentCount: counts[post.ID]})
	}

	return items, nil
}
