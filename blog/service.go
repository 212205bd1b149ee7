package blog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultPageSize = 10

// Config carries the service options.
//
// CategoryRequired controls whether a post must belong to a category. The
// platform historically allowed uncategorized posts; the default here is to
// require one.
type Config struct {
	PageSize         int
	CategoryRequired bool
}

// CommentCounter supplies derived comment counts for listed posts. It is
// implemented by the comment store.
type CommentCounter interface {
	CountByPostIDs(ctx context.Context, postIDs []string) (counts map[string]int, err error)
}

type Service struct {
	postRepo       PostRepository
	categoryRepo   CategoryRepository
	commentCounter CommentCounter
	clock          Clock
	cfg            Config
}

func NewService(
	postRepo PostRepository,
	categoryRepo CategoryRepository,
	commentCounter CommentCounter,
	clock Clock,
	cfg Config,
) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &Service{
		postRepo:       postRepo,
		categoryRepo:   categoryRepo,
		commentCounter: commentCounter,
		clock:          clock,
		cfg:            cfg,
	}
}

type CreatePostRequest struct {
	Title       string
	Body        string
	CategoryID  *string
	PublishedAt time.Time
	IsPublished bool
}

// CreatePost creates a post owned by author. A publication time in the
// future is valid: the post simply is not live until then.
func (svc *Service) CreatePost(ctx context.Context, author Viewer, req CreatePostRequest) (*Post, error) {
	if author.IsAnonymous() {
		return nil, &ForbiddenError{Action: "create a post"}
	}

	err := svc.validatePostInput(ctx, req.Title, req.Body, req.CategoryID)
	if err != nil {
		return nil, err
	}

	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = svc.clock.Now()
	}

	post := &Post{
		ID:          uuid.NewString(),
		AuthorID:    author.UserID,
		CategoryID:  req.CategoryID,
		Title:       strings.TrimSpace(req.Title),
		Body:        strings.TrimSpace(req.Body),
		PublishedAt: publishedAt,
		IsPublished: req.IsPublished,
		CreatedAt:   svc.clock.Now(),
	}

	err = svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

// GetPost returns the post when it is visible to viewer. A post that exists
// but is hidden from the viewer reports not found, so hidden content cannot
// be probed.
func (svc *Service) GetPost(ctx context.Context, postID string, viewer Viewer) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	category, err := svc.postCategory(ctx, post)
	if err != nil {
		return nil, err
	}

	if !PostVisible(post, category, viewer, svc.clock.Now()) {
		return nil, &PostNotFoundError{ID: postID}
	}

	return post, nil
}

type UpdatePostRequest struct {
	Title       string
	Body        string
	CategoryID  *string
	PublishedAt time.Time
	IsPublished bool
}

// UpdatePost edits a post. Only the author or staff may edit; the author and
// creation time never change. The post is resolved through the same
// visibility gate as reads, so a hidden post reports not found rather than
// forbidden and its existence cannot be probed through the edit path.
func (svc *Service) UpdatePost(ctx context.Context, postID string, actor Viewer, req UpdatePostRequest) (*Post, error) {
	post, err := svc.GetPost(ctx, postID, actor)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff && !actor.Is(post.AuthorID) {
		return nil, &ForbiddenError{UserID: actor.UserID, Action: "edit this post"}
	}

	err = svc.validatePostInput(ctx, req.Title, req.Body, req.CategoryID)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Body = strings.TrimSpace(req.Body)
	post.CategoryID = req.CategoryID
	post.IsPublished = req.IsPublished

	if !req.PublishedAt.IsZero() {
		post.PublishedAt = req.PublishedAt
	}

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

func (svc *Service) DeletePost(ctx context.Context, postID string, actor Viewer) error {
	post, err := svc.GetPost(ctx, postID, actor)
	if err != nil {
		return err
	}

	if !actor.IsStaff && !actor.Is(post.AuthorID) {
		return &ForbiddenError{UserID: actor.UserID, Action: "delete this post"}
	}

	err = svc.postRepo.Delete(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (svc *Service) validatePostInput(ctx context.Context, title, body string, categoryID *string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body", Reason: "must not be empty"}
	}

	if categoryID == nil {
		if svc.cfg.CategoryRequired {
			return &ValidationError{Field: "category", Reason: "is required"}
		}

		return nil
	}

	_, err := svc.categoryRepo.Find(ctx, *categoryID)
	if err != nil {
		var notFoundErr *CategoryNotFoundError
		if errors.As(err, &notFoundErr) {
			return &ValidationError{Field: "category", Reason: "does not exist"}
		}

		return fmt.Errorf("failed to find category: %w", err)
	}

	return nil
}

func (svc *Service) postCategory(ctx context.Context, post *Post) (*Category, error) {
	if post.CategoryID == nil {
		return nil, nil
	}

	category, err := svc.categoryRepo.Find(ctx, *post.CategoryID)
	if err != nil {
		var notFoundErr *CategoryNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CreateCategoryRequest struct {
	Title       string
	Description string
	Slug        string
	IsPublished bool
}

// CreateCategory creates a category. Category management is restricted to
// staff.
func (svc *Service) CreateCategory(ctx context.Context, actor Viewer, req CreateCategoryRequest) (*Category, error) {
	if !actor.IsStaff {
		return nil, &ForbiddenError{UserID: actor.UserID, Action: "manage categories"}
	}

	err := validateCategoryInput(req.Title, req.Slug)
	if err != nil {
		return nil, err
	}

	category := &Category{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Slug:        req.Slug,
		IsPublished: req.IsPublished,
		CreatedAt:   svc.clock.Now(),
	}

	err = svc.categoryRepo.Insert(ctx, category)
	if err != nil {
		var existsErr *CategoryAlreadyExistsError
		if errors.As(err, &existsErr) {
			return nil, existsErr
		}

		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	return category, nil
}

type UpdateCategoryRequest struct {
	Title       string
	Description string
	Slug        string
}

func (svc *Service) UpdateCategory(ctx context.Context, categoryID string, actor Viewer, req UpdateCategoryRequest) (*Category, error) {
	if !actor.IsStaff {
		return nil, &ForbiddenError{UserID: actor.UserID, Action: "manage categories"}
	}

	err := validateCategoryInput(req.Title, req.Slug)
	if err != nil {
		return nil, err
	}

	category, err := svc.categoryRepo.Find(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	category.Title = strings.TrimSpace(req.Title)
	category.Description = strings.TrimSpace(req.Description)
	category.Slug = req.Slug

	err = svc.categoryRepo.Update(ctx, category)
	if err != nil {
		var existsErr *CategoryAlreadyExistsError
		if errors.As(err, &existsErr) {
			return nil, existsErr
		}

		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// SetCategoryPublished flips a category's moderation flag. Unpublishing a
// category hides every post in it from ordinary viewers at once.
func (svc *Service) SetCategoryPublished(ctx context.Context, categoryID string, actor Viewer, published bool) (*Category, error) {
	if !actor.IsStaff {
		return nil, &ForbiddenError{UserID: actor.UserID, Action: "manage categories"}
	}

	category, err := svc.categoryRepo.Find(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	category.IsPublished = published

	err = svc.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// GetCategory returns a category by id regardless of its publication flag.
// Callers gate access themselves; the category of an already-visible post is
// shown even when unpublished to its staff or author viewer.
func (svc *Service) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	category, err := svc.categoryRepo.Find(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

// GetCategoryBySlug returns the category when viewer may see it. Unpublished
// categories are visible to staff only; the presentation layer uses this to
// decide between a 404 and an empty feed.
func (svc *Service) GetCategoryBySlug(ctx context.Context, slug string, viewer Viewer) (*Category, error) {
	category, err := svc.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	if !category.IsPublished && !viewer.IsStaff {
		return nil, &CategoryBySlugNotFoundError{Slug: slug}
	}

	return category, nil
}

// ListCategories returns the categories visible to viewer, for navigation
// and for the staff admin screens.
func (svc *Service) ListCategories(ctx context.Context, viewer Viewer) ([]*Category, error) {
	categories, err := svc.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if viewer.IsStaff {
		return categories, nil
	}

	visible := make([]*Category, 0, len(categories))

	for _, category := range categories {
		if category.IsPublished {
			visible = append(visible, category)
		}
	}

	return visible, nil
}

func validateCategoryInput(title, slug string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: "slug", Reason: "must be lowercase letters, digits and dashes"}
	}

	return nil
}
