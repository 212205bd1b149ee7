package blog

import (
	"context"
	"fmt"
	"time"
)

// Category groups posts under a URL-stable slug. Categories are managed by
// staff only; an unpublished category hides all of its posts from non-staff
// viewers regardless of each post's own flag.
type Category struct {
	ID          string
	Title       string
	Description string
	Slug        string
	IsPublished bool
	CreatedAt   time.Time
}

type CategoryRepository interface {
	Insert(ctx context.Context, category *Category) (err error)
	Find(ctx context.Context, categoryID string) (category *Category, err error)
	FindBySlug(ctx context.Context, slug string) (category *Category, err error)
	Update(ctx context.Context, category *Category) (err error)
	List(ctx context.Context) (categories []*Category, err error)
}

type CategoryNotFoundError struct {
	ID string
}

func (err CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category with id %q not found", err.ID)
}

type CategoryBySlugNotFoundError struct {
	Slug string
}

func (err CategoryBySlugNotFoundError) Error() string {
	return fmt.Sprintf("category with slug %q not found", err.Slug)
}

type CategoryAlreadyExistsError struct {
	Slug string
}

func (err CategoryAlreadyExistsError) Error() string {
	return fmt.Sprintf("category with slug %q already exists", err.Slug)
}
