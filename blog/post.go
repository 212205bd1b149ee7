package blog

import (
	"context"
	"fmt"
	"time"
)

// Post is an entry written by a user. AuthorID and CreatedAt are fixed at
// creation; a post without a category is allowed only when the service is
// configured for it.
type Post struct {
	ID          string
	AuthorID    string
	CategoryID  *string
	Title       string
	Body        string
	PublishedAt time.Time
	IsPublished bool
	CreatedAt   time.Time
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID string) (post *Post, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID string) (err error)
	List(ctx context.Context, params ListPostsParams) (posts []*Post, err error)
}

// ListPostsParams narrows the candidate set for a listing. Zero values mean
// no restriction on that dimension.
type ListPostsParams struct {
	CategoryID string
	AuthorID   string
}

type PostNotFoundError struct {
	ID string
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %q not found", err.ID)
}
