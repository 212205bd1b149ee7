package discuss

import (
	"context"
	"fmt"
	"time"
)

// Comment is attached flat to a single post. PostID and AuthorID are fixed
// at creation, and CreatedAt never changes under edits so the reading order
// stays stable.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

type CommentRepository interface {
	Insert(ctx context.Context, comment *Comment) (err error)
	Find(ctx context.Context, commentID string) (comment *Comment, err error)
	Update(ctx context.Context, comment *Comment) (err error)
	Delete(ctx context.Context, commentID string) (err error)
	ListByPostID(ctx context.Context, postID string) (comments []*Comment, err error)
	CountByPostID(ctx context.Context, postID string) (count int, err error)
	CountByPostIDs(ctx context.Context, postIDs []string) (counts map[string]int, err error)
}

type CommentNotFoundError struct {
	ID string
}

func (err CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment with id %q not found", err.ID)
}
