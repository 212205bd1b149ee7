package discuss

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/NGC6543/blogicum/blog"
	"github.com/google/uuid"
)

// PostGateway resolves a post as seen by a viewer. It is implemented by
// blog.Service; a hidden post reports not found, so comment operations never
// leak the existence of content their caller cannot see.
type PostGateway interface {
	GetPost(ctx context.Context, postID string, viewer blog.Viewer) (post *blog.Post, err error)
}

type Service struct {
	commentRepo CommentRepository
	posts       PostGateway
	clock       blog.Clock
}

func NewService(commentRepo CommentRepository, posts PostGateway, clock blog.Clock) *Service {
	return &Service{
		commentRepo: commentRepo,
		posts:       posts,
		clock:       clock,
	}
}

// ListComments returns the comments on a post in chronological reading
// order: creation time ascending, id ascending on ties. Visibility is
// inherited from the parent post; a post hidden from viewer reports not
// found.
func (svc *Service) ListComments(ctx context.Context, postID string, viewer blog.Viewer) ([]*Comment, error) {
	_, err := svc.posts.GetPost(ctx, postID, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	comments, err := svc.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}

		return strings.Compare(comments[i].ID, comments[j].ID) < 0
	})

	return comments, nil
}

// AddComment attaches a comment to a post. The author must be able to see
// the post; commenting on a hidden post fails as not found.
func (svc *Service) AddComment(ctx context.Context, postID string, author blog.Viewer, body string) (*Comment, error) {
	if author.IsAnonymous() {
		return nil, &blog.ForbiddenError{Action: "comment"}
	}

	_, err := svc.posts.GetPost(ctx, postID, author)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &blog.ValidationError{Field: "body", Reason: "must not be empty"}
	}

	comment := &Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  author.UserID,
		Body:      body,
		CreatedAt: svc.clock.Now(),
	}

	err = svc.commentRepo.Insert(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	return comment, nil
}

// UpdateComment replaces a comment's body. Only the comment's author or
// staff may edit, and the creation time is left untouched.
func (svc *Service) UpdateComment(ctx context.Context, commentID string, actor blog.Viewer, newBody string) (*Comment, error) {
	comment, err := svc.commentRepo.Find(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	if !actor.IsStaff && !actor.Is(comment.AuthorID) {
		return nil, &blog.ForbiddenError{UserID: actor.UserID, Action: "edit this comment"}
	}

	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return nil, &blog.ValidationError{Field: "body", Reason: "must not be empty"}
	}

	comment.Body = newBody

	err = svc.commentRepo.Update(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

func (svc *Service) DeleteComment(ctx context.Context, commentID string, actor blog.Viewer) error {
	comment, err := svc.commentRepo.Find(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to find comment: %w", err)
	}

	if !actor.IsStaff && !actor.Is(comment.AuthorID) {
		return &blog.ForbiddenError{UserID: actor.UserID, Action: "delete this comment"}
	}

	err = svc.commentRepo.Delete(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

// CountComments reports how many comments a post has. The count is always
// computed from the comment store, never cached on the post.
func (svc *Service) CountComments(ctx context.Context, postID string) (int, error) {
	count, err := svc.commentRepo.CountByPostID(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
