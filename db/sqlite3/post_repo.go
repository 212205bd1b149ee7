package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NGC6543/blogicum/blog"
	sq "github.com/Masterminds/squirrel"
)

const tablePosts = "posts"

type PostRepository struct {
	db *sql.DB
}

var _ blog.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID          = "id"
	postFieldAuthorID    = "author_id"
	postFieldCategoryID  = "category_id"
	postFieldTitle       = "title"
	postFieldBody        = "body"
	postFieldPublishedAt = "published_at"
	postFieldIsPublished = "is_published"
	postFieldCreatedAt   = "created_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldAuthorID,
		postFieldCategoryID,
		postFieldTitle,
		postFieldBody,
		postFieldPublishedAt,
		postFieldIsPublished,
		postFieldCreatedAt,
	}
}

func scanPost(row sq.RowScanner) (*blog.Post, error) {
	var post blog.Post

	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.CategoryID,
		&post.Title,
		&post.Body,
		&post.PublishedAt,
		&post.IsPublished,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *blog.Post) error {
	q := sq.Insert(tablePosts).
		Columns(postColumns()...).
		Values(
			post.ID,
			post.AuthorID,
			post.CategoryID,
			post.Title,
			post.Body,
			post.PublishedAt,
			post.IsPublished,
			post.CreatedAt,
		)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID string) (*blog.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &blog.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

// Update rewrites the mutable post fields. The author and the creation time
// are deliberately not part of the statement.
func (repo *PostRepository) Update(ctx context.Context, post *blog.Post) error {
	q := sq.Update(tablePosts).
		Set(postFieldCategoryID, post.CategoryID).
		Set(postFieldTitle, post.Title).
		Set(postFieldBody, post.Body).
		Set(postFieldPublishedAt, post.PublishedAt).
		Set(postFieldIsPublished, post.IsPublished).
		Where(sq.Eq{postFieldID: post.ID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &blog.PostNotFoundError{ID: post.ID}
	}

	return nil
}

func (repo *PostRepository) Delete(ctx context.Context, postID string) error {
	q := sq.Delete(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &blog.PostNotFoundError{ID: postID}
	}

	return nil
}

func (repo *PostRepository) List(ctx context.Context, params blog.ListPostsParams) ([]*blog.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts)

	if params.CategoryID != "" {
		q = q.Where(sq.Eq{postFieldCategoryID: params.CategoryID})
	}

	if params.AuthorID != "" {
		q = q.Where(sq.Eq{postFieldAuthorID: params.AuthorID})
	}

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	posts := make([]*blog.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}
