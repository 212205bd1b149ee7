package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NGC6543/blogicum/blog"
	sq "github.com/Masterminds/squirrel"
)

const tableCategories = "categories"

type CategoryRepository struct {
	db *sql.DB
}

var _ blog.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const (
	categoryFieldID          = "id"
	categoryFieldTitle       = "title"
	categoryFieldDescription = "description"
	categoryFieldSlug        = "slug"
	categoryFieldIsPublished = "is_published"
	categoryFieldCreatedAt   = "created_at"
)

func categoryColumns() []string {
	return []string{
		categoryFieldID,
		categoryFieldTitle,
		categoryFieldDescription,
		categoryFieldSlug,
		categoryFieldIsPublished,
		categoryFieldCreatedAt,
	}
}

func scanCategory(row sq.RowScanner) (*blog.Category, error) {
	var category blog.Category

	err := row.Scan(
		&category.ID,
		&category.Title,
		&category.Description,
		&category.Slug,
		&category.IsPublished,
		&category.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &category, nil
}

func (repo *CategoryRepository) Insert(ctx context.Context, category *blog.Category) error {
	q := sq.Insert(tableCategories).
		Columns(categoryColumns()...).
		Values(
			category.ID,
			category.Title,
			category.Description,
			category.Slug,
			category.IsPublished,
			category.CreatedAt,
		)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: categories.slug") {
			return &blog.CategoryAlreadyExistsError{Slug: category.Slug}
		}

		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *CategoryRepository) Find(ctx context.Context, categoryID string) (*blog.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		Where(sq.Eq{categoryFieldID: categoryID})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &blog.CategoryNotFoundError{ID: categoryID}
		}

		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	return category, nil
}

func (repo *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*blog.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		Where(sq.Eq{categoryFieldSlug: slug})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &blog.CategoryBySlugNotFoundError{Slug: slug}
		}

		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	return category, nil
}

func (repo *CategoryRepository) Update(ctx context.Context, category *blog.Category) error {
	q := sq.Update(tableCategories).
		Set(categoryFieldTitle, category.Title).
		Set(categoryFieldDescription, category.Description).
		Set(categoryFieldSlug, category.Slug).
		Set(categoryFieldIsPublished, category.IsPublished).
		Where(sq.Eq{categoryFieldID: category.ID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: categories.slug") {
			return &blog.CategoryAlreadyExistsError{Slug: category.Slug}
		}

		return fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &blog.CategoryNotFoundError{ID: category.ID}
	}

	return nil
}

func (repo *CategoryRepository) List(ctx context.Context) ([]*blog.Category, error) {
	q := sq.Select(categoryColumns()...).
		From(tableCategories).
		OrderBy(categoryFieldTitle)

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

	categories := make([]*blog.Category, 0)

	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}

		categories = append(categories, category)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return categories, nil
}
