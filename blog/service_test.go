package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/NGC6543/blogicum/blog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	author := blog.Viewer{UserID: "author-1"}

	t.Run("anonymous viewers may not post", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: false})

		_, err := env.svc.CreatePost(ctx, blog.Anonymous(), blog.CreatePostRequest{
			Title: "Hello",
			Body:  "World",
		})

		var forbiddenErr *blog.ForbiddenError
		require.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: false})

		_, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title: "   ",
			Body:  "World",
		})

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "title", validationErr.Field)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: false})

		_, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title: "Hello",
			Body:  "",
		})

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "body", validationErr.Field)
	})

	t.Run("category is required when configured", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: true})

		_, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title: "Hello",
			Body:  "World",
		})

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "category", validationErr.Field)
	})

	t.Run("uncategorized post is allowed when configured", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: false})

		post, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title:       "Hello",
			Body:        "World",
			IsPublished: true,
		})
		require.NoError(t, err)
		assert.Nil(t, post.CategoryID)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: true})
		missing := "no-such-category"

		_, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title:      "Hello",
			Body:       "World",
			CategoryID: &missing,
		})

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "category", validationErr.Field)
	})

	t.Run("zero publication time defaults to now", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: true})
		category := seedCategory(t, env, "cat-1", "tech", true)

		post, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title:       "  Hello  ",
			Body:        "World",
			CategoryID:  &category.ID,
			IsPublished: true,
		})
		require.NoError(t, err)

		assert.Equal(t, env.clock.Now(), post.PublishedAt)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, author.UserID, post.AuthorID)
		assert.NotEmpty(t, post.ID)
	})

	t.Run("future publication time is kept", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: true})
		category := seedCategory(t, env, "cat-1", "tech", true)
		future := env.clock.Now().Add(48 * time.Hour)

		post, err := env.svc.CreatePost(ctx, author, blog.CreatePostRequest{
			Title:       "Hello",
			Body:        "World",
			CategoryID:  &category.ID,
			PublishedAt: future,
			IsPublished: true,
		})
		require.NoError(t, err)
		assert.Equal(t, future, post.PublishedAt)
	})
}

func TestGetPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	env := newTestEnv(blog.Config{CategoryRequired: true})
	now := env.clock.Now()

	category := seedCategory(t, env, "cat-1", "tech", true)

	seedPost(t, env, "live", "author-1", &category.ID, now.Add(-time.Hour), true)
	seedPost(t, env, "future", "author-1", &category.ID, now.Add(time.Hour), true)

	t.Run("live post is returned", func(t *testing.T) {
		t.Parallel()

		post, err := env.svc.GetPost(ctx, "live", blog.Anonymous())
		require.NoError(t, err)
		assert.Equal(t, "live", post.ID)
	})

	t.Run("hidden post reports not found", func(t *testing.T) {
		t.Parallel()

		_, err := env.svc.GetPost(ctx, "future", blog.Anonymous())

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "future", notFoundErr.ID)
	})

	t.Run("hidden post is returned to its author", func(t *testing.T) {
		t.Parallel()

		post, err := env.svc.GetPost(ctx, "future", blog.Viewer{UserID: "author-1"})
		require.NoError(t, err)
		assert.Equal(t, "future", post.ID)
	})

	t.Run("missing post reports not found", func(t *testing.T) {
		t.Parallel()

		_, err := env.svc.GetPost(ctx, "no-such", blog.Anonymous())

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestUpdatePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	author := blog.Viewer{UserID: "author-1"}
	stranger := blog.Viewer{UserID: "user-2"}
	staff := blog.Viewer{UserID: "staff-1", IsStaff: true}

	setup := func(t *testing.T) (*testEnv, *blog.Category, *blog.Post) {
		t.Helper()

		env := newTestEnv(blog.Config{CategoryRequired: true})
		category := seedCategory(t, env, "cat-1", "tech", true)
		post := seedPost(t, env, "post-1", author.UserID, &category.ID, env.clock.Now().Add(-time.Hour), true)

		return env, category, post
	}

	t.Run("strangers may not edit", func(t *testing.T) {
		t.Parallel()

		env, category, _ := setup(t)

		_, err := env.svc.UpdatePost(ctx, "post-1", stranger, blog.UpdatePostRequest{
			Title:      "New",
			Body:       "Body",
			CategoryID: &category.ID,
		})

		var forbiddenErr *blog.ForbiddenError
		require.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("editing a hidden post looks missing to strangers", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{CategoryRequired: true})
		category := seedCategory(t, env, "cat-1", "tech", true)
		seedPost(t, env, "draft-1", author.UserID, &category.ID, env.clock.Now().Add(-time.Hour), false)

		_, err := env.svc.UpdatePost(ctx, "draft-1", stranger, blog.UpdatePostRequest{
			Title:      "Probe",
			Body:       "Body",
			CategoryID: &category.ID,
		})

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("author and creation time never change", func(t *testing.T) {
		t.Parallel()

		env, category, original := setup(t)

		updated, err := env.svc.UpdatePost(ctx, "post-1", staff, blog.UpdatePostRequest{
			Title:       "Edited by staff",
			Body:        "New body",
			CategoryID:  &category.ID,
			IsPublished: true,
		})
		require.NoError(t, err)

		assert.Equal(t, author.UserID, updated.AuthorID)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "Edited by staff", updated.Title)
	})

	t.Run("zero publication time keeps the old one", func(t *testing.T) {
		t.Parallel()

		env, category, original := setup(t)

		updated, err := env.svc.UpdatePost(ctx, "post-1", author, blog.UpdatePostRequest{
			Title:       "Edited",
			Body:        "Body",
			CategoryID:  &category.ID,
			IsPublished: true,
		})
		require.NoError(t, err)
		assert.Equal(t, original.PublishedAt, updated.PublishedAt)
	})

	t.Run("rescheduling moves the post out of the feed", func(t *testing.T) {
		t.Parallel()

		env, category, _ := setup(t)

		_, err := env.svc.UpdatePost(ctx, "post-1", author, blog.UpdatePostRequest{
			Title:       "Edited",
			Body:        "Body",
			CategoryID:  &category.ID,
			PublishedAt: env.clock.Now().Add(time.Hour),
			IsPublished: true,
		})
		require.NoError(t, err)

		_, err = env.svc.GetPost(ctx, "post-1", blog.Anonymous())

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	author := blog.Viewer{UserID: "author-1"}
	stranger := blog.Viewer{UserID: "user-2"}

	env := newTestEnv(blog.Config{CategoryRequired: true})
	category := seedCategory(t, env, "cat-1", "tech", true)
	seedPost(t, env, "post-1", author.UserID, &category.ID, env.clock.Now().Add(-time.Hour), true)
	seedPost(t, env, "draft-1", author.UserID, &category.ID, env.clock.Now().Add(-time.Hour), false)

	err := env.svc.DeletePost(ctx, "post-1", stranger)

	var forbiddenErr *blog.ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)

	// A hidden post looks missing to strangers even on the delete path.
	err = env.svc.DeletePost(ctx, "draft-1", stranger)

	var notFoundErr *blog.PostNotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	err = env.svc.DeletePost(ctx, "post-1", author)
	require.NoError(t, err)

	err = env.svc.DeletePost(ctx, "post-1", author)
	require.ErrorAs(t, err, &notFoundErr)
}

func TestCategoryManagement(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	staff := blog.Viewer{UserID: "staff-1", IsStaff: true}
	regular := blog.Viewer{UserID: "user-1"}

	t.Run("only staff may create categories", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{})

		_, err := env.svc.CreateCategory(ctx, regular, blog.CreateCategoryRequest{
			Title: "Tech",
			Slug:  "tech",
		})

		var forbiddenErr *blog.ForbiddenError
		require.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("slug format is enforced", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{})

		for _, slug := range []string{"", "Tech", "tech news", "tech-", "-tech", "tech--news"} {
			_, err := env.svc.CreateCategory(ctx, staff, blog.CreateCategoryRequest{
				Title: "Tech",
				Slug:  slug,
			})

			var validationErr *blog.ValidationError
			require.ErrorAs(t, err, &validationErr, "slug %q", slug)
			assert.Equal(t, "slug", validationErr.Field)
		}
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{})

		_, err := env.svc.CreateCategory(ctx, staff, blog.CreateCategoryRequest{
			Title: "Tech",
			Slug:  "tech",
		})
		require.NoError(t, err)

		_, err = env.svc.CreateCategory(ctx, staff, blog.CreateCategoryRequest{
			Title: "Tech Again",
			Slug:  "tech",
		})

		var existsErr *blog.CategoryAlreadyExistsError
		require.ErrorAs(t, err, &existsErr)
		assert.Equal(t, "tech", existsErr.Slug)
	})

	t.Run("unpublished category is invisible to regular viewers by slug", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{})
		seedCategory(t, env, "cat-1", "hidden", false)

		_, err := env.svc.GetCategoryBySlug(ctx, "hidden", regular)

		var notFoundErr *blog.CategoryBySlugNotFoundError
		require.ErrorAs(t, err, &notFoundErr)

		category, err := env.svc.GetCategoryBySlug(ctx, "hidden", staff)
		require.NoError(t, err)
		assert.Equal(t, "cat-1", category.ID)
	})

	t.Run("listing hides unpublished categories from regular viewers", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(blog.Config{})
		seedCategory(t, env, "cat-1", "tech", true)
		seedCategory(t, env, "cat-2", "hidden", false)

		visible, err := env.svc.ListCategories(ctx, regular)
		require.NoError(t, err)
		assert.Len(t, visible, 1)
		assert.Equal(t, "cat-1", visible[0].ID)

		all, err := env.svc.ListCategories(ctx, staff)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
