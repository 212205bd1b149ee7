package discuss_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NGC6543/blogicum/blog"
	"github.com/NGC6543/blogicum/discuss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// stubPostGateway mirrors the visibility contract of the post service: a
// post hidden from the viewer reports not found, same as a missing one.
type stubPostGateway struct {
	posts  map[string]*blog.Post
	hidden map[string]bool
}

var _ discuss.PostGateway = (*stubPostGateway)(nil)

func (g *stubPostGateway) GetPost(_ context.Context, postID string, viewer blog.Viewer) (*blog.Post, error) {
	post, ok := g.posts[postID]
	if !ok {
		return nil, &blog.PostNotFoundError{ID: postID}
	}

	if g.hidden[postID] && !viewer.IsStaff && !viewer.Is(post.AuthorID) {
		return nil, &blog.PostNotFoundError{ID: postID}
	}

	return post, nil
}

type memCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*discuss.Comment
}

var _ discuss.CommentRepository = (*memCommentRepository)(nil)

func newMemCommentRepository() *memCommentRepository {
	return &memCommentRepository{comments: map[string]*discuss.Comment{}}
}

func (repo *memCommentRepository) Insert(_ context.Context, comment *discuss.Comment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	clone := *comment
	repo.comments[comment.ID] = &clone

	return nil
}

func (repo *memCommentRepository) Find(_ context.Context, commentID string) (*discuss.Comment, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	comment, ok := repo.comments[commentID]
	if !ok {
		return nil, &discuss.CommentNotFoundError{ID: commentID}
	}

	clone := *comment

	return &clone, nil
}

func (repo *memCommentRepository) Update(_ context.Context, comment *discuss.Comment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.comments[comment.ID]; !ok {
		return &discuss.CommentNotFoundError{ID: comment.ID}
	}

	clone := *comment
	repo.comments[comment.ID] = &clone

	return nil
}

func (repo *memCommentRepository) Delete(_ context.Context, commentID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.comments[commentID]; !ok {
		return &discuss.CommentNotFoundError{ID: commentID}
	}

	delete(repo.comments, commentID)

	return nil
}

func (repo *memCommentRepository) ListByPostID(_ context.Context, postID string) ([]*discuss.Comment, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	comments := make([]*discuss.Comment, 0)

	for _, comment := range repo.comments {
		if comment.PostID == postID {
			clone := *comment
			comments = append(comments, &clone)
		}
	}

	return comments, nil
}

func (repo *memCommentRepository) CountByPostID(_ context.Context, postID string) (int, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	count := 0

	for _, comment := range repo.comments {
		if comment.PostID == postID {
			count++
		}
	}

	return count, nil
}

func (repo *memCommentRepository) CountByPostIDs(ctx context.Context, postIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(postIDs))

	for _, postID := range postIDs {
		count, err := repo.CountByPostID(ctx, postID)
		if err != nil {
			return nil, err
		}

		if count > 0 {
			counts[postID] = count
		}
	}

	return counts, nil
}

type discussEnv struct {
	svc     *discuss.Service
	repo    *memCommentRepository
	gateway *stubPostGateway
	clock   *fixedClock
}

func newDiscussEnv() *discussEnv {
	env := &discussEnv{
		repo: newMemCommentRepository(),
		gateway: &stubPostGateway{
			posts:  map[string]*blog.Post{},
			hidden: map[string]bool{},
		},
		clock: &fixedClock{now: time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)},
	}

	env.svc = discuss.NewService(env.repo, env.gateway, env.clock)

	return env
}

func (env *discussEnv) addPost(postID, authorID string, hidden bool) {
	env.gateway.posts[postID] = &blog.Post{ID: postID, AuthorID: authorID}
	env.gateway.hidden[postID] = hidden
}

func seedComment(t *testing.T, env *discussEnv, id, postID, authorID string, createdAt time.Time) *discuss.Comment {
	t.Helper()

	comment := &discuss.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Body:      "comment " + id,
		CreatedAt: createdAt,
	}

	err := env.repo.Insert(context.Background(), comment)
	require.NoError(t, err)

	return comment
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	commenter := blog.Viewer{UserID: "user-1"}

	t.Run("anonymous viewers may not comment", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", false)

		_, err := env.svc.AddComment(ctx, "post-1", blog.Anonymous(), "hi")

		var forbiddenErr *blog.ForbiddenError
		require.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("commenting on a hidden post reports not found", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", true)

		_, err := env.svc.AddComment(ctx, "post-1", commenter, "hi")

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("the post author may comment on their own hidden post", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", true)

		comment, err := env.svc.AddComment(ctx, "post-1", blog.Viewer{UserID: "author-1"}, "note to self")
		require.NoError(t, err)
		assert.Equal(t, "author-1", comment.AuthorID)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", false)

		_, err := env.svc.AddComment(ctx, "post-1", commenter, "   ")

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "body", validationErr.Field)
	})

	t.Run("comment is stored with trimmed body and current time", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", false)

		comment, err := env.svc.AddComment(ctx, "post-1", commenter, "  hello  ")
		require.NoError(t, err)

		assert.Equal(t, "hello", comment.Body)
		assert.Equal(t, "post-1", comment.PostID)
		assert.Equal(t, env.clock.Now(), comment.CreatedAt)
		assert.NotEmpty(t, comment.ID)
	})
}

func TestListComments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("chronological order with id tie-break", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", false)
		now := env.clock.Now()

		seedComment(t, env, "c-late", "post-1", "user-1", now.Add(time.Minute))
		seedComment(t, env, "c-early", "post-1", "user-2", now.Add(-time.Minute))
		seedComment(t, env, "tie-b", "post-1", "user-1", now)
		seedComment(t, env, "tie-a", "post-1", "user-2", now)
		seedComment(t, env, "other", "post-2", "user-1", now)

		comments, err := env.svc.ListComments(ctx, "post-1", blog.Anonymous())
		require.NoError(t, err)

		ids := make([]string, 0, len(comments))
		for _, comment := range comments {
			ids = append(ids, comment.ID)
		}

		assert.Equal(t, []string{"c-early", "tie-a", "tie-b", "c-late"}, ids)
	})

	t.Run("hidden post reports not found", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		env.addPost("post-1", "author-1", true)
		seedComment(t, env, "c-1", "post-1", "user-1", env.clock.Now())

		_, err := env.svc.ListComments(ctx, "post-1", blog.Anonymous())

		var notFoundErr *blog.PostNotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestUpdateComment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	commenter := blog.Viewer{UserID: "user-1"}
	stranger := blog.Viewer{UserID: "user-2"}
	staff := blog.Viewer{UserID: "staff-1", IsStaff: true}

	t.Run("strangers may not edit", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		seedComment(t, env, "c-1", "post-1", commenter.UserID, env.clock.Now())

		_, err := env.svc.UpdateComment(ctx, "c-1", stranger, "edited")

		var forbiddenErr *blog.ForbiddenError
		require.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("edit keeps the creation time", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		createdAt := env.clock.Now().Add(-time.Hour)
		seedComment(t, env, "c-1", "post-1", commenter.UserID, createdAt)

		updated, err := env.svc.UpdateComment(ctx, "c-1", commenter, "  edited  ")
		require.NoError(t, err)

		assert.Equal(t, "edited", updated.Body)
		assert.Equal(t, createdAt, updated.CreatedAt)
		assert.Equal(t, commenter.UserID, updated.AuthorID)
	})

	t.Run("staff may edit any comment", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		seedComment(t, env, "c-1", "post-1", commenter.UserID, env.clock.Now())

		updated, err := env.svc.UpdateComment(ctx, "c-1", staff, "moderated")
		require.NoError(t, err)
		assert.Equal(t, "moderated", updated.Body)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		t.Parallel()

		env := newDiscussEnv()
		seedComment(t, env, "c-1", "post-1", commenter.UserID, env.clock.Now())

		_, err := env.svc.UpdateComment(ctx, "c-1", commenter, "")

		var validationErr *blog.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestDeleteComment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	commenter := blog.Viewer{UserID: "user-1"}
	stranger := blog.Viewer{UserID: "user-2"}

	env := newDiscussEnv()
	seedComment(t, env, "c-1", "post-1", commenter.UserID, env.clock.Now())

	err := env.svc.DeleteComment(ctx, "c-1", stranger)

	var forbiddenErr *blog.ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)

	err = env.svc.DeleteComment(ctx, "c-1", commenter)
	require.NoError(t, err)

	err = env.svc.DeleteComment(ctx, "c-1", commenter)

	var notFoundErr *discuss.CommentNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestCountComments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	env := newDiscussEnv()
	now := env.clock.Now()

	seedComment(t, env, "c-1", "post-1", "user-1", now)
	seedComment(t, env, "c-2", "post-1", "user-2", now)
	seedComment(t, env, "c-3", "post-2", "user-1", now)

	count, err := env.svc.CountComments(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = env.svc.CountComments(ctx, "no-such")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
