package blog_test

import (
	"context"
	"sync"
	"time"

	"github.com/NGC6543/blogicum/blog"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type memPostRepository struct {
	mu    sync.RWMutex
	posts map[string]*blog.Post
}

var _ blog.PostRepository = (*memPostRepository)(nil)

func newMemPostRepository() *memPostRepository {
	return &memPostRepository{posts: map[string]*blog.Post{}}
}

func (repo *memPostRepository) Insert(_ context.Context, post *blog.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	clone := *post
	repo.posts[post.ID] = &clone

	return nil
}

func (repo *memPostRepository) Find(_ context.Context, postID string) (*blog.Post, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	post, ok := repo.posts[postID]
	if !ok {
		return nil, &blog.PostNotFoundError{ID: postID}
	}

	clone := *post

	return &clone, nil
}

func (repo *memPostRepository) Update(_ context.Context, post *blog.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.posts[post.ID]; !ok {
		return &blog.PostNotFoundError{ID: post.ID}
	}

	clone := *post
	repo.posts[post.ID] = &clone

	return nil
}

func (repo *memPostRepository) Delete(_ context.Context, postID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.posts[postID]; !ok {
		return &blog.PostNotFoundError{ID: postID}
	}

	delete(repo.posts, postID)

	return nil
}

func (repo *memPostRepository) List(_ context.Context, params blog.ListPostsParams) ([]*blog.Post, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	posts := make([]*blog.Post, 0, len(repo.posts))

	for _, post := range repo.posts {
		if params.CategoryID != "" && (post.CategoryID == nil || *post.CategoryID != params.CategoryID) {
			continue
		}

		if params.AuthorID != "" && post.AuthorID != params.AuthorID {
			continue
		}

		clone := *post
		posts = append(posts, &clone)
	}

	return posts, nil
}

type memCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*blog.Category
}

var _ blog.CategoryRepository = (*memCategoryRepository)(nil)

func newMemCategoryRepository() *memCategoryRepository {
	return &memCategoryRepository{categories: map[string]*blog.Category{}}
}

func (repo *memCategoryRepository) Insert(_ context.Context, category *blog.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.categories {
		if existing.Slug == category.Slug {
			return &blog.CategoryAlreadyExistsError{Slug: category.Slug}
		}
	}

	clone := *category
	repo.categories[category.ID] = &clone

	return nil
}

func (repo *memCategoryRepository) Find(_ context.Context, categoryID string) (*blog.Category, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	category, ok := repo.categories[categoryID]
	if !ok {
		return nil, &blog.CategoryNotFoundError{ID: categoryID}
	}

	clone := *category

	return &clone, nil
}

func (repo *memCategoryRepository) FindBySlug(_ context.Context, slug string) (*blog.Category, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, category := range repo.categories {
		if category.Slug == slug {
			clone := *category

			return &clone, nil
		}
	}

	return nil, &blog.CategoryBySlugNotFoundError{Slug: slug}
}

func (repo *memCategoryRepository) Update(_ context.Context, category *blog.Category) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.categories[category.ID]; !ok {
		return &blog.CategoryNotFoundError{ID: category.ID}
	}

	for _, existing := range repo.categories {
		if existing.ID != category.ID && existing.Slug == category.Slug {
			return &blog.CategoryAlreadyExistsError{Slug: category.Slug}
		}
	}

	clone := *category
	repo.categories[category.ID] = &clone

	return nil
}

func (repo *memCategoryRepository) List(_ context.Context) ([]*blog.Category, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	categories := make([]*blog.Category, 0, len(repo.categories))

	for _, category := range repo.categories {
		clone := *category
		categories = append(categories, &clone)
	}

	return categories, nil
}

type memCommentCounter struct {
	mu     sync.RWMutex
	counts map[string]int
}

var _ blog.CommentCounter = (*memCommentCounter)(nil)

func newMemCommentCounter() *memCommentCounter {
	return &memCommentCounter{counts: map[string]int{}}
}

func (counter *memCommentCounter) CountByPostIDs(_ context.Context, postIDs []string) (map[string]int, error) {
	counter.mu.RLock()
	defer counter.mu.RUnlock()

	counts := make(map[string]int, len(postIDs))

	for _, postID := range postIDs {
		if count, ok := counter.counts[postID]; ok {
			counts[postID] = count
		}
	}

	return counts, nil
}

type testEnv struct {
	svc          *blog.Service
	postRepo     *memPostRepository
	categoryRepo *memCategoryRepository
	counter      *memCommentCounter
	clock        *fixedClock
}

func newTestEnv(cfg blog.Config) *testEnv {
	env := &testEnv{
		postRepo:     newMemPostRepository(),
		categoryRepo: newMemCategoryRepository(),
		counter:      newMemCommentCounter(),
		clock:        &fixedClock{now: time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)},
	}

	env.svc = blog.NewService(env.postRepo, env.categoryRepo, env.counter, env.clock, cfg)

	return env
}
