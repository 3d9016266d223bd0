package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type blogFixture struct {
	db    *gorm.DB
	blogs BlogRepository
	users UserRepository
}

func newBlogFixture(t *testing.T) *blogFixture {
	t.Helper()
	db := newTestDB(t)
	return &blogFixture{
		db:    db,
		blogs: NewBlogRepository(db),
		users: NewUserRepository(db),
	}
}

func (f *blogFixture) createBlog(t *testing.T, blog *models.Blog) *models.Blog {
	t.Helper()
	if blog.Body == "" {
		blog.Body = "text"
	}
	if blog.State == "" {
		blog.State = models.BlogStatePublished
	}
	if blog.Timestamp.IsZero() {
		blog.Timestamp = time.Now()
	}
	require.NoError(t, f.blogs.Create(context.Background(), blog))
	return blog
}

func TestBlogRepository_CRUD(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()
	author := createUser(t, f.users, "Jane", "Doe", "jane@example.com")

	blog := f.createBlog(t, &models.Blog{
		Title:    "First",
		AuthorID: author.ID,
		Tags:     []string{"go", "web"},
	})

	t.Run("GetByID preloads the author", func(t *testing.T) {
		got, err := f.blogs.GetByID(ctx, blog.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "First", got.Title)
		assert.Equal(t, []string{"go", "web"}, got.Tags)
		require.NotNil(t, got.AuthorInfo)
		assert.Equal(t, "Jane", got.AuthorInfo.FirstName)
		assert.Equal(t, author.ID, got.AuthorInfo.ID)
	})

	t.Run("GetByID missing returns nil without error", func(t *testing.T) {
		got, err := f.blogs.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetByTitle", func(t *testing.T) {
		got, err := f.blogs.GetByTitle(ctx, "First")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, blog.ID, got.ID)

		got, err = f.blogs.GetByTitle(ctx, "No such title")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate title is rejected", func(t *testing.T) {
		err := f.blogs.Create(ctx, &models.Blog{
			Title:    "First",
			Body:     "other text",
			AuthorID: author.ID,
			State:    models.BlogStateDraft,
		})
		assert.Error(t, err)
	})

	t.Run("Update persists changed fields", func(t *testing.T) {
		blog.Description = "updated description"
		blog.Tags = []string{"go"}
		require.NoError(t, f.blogs.Update(ctx, blog))

		got, err := f.blogs.GetByID(ctx, blog.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated description", got.Description)
		assert.Equal(t, []string{"go"}, got.Tags)
	})

	t.Run("Delete removes the row", func(t *testing.T) {
		doomed := f.createBlog(t, &models.Blog{Title: "Doomed", AuthorID: author.ID})
		require.NoError(t, f.blogs.Delete(ctx, doomed.ID))

		got, err := f.blogs.GetByID(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBlogRepository_IncrementReadCount(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()
	author := createUser(t, f.users, "Jane", "Doe", "jane@example.com")
	blog := f.createBlog(t, &models.Blog{Title: "Counted", AuthorID: author.ID})

	found, err := f.blogs.IncrementReadCount(ctx, blog.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = f.blogs.IncrementReadCount(ctx, blog.ID)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := f.blogs.GetByID(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ReadCount)

	t.Run("missing blog reports not found", func(t *testing.T) {
		found, err := f.blogs.IncrementReadCount(ctx, 999)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestBlogRepository_ListFilters(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()
	jane := createUser(t, f.users, "Jane", "Doe", "jane@example.com")
	sam := createUser(t, f.users, "Sam", "Reed", "sam@example.com")

	f.createBlog(t, &models.Blog{
		Title: "Go concurrency patterns", AuthorID: jane.ID,
		Tags: []string{"go", "concurrency"},
	})
	f.createBlog(t, &models.Blog{
		Title: "Postgres indexing deep dive", AuthorID: jane.ID,
		Tags: []string{"databases"},
	})
	f.createBlog(t, &models.Blog{
		Title: "A tour of HTTP caching", AuthorID: sam.ID,
		Tags: []string{"web", "go"}, State: models.BlogStateDraft,
	})

	list := func(t *testing.T, filter ListFilter) ([]*models.Blog, int64) {
		t.Helper()
		blogs, total, err := f.blogs.List(ctx, ListOptions{Filter: filter, Limit: 50})
		require.NoError(t, err)
		return blogs, total
	}

	t.Run("no filter returns everything", func(t *testing.T) {
		blogs, total := list(t, ListFilter{})
		assert.Equal(t, int64(3), total)
		assert.Len(t, blogs, 3)
	})

	t.Run("state filter", func(t *testing.T) {
		draft := models.BlogStateDraft
		blogs, total := list(t, ListFilter{State: &draft})
		assert.Equal(t, int64(1), total)
		require.Len(t, blogs, 1)
		assert.Equal(t, "A tour of HTTP caching", blogs[0].Title)
	})

	t.Run("author filter", func(t *testing.T) {
		_, total := list(t, ListFilter{AuthorID: &jane.ID})
		assert.Equal(t, int64(2), total)
	})

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		blogs, total := list(t, ListFilter{Title: "POSTGRES"})
		assert.Equal(t, int64(1), total)
		require.Len(t, blogs, 1)
		assert.Equal(t, "Postgres indexing deep dive", blogs[0].Title)
	})

	t.Run("tag filter matches exact elements only", func(t *testing.T) {
		_, total := list(t, ListFilter{Tags: []string{"go"}})
		assert.Equal(t, int64(2), total)

		// substring of a stored tag must not match
		_, total = list(t, ListFilter{Tags: []string{"data"}})
		assert.Equal(t, int64(0), total)
	})

	t.Run("multiple tags OR together", func(t *testing.T) {
		_, total := list(t, ListFilter{Tags: []string{"databases", "web"}})
		assert.Equal(t, int64(2), total)
	})

	t.Run("search matches title and tags", func(t *testing.T) {
		_, total := list(t, ListFilter{Search: "caching"})
		assert.Equal(t, int64(1), total)

		_, total = list(t, ListFilter{Search: "concurrency"})
		assert.Equal(t, int64(1), total)
	})

	t.Run("search ORs in resolved author ids", func(t *testing.T) {
		_, total := list(t, ListFilter{Search: "jane", SearchAuthorIDs: []uint{jane.ID}})
		assert.Equal(t, int64(2), total)
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		published := models.BlogStatePublished
		_, total := list(t, ListFilter{State: &published, Tags: []string{"go"}})
		assert.Equal(t, int64(1), total)
	})
}

func TestBlogRepository_ListSortAndPaging(t *testing.T) {
	f := newBlogFixture(t)
	ctx := context.Background()
	author := createUser(t, f.users, "Jane", "Doe", "jane@example.com")

	base := time.Now().Add(-10 * 24 * time.Hour)
	for i := 1; i <= 5; i++ {
		f.createBlog(t, &models.Blog{
			Title:       fmt.Sprintf("Post %d", i),
			AuthorID:    author.ID,
			ReadCount:   int64(6 - i),
			ReadingTime: i,
			Timestamp:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	list := func(t *testing.T, opts ListOptions) ([]*models.Blog, int64) {
		t.Helper()
		if opts.Limit == 0 {
			opts.Limit = 50
		}
		blogs, total, err := f.blogs.List(ctx, opts)
		require.NoError(t, err)
		return blogs, total
	}

	t.Run("default sort is newest timestamp first", func(t *testing.T) {
		blogs, _ := list(t, ListOptions{Sort: DefaultSort})
		require.Len(t, blogs, 5)
		assert.Equal(t, "Post 5", blogs[0].Title)
		assert.Equal(t, "Post 1", blogs[4].Title)
	})

	t.Run("ascending read count", func(t *testing.T) {
		blogs, _ := list(t, ListOptions{Sort: Sort{Field: "read_count"}})
		require.Len(t, blogs, 5)
		assert.Equal(t, int64(1), blogs[0].ReadCount)
		assert.Equal(t, int64(5), blogs[4].ReadCount)
	})

	t.Run("descending reading time", func(t *testing.T) {
		blogs, _ := list(t, ListOptions{Sort: Sort{Field: "reading_time", Desc: true}})
		require.Len(t, blogs, 5)
		assert.Equal(t, 5, blogs[0].ReadingTime)
	})

	t.Run("window slices while total counts everything", func(t *testing.T) {
		blogs, total := list(t, ListOptions{Sort: DefaultSort, Limit: 2, Offset: 2})
		assert.Equal(t, int64(5), total)
		require.Len(t, blogs, 2)
		assert.Equal(t, "Post 3", blogs[0].Title)
		assert.Equal(t, "Post 2", blogs[1].Title)
	})

	t.Run("equal sort keys fall back to id descending", func(t *testing.T) {
		ts := time.Now()
		a := f.createBlog(t, &models.Blog{Title: "Tie A", AuthorID: author.ID, Timestamp: ts})
		b := f.createBlog(t, &models.Blog{Title: "Tie B", AuthorID: author.ID, Timestamp: ts})

		blogs, _ := list(t, ListOptions{Sort: DefaultSort})
		require.True(t, len(blogs) >= 2)
		assert.Equal(t, b.ID, blogs[0].ID)
		assert.Equal(t, a.ID, blogs[1].ID)
	})
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		raw  string
		want Sort
	}{
		{"", DefaultSort},
		{"timestamp", Sort{Field: "timestamp"}},
		{"-timestamp", Sort{Field: "timestamp", Desc: true}},
		{"read_count", Sort{Field: "read_count"}},
		{"-reading_time", Sort{Field: "reading_time", Desc: true}},
		{"password", DefaultSort},
		{"-password", DefaultSort},
		{"title", DefaultSort},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSort(tt.raw), "raw=%q", tt.raw)
	}
}
