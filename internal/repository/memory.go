package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
)

// InMemoryUserRepository is a map-backed UserRepository used in tests and
// anywhere a real database is unwanted.
type InMemoryUserRepository struct {
	mu    sync.Mutex
	seq   uint
	users map[uint]models.User
}

// NewInMemoryUserRepository returns an empty in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uint]models.User)}
}

func (r *InMemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email %q", user.Email)
		}
	}
	r.seq++
	user.ID = r.seq
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (r *InMemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *InMemoryUserRepository) SearchIDs(_ context.Context, q string) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(q)
	var ids []uint
	for _, user := range r.users {
		if strings.Contains(strings.ToLower(user.FirstName), needle) ||
			strings.Contains(strings.ToLower(user.LastName), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle) {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

// InMemoryBlogRepository is a map-backed BlogRepository with the same filter
// and sort semantics as the gorm implementation.
type InMemoryBlogRepository struct {
	mu    sync.Mutex
	seq   uint
	blogs map[uint]models.Blog
	users *InMemoryUserRepository
}

// NewInMemoryBlogRepository returns an empty in-memory blog repository.
// users is consulted to populate author info on reads, mirroring Preload.
func NewInMemoryBlogRepository(users *InMemoryUserRepository) *InMemoryBlogRepository {
	return &InMemoryBlogRepository{blogs: make(map[uint]models.Blog), users: users}
}

func (r *InMemoryBlogRepository) Create(_ context.Context, blog *models.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.blogs {
		if existing.Title == blog.Title {
			return fmt.Errorf("duplicate title %q", blog.Title)
		}
	}
	r.seq++
	blog.ID = r.seq
	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	r.blogs[blog.ID] = r.snapshot(blog)
	return nil
}

func (r *InMemoryBlogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	r.mu.Lock()
	blog, ok := r.blogs[id]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	out := blog
	out.Tags = append([]string(nil), blog.Tags...)
	r.attachAuthor(ctx, &out)
	return &out, nil
}

func (r *InMemoryBlogRepository) GetByTitle(_ context.Context, title string) (*models.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, blog := range r.blogs {
		if blog.Title == title {
			b := blog
			return &b, nil
		}
	}
	return nil, nil
}

func (r *InMemoryBlogRepository) Update(_ context.Context, blog *models.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[blog.ID]; !ok {
		return fmt.Errorf("blog %d does not exist", blog.ID)
	}
	blog.UpdatedAt = time.Now()
	r.blogs[blog.ID] = r.snapshot(blog)
	return nil
}

func (r *InMemoryBlogRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blogs, id)
	return nil
}

func (r *InMemoryBlogRepository) IncrementReadCount(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blog, ok := r.blogs[id]
	if !ok {
		return false, nil
	}
	blog.ReadCount++
	r.blogs[id] = blog
	return true, nil
}

func (r *InMemoryBlogRepository) List(ctx context.Context, opts ListOptions) ([]*models.Blog, int64, error) {
	r.mu.Lock()
	var matched []models.Blog
	for _, blog := range r.blogs {
		if matchesFilter(blog, opts.Filter) {
			matched = append(matched, blog)
		}
	}
	r.mu.Unlock()

	sortBlogs(matched, opts.Sort)
	total := int64(len(matched))

	start := opts.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + opts.Limit
	if opts.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	page := make([]*models.Blog, 0, end-start)
	for i := start; i < end; i++ {
		b := matched[i]
		b.Tags = append([]string(nil), matched[i].Tags...)
		r.attachAuthor(ctx, &b)
		page = append(page, &b)
	}
	return page, total, nil
}

func (r *InMemoryBlogRepository) snapshot(blog *models.Blog) models.Blog {
	clone := *blog
	clone.Tags = append([]string(nil), blog.Tags...)
	clone.AuthorInfo = nil
	clone.Author = models.User{}
	return clone
}

func (r *InMemoryBlogRepository) attachAuthor(ctx context.Context, blog *models.Blog) {
	if r.users == nil {
		return
	}
	if author, _ := r.users.GetByID(ctx, blog.AuthorID); author != nil {
		blog.Author = *author
		public := author.Public()
		blog.AuthorInfo = &public
	}
}

func matchesFilter(blog models.Blog, f ListFilter) bool {
	if f.State != nil && blog.State != *f.State {
		return false
	}
	if f.AuthorID != nil && blog.AuthorID != *f.AuthorID {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(blog.Title), strings.ToLower(f.Title)) {
		return false
	}
	if len(f.Tags) > 0 && !tagsIntersect(blog.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !matchesSearch(blog, f) {
		return false
	}
	return true
}

func tagsIntersect(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func matchesSearch(blog models.Blog, f ListFilter) bool {
	needle := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(blog.Title), needle) {
		return true
	}
	for _, tag := range blog.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	for _, id := range f.SearchAuthorIDs {
		if blog.AuthorID == id {
			return true
		}
	}
	return false
}

func sortBlogs(blogs []models.Blog, s Sort) {
	if s.Field == "" {
		s = DefaultSort
	}
	sort.SliceStable(blogs, func(i, j int) bool {
		a, b := blogs[i], blogs[j]
		var less, equal bool
		switch s.Field {
		case "read_count":
			less, equal = a.ReadCount < b.ReadCount, a.ReadCount == b.ReadCount
		case "reading_time":
			less, equal = a.ReadingTime < b.ReadingTime, a.ReadingTime == b.ReadingTime
		default:
			less, equal = a.Timestamp.Before(b.Timestamp), a.Timestamp.Equal(b.Timestamp)
		}
		if equal {
			// Secondary id ordering keeps pages stable across equal sort keys.
			return a.ID > b.ID
		}
		if s.Desc {
			return !less
		}
		return less
	})
}
