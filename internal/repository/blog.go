package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// allowedSortFields maps sort keys accepted from callers to their columns.
// Anything else silently falls back to the default sort.
var allowedSortFields = map[string]string{
	"read_count":   "read_count",
	"reading_time": "reading_time",
	"timestamp":    "timestamp",
}

// Sort is a validated sort order for blog listings.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort orders by the creation timestamp, newest first.
var DefaultSort = Sort{Field: "timestamp", Desc: true}

// ParseSort translates a raw sort key ("read_count", "-timestamp", ...)
// into a Sort. A leading "-" marks descending; unknown fields fall back to
// the default order.
func ParseSort(raw string) Sort {
	if raw == "" {
		return DefaultSort
	}
	desc := strings.HasPrefix(raw, "-")
	field := strings.TrimPrefix(raw, "-")
	if _, ok := allowedSortFields[field]; !ok {
		return DefaultSort
	}
	return Sort{Field: field, Desc: desc}
}

// ListFilter narrows a blog listing. Zero values mean "no constraint";
// constraints combine with AND, except the Search group which is an OR of
// title, tags and the resolved author ids.
type ListFilter struct {
	State    *models.BlogState
	AuthorID *uint
	// Title is a case-insensitive substring match.
	Title string
	// Tags matches blogs whose tag set intersects these (exact elements).
	Tags []string
	// Search is matched case-insensitively against title and tags, and OR-ed
	// with SearchAuthorIDs (authors whose identity matched the same term).
	Search          string
	SearchAuthorIDs []uint
}

// ListOptions bundles filter, sort and page window for a listing query.
type ListOptions struct {
	Filter ListFilter
	Sort   Sort
	Limit  int
	Offset int
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	GetByTitle(ctx context.Context, title string) (*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	// IncrementReadCount atomically bumps read_count, reporting whether the
	// blog exists.
	IncrementReadCount(ctx context.Context, id uint) (bool, error)
	// List returns one page of blogs plus the total match count.
	List(ctx context.Context, opts ListOptions) ([]*models.Blog, int64, error)
}

// blogRepository implements BlogRepository
type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	defer observability.TrackQuery("create", "blogs")()
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	defer observability.TrackQuery("get", "blogs")()
	var blog models.Blog
	err := r.db.WithContext(ctx).Preload("Author").First(&blog, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	populateAuthor(&blog)
	return &blog, nil
}

func (r *blogRepository) GetByTitle(ctx context.Context, title string) (*models.Blog, error) {
	defer observability.TrackQuery("get", "blogs")()
	var blog models.Blog
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&blog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	defer observability.TrackQuery("update", "blogs")()
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "blogs")()
	return r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error
}

func (r *blogRepository) IncrementReadCount(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("update", "blogs")()
	res := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("read_count", gorm.Expr("read_count + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *blogRepository) List(ctx context.Context, opts ListOptions) ([]*models.Blog, int64, error) {
	defer observability.TrackQuery("list", "blogs")()

	base := r.applyFilter(r.db.WithContext(ctx).Model(&models.Blog{}), opts.Filter).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []*models.Blog
	err := base.
		Preload("Author").
		Order(orderClause(opts.Sort)).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, err
	}
	for _, b := range blogs {
		populateAuthor(b)
	}
	return blogs, total, nil
}

func (r *blogRepository) applyFilter(tx *gorm.DB, f ListFilter) *gorm.DB {
	if f.State != nil {
		tx = tx.Where("state = ?", *f.State)
	}
	if f.AuthorID != nil {
		tx = tx.Where("author_id = ?", *f.AuthorID)
	}
	if f.Title != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Title)+"%")
	}
	if len(f.Tags) > 0 {
		// Tags are stored JSON-encoded; a quoted element gives an exact match.
		group := r.db.Where("tags LIKE ?", tagPattern(f.Tags[0]))
		for _, tag := range f.Tags[1:] {
			group = group.Or("tags LIKE ?", tagPattern(tag))
		}
		tx = tx.Where(group)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		group := r.db.Where("LOWER(title) LIKE ?", like).
			Or("LOWER(tags) LIKE ?", like)
		if len(f.SearchAuthorIDs) > 0 {
			group = group.Or("author_id IN ?", f.SearchAuthorIDs)
		}
		tx = tx.Where(group)
	}
	return tx
}

func orderClause(s Sort) string {
	if s.Field == "" {
		s = DefaultSort
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	// Secondary id ordering keeps pages stable across equal sort keys.
	return fmt.Sprintf("%s %s, id DESC", allowedSortFields[s.Field], dir)
}

func tagPattern(tag string) string {
	return `%"` + tag + `"%`
}

func populateAuthor(blog *models.Blog) {
	if blog.Author.ID != 0 {
		public := blog.Author.Public()
		blog.AuthorInfo = &public
	}
}
