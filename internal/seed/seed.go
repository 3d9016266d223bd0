// Package seed provides helpers to create demo data for the blog
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/readtime"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	NumUsers     int
	NumBlogs     int
	Clean        bool
	MaxDays      int
	PublishRatio float64
}

// DefaultOptions returns a sensible configuration for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:     10,
		NumBlogs:     60,
		Clean:        true,
		MaxDays:      90,
		PublishRatio: 0.7,
	}
}

var tagPool = []string{
	"go", "javascript", "databases", "testing", "devops",
	"career", "design", "performance", "security", "tutorial",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a bcrypt-hashed password. All seeded
// users share the password "password123" to ease manual testing.
func (f *Factory) CreateUser() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		Bio:       gofakeit.Sentence(8),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildBlog constructs a blog for the given author without persisting it.
func (f *Factory) BuildBlog(author *models.User, n int) *models.Blog {
	description := gofakeit.Sentence(12)
	body := gofakeit.Paragraph(3, 5, 12, "\n\n")

	blog := &models.Blog{
		// suffix keeps titles unique across runs without Clean
		Title:       fmt.Sprintf("%s #%d", strings.TrimSuffix(gofakeit.Sentence(5), "."), n),
		Description: description,
		AuthorID:    author.ID,
		State:       models.BlogStateDraft,
		ReadingTime: readtime.Estimate(description + " " + body),
		Tags:        f.randomTags(),
		Body:        body,
	}

	if f.rng.Float64() < f.opts.PublishRatio {
		blog.State = models.BlogStatePublished
		blog.ReadCount = int64(f.rng.Intn(500))
	}

	// realistic timestamp spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	blog.Timestamp = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	return blog
}

func (f *Factory) randomTags() []string {
	count := 1 + f.rng.Intn(3)
	tags := make([]string, 0, count)
	for _, i := range f.rng.Perm(len(tagPool))[:count] {
		tags = append(tags, tagPool[i])
	}
	return tags
}

// Run cleans the database when requested and fills it with users and
// blogs according to the options.
func Run(db *gorm.DB, opts Options) error {
	if opts.Clean {
		log.Println("Cleaning existing data...")
		if err := db.Exec("DELETE FROM blogs").Error; err != nil {
			return fmt.Errorf("clean blogs: %w", err)
		}
		if err := db.Exec("DELETE FROM users").Error; err != nil {
			return fmt.Errorf("clean users: %w", err)
		}
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users\n", len(users))

	published := 0
	for i := 0; i < opts.NumBlogs; i++ {
		author := users[factory.rng.Intn(len(users))]
		blog := factory.BuildBlog(author, i+1)
		if err := db.Create(blog).Error; err != nil {
			return fmt.Errorf("create blog: %w", err)
		}
		if blog.State == models.BlogStatePublished {
			published++
		}
	}
	log.Printf("Created %d blogs (%d published, %d drafts)\n", opts.NumBlogs, published, opts.NumBlogs-published)

	return nil
}
