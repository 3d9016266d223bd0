// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/pagination"
	"inkwell/internal/readtime"
	"inkwell/internal/repository"
)

// BlogService implements blog creation, mutation, visibility rules and
// listing on top of the repositories.
type BlogService struct {
	blogRepo repository.BlogRepository
	userRepo repository.UserRepository
}

// NewBlogService creates a new blog service.
func NewBlogService(blogRepo repository.BlogRepository, userRepo repository.UserRepository) *BlogService {
	return &BlogService{
		blogRepo: blogRepo,
		userRepo: userRepo,
	}
}

// CreateBlogInput is the payload for creating a blog.
type CreateBlogInput struct {
	AuthorID    uint
	Title       string
	Description string
	Body        string
	Tags        []string
}

// UpdateBlogInput is the partial-update payload. Nil pointers leave the
// existing value untouched.
type UpdateBlogInput struct {
	ID          uint
	RequesterID uint
	Title       *string
	Description *string
	Body        *string
	Tags        *[]string
}

// ListBlogsInput carries the raw listing query parameters.
type ListBlogsInput struct {
	Page   pagination.Params
	State  string
	Search string
	Author string
	Title  string
	Tags   string
	Sort   string
}

// MyBlogsInput carries the owner-listing query parameters.
type MyBlogsInput struct {
	RequesterID uint
	Page        pagination.Params
	State       string
	Sort        string
}

// BlogPage is one page of blogs plus pagination metadata.
type BlogPage struct {
	Docs []*models.Blog `json:"docs"`
	pagination.Meta
}

// CreateBlog validates input, enforces title uniqueness and persists a new
// draft owned by the author.
func (s *BlogService) CreateBlog(ctx context.Context, in CreateBlogInput) (*models.Blog, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Body == "" {
		return nil, models.NewValidationError("title and body are required")
	}

	existing, err := s.blogRepo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Blog title must be unique")
	}

	blog := &models.Blog{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		AuthorID:    in.AuthorID,
		State:       models.BlogStateDraft,
		ReadingTime: readtime.Estimate(in.Description + " " + in.Body),
		Tags:        normalizeTags(in.Tags),
		Body:        in.Body,
		Timestamp:   time.Now(),
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// UpdateBlog applies a shallow merge of the provided fields onto the blog,
// re-checking title uniqueness when the title changes and recomputing
// reading time when body or description change.
func (s *BlogService) UpdateBlog(ctx context.Context, in UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.ownedBlog(ctx, in.ID, in.RequesterID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("title cannot be empty")
		}
		if title != blog.Title {
			other, err := s.blogRepo.GetByTitle(ctx, title)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != blog.ID {
				return nil, models.NewConflictError("Title already used")
			}
			blog.Title = title
		}
	}

	recompute := false
	if in.Description != nil {
		blog.Description = strings.TrimSpace(*in.Description)
		recompute = true
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, models.NewValidationError("body cannot be empty")
		}
		blog.Body = *in.Body
		recompute = true
	}
	if recompute {
		blog.ReadingTime = readtime.Estimate(blog.Description + " " + blog.Body)
	}

	if in.Tags != nil {
		blog.Tags = normalizeTags(*in.Tags)
	}

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// PublishBlog moves a draft to published. Republishing an already published
// blog is a no-op that still succeeds.
func (s *BlogService) PublishBlog(ctx context.Context, id, requesterID uint) (*models.Blog, error) {
	blog, err := s.ownedBlog(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	blog.State = models.BlogStatePublished
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// DeleteBlog permanently removes a blog owned by the requester.
func (s *BlogService) DeleteBlog(ctx context.Context, id, requesterID uint) error {
	if _, err := s.ownedBlog(ctx, id, requesterID); err != nil {
		return err
	}
	return s.blogRepo.Delete(ctx, id)
}

// GetBlog fetches a single blog, bumping its read count, and applies the
// visibility gate: published blogs are visible to anyone, drafts only to
// their author. The read count is incremented before the gate runs, so a
// rejected draft read still counts.
func (s *BlogService) GetBlog(ctx context.Context, id uint, requesterID *uint) (*models.Blog, error) {
	found, err := s.blogRepo.IncrementReadCount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("Blog")
	}

	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog")
	}

	if err := visibilityGate(blog, requesterID); err != nil {
		return nil, err
	}

	observability.BlogReads.WithLabelValues(string(blog.State)).Inc()
	return blog, nil
}

// visibilityGate decides whether the requester may read the blog.
// Existence is not hidden: a draft read by a non-owner is 403, not 404.
func visibilityGate(blog *models.Blog, requesterID *uint) error {
	switch blog.State {
	case models.BlogStatePublished:
		return nil
	case models.BlogStateDraft:
		if requesterID == nil || *requesterID != blog.AuthorID {
			return models.NewForbiddenError("Forbidden")
		}
		return nil
	}
	return models.NewForbiddenError("Forbidden")
}

// ListBlogs serves the public listing. Without an explicit state filter only
// published blogs are returned. A free-text search term matches title, tags
// and author identity; author identity matches are resolved to ids first and
// OR-combined with the rest of the search group.
func (s *BlogService) ListBlogs(ctx context.Context, in ListBlogsInput) (*BlogPage, error) {
	filter := repository.ListFilter{
		Title: in.Title,
	}

	state := models.BlogStatePublished
	if in.State != "" {
		state = models.BlogState(in.State)
	}
	filter.State = &state

	if in.Author != "" {
		if id, err := strconv.ParseUint(in.Author, 10, 32); err == nil && id > 0 {
			authorID := uint(id)
			filter.AuthorID = &authorID
		}
	}

	if in.Tags != "" {
		filter.Tags = normalizeTags(strings.Split(in.Tags, ","))
	}

	if in.Search != "" {
		filter.Search = in.Search
		ids, err := s.userRepo.SearchIDs(ctx, in.Search)
		if err != nil {
			return nil, err
		}
		filter.SearchAuthorIDs = ids
	}

	return s.list(ctx, filter, in.Sort, in.Page)
}

// MyBlogs serves the owner listing: the requester's blogs in every state
// unless a state filter is given.
func (s *BlogService) MyBlogs(ctx context.Context, in MyBlogsInput) (*BlogPage, error) {
	filter := repository.ListFilter{
		AuthorID: &in.RequesterID,
	}
	if in.State != "" {
		state := models.BlogState(in.State)
		filter.State = &state
	}
	return s.list(ctx, filter, in.Sort, in.Page)
}

func (s *BlogService) list(ctx context.Context, filter repository.ListFilter, sort string, page pagination.Params) (*BlogPage, error) {
	docs, total, err := s.blogRepo.List(ctx, repository.ListOptions{
		Filter: filter,
		Sort:   repository.ParseSort(sort),
		Limit:  page.Limit,
		Offset: page.Skip,
	})
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*models.Blog{}
	}
	return &BlogPage{
		Docs: docs,
		Meta: pagination.NewMeta(page, total),
	}, nil
}

func (s *BlogService) ownedBlog(ctx context.Context, id, requesterID uint) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, models.NewNotFoundError("Blog")
	}
	if blog.AuthorID != requesterID {
		return nil, models.NewForbiddenError("Forbidden")
	}
	return blog, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
