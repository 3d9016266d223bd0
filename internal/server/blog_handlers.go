package server

import (
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListBlogs handles GET /api/blogs: the public listing with filters,
// search, sorting and pagination. Without a state filter only published
// blogs are returned.
func (s *Server) ListBlogs(c *fiber.Ctx) error {
	page, err := s.blogService.ListBlogs(c.Context(), service.ListBlogsInput{
		Page:   pagination.Normalize(c.Query("page"), c.Query("limit")),
		State:  c.Query("state"),
		Search: c.Query("q"),
		Author: c.Query("author"),
		Title:  c.Query("title"),
		Tags:   c.Query("tags"),
		Sort:   c.Query("sort"),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// MyBlogs handles GET /api/blogs/me/list: the requester's own blogs in
// every state unless a state filter is given.
func (s *Server) MyBlogs(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	page, err := s.blogService.MyBlogs(c.Context(), service.MyBlogsInput{
		RequesterID: userID,
		Page:        pagination.Normalize(c.Query("page"), c.Query("limit")),
		State:       c.Query("state"),
		Sort:        c.Query("sort"),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(page)
}

// GetBlog handles GET /api/blogs/:id. Published blogs are visible to
// anyone; drafts only to their author.
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return nil
	}

	blog, err := s.blogService.GetBlog(c.Context(), id, requester(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(blog)
}

// CreateBlog handles POST /api/blogs. New blogs start as drafts.
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Tags        tagList `json:"tags"`
		Body        string  `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.CreateBlog(c.Context(), service.CreateBlogInput{
		AuthorID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Tags:        req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(blog)
}

// UpdateBlog handles PUT /api/blogs/:id: an owner-only shallow merge of the
// provided fields.
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Tags        *tagList `json:"tags"`
		Body        *string  `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateBlogInput{
		ID:          id,
		RequesterID: userID,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	}
	if req.Tags != nil {
		tags := []string(*req.Tags)
		in.Tags = &tags
	}

	blog, err := s.blogService.UpdateBlog(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(blog)
}

// PublishBlog handles PATCH /api/blogs/:id/publish. Publishing is one-way
// and idempotent.
func (s *Server) PublishBlog(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c)
	if err != nil {
		return nil
	}

	blog, err := s.blogService.PublishBlog(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(blog)
}

// DeleteBlog handles DELETE /api/blogs/:id.
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c)
	if err != nil {
		return nil
	}

	if err := s.blogService.DeleteBlog(c.Context(), id, userID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}
