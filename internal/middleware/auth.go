// Package middleware provides authentication, logging, rate limiting and
// metrics middleware for the application.
package middleware

import (
	"errors"
	"strconv"
	"strings"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

var (
	errMissingToken = errors.New("authorization header required")
	errBadToken     = errors.New("invalid or expired token")
)

// userIDFromRequest extracts and verifies the bearer token, returning the
// user ID embedded in its subject claim.
func userIDFromRequest(c *fiber.Ctx) (uint, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errBadToken
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errBadToken
	}

	// User ID travels in the "sub" claim (RFC 7519) as a decimal string.
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, errBadToken
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, errBadToken
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, errBadToken
	}

	return uint(userIDVal), nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	userID, err := userIDFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}

// OptionalAuth resolves the caller's identity when a valid bearer token is
// present but lets anonymous requests through. Routes that serve both
// public and owner views (blog listing, single blog) use this.
func OptionalAuth(c *fiber.Ctx) error {
	if userID, err := userIDFromRequest(c); err == nil {
		c.Locals("userID", userID)
	}
	return c.Next()
}

// UserID returns the authenticated user ID from locals, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}
