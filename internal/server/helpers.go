package server

import (
	"encoding/json"
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid id"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// requester returns the authenticated user ID, or nil for anonymous callers.
func requester(c *fiber.Ctx) *uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return &uid
	}
	return nil
}

// tagList accepts either a JSON array of strings or a single comma-separated
// string, the two tag encodings the API tolerates on writes.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*t = tagList(strings.Split(raw, ","))
		return nil
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = tagList(raw)
	return nil
}
