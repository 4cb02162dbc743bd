package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"snapfeed/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the identity resolved by the auth gate.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// parseBody decodes and validates a JSON request body into dest.
func (s *Server) parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	if err := s.validate.Struct(dest); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return models.NewValidationError(
				fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
		}
		return models.NewValidationError("Validation failed")
	}
	return nil
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid post id")
	}
	return uint(id), nil
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is missing or malformed.
func queryInt(c *fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// readPhotoParts pulls the raw bytes out of the multipart "photo" file parts.
func readPhotoParts(form *multipart.Form) ([][]byte, error) {
	files := form.File["photo"]
	photos := make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, models.NewValidationError("Unreadable photo part")
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, models.NewValidationError("Unreadable photo part")
		}
		photos = append(photos, data)
	}
	return photos, nil
}
