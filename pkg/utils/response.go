package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every JSON response. Field names the offending
// input when a request fails validation.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Field      string      `json:"field,omitempty"`
	Pagination *PageInfo   `json:"pagination,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Error: message})
}

// FieldError answers 400 and names the rejected input field.
func FieldError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{Error: message, Field: field})
}

func Paginated(c *fiber.Ctx, data interface{}, p PaginationParams, total int64) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Data:       data,
		Pagination: NewPageInfo(p, total),
	})
}

// ErrorHandler is the app-wide fiber error handler. A *fiber.Error keeps its
// status and message; anything else is answered as a bare 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Code, fe.Message)
	}
	return Error(c, fiber.StatusInternalServerError, "internal error")
}
