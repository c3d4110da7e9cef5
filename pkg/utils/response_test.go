package utils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSuccess(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusCreated, fiber.Map{"id": "123"})
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"id": "123"}, body["data"])
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "pagination")
}

func TestError(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return Error(c, fiber.StatusNotFound, "file not found")
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, map[string]interface{}{"success": false, "error": "file not found"}, body)
}

func TestFieldError(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return FieldError(c, "permission", `invalid permission "admin"`)
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "permission", body["field"])
	assert.Equal(t, `invalid permission "admin"`, body["error"])
	assert.NotContains(t, body, "data")
}

func TestPaginated(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return Paginated(c, []string{"a", "b"}, NewPagination(2, 20), 45)
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []interface{}{"a", "b"}, body["data"])
	assert.Equal(t, map[string]interface{}{
		"page":       float64(2),
		"limit":      float64(20),
		"total":      float64(45),
		"totalPages": float64(3),
	}, body["pagination"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection reset by peer")
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/teapot", fiber.StatusTeapot, "short and stout"},
		{"/boom", fiber.StatusInternalServerError, "internal error"},
		{"/missing", fiber.StatusNotFound, "Cannot GET /missing"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil), -1)
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()

		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		assert.Equal(t, map[string]interface{}{"success": false, "error": tc.message}, body, tc.path)
	}
}
