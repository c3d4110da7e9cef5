package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed decoding log line %q: %v", line, err)
	}
	return entry
}

func TestLogger_InfoWithUser(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	InfoWithUser("user-1", "file_uploaded", map[string]interface{}{"file_size": 5000})

	entry := decodeLine(t, &buf)
	if entry["level"] != "info" {
		t.Errorf("expected level info, got %v", entry["level"])
	}
	if entry["action"] != "file_uploaded" {
		t.Errorf("expected action file_uploaded, got %v", entry["action"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("expected user_id user-1, got %v", entry["user_id"])
	}
	if entry["file_size"] != float64(5000) {
		t.Errorf("expected file_size 5000, got %v", entry["file_size"])
	}
}

func TestLogger_ErrorIncludesMessage(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Error("blob_delete_failed", errors.New("bucket unreachable"), nil)

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("expected level error, got %v", entry["level"])
	}
	if entry["error"] != "bucket unreachable" {
		t.Errorf("expected error message, got %v", entry["error"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	globalLogger = New(&buf, LevelWarn)

	Info("ignored", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}

	Warn("kept", nil)
	if buf.Len() == 0 {
		t.Fatal("expected warn to be written")
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	payload := map[string]interface{}{"username": "alice", "password": "hunter22"}
	redactSensitiveFields(payload)
	if payload["password"] != "[REDACTED]" {
		t.Errorf("expected password to be redacted, got %v", payload["password"])
	}
	if payload["username"] != "alice" {
		t.Errorf("expected username untouched, got %v", payload["username"])
	}
}

func TestRedactSensitiveFields_Nested(t *testing.T) {
	payload := map[string]interface{}{
		"Token": "abc",
		"shares": []interface{}{
			map[string]interface{}{"userID": "u1", "secret": "s"},
		},
	}
	redactSensitiveFields(payload)

	assert.Equal(t, "[REDACTED]", payload["Token"])
	share := payload["shares"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[REDACTED]", share["secret"])
	assert.Equal(t, "u1", share["userID"])
}

func TestGetRequestBodySummary(t *testing.T) {
	var got string
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		got = GetRequestBodySummary(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	summarize := func(contentType, body string) string {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, contentType)
		_, err := app.Test(req, -1)
		require.NoError(t, err)
		return got
	}

	assert.Equal(t, "empty", summarize(fiber.MIMEApplicationJSON, ""))
	assert.Equal(t, `{"login":"alice","password":"[REDACTED]"}`,
		summarize(fiber.MIMEApplicationJSON, `{"login":"alice","password":"hunter22"}`))
	assert.Equal(t, "multipart (5 bytes)", summarize(fiber.MIMEMultipartForm+"; boundary=x", "hello"))
	assert.Equal(t, "binary (3 bytes)", summarize(fiber.MIMEOctetStream, "\x00\x01\x02"))
	assert.Equal(t, "large (2000 bytes)", summarize(fiber.MIMETextPlain, strings.Repeat("a", 2000)))
}
