package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/filestore/backend/internal/database"
	"github.com/filestore/backend/internal/middleware"
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/services"
	"github.com/filestore/backend/internal/storage"
	"github.com/filestore/backend/pkg/logger"
	"github.com/filestore/backend/pkg/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	blobs *storage.MemoryStore
}

var quietOnce sync.Once

// setupTestEnv wires the full route table over a private in-memory sqlite
// database and blob store.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	quietOnce.Do(func() {
		logger.SetOutput(io.Discard)
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, or every new connection sees a fresh empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	blobs := storage.NewMemoryStore()
	access := services.NewAccessService(db, nil)
	audit := services.NewAuditService(db, nil)
	t.Cleanup(audit.Close)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024, ErrorHandler: utils.ErrorHandler})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	RegisterRoutes(app, Dependencies{
		DB:     db,
		Access: access,
		Files:  services.NewFileService(db, blobs, access),
		Audit:  audit,
	})

	return &testEnv{app: app, db: db, blobs: blobs}
}

func createTestUser(t *testing.T, db *gorm.DB, username, password string) (*models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Username: username, Email: username + "@test.com", PasswordHash: hash}
	require.NoError(t, db.Create(user).Error)

	token, err := utils.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	require.NoError(t, err, "%s %s", method, path)
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()
	if payload == nil {
		return performRequest(t, app, method, path, nil, headers)
	}

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	merged := map[string]string{fiber.HeaderContentType: fiber.MIMEApplicationJSON}
	for key, value := range headers {
		merged[key] = value
	}
	return performRequest(t, app, method, path, bytes.NewReader(encoded), merged)
}

// performUpload posts a multipart upload. An empty filename omits the file
// part entirely.
func performUpload(t *testing.T, app *fiber.App, token, filename string, content []byte, fields map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	if filename != "" {
		part, err := form.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	headers := authHeaders(token)
	headers[fiber.HeaderContentType] = form.FormDataContentType()
	return performRequest(t, app, http.MethodPost, "/api/files/upload", &buf, headers)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload), "body=%q", raw)
	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	require.Equal(t, expected, resp.StatusCode)
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	assert.Equal(t, false, body["success"], "body=%+v", body)
	assert.Equal(t, expected, body["error"])
}
