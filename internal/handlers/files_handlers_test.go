package handlers

import (
	"bytes"
	"io"
	"net/http"
	"testing"
)

func TestFilesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env.db, "files-owner", "password123")
	_, otherToken := createTestUser(t, env.db, "files-other", "password123")

	var fileID string
	content := bytes.Repeat([]byte("a"), 5000)

	t.Run("POST /api/files/upload derives size and type", func(t *testing.T) {
		resp := performUpload(t, env.app, ownerToken, "report.pdf", content, map[string]string{
			"description": "Quarterly report",
			"size":        "1",
			"fileType":    "Video",
		})
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)

		data := body["data"].(map[string]any)
		fileID = data["id"].(string)
		if data["name"] != "report.pdf" {
			t.Fatalf("expected name to default to filename, got %v", data["name"])
		}
		if data["size"] != float64(5000) {
			t.Fatalf("expected size 5000, got %v", data["size"])
		}
		if data["fileType"] != "PDF" {
			t.Fatalf("expected fileType PDF, got %v", data["fileType"])
		}
		if data["description"] != "Quarterly report" {
			t.Fatalf("expected description, got %v", data["description"])
		}
		if _, leaked := data["storagePath"]; leaked {
			t.Fatal("storage path must not be serialized")
		}
		if env.blobs.Len() != 1 {
			t.Fatalf("expected one stored blob, got %d", env.blobs.Len())
		}
	})

	t.Run("POST /api/files/upload with explicit name", func(t *testing.T) {
		resp := performUpload(t, env.app, ownerToken, "IMG_0001.PNG", []byte("png"), map[string]string{"name": "Cat"})
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusCreated)
		data := body["data"].(map[string]any)
		if data["name"] != "Cat" || data["fileType"] != "Image" {
			t.Fatalf("unexpected upload result %+v", data)
		}
	})

	t.Run("POST /api/files/upload without file", func(t *testing.T) {
		resp := performUpload(t, env.app, ownerToken, "", nil, map[string]string{"name": "nothing"})
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "file is required")
	})

	t.Run("GET /api/files lists owned files newest first", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files", nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 2 {
			t.Fatalf("expected 2 owned files, got %d", len(data))
		}
		if data[0].(map[string]any)["name"] != "Cat" {
			t.Fatalf("expected newest upload first, got %v", data[0].(map[string]any)["name"])
		}
	})

	t.Run("GET /api/files for another user is empty", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files", nil, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if data := body["data"].([]any); len(data) != 0 {
			t.Fatalf("expected no files, got %d", len(data))
		}
	})

	t.Run("GET /api/files/:id returns file and access", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID, nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if access := data["access"].(map[string]any); access["level"] != "owner" {
			t.Fatalf("expected owner access, got %v", access["level"])
		}
	})

	t.Run("GET /api/files/:id not found", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/00000000-0000-0000-0000-000000000000", nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "file not found")
	})

	t.Run("GET /api/files/:id invalid id", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/not-a-uuid", nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, body, "invalid file id")
	})

	t.Run("GET /api/files/:id access denied", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID, nil, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "access denied")
	})

	t.Run("GET /api/files/:id/access for a stranger", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID+"/access", nil, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if data["level"] != "none" || data["canView"] != false {
			t.Fatalf("expected no access, got %+v", data)
		}
	})

	t.Run("GET /api/files/:id/download streams content", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID+"/download", nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
		defer resp.Body.Close()
		got, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed reading download: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Fatalf("expected %d bytes of content, got %d", len(content), len(got))
		}
		if disposition := resp.Header.Get("Content-Disposition"); disposition != `attachment; filename="report.pdf"` {
			t.Fatalf("unexpected content disposition %q", disposition)
		}
	})

	t.Run("DELETE /api/files/:id by non-owner is denied", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/files/"+fileID, nil, authHeaders(otherToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "access denied")

		resp = performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)
	})

	t.Run("GET /api/dashboard totals owned files", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/dashboard", nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].(map[string]any)
		if data["totalFiles"] != float64(2) || data["totalSize"] != float64(5003) {
			t.Fatalf("unexpected dashboard totals %v / %v", data["totalFiles"], data["totalSize"])
		}
	})

	t.Run("DELETE /api/files/:id by owner", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodDelete, "/api/files/"+fileID, nil, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		resp = performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID, nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "file not found")

		if env.blobs.Len() != 1 {
			t.Fatalf("expected the deleted blob to be gone, %d remain", env.blobs.Len())
		}
	})
}
