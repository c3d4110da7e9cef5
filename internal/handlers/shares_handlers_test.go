package handlers

import (
	"net/http"
	"testing"
)

func TestSharesEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	owner, ownerToken := createTestUser(t, env.db, "share-owner", "password123")
	u1, u1Token := createTestUser(t, env.db, "share-u1", "password123")
	u2, u2Token := createTestUser(t, env.db, "share-u2", "password123")

	resp := performUpload(t, env.app, ownerToken, "report.pdf", make([]byte, 5000), nil)
	body := decodeJSONMap(t, resp)
	assertStatus(t, resp, http.StatusCreated)
	fileID := body["data"].(map[string]any)["id"].(string)
	sharesPath := "/api/files/" + fileID + "/shares"

	accessFor := func(t *testing.T, token string) map[string]any {
		t.Helper()
		resp := performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID+"/access", nil, authHeaders(token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		return body["data"].(map[string]any)
	}

	t.Run("PUT shares grants view with download", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{
			"shares": []map[string]any{
				{"userID": u1.ID, "permission": "view", "canDownload": true},
			},
		}, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if data := body["data"].(map[string]any); data["count"] != float64(1) {
			t.Fatalf("expected count 1, got %v", data["count"])
		}

		access := accessFor(t, u1Token)
		if access["level"] != "grant" || access["permission"] != "view" || access["canDownload"] != true {
			t.Fatalf("expected view with download, got %+v", access)
		}
	})

	t.Run("GET /api/shared lists the file for the grantee", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/shared", nil, authHeaders(u1Token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected one shared file, got %d", len(data))
		}
		shared := data[0].(map[string]any)
		if shared["id"] != fileID || shared["permission"] != "view" {
			t.Fatalf("unexpected shared entry %+v", shared)
		}
	})

	t.Run("grantee cannot replace shares", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{
			"shares": []map[string]any{{"userID": u2.ID, "permission": "edit"}},
		}, authHeaders(u1Token))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, body, "access denied")
	})

	t.Run("grantee cannot list grants", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, sharesPath, nil, authHeaders(u1Token))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("PUT shares replaces the whole set", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{
			"shares": []map[string]any{
				{"userID": u2.ID, "permission": "edit", "canDownload": false},
			},
		}, authHeaders(ownerToken))
		assertStatus(t, resp, http.StatusOK)

		if access := accessFor(t, u1Token); access["level"] != "none" {
			t.Fatalf("expected u1 to lose access, got %+v", access)
		}
		access := accessFor(t, u2Token)
		if access["permission"] != "edit" || access["canEdit"] != true || access["canDownload"] != false {
			t.Fatalf("expected edit without download, got %+v", access)
		}

		resp = performRequest(t, env.app, http.MethodGet, "/api/files/"+fileID+"/download", nil, authHeaders(u2Token))
		assertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("GET shares lists grants for the owner", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, sharesPath, nil, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		data := body["data"].([]any)
		if len(data) != 1 {
			t.Fatalf("expected one grant, got %d", len(data))
		}
		grant := data[0].(map[string]any)
		if grant["userID"] != u2.ID.String() {
			t.Fatalf("expected grant for u2, got %v", grant["userID"])
		}
	})

	t.Run("validation errors leave the set unchanged", func(t *testing.T) {
		cases := []struct {
			name    string
			shares  []map[string]any
			message string
		}{
			{
				name:    "self inclusion",
				shares:  []map[string]any{{"userID": owner.ID, "permission": "view"}},
				message: "shares: a file cannot be shared with its owner",
			},
			{
				name:    "bad permission",
				shares:  []map[string]any{{"userID": u1.ID, "permission": "admin"}},
				message: `permission: invalid permission "admin"`,
			},
			{
				name: "duplicate user",
				shares: []map[string]any{
					{"userID": u1.ID, "permission": "view"},
					{"userID": u1.ID, "permission": "edit"},
				},
				message: "shares: user " + u1.ID.String() + " appears more than once",
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{"shares": tc.shares}, authHeaders(ownerToken))
				body := decodeJSONMap(t, resp)
				assertStatus(t, resp, http.StatusBadRequest)
				assertEnvelopeError(t, body, tc.message)

				if access := accessFor(t, u2Token); access["permission"] != "edit" {
					t.Fatalf("expected u2 grant to survive, got %+v", access)
				}
			})
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{
			"shares": []map[string]any{{"userID": "00000000-0000-0000-0000-000000000001"}},
		}, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, body, "user not found")
	})

	t.Run("empty set revokes all sharing", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPut, sharesPath, map[string]any{"shares": []any{}}, authHeaders(ownerToken))
		body := decodeJSONMap(t, resp)
		assertStatus(t, resp, http.StatusOK)
		if data := body["data"].(map[string]any); data["count"] != float64(0) {
			t.Fatalf("expected count 0, got %v", data["count"])
		}
		if access := accessFor(t, u2Token); access["level"] != "none" {
			t.Fatalf("expected u2 to lose access, got %+v", access)
		}
	})
}
