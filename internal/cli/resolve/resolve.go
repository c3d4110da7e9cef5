// Package resolve turns the file and user references typed on the command
// line into server IDs.
package resolve

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/filestore/backend/internal/cli/api"
	"github.com/google/uuid"
)

// Scope selects which listings a file name is looked up in.
type Scope int

const (
	// Owned only searches the caller's own files.
	Owned Scope = iota
	// Visible also searches files shared with the caller.
	Visible
)

// File converts a file reference to its ID. A valid UUID is returned as-is.
// Anything else is matched case-insensitively against file names; a name
// that matches more than one file is rejected so the caller can pass the ID.
func File(client *api.Client, ref string, scope Scope) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("file reference is empty")
	}
	if IsUUID(ref) {
		return ref, nil
	}

	candidates, err := listFiles(client, "/files")
	if err != nil {
		return "", fmt.Errorf("listing files: %w", err)
	}
	if scope == Visible {
		shared, err := listFiles(client, "/shared")
		if err != nil {
			return "", fmt.Errorf("listing shared files: %w", err)
		}
		candidates = append(candidates, shared...)
	}

	var matches []api.File
	for _, f := range candidates {
		if strings.EqualFold(f.Name, ref) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("file not found: %s", ref)
	case 1:
		return matches[0].ID, nil
	default:
		ids := make([]string, len(matches))
		for i, f := range matches {
			ids[i] = f.ID
		}
		return "", fmt.Errorf("%q matches %d files, use an ID instead: %s", ref, len(matches), strings.Join(ids, ", "))
	}
}

// User converts a username, email or UUID to a user ID. Names are matched
// exactly against the server's user search.
func User(client *api.Client, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("user reference is empty")
	}
	if IsUUID(ref) {
		return ref, nil
	}

	var resp api.Response[[]api.User]
	params := url.Values{"q": {ref}, "limit": {"50"}}
	if err := client.Get("/users/search", params, &resp); err != nil {
		return "", fmt.Errorf("searching users: %w", err)
	}

	for _, u := range resp.Data {
		if strings.EqualFold(u.Username, ref) || strings.EqualFold(u.Email, ref) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("user not found: %s", ref)
}

func listFiles(client *api.Client, path string) ([]api.File, error) {
	var resp api.Response[[]api.File]
	if err := client.Get(path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("api error: %s", resp.Error)
	}
	return resp.Data, nil
}

// IsUUID reports whether s has the canonical 8-4-4-4-12 hex form.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
