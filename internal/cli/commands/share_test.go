package commands

import (
	"testing"

	"github.com/filestore/backend/internal/cli/api"
)

func TestBuildShareEntries(t *testing.T) {
	t.Run("rejects unknown permission before any lookup", func(t *testing.T) {
		if _, err := buildShareEntries([]string{"bob"}, "admin", true); err == nil {
			t.Fatal("expected error for invalid permission")
		}
	})

	t.Run("uuid references become entries with explicit download flag", func(t *testing.T) {
		refs := []string{
			"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
			"bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
		}
		entries, err := buildShareEntries(refs, "edit", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for i, entry := range entries {
			if entry.UserID != refs[i] {
				t.Errorf("entry %d: expected user %s, got %s", i, refs[i], entry.UserID)
			}
			if entry.Permission != "edit" {
				t.Errorf("entry %d: expected edit, got %s", i, entry.Permission)
			}
			if entry.CanDownload == nil || *entry.CanDownload {
				t.Errorf("entry %d: expected canDownload=false", i)
			}
		}
	})
}

func TestKeepShares(t *testing.T) {
	current := []api.Share{
		{UserID: "u1", Permission: "view", CanDownload: false},
		{UserID: "u2", Permission: "edit", CanDownload: true},
		{UserID: "u3", Permission: "view", CanDownload: true},
	}

	kept := keepShares(current, map[string]bool{"u2": true})
	if len(kept) != 2 {
		t.Fatalf("expected 2 remaining entries, got %d", len(kept))
	}
	if kept[0].UserID != "u1" || kept[1].UserID != "u3" {
		t.Errorf("unexpected remaining users: %s, %s", kept[0].UserID, kept[1].UserID)
	}
	if kept[0].CanDownload == nil || *kept[0].CanDownload {
		t.Error("expected u1 to keep canDownload=false")
	}
	if kept[1].Permission != "view" || kept[1].CanDownload == nil || !*kept[1].CanDownload {
		t.Errorf("expected u3 grant unchanged, got %+v", kept[1])
	}
}

func TestFilterShared(t *testing.T) {
	files := []api.File{
		{ID: "a", Permission: "view", CanDownload: true},
		{ID: "b", Permission: "view", CanDownload: false},
		{ID: "c", Permission: "edit", CanDownload: true},
	}

	tests := []struct {
		name         string
		permission   string
		downloadable bool
		want         []string
	}{
		{"no filter", "", false, []string{"a", "b", "c"}},
		{"downloadable", "", true, []string{"a", "c"}},
		{"view only", "view", false, []string{"a", "b"}},
		{"edit and downloadable", "edit", true, []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterShared(files, tt.permission, tt.downloadable)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d files, got %d", len(tt.want), len(got))
			}
			for i, f := range got {
				if f.ID != tt.want[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.want[i], f.ID)
				}
			}
		})
	}
}
