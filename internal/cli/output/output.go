package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/filestore/backend/internal/cli/api"
)

// Writer receives everything this package prints.
var Writer io.Writer = os.Stdout

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Writer)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
}

// FileTable prints owned files as a human-readable table.
func FileTable(files []api.File) {
	if len(files) == 0 {
		fmt.Fprintln(Writer, "No files found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tTYPE\tSHARED\tCREATED")
	for _, f := range files {
		shared := "-"
		if f.SharedWith > 0 {
			shared = fmt.Sprintf("%d", f.SharedWith)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Name, FormatSize(f.Size), kind(f), shared, RelativeTime(f.CreatedAt))
	}
	w.Flush()
}

// SharedTable prints files other users have shared with the caller.
func SharedTable(files []api.File) {
	if len(files) == 0 {
		fmt.Fprintln(Writer, "Nothing has been shared with you.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tPERMISSION\tDOWNLOAD\tSIZE")
	for _, f := range files {
		owner := f.OwnerID
		if f.Owner != nil {
			owner = f.Owner.Username
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Name, owner, f.Permission, yesNo(f.CanDownload), FormatSize(f.Size))
	}
	w.Flush()
}

// FileDetail prints a single file and, when known, what the caller may do with it.
func FileDetail(f api.File, access *api.Access) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", f.Name)
	fmt.Fprintf(w, "ID:\t%s\n", f.ID)
	if f.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", f.Description)
	}
	fmt.Fprintf(w, "Type:\t%s (%s)\n", f.FileType, f.MimeType)
	fmt.Fprintf(w, "Size:\t%s\n", FormatSize(f.Size))
	if f.Owner != nil {
		fmt.Fprintf(w, "Owner:\t%s\n", f.Owner.Username)
	} else {
		fmt.Fprintf(w, "Owner:\t%s\n", f.OwnerID)
	}
	fmt.Fprintf(w, "Created:\t%s\n", f.CreatedAt.Format(time.RFC3339))
	if access != nil {
		fmt.Fprintf(w, "Access:\t%s\n", AccessSummary(*access))
	}
	w.Flush()
}

// ShareTable prints the grant set of one file.
func ShareTable(shares []api.Share) {
	if len(shares) == 0 {
		fmt.Fprintln(Writer, "Not shared with anyone.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "USER\tPERMISSION\tDOWNLOAD\tSHARED")
	for _, s := range shares {
		who := s.UserID
		if s.User != nil {
			who = s.User.Username
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", who, s.Permission, yesNo(s.CanDownload), RelativeTime(s.SharedAt))
	}
	w.Flush()
}

// UserInfo prints user details.
func UserInfo(u api.User) {
	w := newTable()
	fmt.Fprintf(w, "Username:\t%s\n", u.Username)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

// AccessSummary renders an access decision as a short phrase such as
// "owner" or "view, no download".
func AccessSummary(a api.Access) string {
	switch a.Level {
	case "owner":
		return "owner"
	case "grant":
		if a.CanDownload {
			return a.Permission + ", download"
		}
		return a.Permission + ", no download"
	default:
		return "none"
	}
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

func kind(f api.File) string {
	if f.FileType != "" && f.FileType != "Unknown" {
		return f.FileType
	}
	return shortMIME(f.MimeType)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func shortMIME(mime string) string {
	// "application/pdf" -> "pdf", "image/png" -> "png"
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		s := parts[1]
		// strip "vnd.openxmlformats..." prefixes
		if idx := strings.LastIndex(s, "."); idx >= 0 {
			s = s[idx+1:]
		}
		return s
	}
	return mime
}
