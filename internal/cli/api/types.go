package api

import "time"

// File mirrors the backend File model. Permission and CanDownload are only
// filled for entries returned by /shared.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Size        int64     `json:"size"`
	FileType    string    `json:"fileType"`
	MimeType    string    `json:"mimeType"`
	OwnerID     string    `json:"ownerID"`
	SharedWith  int64     `json:"sharedWith"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Owner       *User     `json:"owner,omitempty"`

	Permission  string `json:"permission,omitempty"`
	CanDownload bool   `json:"canDownload,omitempty"`
}

// User mirrors the backend User model.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Share is one grant on a file as listed by its owner.
type Share struct {
	ID          string    `json:"id"`
	FileID      string    `json:"fileID"`
	UserID      string    `json:"userID"`
	Permission  string    `json:"permission"`
	CanDownload bool      `json:"canDownload"`
	SharedAt    time.Time `json:"sharedAt"`
	User        *User     `json:"user,omitempty"`
}

// ShareEntry is one element of the set sent to PUT /files/:id/shares.
type ShareEntry struct {
	UserID      string `json:"userID"`
	Permission  string `json:"permission"`
	CanDownload *bool  `json:"canDownload,omitempty"`
}

// ReplaceSharesRequest replaces every grant on a file.
type ReplaceSharesRequest struct {
	Shares []ShareEntry `json:"shares"`
}

// ReplaceSharesResponse is returned by PUT /files/:id/shares.
type ReplaceSharesResponse struct {
	Count int `json:"count"`
}

// Access is returned by GET /files/:id/access.
type Access struct {
	Level       string `json:"level"`
	Permission  string `json:"permission,omitempty"`
	CanView     bool   `json:"canView"`
	CanDownload bool   `json:"canDownload"`
	CanEdit     bool   `json:"canEdit"`
	CanManage   bool   `json:"canManage"`
}

// Dashboard is returned by GET /dashboard.
type Dashboard struct {
	OwnedFiles  []File `json:"ownedFiles"`
	SharedFiles []File `json:"sharedFiles"`
	TotalFiles  int    `json:"totalFiles"`
	TotalSize   int64  `json:"totalSize"`
}

// LoginRequest is sent to POST /auth/login. Login is a username or email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login and /auth/register.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
