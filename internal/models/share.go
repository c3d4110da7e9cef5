package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SharePermission string

const (
	SharePermissionView SharePermission = "view"
	SharePermissionEdit SharePermission = "edit"
)

// Valid reports whether p is a permission a grant may carry.
func (p SharePermission) Valid() bool {
	return p == SharePermissionView || p == SharePermissionEdit
}

// Share grants one user access to one file. There is at most one row per
// (file, user) pair.
type Share struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	FileID      uuid.UUID       `json:"fileID" gorm:"type:uuid;not null;index;uniqueIndex:idx_share_file_user"`
	UserID      uuid.UUID       `json:"userID" gorm:"type:uuid;not null;index;uniqueIndex:idx_share_file_user"`
	Permission  SharePermission `json:"permission" gorm:"type:varchar(10);not null;default:'view'"`
	CanDownload bool            `json:"canDownload" gorm:"not null"`
	SharedAt    time.Time       `json:"sharedAt" gorm:"not null"`

	File *File `json:"file,omitempty" gorm:"foreignKey:FileID;references:ID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (Share) TableName() string {
	return "shares"
}

func (s *Share) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SharedAt.IsZero() {
		s.SharedAt = time.Now().UTC()
	}
	return nil
}
