package models

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypePDF     FileType = "PDF"
	FileTypeWord    FileType = "Word"
	FileTypeText    FileType = "Text"
	FileTypeImage   FileType = "Image"
	FileTypeVideo   FileType = "Video"
	FileTypeAudio   FileType = "Audio"
	FileTypeArchive FileType = "Archive"
	FileTypeUnknown FileType = "Unknown"
)

var fileTypesByExtension = map[string]FileType{
	".pdf":  FileTypePDF,
	".doc":  FileTypeWord,
	".docx": FileTypeWord,
	".txt":  FileTypeText,
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".png":  FileTypeImage,
	".gif":  FileTypeImage,
	".mp4":  FileTypeVideo,
	".avi":  FileTypeVideo,
	".mov":  FileTypeVideo,
	".mp3":  FileTypeAudio,
	".wav":  FileTypeAudio,
	".zip":  FileTypeArchive,
	".rar":  FileTypeArchive,
}

// ClassifyFileType maps a filename to its category by extension, ignoring case.
func ClassifyFileType(filename string) FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	if fileType, ok := fileTypesByExtension[ext]; ok {
		return fileType
	}
	return FileTypeUnknown
}

// File is a stored blob owned by exactly one user. Size and FileType are
// snapshots taken from the blob when it is written.
type File struct {
	BaseModel
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	Size        int64     `json:"size" gorm:"not null;default:0"`
	FileType    FileType  `json:"fileType" gorm:"type:varchar(20);not null;default:'Unknown'"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(255);not null"`
	OwnerID     uuid.UUID `json:"ownerID" gorm:"type:uuid;not null;index"`
	StoragePath string    `json:"-" gorm:"type:text;not null"`
	// ShareGeneration moves forward with every committed change to the
	// file's grants. Cached access decisions are keyed by it.
	ShareGeneration int64 `json:"-" gorm:"not null;default:0"`

	Owner      User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Shares     []Share `json:"-" gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE"`
	SharedWith int64   `json:"sharedWith" gorm:"-"`
}

func (File) TableName() string {
	return "files"
}
