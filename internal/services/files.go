package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/storage"
	"github.com/filestore/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultContentType = "application/octet-stream"

// UploadInput describes a new blob. Size and type are read from Content and
// Filename; callers cannot supply them.
type UploadInput struct {
	Filename    string
	Name        string
	Description string
	ContentType string
	Content     io.ReadSeeker
}

// SharedFile is a file seen through a grant held by the requester.
type SharedFile struct {
	models.File
	Permission  models.SharePermission `json:"permission"`
	CanDownload bool                   `json:"canDownload"`
}

type Dashboard struct {
	OwnedFiles  []models.File `json:"ownedFiles"`
	SharedFiles []SharedFile  `json:"sharedFiles"`
	TotalFiles  int           `json:"totalFiles"`
	TotalSize   int64         `json:"totalSize"`
}

type FileService struct {
	DB      *gorm.DB
	Storage storage.BlobStore
	Access  *AccessService
}

func NewFileService(db *gorm.DB, blobStore storage.BlobStore, access *AccessService) *FileService {
	return &FileService{DB: db, Storage: blobStore, Access: access}
}

// Upload stores the blob and then records it. If the record cannot be written
// the blob is removed again.
func (s *FileService) Upload(ctx context.Context, ownerID uuid.UUID, input UploadInput) (*models.File, error) {
	filename := filepath.Base(strings.TrimSpace(input.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, newValidationError("file", "a file with a name is required")
	}
	if input.Content == nil {
		return nil, newValidationError("file", "file content is required")
	}

	size, err := blobSize(input.Content)
	if err != nil {
		return nil, storeFailure("upload", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = filename
	}
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	objectName := storage.ObjectName(ownerID, filename)
	if err := s.Storage.Upload(ctx, objectName, input.Content, size, contentType); err != nil {
		return nil, storeFailure("upload", err)
	}

	file := &models.File{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Size:        size,
		FileType:    models.ClassifyFileType(filename),
		MimeType:    contentType,
		OwnerID:     ownerID,
		StoragePath: objectName,
	}
	if err := s.DB.WithContext(ctx).Create(file).Error; err != nil {
		if delErr := s.Storage.Delete(ctx, objectName); delErr != nil {
			logger.Error("upload_cleanup_failed", delErr, map[string]interface{}{
				"object_name": objectName,
			})
		}
		return nil, storeFailure("upload", err)
	}

	return file, nil
}

// Delete removes the grants, the record and the blob as one unit. A blob
// that cannot be deleted rolls the record back.
func (s *FileService) Delete(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, error) {
	file, err := s.Access.loadFile(ctx, s.DB, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != requesterID {
		return nil, ErrPermissionDenied
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(&models.Share{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND owner_id = ?", file.ID, requesterID).Delete(&models.File{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.Storage.Delete(ctx, file.StoragePath)
	})
	if err != nil {
		return nil, storeFailure("delete", err)
	}

	s.Access.forget(ctx, file.ID, file.ShareGeneration)
	return file, nil
}

// ListOwned returns the files owned by userID, newest first, each with the
// number of users it is shared with.
func (s *FileService) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	var files []models.File
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		return nil, storeFailure("list_owned", err)
	}
	if len(files) == 0 {
		return files, nil
	}

	ids := make([]uuid.UUID, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	type shareCount struct {
		FileID uuid.UUID
		Count  int64
	}
	var counts []shareCount
	if err := s.DB.WithContext(ctx).
		Model(&models.Share{}).
		Select("file_id, COUNT(*) AS count").
		Where("file_id IN ?", ids).
		Group("file_id").
		Scan(&counts).Error; err != nil {
		return nil, storeFailure("list_owned", err)
	}

	byFile := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byFile[c.FileID] = c.Count
	}
	for i := range files {
		files[i].SharedWith = byFile[files[i].ID]
	}

	return files, nil
}

// ListSharedWith returns the files userID holds a view or edit grant on,
// newest first. Files the user owns are never included.
func (s *FileService) ListSharedWith(ctx context.Context, userID uuid.UUID) ([]SharedFile, error) {
	var shares []models.Share
	if err := s.DB.WithContext(ctx).
		Joins("JOIN files ON files.id = shares.file_id").
		Where("shares.user_id = ?", userID).
		Where("shares.permission IN ?", []models.SharePermission{models.SharePermissionView, models.SharePermissionEdit}).
		Where("files.owner_id <> ?", userID).
		Order("files.created_at DESC").
		Preload("File.Owner").
		Find(&shares).Error; err != nil {
		return nil, storeFailure("list_shared_with", err)
	}

	result := make([]SharedFile, 0, len(shares))
	for _, share := range shares {
		if share.File == nil {
			continue
		}
		result = append(result, SharedFile{
			File:        *share.File,
			Permission:  share.Permission,
			CanDownload: share.CanDownload,
		})
	}
	return result, nil
}

// Get returns the file with its owner loaded, provided requesterID may view it.
func (s *FileService) Get(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, Access, error) {
	var file models.File
	err := s.DB.WithContext(ctx).Preload("Owner").Where("id = ?", fileID).Take(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NoAccess(), ErrNotFound
	}
	if err != nil {
		return nil, NoAccess(), storeFailure("get_file", err)
	}

	access, err := s.Access.Resolve(ctx, &file, requesterID)
	if err != nil {
		return nil, NoAccess(), err
	}
	if !access.CanView() {
		return nil, NoAccess(), ErrPermissionDenied
	}
	return &file, access, nil
}

// Open streams the blob of fileID. The caller closes the returned reader.
func (s *FileService) Open(ctx context.Context, fileID, requesterID uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, access, err := s.Get(ctx, fileID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanDownload() {
		return nil, nil, ErrPermissionDenied
	}

	reader, _, err := s.Storage.Download(ctx, file.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		logger.Error("blob_missing", err, map[string]interface{}{
			"file_id":     file.ID.String(),
			"object_name": file.StoragePath,
		})
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, storeFailure("open", err)
	}
	return file, reader, nil
}

func (s *FileService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	owned, err := s.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.ListSharedWith(ctx, userID)
	if err != nil {
		return nil, err
	}

	// TotalFiles counts both lists; TotalSize only what the user owns.
	var totalSize int64
	for _, f := range owned {
		totalSize += f.Size
	}

	return &Dashboard{
		OwnedFiles:  owned,
		SharedFiles: shared,
		TotalFiles:  len(owned) + len(shared),
		TotalSize:   totalSize,
	}, nil
}

func blobSize(content io.Seeker) (int64, error) {
	size, err := content.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
