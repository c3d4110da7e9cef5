package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/filestore/backend/internal/config"
	"github.com/filestore/backend/internal/database"
	"github.com/filestore/backend/internal/models"
	"github.com/filestore/backend/internal/storage"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "services.db"),
	})
	if err != nil {
		t.Fatalf("failed opening sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createServiceTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@test.com", username),
		PasswordHash: "hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", username, err)
	}
	return user
}

type serviceTestEnv struct {
	db     *gorm.DB
	blobs  *storage.MemoryStore
	access *AccessService
	files  *FileService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	blobs := storage.NewMemoryStore()
	access := NewAccessService(db, nil)
	return &serviceTestEnv{
		db:     db,
		blobs:  blobs,
		access: access,
		files:  NewFileService(db, blobs, access),
	}
}

func (e *serviceTestEnv) upload(t *testing.T, owner *models.User, filename string, size int) *models.File {
	t.Helper()
	file, err := e.files.Upload(context.Background(), owner.ID, UploadInput{
		Filename: filename,
		Content:  bytes.NewReader(bytes.Repeat([]byte("x"), size)),
	})
	if err != nil {
		t.Fatalf("failed uploading %s: %v", filename, err)
	}
	return file
}

func boolPtr(v bool) *bool {
	return &v
}

// failingDeleteStore accepts uploads but cannot delete.
type failingDeleteStore struct {
	*storage.MemoryStore
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("bucket unreachable")
}
