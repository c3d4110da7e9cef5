package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/filestore/backend/internal/config"
	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore holds file contents. Deleting an object that does not exist is
// not an error.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, objectName string) error
}

// BucketEnsurer is implemented by stores that need their bucket created at startup.
type BucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

const (
	DriverMinIO  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.Storage.Driver {
	case "", DriverMinIO:
		return NewMinIOClient(cfg.MinIO)
	case DriverS3:
		return NewS3Client(ctx, cfg.S3)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// ObjectName builds the blob key for an upload: user_<owner>/<uuid>_<filename>.
func ObjectName(ownerID uuid.UUID, filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("user_%s/%s_%s", ownerID.String(), uuid.New().String(), base)
}
