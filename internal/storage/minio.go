package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/filestore/backend/internal/config"
	"github.com/filestore/backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient stores blobs in a single MinIO bucket.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client for %s: %w", cfg.Endpoint, err)
	}
	return &MinIOClient{client: client, bucket: cfg.Bucket}, nil
}

func (m *MinIOClient) fields(objectName string) map[string]interface{} {
	return map[string]interface{}{
		"object_name": objectName,
		"bucket":      m.bucket,
	}
}

func (m *MinIOClient) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	fields := m.fields(objectName)
	fields["size"] = size
	fields["content_type"] = contentType

	if _, err := m.client.PutObject(ctx, m.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		logger.Error("minio_upload_failed", err, fields)
		return err
	}
	logger.Info("minio_upload_success", fields)
	return nil
}

// Download returns the object body and its stored size. GetObject is lazy,
// so a missing key only surfaces on Stat.
func (m *MinIOClient) Download(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		logger.Error("minio_download_failed", err, m.fields(objectName))
		return nil, 0, err
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, 0, ErrObjectNotFound
		}
		logger.Error("minio_download_stat_failed", err, m.fields(objectName))
		return nil, 0, err
	}
	return obj, info.Size, nil
}

// Delete removes objectName. MinIO treats a missing key as success.
func (m *MinIOClient) Delete(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		logger.Error("minio_delete_failed", err, m.fields(objectName))
		return err
	}
	logger.Info("minio_delete_success", m.fields(objectName))
	return nil
}

func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.bucket, err)
	}
	logger.Info("minio_bucket_created", map[string]interface{}{"bucket": m.bucket})
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
