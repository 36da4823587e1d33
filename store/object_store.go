package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"

	"pageperf/api/database"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStore reads exported datasets from and writes workbooks to the configured bucket.
type ObjectStore struct {
	os *database.ObjectStoreClient
}

func NewObjectStore(client *database.ObjectStoreClient) *ObjectStore {
	return &ObjectStore{os: client}
}

// Open returns a reader over the object. The caller closes it.
func (s *ObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.os.Client.GetObject(ctx, s.os.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key here instead of on first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return obj, nil
}

func (s *ObjectStore) PutWorkbook(ctx context.Context, key string, r io.Reader, size int64) error {
	info, err := s.os.Client.PutObject(ctx, s.os.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: xlsxContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	slog.Info("workbook uploaded", "bucket", s.os.Bucket, "key", key, "size", info.Size)
	return nil
}
