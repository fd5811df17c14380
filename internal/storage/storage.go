package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Emiliocodings/ServiceUsers/config"
)

const (
	BackendMinio = "minio"
	BackendGCS   = "gcs"
)

// Object is a single upload. Size may be -1 when unknown.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectStorage is the subset of bucket operations used for exports.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, obj Object) error
	Bucket() string
	Close() error
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.ExportConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMinio:
		client, err := NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("open minio: %w", err)
		}
		return client, nil
	case BackendGCS:
		client, err := NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("open gcs: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown export backend %q", cfg.Backend)
	}
}
