package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Emiliocodings/ServiceUsers/internal/storage"
	"github.com/Emiliocodings/ServiceUsers/types"
)

const defaultExportPageSize = 500

// ObjectWriter stores export snapshots.
type ObjectWriter interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, obj storage.Object) error
	Bucket() string
}

// ExportResult describes a written snapshot.
type ExportResult struct {
	Bucket string
	Key    string
	Count  int
	Bytes  int64
}

// ExportService writes a JSON snapshot of every user to object storage.
type ExportService struct {
	repo     UserRepository
	objects  ObjectWriter
	prefix   string
	pageSize int
	now      func() time.Time
}

func NewExportService(repo UserRepository, objects ObjectWriter, prefix string, pageSize int) *ExportService {
	if pageSize <= 0 {
		pageSize = defaultExportPageSize
	}
	return &ExportService{
		repo:     repo,
		objects:  objects,
		prefix:   prefix,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Export pages through users in id order and uploads them as a single
// JSON array.
func (s *ExportService) Export(ctx context.Context) (ExportResult, error) {
	users, err := s.collect(ctx)
	if err != nil {
		return ExportResult{}, err
	}

	data, err := json.Marshal(users)
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode users: %w", err)
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("ensure bucket: %w", err)
	}

	key := s.prefix + "users-" + s.now().UTC().Format("20060102T150405Z") + ".json"
	err = s.objects.PutObject(ctx, storage.Object{
		Key:         key,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "application/json",
		Metadata:    map[string]string{"user-count": strconv.Itoa(len(users))},
	})
	if err != nil {
		return ExportResult{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return ExportResult{
		Bucket: s.objects.Bucket(),
		Key:    key,
		Count:  len(users),
		Bytes:  int64(len(data)),
	}, nil
}

func (s *ExportService) collect(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0)
	for offset := 0; ; offset += s.pageSize {
		page, err := s.repo.List(ctx, offset, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list users at offset %d: %w", offset, err)
		}
		users = append(users, page...)
		if len(page) < s.pageSize {
			return users, nil
		}
	}
}
