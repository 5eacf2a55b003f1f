package detectionService

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"

	"GridVision/pkg/s3"
)

// ResultStore persists a rendered result image and returns the URL it is
// reachable at.
type ResultStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type localStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) ResultStore {
	return &localStore{dir: dir, urlPrefix: urlPrefix}
}

func (s *localStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return path.Join(s.urlPrefix, name), nil
}

type s3Store struct {
	client s3.ItfS3
	prefix string
}

func NewS3Store(client s3.ItfS3, prefix string) ResultStore {
	return &s3Store{client: client, prefix: prefix}
}

// Save uploads the image and returns a presigned URL so private buckets work.
// An object that cannot be presigned is removed again.
func (s *s3Store) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.prefix, name)

	location, err := s.client.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", err
	}

	url, err := s.client.PresignUrl(location)
	if err != nil {
		if derr := s.client.DeleteFile(key); derr != nil {
			return "", errors.Join(err, derr)
		}
		return "", err
	}
	return url, nil
}
