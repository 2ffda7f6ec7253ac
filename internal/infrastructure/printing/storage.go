package printing

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store persists rendered documents and returns the URL they are served from.
// storage.S3ObjectStorage satisfies it for object storage.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// LocalStore writes documents below a directory that the HTTP server
// exposes under BaseURL
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed. baseURL defaults to /receipts.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("receipt directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "create receipt directory "+dir, err)
	}
	if baseURL == "" {
		baseURL = "/receipts"
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory
func (s *LocalStore) Dir() string {
	return s.dir
}

// Put writes data to dir/key atomically. Keys are slash-separated and may
// not leave dir.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "store cancelled", err)
	}
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "create receipt directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".receipt-*")
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "create temporary receipt file", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", NewRenderError(ErrCodeStorageFailed, "write receipt "+clean, err)
	}
	if err := tmp.Close(); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "write receipt "+clean, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "store receipt "+clean, err)
	}
	return s.baseURL + "/" + clean, nil
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", NewRenderError(ErrCodeStorageFailed, fmt.Sprintf("invalid storage key %q", key), nil)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", NewRenderError(ErrCodeStorageFailed, fmt.Sprintf("invalid storage key %q", key), nil)
	}
	return clean, nil
}
