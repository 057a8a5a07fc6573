package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FilesRoute is where the router serves a FileStore's directory.
const FilesRoute = "/files"

// FileStore writes documents under a local directory served at FilesRoute.
type FileStore struct {
	Dir     string
	baseURL string
}

func NewFileStore(dir, publicBaseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage directory")
	}
	return &FileStore{Dir: dir, baseURL: publicBaseURL}, nil
}

func (s *FileStore) Put(ctx context.Context, key, _ string, r io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "create object directory")
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create object")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", errors.Wrap(err, "write object")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close object")
	}

	return joinURL(s.baseURL+FilesRoute, key), nil
}
