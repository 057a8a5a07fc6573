package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/config"
)

// Store saves uploaded documents and returns the URL they are reachable at.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}

const objectPrefix = "public"

var now = time.Now

// ObjectKey names an uploaded file public/<unix-millis>-<uuid>.<ext>, keeping
// only the client's extension.
func ObjectKey(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	name := strconv.FormatInt(now().UnixMilli(), 10) + "-" + uuid.NewString()
	if ext != "" && isPlainExt(ext) {
		name += "." + ext
	}
	return path.Join(objectPrefix, name)
}

func isPlainExt(ext string) bool {
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(ext) <= 8
}

// New builds the store selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "", "file":
		return NewFileStore(cfg.StorageDir, cfg.StoragePublicBaseURL)
	case "s3":
		return NewS3Store(ctx, S3StoreConfig{
			Bucket:        cfg.StorageBucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
	case "gcs":
		return NewGCSStore(ctx, cfg.StorageBucket, cfg.StoragePublicBaseURL)
	case "webdav":
		return NewWebDAVStore(cfg.WebDAVURL, cfg.WebDAVUser, cfg.WebDAVPassword, cfg.StoragePublicBaseURL)
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
