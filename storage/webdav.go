package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// WebDAVStore uploads documents to a WebDAV collection (Nextcloud and the like)
// with basic auth.
type WebDAVStore struct {
	baseURL    string
	user       string
	password   string
	publicURL  string
	httpClient *http.Client
}

func NewWebDAVStore(baseURL, user, password, publicBaseURL string) (*WebDAVStore, error) {
	if baseURL == "" {
		return nil, errors.New("WEBDAV_URL is required for the webdav storage backend")
	}
	if publicBaseURL == "" {
		publicBaseURL = baseURL
	}
	return &WebDAVStore{
		baseURL:    baseURL,
		user:       user,
		password:   password,
		publicURL:  publicBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *WebDAVStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if err := s.mkcol(ctx, path.Dir(key)); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, joinURL(s.baseURL, key), r)
	if err != nil {
		return "", err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(s.user, s.password)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "webdav put")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return "", errors.Errorf("failed to upload file: %s", resp.Status)
	}

	log.Debug().Str("key", key).Msg("Uploaded document to WebDAV")
	return joinURL(s.publicURL, key), nil
}

// mkcol creates the collection for dir. 405 means it already exists.
func (s *WebDAVStore) mkcol(ctx context.Context, dir string) error {
	if dir == "." || dir == "/" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, "MKCOL", joinURL(s.baseURL, dir), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.user, s.password)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "webdav mkcol")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusMethodNotAllowed:
		return nil
	default:
		return errors.Errorf("failed to create collection %s: %s", dir, resp.Status)
	}
}
