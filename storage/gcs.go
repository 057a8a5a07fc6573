package storage

import (
	"context"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
)

// GCSStore puts documents into a Google Cloud Storage bucket using
// application default credentials.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

func NewGCSStore(ctx context.Context, bucket, publicBaseURL string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create GCS client")
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: publicBaseURL}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader, _ int64) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "gcs write")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "gcs close")
	}
	return joinURL(s.baseURL, key), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
