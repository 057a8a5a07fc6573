package inits

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/operations"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		dsn     string
		dialect operations.Dialect
	}{
		{"postgres://u:p@db:5432/site", "postgres", "postgres://u:p@db:5432/site", operations.Postgres},
		{"postgresql://db/site", "postgres", "postgresql://db/site", operations.Postgres},
		{"sqlite://data/site.db", "sqlite", "data/site.db", operations.SQLite},
		{"sqlite://:memory:", "sqlite", ":memory:", operations.SQLite},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, dialect, err := parseDatabaseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
			assert.Equal(t, tt.dialect, dialect)
		})
	}

	_, _, _, err := parseDatabaseURL("mysql://db/site")
	assert.Error(t, err)
}

func TestDBInit_SQLiteFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "site.db")

	submissions, db, err := DBInit(ctx, "sqlite://"+path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	inquiry := &models.Inquiry{FullName: "Jane Doe", Email: "jane@example.com", Phone: "+60 12 345 6789", Course: "Management"}
	require.NoError(t, submissions.InsertInquiry(ctx, inquiry))

	got, err := submissions.GetInquiry(ctx, inquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.FullName)
	assert.Nil(t, got.Message)
	assert.WithinDuration(t, inquiry.SubmittedAt, got.SubmittedAt, time.Millisecond)

	// migrations are idempotent
	_, db2, err := DBInit(ctx, "sqlite://"+path)
	require.NoError(t, err)
	_ = db2.Close()
}

func TestLimiterInit(t *testing.T) {
	store, err := LimiterInit()
	require.NoError(t, err)

	now := time.Now()
	allowed, _, err := store.Hit(context.Background(), "k", 1, time.Minute, now)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = store.Hit(context.Background(), "k", 1, time.Minute, now)
	require.NoError(t, err)
	assert.False(t, allowed)
}
