package inits

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-memdb"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/operations"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
)

// DBInit opens the submissions database named by url and creates its tables.
// postgres:// and postgresql:// URLs go to the hosted database, sqlite://path
// to a local file (sqlite://:memory: for an in-memory one).
func DBInit(ctx context.Context, url string) (*operations.Submissions, *sql.DB, error) {
	driver, dsn, dialect, err := parseDatabaseURL(url)
	if err != nil {
		return nil, nil, err
	}

	if dialect == operations.SQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database")
	}
	if dialect == operations.SQLite {
		// one connection keeps :memory: databases alive and serializes sqlite writes
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "connect to database")
	}

	submissions := operations.NewSubmissions(db, dialect)
	if err := submissions.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	log.Info().Str("driver", driver).Msg("Connected to database")
	return submissions, db, nil
}

func parseDatabaseURL(url string) (driver, dsn string, dialect operations.Dialect, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url, operations.Postgres, nil
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), operations.SQLite, nil
	default:
		return "", "", 0, errors.Errorf("unsupported DATABASE_URL scheme: %q", url)
	}
}

// LimiterInit builds the in-memory rate-window database.
func LimiterInit() (*ratelimit.MemStore, error) {
	db, err := memdb.NewMemDB(ratelimit.Schema())
	if err != nil {
		return nil, errors.Wrap(err, "create rate-limit store")
	}
	return ratelimit.NewMemStore(db), nil
}
