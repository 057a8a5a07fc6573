package ratelimit

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
)

const windowTable = "window"

// Window is the stored state of one key.
type Window struct {
	Key     string
	Count   int
	ResetAt int64 // unix nanoseconds
}

// Schema is the memdb schema MemStore expects.
func Schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			windowTable: {
				Name: windowTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:         "id",
						Unique:       true,
						Indexer:      &memdb.StringFieldIndex{Field: "Key"},
						AllowMissing: false,
					},
					"reset": {
						Name:         "reset",
						Unique:       false,
						Indexer:      &memdb.IntFieldIndex{Field: "ResetAt"},
						AllowMissing: false,
					},
				},
			},
		},
	}
}

// MemStore keeps windows in process memory. memdb serializes write
// transactions, so a Hit is atomic across concurrent requests.
type MemStore struct {
	db *memdb.MemDB
}

func NewMemStore(db *memdb.MemDB) *MemStore {
	return &MemStore{db: db}
}

func (s *MemStore) Hit(_ context.Context, key string, max int, window time.Duration, now time.Time) (bool, time.Time, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(windowTable, "id", key)
	if err != nil {
		return false, time.Time{}, errors.Wrap(err, "lookup window")
	}

	var next Window
	if raw == nil || now.UnixNano() > raw.(*Window).ResetAt {
		next = Window{Key: key, Count: 1, ResetAt: now.Add(window).UnixNano()}
	} else {
		current := raw.(*Window)
		if current.Count >= max {
			return false, time.Unix(0, current.ResetAt), nil
		}
		next = *current
		next.Count++
	}

	if err := txn.Insert(windowTable, &next); err != nil {
		return false, time.Time{}, errors.Wrap(err, "store window")
	}
	txn.Commit()
	return true, time.Unix(0, next.ResetAt), nil
}

func (s *MemStore) ResetAt(_ context.Context, key string, _ time.Time) (time.Time, bool, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(windowTable, "id", key)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "lookup window")
	}
	if raw == nil {
		return time.Time{}, false, nil
	}
	return time.Unix(0, raw.(*Window).ResetAt), true, nil
}

// DeleteExpired drops every window whose reset time has passed and returns
// how many were removed.
func (s *MemStore) DeleteExpired(now time.Time) (int, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	it, err := txn.ReverseLowerBound(windowTable, "reset", now.UnixNano()-1)
	if err != nil {
		return 0, errors.Wrap(err, "scan windows")
	}
	var expired []*Window
	for obj := it.Next(); obj != nil; obj = it.Next() {
		expired = append(expired, obj.(*Window))
	}

	for _, w := range expired {
		if err := txn.Delete(windowTable, w); err != nil {
			return 0, errors.Wrap(err, "delete window")
		}
	}
	txn.Commit()
	return len(expired), nil
}
