// Package storage persists article records and merges newly scraped
// records into them by article id.
package storage

import (
	"errors"
	"fmt"

	"github.com/pevans/newsdigest/article"
)

// Columns is the persisted column order of an article record.
var Columns = []string{
	"title",
	"article_id",
	"content",
	"url",
	"author",
	"date_published",
	"source",
}

// SummaryColumn follows Columns in summarized output.
const SummaryColumn = "summary"

// Store kinds accepted by Open
const (
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

// ErrUnknownStorage is returned by Open for an unsupported kind.
var ErrUnknownStorage = errors.New("storage type must be csv or sqlite")

// RecordStore loads and saves the full record set.
type RecordStore interface {
	// Load returns every stored record in order. A store with no prior
	// state returns an empty slice, not an error.
	Load() ([]article.Record, error)
	// Save replaces the stored state with records.
	Save(records []article.Record) error
}

// Merge returns existing followed by the incoming records whose article id
// has not been seen. A repeated id within incoming keeps its first record.
// Records without an id are never duplicates.
func Merge(existing, incoming []article.Record) []article.Record {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, r := range existing {
		if r.HasID() {
			seen[r.ArticleID] = true
		}
	}

	merged := make([]article.Record, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)

	for _, r := range incoming {
		if r.HasID() {
			if seen[r.ArticleID] {
				continue
			}
			seen[r.ArticleID] = true
		}
		merged = append(merged, r)
	}

	return merged
}

// Update merges incoming into the store's records and saves the result. It
// returns the number of records appended.
func Update(store RecordStore, incoming []article.Record) (int, error) {
	existing, err := store.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load records: %w", err)
	}

	merged := Merge(existing, incoming)
	if err := store.Save(merged); err != nil {
		return 0, fmt.Errorf("failed to save records: %w", err)
	}

	return len(merged) - len(existing), nil
}

// Open returns the store of the given kind at dsn. The returned close
// function releases any held resources.
func Open(kind, dsn string) (RecordStore, func() error, error) {
	switch kind {
	case KindCSV, "":
		return NewCSVStore(dsn), func() error { return nil }, nil
	case KindSQLite:
		store, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, kind)
	}
}
