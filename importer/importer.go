// Package importer loads the three JSON feeds (filters, universities,
// directions) into the database. Every run is idempotent: re-importing the
// same feed updates rows in place, never duplicates them, and never
// re-downloads media that is already attached.
package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/services/media"
	"github.com/shDavlatbek/uni-list/utils/validation"
)

// importLockID keys the advisory lock that serializes concurrent import
// runs on postgres.
const importLockID = 0x756e696c // "unil"

// Importer reconciles feed records against the database.
type Importer struct {
	db       *gorm.DB
	fetcher  *media.Fetcher
	store    media.Store
	validate *validation.Validator
}

// New creates an importer. fetcher and store may be nil, in which case all
// media fields are left unset.
func New(db *gorm.DB, fetcher *media.Fetcher, store media.Store) *Importer {
	return &Importer{
		db:       db,
		fetcher:  fetcher,
		store:    store,
		validate: validation.NewValidator(),
	}
}

// Stats tallies one import run. Skipped records are recoverable problems
// (missing parent, unusable wrapper); anything worse aborts the run.
type Stats struct {
	Created int
	Updated int
	Skipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("created: %d, updated: %d, skipped: %d", s.Created, s.Updated, s.Skipped)
}

// lockImports takes a transaction-scoped advisory lock so two import runs
// cannot interleave writes on the same natural keys. Dialects without
// advisory locks run unserialized.
func lockImports(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(importLockID)).Error
}

// readFeed loads a whole JSON array feed into loosely-typed records.
func readFeed(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", path, err)
	}
	return records, nil
}
