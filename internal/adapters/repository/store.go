// Package repository defines the snapshot store interface and its
// in-memory implementation.
package repository

import (
	"context"

	"github.com/traffixlab/traffix/internal/domain/model"
)

// Store provides read access to the process-wide traffic snapshot and
// a whole-replace write path for the refresh pipeline. Readers always
// see a consistent snapshot; queries build their graphs and summaries
// from the copy the store hands out.
type Store interface {
	// Replace swaps in a new snapshot and returns its version id.
	Replace(ctx context.Context, rows []model.Row) string

	// Snapshot returns a copy of the stored rows. Empty, never nil
	// semantics: a missing snapshot yields zero rows, not an error.
	Snapshot(ctx context.Context) model.Snapshot

	// Version returns the id of the stored snapshot, or the empty string
	// before the first Replace.
	Version(ctx context.Context) string

	// Count returns the number of stored rows.
	Count(ctx context.Context) int
}
