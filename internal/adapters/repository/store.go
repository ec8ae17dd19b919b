// Package repository defines the session record store interface and errors.
package repository

import (
	"context"

	"github.com/okian/parley/internal/domain/model"
)

// Store provides read/write access to finalized session records.
type Store interface {
	// Save persists a finalized session record, overwriting any record
	// with the same session id.
	Save(ctx context.Context, rec model.SessionRecord) error

	// Load returns the record for a session id.
	// Returns ErrNotFound if the session is unknown.
	Load(ctx context.Context, sessionID string) (model.SessionRecord, error)

	// List returns the ids of all persisted sessions, most recent first.
	List(ctx context.Context) ([]string, error)

	// Count returns the number of persisted session records.
	Count(ctx context.Context) int
}
