// Package store persists candidate items and consumer profiles. The Postgres
// implementation is the production store; the memory implementation backs
// tests and database-less runs. Both honor the same upsert contract: insert
// when the external identity is unseen, otherwise overwrite exactly the
// fields listed in types.ItemUpdate.
package store

import (
	"context"
	"time"

	"github.com/jonathan/issue-scout/internal/types"
)

// Store is the persistence contract the pipeline and profile layers use.
// Finds return nil (not an error) when nothing matches. Writes are assumed
// atomic per record; write acknowledgement is treated as durability.
type Store interface {
	FindItemByExternalID(ctx context.Context, externalID string) (*types.CandidateItem, error)
	UpsertItem(ctx context.Context, externalID string, createdAt time.Time, update types.ItemUpdate) error
	ListActiveItems(ctx context.Context) ([]types.CandidateItem, error)
	DeactivateItemsOlderThan(ctx context.Context, threshold time.Time) (int64, error)

	GetProfile(ctx context.Context, login string) (*types.ConsumerProfile, error)
	SaveProfile(ctx context.Context, profile *types.ConsumerProfile) error
}
