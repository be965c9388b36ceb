package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/issue-scout/internal/types"
)

// Memory is an in-memory Store for tests and database-less runs. It mirrors
// the Postgres implementation's contract, including the ItemUpdate overwrite
// semantics.
type Memory struct {
	mu       sync.RWMutex
	items    map[string]types.CandidateItem
	profiles map[string]types.ConsumerProfile
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:    make(map[string]types.CandidateItem),
		profiles: make(map[string]types.ConsumerProfile),
	}
}

// FindItemByExternalID returns a copy of the stored item, or nil when unseen.
func (m *Memory) FindItemByExternalID(_ context.Context, externalID string) (*types.CandidateItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[externalID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// UpsertItem inserts or overwrites the update fields of an existing record.
func (m *Memory) UpsertItem(_ context.Context, externalID string, createdAt time.Time, u types.ItemUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[externalID]
	if !ok {
		item = types.CandidateItem{
			ExternalID: externalID,
			CreatedAt:  createdAt,
		}
	}

	item.Title = u.Title
	item.Body = u.Body
	item.State = u.State
	item.Repository = u.Repository
	item.Labels = u.Labels
	item.Difficulty = u.Difficulty
	item.RequiredSkills = u.RequiredSkills
	item.EstimatedEffort = u.EstimatedEffort
	item.PopularityScore = u.PopularityScore
	item.UpdatedAt = u.UpdatedAt
	item.LastActivityAt = u.LastActivityAt
	item.Active = u.Active

	m.items[externalID] = item
	return nil
}

// ListActiveItems returns active items, most recently active first.
func (m *Memory) ListActiveItems(_ context.Context) ([]types.CandidateItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []types.CandidateItem
	for _, item := range m.items {
		if item.Active {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastActivityAt.After(items[j].LastActivityAt)
	})
	return items, nil
}

// DeactivateItemsOlderThan flips active off for stale items.
func (m *Memory) DeactivateItemsOlderThan(_ context.Context, threshold time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, item := range m.items {
		if item.Active && item.LastActivityAt.Before(threshold) {
			item.Active = false
			m.items[id] = item
			n++
		}
	}
	return n, nil
}

// GetProfile returns a copy of the stored profile, or nil when unseen.
func (m *Memory) GetProfile(_ context.Context, login string) (*types.ConsumerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[login]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// SaveProfile upserts a profile keyed by login.
func (m *Memory) SaveProfile(_ context.Context, profile *types.ConsumerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	m.profiles[profile.Login] = *profile
	return nil
}

// ItemCount reports how many items are stored, active or not.
func (m *Memory) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
