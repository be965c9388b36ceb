package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/issue-scout/internal/types"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Migrate creates the schema when it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS candidate_items (
	external_id       TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	body              TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL,
	repository        JSONB NOT NULL,
	labels            JSONB NOT NULL DEFAULT '[]',
	difficulty        TEXT NOT NULL,
	required_skills   JSONB NOT NULL DEFAULT '[]',
	estimated_effort  INT NOT NULL,
	popularity_score  DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL,
	last_activity_at  TIMESTAMPTZ NOT NULL,
	active            BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_candidate_items_active
	ON candidate_items (active, last_activity_at);

CREATE TABLE IF NOT EXISTS consumer_profiles (
	id                     UUID PRIMARY KEY,
	login                  TEXT NOT NULL UNIQUE,
	skills                 JSONB NOT NULL DEFAULT '[]',
	technology_usage       JSONB NOT NULL DEFAULT '[]',
	preferred_difficulties JSONB NOT NULL DEFAULT '[]',
	updated_at             TIMESTAMPTZ NOT NULL
);`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// FindItemByExternalID returns the stored item, or nil when unseen.
func (p *Postgres) FindItemByExternalID(ctx context.Context, externalID string) (*types.CandidateItem, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT external_id, title, body, state, repository, labels, difficulty,
		        required_skills, estimated_effort, popularity_score,
		        created_at, updated_at, last_activity_at, active
		 FROM candidate_items WHERE external_id = $1`,
		externalID,
	)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item %s: %w", externalID, err)
	}
	return item, nil
}

// UpsertItem inserts a new record keyed by external identity, or overwrites
// the ItemUpdate fields of an existing one. Re-running with identical input
// yields an identical stored record.
func (p *Postgres) UpsertItem(ctx context.Context, externalID string, createdAt time.Time, u types.ItemUpdate) error {
	repoJSON, err := json.Marshal(u.Repository)
	if err != nil {
		return fmt.Errorf("failed to marshal repository: %w", err)
	}
	labelsJSON, err := json.Marshal(emptyIfNil(u.Labels))
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}
	skillsJSON, err := json.Marshal(emptyIfNil(u.RequiredSkills))
	if err != nil {
		return fmt.Errorf("failed to marshal required skills: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO candidate_items (
			external_id, title, body, state, repository, labels, difficulty,
			required_skills, estimated_effort, popularity_score,
			created_at, updated_at, last_activity_at, active
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 ON CONFLICT (external_id) DO UPDATE SET
			title = $2, body = $3, state = $4, repository = $5, labels = $6,
			difficulty = $7, required_skills = $8, estimated_effort = $9,
			popularity_score = $10, updated_at = $12, last_activity_at = $13,
			active = $14`,
		externalID, u.Title, u.Body, string(u.State), repoJSON, labelsJSON,
		string(u.Difficulty), skillsJSON, u.EstimatedEffort, u.PopularityScore,
		createdAt, u.UpdatedAt, u.LastActivityAt, u.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", externalID, err)
	}
	return nil
}

// ListActiveItems returns all active items, most recently active first.
func (p *Postgres) ListActiveItems(ctx context.Context) ([]types.CandidateItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT external_id, title, body, state, repository, labels, difficulty,
		        required_skills, estimated_effort, popularity_score,
		        created_at, updated_at, last_activity_at, active
		 FROM candidate_items WHERE active ORDER BY last_activity_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active items: %w", err)
	}
	defer rows.Close()

	var items []types.CandidateItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeactivateItemsOlderThan flips active off for items whose last activity
// predates the threshold, returning how many were touched.
func (p *Postgres) DeactivateItemsOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE candidate_items SET active = FALSE
		 WHERE active AND last_activity_at < $1`,
		threshold,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate stale items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetProfile returns the stored profile for a login, or nil when unseen.
func (p *Postgres) GetProfile(ctx context.Context, login string) (*types.ConsumerProfile, error) {
	var (
		profile        types.ConsumerProfile
		skillsJSON     []byte
		usageJSON      []byte
		difficultyJSON []byte
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, login, skills, technology_usage, preferred_difficulties, updated_at
		 FROM consumer_profiles WHERE login = $1`,
		login,
	).Scan(&profile.ID, &profile.Login, &skillsJSON, &usageJSON, &difficultyJSON, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", login, err)
	}

	if err := json.Unmarshal(skillsJSON, &profile.Skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills for %s: %w", login, err)
	}
	if err := json.Unmarshal(usageJSON, &profile.TechnologyUsage); err != nil {
		return nil, fmt.Errorf("failed to decode technology usage for %s: %w", login, err)
	}
	if err := json.Unmarshal(difficultyJSON, &profile.PreferredDifficulties); err != nil {
		return nil, fmt.Errorf("failed to decode preferred difficulties for %s: %w", login, err)
	}
	return &profile, nil
}

// SaveProfile upserts a profile keyed by login, assigning an ID on first save.
func (p *Postgres) SaveProfile(ctx context.Context, profile *types.ConsumerProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	skillsJSON, err := json.Marshal(profile.Skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}
	usageJSON, err := json.Marshal(profile.TechnologyUsage)
	if err != nil {
		return fmt.Errorf("failed to marshal technology usage: %w", err)
	}
	difficultyJSON, err := json.Marshal(emptyIfNil(profile.PreferredDifficulties))
	if err != nil {
		return fmt.Errorf("failed to marshal preferred difficulties: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO consumer_profiles (id, login, skills, technology_usage, preferred_difficulties, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (login) DO UPDATE SET
			skills = $3, technology_usage = $4, preferred_difficulties = $5, updated_at = $6`,
		profile.ID, profile.Login, skillsJSON, usageJSON, difficultyJSON, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.Login, err)
	}
	return nil
}

// scanItem reads one candidate_items row.
func scanItem(row pgx.Row) (*types.CandidateItem, error) {
	var (
		item       types.CandidateItem
		state      string
		difficulty string
		repoJSON   []byte
		labelsJSON []byte
		skillsJSON []byte
	)
	err := row.Scan(
		&item.ExternalID, &item.Title, &item.Body, &state, &repoJSON,
		&labelsJSON, &difficulty, &skillsJSON, &item.EstimatedEffort,
		&item.PopularityScore, &item.CreatedAt, &item.UpdatedAt,
		&item.LastActivityAt, &item.Active,
	)
	if err != nil {
		return nil, err
	}

	item.State = types.ItemState(state)
	item.Difficulty = types.DifficultyTier(difficulty)
	if err := json.Unmarshal(repoJSON, &item.Repository); err != nil {
		return nil, fmt.Errorf("decode repository: %w", err)
	}
	if err := json.Unmarshal(labelsJSON, &item.Labels); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if err := json.Unmarshal(skillsJSON, &item.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decode required skills: %w", err)
	}
	return &item, nil
}

// emptyIfNil keeps JSONB columns as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
