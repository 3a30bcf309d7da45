// internal/repository/postgres/schema.go
package postgres

import (
	"context"
	"fmt"
)

// schema is applied in order by Migrate. Every statement is idempotent.
//
// swipes_actor_pair_key treats a null target as '' so candidate swipes are
// unique per (actor, listing) and recruiter swipes per (actor, listing, target).
// pair_states holds one row per (candidate, listing); transactions touching a
// pair lock it first.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(255) PRIMARY KEY,
		role VARCHAR(20) NOT NULL CHECK (role IN ('candidate', 'recruiter', 'admin')),
		skills JSONB NOT NULL DEFAULT '[]',
		constraints JSONB NOT NULL DEFAULT '{}',
		subscription_tier VARCHAR(20) NOT NULL DEFAULT 'free',
		intent_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR(255) PRIMARY KEY,
		company_id VARCHAR(255) NOT NULL,
		owner_id VARCHAR(255) NOT NULL REFERENCES users(id),
		title TEXT NOT NULL DEFAULT '',
		required_skills TEXT[] NOT NULL DEFAULT '{}',
		constraints JSONB NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS listings_owner_active_idx ON listings (owner_id) WHERE active`,
	`CREATE TABLE IF NOT EXISTS swipes (
		id VARCHAR(255) PRIMARY KEY,
		actor_id VARCHAR(255) NOT NULL REFERENCES users(id),
		listing_id VARCHAR(255) NOT NULL REFERENCES listings(id),
		target_user_id VARCHAR(255) REFERENCES users(id),
		direction VARCHAR(5) NOT NULL CHECK (direction IN ('left', 'right')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS swipes_actor_pair_key
		ON swipes (actor_id, listing_id, COALESCE(target_user_id, ''))`,
	`CREATE INDEX IF NOT EXISTS swipes_right_by_actor_idx
		ON swipes (actor_id, created_at) WHERE direction = 'right'`,
	`CREATE INDEX IF NOT EXISTS swipes_listing_target_idx ON swipes (listing_id, target_user_id)`,
	`CREATE TABLE IF NOT EXISTS pair_states (
		candidate_id VARCHAR(255) NOT NULL,
		listing_id VARCHAR(255) NOT NULL,
		state VARCHAR(20) NOT NULL DEFAULT 'none',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (candidate_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL REFERENCES users(id),
		listing_id VARCHAR(255) NOT NULL REFERENCES listings(id),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id VARCHAR(255) PRIMARY KEY,
		candidate_id VARCHAR(255) NOT NULL REFERENCES users(id),
		listing_id VARCHAR(255) NOT NULL REFERENCES listings(id),
		reveal_status BOOLEAN NOT NULL DEFAULT false,
		explainability JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (candidate_id, listing_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id VARCHAR(255) PRIMARY KEY,
		match_id VARCHAR(255) NOT NULL REFERENCES matches(id),
		sender_id VARCHAR(255) NOT NULL REFERENCES users(id),
		content TEXT NOT NULL CHECK (char_length(content) BETWEEN 1 AND 4000),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS messages_match_idx ON messages (match_id, created_at)`,
}

// Migrate creates the tables and indexes the repository relies on.
func (r *Repository) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
