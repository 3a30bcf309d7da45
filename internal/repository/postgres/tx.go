// internal/repository/postgres/tx.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"match-engine/internal/matching"
	"match-engine/internal/models"
)

type tx struct {
	q querier
}

var _ matching.Tx = (*tx)(nil)

// LockPair upserts the pair row and holds its lock until the transaction ends.
// A concurrent swipe on the same pair blocks here and, under READ COMMITTED,
// sees this transaction's swipe once it proceeds.
func (t *tx) LockPair(ctx context.Context, pair models.PairKey, at time.Time) (models.PairState, error) {
	var state string
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO pair_states (candidate_id, listing_id, state, updated_at)
		VALUES ($1, $2, 'none', $3)
		ON CONFLICT (candidate_id, listing_id) DO UPDATE SET updated_at = pair_states.updated_at
		RETURNING state`, pair.CandidateID, pair.ListingID, at).Scan(&state)
	if err != nil {
		return "", fmt.Errorf("lock pair: %w", err)
	}
	return models.PairState(state), nil
}

func (t *tx) SetPairState(ctx context.Context, pair models.PairKey, state models.PairState, at time.Time) error {
	_, err := t.q.ExecContext(ctx, `
		UPDATE pair_states SET state = $3, updated_at = $4
		WHERE candidate_id = $1 AND listing_id = $2`,
		pair.CandidateID, pair.ListingID, string(state), at)
	if err != nil {
		return fmt.Errorf("set pair state: %w", err)
	}
	return nil
}

func (t *tx) CreateSwipe(ctx context.Context, s *models.Swipe) error {
	target := sql.NullString{String: s.TargetUserID, Valid: s.TargetUserID != ""}
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO swipes (id, actor_id, listing_id, target_user_id, direction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.ActorID, s.ListingID, target, string(s.Direction), s.CreatedAt)
	if isPQCode(err, uniqueViolation) {
		return fmt.Errorf("%w: actor %s on listing %s", matching.ErrAlreadySwiped, s.ActorID, s.ListingID)
	}
	if err != nil {
		return fmt.Errorf("create swipe: %w", err)
	}
	return nil
}

func (t *tx) CreateApplicationIfAbsent(ctx context.Context, app *models.Application) (bool, error) {
	res, err := t.q.ExecContext(ctx, `
		INSERT INTO applications (id, user_id, listing_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, listing_id) DO NOTHING`,
		app.ID, app.UserID, app.ListingID, string(app.Status), app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("create application: %w", err)
	}
	return inserted(res, "create application")
}

func (t *tx) FindReciprocalSwipe(ctx context.Context, pair models.PairKey, from models.Side) (*models.Swipe, error) {
	var row *sql.Row
	switch from {
	case models.SideCandidate:
		row = t.q.QueryRowContext(ctx, `
			SELECT id, actor_id, listing_id, target_user_id, direction, created_at
			FROM swipes
			WHERE actor_id = $1 AND listing_id = $2 AND target_user_id IS NULL AND direction = 'right'`,
			pair.CandidateID, pair.ListingID)
	case models.SideRecruiter:
		row = t.q.QueryRowContext(ctx, `
			SELECT id, actor_id, listing_id, target_user_id, direction, created_at
			FROM swipes
			WHERE listing_id = $1 AND target_user_id = $2 AND direction = 'right'
			ORDER BY created_at
			LIMIT 1`,
			pair.ListingID, pair.CandidateID)
	default:
		return nil, fmt.Errorf("find reciprocal swipe: unknown side %v", from)
	}

	var (
		s         models.Swipe
		target    sql.NullString
		direction string
	)
	err := row.Scan(&s.ID, &s.ActorID, &s.ListingID, &target, &direction, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find reciprocal swipe: %w", err)
	}
	s.TargetUserID = target.String
	s.Direction = models.Direction(direction)
	return &s, nil
}

func (t *tx) CreateMatchIfAbsent(ctx context.Context, m *models.Match) (bool, error) {
	explain, err := json.Marshal(m.Explainability)
	if err != nil {
		return false, fmt.Errorf("encode explainability: %w", err)
	}
	res, err := t.q.ExecContext(ctx, `
		INSERT INTO matches (id, candidate_id, listing_id, reveal_status, explainability, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (candidate_id, listing_id) DO NOTHING`,
		m.ID, m.CandidateID, m.ListingID, m.RevealStatus, explain, m.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("create match: %w", err)
	}
	return inserted(res, "create match")
}

func (t *tx) GetMatchByPair(ctx context.Context, pair models.PairKey) (*models.Match, error) {
	m, err := scanMatch(t.q.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE candidate_id = $1 AND listing_id = $2`, pair.CandidateID, pair.ListingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("match for pair", pair.CandidateID+"/"+pair.ListingID)
	}
	if err != nil {
		return nil, fmt.Errorf("get match by pair: %w", err)
	}
	return m, nil
}

func (t *tx) AdvancePendingApplication(ctx context.Context, pair models.PairKey, status models.ApplicationStatus, at time.Time) (bool, error) {
	res, err := t.q.ExecContext(ctx, `
		UPDATE applications SET status = $3, updated_at = $4
		WHERE user_id = $1 AND listing_id = $2 AND status = 'pending'`,
		pair.CandidateID, pair.ListingID, string(status), at)
	if err != nil {
		return false, fmt.Errorf("advance application: %w", err)
	}
	return inserted(res, "advance application")
}

// inserted reports whether a conditional write touched exactly one row.
func inserted(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
