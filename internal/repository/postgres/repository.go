// internal/repository/postgres/repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/matching"
	"match-engine/internal/models"

	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repository implements matching.Repository on PostgreSQL via lib/pq.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

var _ matching.Repository = (*Repository)(nil)

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-repository"}),
	}
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", matching.ErrNotFound, kind, id)
}

// rowScanner is the common part of *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, role, skills, constraints, subscription_tier, intent_text`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                   models.User
		role, tier          string
		skills, constraints []byte
	)
	if err := row.Scan(&u.ID, &role, &skills, &constraints, &tier, &u.IntentText); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.SubscriptionTier = models.Tier(tier)
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills of user %s: %w", u.ID, err)
		}
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &u.Constraints); err != nil {
			return nil, fmt.Errorf("decode constraints of user %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

const listingColumns = `id, company_id, owner_id, title, required_skills, constraints, active, created_at`

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l           models.Listing
		constraints []byte
	)
	if err := row.Scan(&l.ID, &l.CompanyID, &l.OwnerID, &l.Title, pq.Array(&l.RequiredSkills), &constraints, &l.Active, &l.CreatedAt); err != nil {
		return nil, err
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &l.Constraints); err != nil {
			return nil, fmt.Errorf("decode constraints of listing %s: %w", l.ID, err)
		}
	}
	return &l, nil
}

const applicationColumns = `id, user_id, listing_id, status, created_at, updated_at`

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		a      models.Application
		status string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.ListingID, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}

const matchColumns = `id, candidate_id, listing_id, reveal_status, explainability, created_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m       models.Match
		explain []byte
	)
	if err := row.Scan(&m.ID, &m.CandidateID, &m.ListingID, &m.RevealStatus, &explain, &m.CreatedAt); err != nil {
		return nil, err
	}
	if len(explain) > 0 {
		if err := json.Unmarshal(explain, &m.Explainability); err != nil {
			return nil, fmt.Errorf("decode explainability of match %s: %w", m.ID, err)
		}
	}
	return &m, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Repository) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("listing", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (r *Repository) queryListings(ctx context.Context, op, query string, args ...interface{}) ([]models.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (r *Repository) FindEligibleListings(ctx context.Context, q matching.PoolQuery) ([]models.Listing, error) {
	return r.queryListings(ctx, "find eligible listings", `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.active
		  AND NOT EXISTS (
			SELECT 1 FROM swipes s
			WHERE s.actor_id = $1 AND s.listing_id = l.id
		  )
		ORDER BY l.created_at DESC, l.id
		LIMIT $2`, q.ActorID, q.Limit)
}

func (r *Repository) ListActiveListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	return r.queryListings(ctx, "list listings by owner", `
		SELECT `+listingColumns+`
		FROM listings
		WHERE owner_id = $1 AND active
		ORDER BY created_at, id`, ownerID)
}

func (r *Repository) FindEligibleCandidates(ctx context.Context, q matching.PoolQuery) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE u.role = 'candidate'
		  AND NOT EXISTS (
			SELECT 1 FROM swipes s
			WHERE s.actor_id = $1 AND s.target_user_id = u.id
		  )
		ORDER BY u.created_at, u.id
		LIMIT $2`, q.ActorID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("find eligible candidates: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("find eligible candidates: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find eligible candidates: %w", err)
	}
	return out, nil
}

func (r *Repository) CountRightSwipesSince(ctx context.Context, actorID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM swipes
		WHERE actor_id = $1 AND direction = 'right' AND created_at >= $2`, actorID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count right swipes: %w", err)
	}
	return n, nil
}

func (r *Repository) FindIncomingSignals(ctx context.Context, recruiterID string, limit int) ([]models.Signal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.actor_id, l.id, l.title, u.skills, u.constraints, u.intent_text, s.created_at
		FROM swipes s
		JOIN listings l ON l.id = s.listing_id
		JOIN users u ON u.id = s.actor_id
		WHERE l.owner_id = $1
		  AND l.active
		  AND s.target_user_id IS NULL
		  AND s.direction = 'right'
		  AND NOT EXISTS (
			SELECT 1 FROM swipes r
			WHERE r.actor_id = $1 AND r.listing_id = s.listing_id AND r.target_user_id = s.actor_id
		  )
		ORDER BY s.created_at DESC
		LIMIT $2`, recruiterID, limit)
	if err != nil {
		return nil, fmt.Errorf("find incoming signals: %w", err)
	}
	defer rows.Close()

	var out []models.Signal
	for rows.Next() {
		var (
			sig                 models.Signal
			skills, constraints []byte
		)
		if err := rows.Scan(&sig.SwipeID, &sig.CandidateID, &sig.ListingID, &sig.ListingTitle,
			&skills, &constraints, &sig.IntentText, &sig.ReceivedAt); err != nil {
			return nil, fmt.Errorf("find incoming signals: %w", err)
		}
		if len(skills) > 0 {
			if err := json.Unmarshal(skills, &sig.Skills); err != nil {
				return nil, fmt.Errorf("decode signal skills: %w", err)
			}
		}
		if len(constraints) > 0 {
			if err := json.Unmarshal(constraints, &sig.Constraints); err != nil {
				return nil, fmt.Errorf("decode signal constraints: %w", err)
			}
		}
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find incoming signals: %w", err)
	}
	return out, nil
}

func (r *Repository) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("application", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// UpdateApplicationStatus is a compare-and-set on the status column.
func (r *Repository) UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE applications SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if !exists {
		return notFound("application", id)
	}
	return fmt.Errorf("%w: application %s is no longer %s", matching.ErrApplicationConflict, id, from)
}

func (r *Repository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("match", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (r *Repository) ListMatches(ctx context.Context, actorID string, role models.Role) ([]models.Match, error) {
	var query string
	switch role {
	case models.RoleCandidate:
		query = `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE candidate_id = $1
		ORDER BY created_at DESC, id`
	case models.RoleRecruiter:
		query = `
		SELECT m.id, m.candidate_id, m.listing_id, m.reveal_status, m.explainability, m.created_at
		FROM matches m
		JOIN listings l ON l.id = m.listing_id
		WHERE l.owner_id = $1
		ORDER BY m.created_at DESC, m.id`
	default:
		return []models.Match{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateMessage(ctx context.Context, msg *models.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, match_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.MatchID, msg.SenderID, msg.Content, msg.CreatedAt)
	if isPQCode(err, foreignKeyViolation) {
		return notFound("match", msg.MatchID)
	}
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// WithinTx runs fn in a READ COMMITTED transaction. Pair serialization comes
// from Tx.LockPair, not from the isolation level.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx matching.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &tx{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error("rollback failed", map[string]interface{}{
				"error":      rbErr.Error(),
				"cause":      err.Error(),
				"rolledBack": false,
			})
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
