package matching

import (
	"context"
	"time"

	"match-engine/internal/models"
)

// PoolQuery bounds a feed pool fetch. Items already swiped by ActorID are
// excluded by the store, never filtered afterwards.
type PoolQuery struct {
	ActorID string
	Limit   int
}

// Repository is the relational store behind the engine. Implementations may
// encrypt fields at rest; the engine only sees decoded models.
//
// Lookups return ErrNotFound when the row is absent.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)

	// FindEligibleListings returns active listings not swiped by the actor.
	FindEligibleListings(ctx context.Context, q PoolQuery) ([]models.Listing, error)
	// FindEligibleCandidates returns candidates the recruiter has not swiped.
	FindEligibleCandidates(ctx context.Context, q PoolQuery) ([]models.User, error)
	ListActiveListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)

	CountRightSwipesSince(ctx context.Context, actorID string, since time.Time) (int, error)
	FindIncomingSignals(ctx context.Context, recruiterID string, limit int) ([]models.Signal, error)

	GetApplication(ctx context.Context, id string) (*models.Application, error)
	// UpdateApplicationStatus moves id from one status to another and returns
	// ErrApplicationConflict if the stored status is no longer from.
	UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, at time.Time) error

	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, actorID string, role models.Role) ([]models.Match, error)
	CreateMessage(ctx context.Context, msg *models.Message) error

	// WithinTx runs fn in one transaction, committing only if fn returns nil.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the transactional write path of a swipe.
type Tx interface {
	// LockPair upserts the pair's state row and holds its lock until the
	// transaction ends, serializing concurrent swipes on the same pair.
	LockPair(ctx context.Context, pair models.PairKey, at time.Time) (models.PairState, error)
	SetPairState(ctx context.Context, pair models.PairKey, state models.PairState, at time.Time) error

	// CreateSwipe returns ErrAlreadySwiped on a uniqueness violation.
	CreateSwipe(ctx context.Context, s *models.Swipe) error
	CreateApplicationIfAbsent(ctx context.Context, app *models.Application) (bool, error)
	// FindReciprocalSwipe returns the right swipe on pair made from side, or nil.
	FindReciprocalSwipe(ctx context.Context, pair models.PairKey, from models.Side) (*models.Swipe, error)
	CreateMatchIfAbsent(ctx context.Context, m *models.Match) (bool, error)
	GetMatchByPair(ctx context.Context, pair models.PairKey) (*models.Match, error)
	// AdvancePendingApplication moves a pending application on pair to status.
	AdvancePendingApplication(ctx context.Context, pair models.PairKey, status models.ApplicationStatus, at time.Time) (bool, error)
}

// Views is the derived read cache.
type Views interface {
	// Fetch decodes the cached view under key into dst, computing and storing
	// it on a miss. Cache failures fall back to compute.
	Fetch(ctx context.Context, key string, ttl time.Duration, dst interface{}, compute func(context.Context) (interface{}, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Dispatcher receives post-commit events. Dispatch must not block.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt models.Event)
}
