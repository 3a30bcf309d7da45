// internal/matching/intake.go
package matching

import (
	"context"
	"errors"
	"strings"

	"match-engine/internal/cache"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

type SwipeRequest struct {
	ActorID      string
	ListingID    string
	TargetUserID string
	Direction    models.Direction
}

func (r *SwipeRequest) normalize() {
	r.ActorID = strings.TrimSpace(r.ActorID)
	r.ListingID = strings.TrimSpace(r.ListingID)
	r.TargetUserID = strings.TrimSpace(r.TargetUserID)
	r.Direction = models.Direction(strings.ToLower(strings.TrimSpace(string(r.Direction))))
}

func (r SwipeRequest) validate() error {
	if r.ActorID == "" {
		return wrapf(ErrValidation, "actorId is required")
	}
	if r.ListingID == "" {
		return wrapf(ErrValidation, "listingId is required")
	}
	if !r.Direction.Valid() {
		return wrapf(ErrValidation, "direction must be left or right, got %q", r.Direction)
	}
	return nil
}

type SwipeResult struct {
	Accepted     bool                `json:"accepted"`
	MatchCreated bool                `json:"matchCreated"`
	Match        *models.Match       `json:"match,omitempty"`
	Application  *models.Application `json:"application,omitempty"`
	PairState    models.PairState    `json:"pairState"`
}

// swipeTarget is a validated swipe with the parties it concerns.
type swipeTarget struct {
	intent    models.SwipeIntent
	actor     *models.User
	candidate *models.User
	listing   *models.Listing
}

// SubmitSwipe records a swipe and, in the same transaction, the candidate's
// application and any match it completes. Views are invalidated and events
// emitted only after the transaction commits.
func (e *Engine) SubmitSwipe(ctx context.Context, req SwipeRequest) (res *SwipeResult, err error) {
	req.normalize()
	ctx, span := e.startSpan(ctx, "SubmitSwipe",
		attribute.String("actor.id", req.ActorID),
		attribute.String("listing.id", req.ListingID),
		attribute.String("direction", string(req.Direction)),
	)
	defer func() { endSpan(span, err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	target, err := e.resolveSwipe(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Direction == models.DirectionRight {
		if err := e.enforceQuota(ctx, target.actor); err != nil {
			return nil, err
		}
	}

	var (
		det        *Detection
		createdApp *models.Application
	)
	pair := target.intent.Pair()
	err = e.repo.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		now := e.now()

		prior, err := tx.LockPair(ctx, pair, now)
		if err != nil {
			return err
		}

		if err := tx.CreateSwipe(ctx, target.intent.Record(e.newID(), now)); err != nil {
			return err
		}

		if target.intent.Side() == models.SideCandidate && req.Direction == models.DirectionRight {
			app := &models.Application{
				ID:        e.newID(),
				UserID:    pair.CandidateID,
				ListingID: pair.ListingID,
				Status:    models.StatusPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			created, err := tx.CreateApplicationIfAbsent(ctx, app)
			if err != nil {
				return err
			}
			if created {
				createdApp = app
			}
		}

		det, err = e.detector.Detect(ctx, tx, target.intent, target.candidate, target.listing, prior)
		if err != nil {
			return err
		}
		if det.State != prior {
			return tx.SetPairState(ctx, pair, det.State, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySwiped) {
			metrics.SwipesRejected.WithLabelValues("already_swiped").Inc()
			return nil, err
		}
		e.logger.Error("swipe transaction failed", map[string]interface{}{
			"actorId":   req.ActorID,
			"listingId": req.ListingID,
			"error":     err.Error(),
		})
		return nil, storeFailure("record swipe", err)
	}

	e.invalidate(ctx, swipeViewKeys(target)...)

	metrics.SwipesRecorded.WithLabelValues(string(target.actor.Role), string(req.Direction)).Inc()
	if createdApp != nil {
		metrics.ApplicationsCreated.Inc()
		if det.Advanced {
			createdApp.Status = models.StatusReviewing
		}
		e.emit(ctx, models.NewApplicationCreated(e.newID(), e.now(), createdApp))
	}
	if det.Created {
		metrics.MatchesCreated.Inc()
		e.emit(ctx, models.NewMatchCreated(e.newID(), e.now(), det.Match))
		e.logger.Info("match created", map[string]interface{}{
			"matchId":     det.Match.ID,
			"candidateId": det.Match.CandidateID,
			"listingId":   det.Match.ListingID,
		})
	}

	return &SwipeResult{
		Accepted:     true,
		MatchCreated: det.Created,
		Match:        det.Match,
		Application:  createdApp,
		PairState:    det.State,
	}, nil
}

// resolveSwipe checks the actor's role against the swipe shape and loads the
// listing and candidate the swipe concerns.
func (e *Engine) resolveSwipe(ctx context.Context, req SwipeRequest) (*swipeTarget, error) {
	actor, err := e.loadActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleCandidate:
		if req.TargetUserID != "" {
			return nil, wrapf(ErrValidation, "candidates swipe on listings, not users")
		}
		listing, err := e.activeListing(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		return &swipeTarget{
			intent:    models.CandidateSwipe{CandidateID: actor.ID, ListingID: listing.ID, Dir: req.Direction},
			actor:     actor,
			candidate: actor,
			listing:   listing,
		}, nil

	case models.RoleRecruiter:
		if req.TargetUserID == "" {
			return nil, wrapf(ErrValidation, "targetUserId is required for recruiter swipes")
		}
		listing, err := e.activeListing(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.OwnerID != actor.ID {
			return nil, wrapf(ErrForbidden, "listing %s is not owned by %s", listing.ID, actor.ID)
		}
		candidate, err := e.repo.GetUser(ctx, req.TargetUserID)
		if err != nil {
			if isNotFound(err) {
				return nil, wrapf(ErrNotFound, "candidate %s", req.TargetUserID)
			}
			return nil, storeFailure("load candidate", err)
		}
		if candidate.Role != models.RoleCandidate {
			return nil, wrapf(ErrNotFound, "candidate %s", req.TargetUserID)
		}
		return &swipeTarget{
			intent: models.RecruiterSwipe{
				RecruiterID: actor.ID,
				CandidateID: candidate.ID,
				ListingID:   listing.ID,
				Dir:         req.Direction,
			},
			actor:     actor,
			candidate: candidate,
			listing:   listing,
		}, nil
	}

	return nil, wrapf(ErrUnauthorized, "role %q cannot swipe", actor.Role)
}

func (e *Engine) activeListing(ctx context.Context, id string) (*models.Listing, error) {
	listing, err := e.repo.GetListing(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, wrapf(ErrNotFound, "listing %s", id)
		}
		return nil, storeFailure("load listing", err)
	}
	if !listing.Active {
		return nil, wrapf(ErrNotFound, "listing %s", id)
	}
	return listing, nil
}

func (e *Engine) enforceQuota(ctx context.Context, actor *models.User) error {
	used, err := e.repo.CountRightSwipesSince(ctx, actor.ID, DayStart(e.now()))
	if err != nil {
		return storeFailure("count right swipes", err)
	}
	if err := e.quota.Check(actor.SubscriptionTier, used); err != nil {
		metrics.SwipesRejected.WithLabelValues("quota_exceeded").Inc()
		e.logger.Warn("daily swipe quota reached", map[string]interface{}{
			"actorId": actor.ID,
			"tier":    string(actor.SubscriptionTier),
			"used":    used,
			"limit":   e.quota.Limit(actor.SubscriptionTier),
		})
		return err
	}
	return nil
}

// swipeViewKeys lists the views a committed swipe can change: the actor's own
// feed and, for right swipes, the incoming signals of the listing owner.
func swipeViewKeys(t *swipeTarget) []string {
	switch t.intent.Side() {
	case models.SideCandidate:
		keys := []string{cache.CandidateFeedKey(t.actor.ID)}
		if t.intent.Direction() == models.DirectionRight && t.listing.OwnerID != "" {
			keys = append(keys, cache.IncomingSignalsKey(t.listing.OwnerID))
		}
		return keys
	default:
		return []string{
			cache.RecruiterFeedKey(t.actor.ID),
			cache.IncomingSignalsKey(t.actor.ID),
		}
	}
}
