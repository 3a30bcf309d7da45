package memstore

import (
	"context"
	"fmt"
	"time"

	"match-engine/internal/matching"
	"match-engine/internal/models"
)

type tx struct {
	store *Store
	st    *state
}

func (t *tx) LockPair(ctx context.Context, pair models.PairKey, at time.Time) (models.PairState, error) {
	if err := t.store.failure("LockPair"); err != nil {
		return "", err
	}
	st, ok := t.st.pairs[pair]
	if !ok {
		st = models.PairNoInteraction
		t.st.pairs[pair] = st
	}
	return st, nil
}

func (t *tx) SetPairState(ctx context.Context, pair models.PairKey, state models.PairState, at time.Time) error {
	if err := t.store.failure("SetPairState"); err != nil {
		return err
	}
	t.st.pairs[pair] = state
	return nil
}

func (t *tx) CreateSwipe(ctx context.Context, s *models.Swipe) error {
	if err := t.store.failure("CreateSwipe"); err != nil {
		return err
	}
	key := swipeKey{actorID: s.ActorID, listingID: s.ListingID, targetID: s.TargetUserID}
	if _, dup := t.st.swipeKeys[key]; dup {
		return fmt.Errorf("%w: actor %s on listing %s", matching.ErrAlreadySwiped, s.ActorID, s.ListingID)
	}
	t.st.swipeKeys[key] = struct{}{}
	t.st.swipes = append(t.st.swipes, *s)
	return nil
}

func (t *tx) CreateApplicationIfAbsent(ctx context.Context, app *models.Application) (bool, error) {
	if err := t.store.failure("CreateApplicationIfAbsent"); err != nil {
		return false, err
	}
	pair := models.PairKey{CandidateID: app.UserID, ListingID: app.ListingID}
	if _, exists := t.st.appByPair[pair]; exists {
		return false, nil
	}
	t.st.apps[app.ID] = *app
	t.st.appByPair[pair] = app.ID
	return true, nil
}

func (t *tx) FindReciprocalSwipe(ctx context.Context, pair models.PairKey, from models.Side) (*models.Swipe, error) {
	if err := t.store.failure("FindReciprocalSwipe"); err != nil {
		return nil, err
	}
	for i := range t.st.swipes {
		sw := t.st.swipes[i]
		if sw.Direction != models.DirectionRight || sw.ListingID != pair.ListingID {
			continue
		}
		switch from {
		case models.SideCandidate:
			if sw.TargetUserID == "" && sw.ActorID == pair.CandidateID {
				return &sw, nil
			}
		case models.SideRecruiter:
			if sw.TargetUserID == pair.CandidateID {
				return &sw, nil
			}
		}
	}
	return nil, nil
}

func (t *tx) CreateMatchIfAbsent(ctx context.Context, m *models.Match) (bool, error) {
	if err := t.store.failure("CreateMatchIfAbsent"); err != nil {
		return false, err
	}
	pair := m.Pair()
	if _, exists := t.st.matchByPair[pair]; exists {
		return false, nil
	}
	t.st.matches[m.ID] = *m
	t.st.matchByPair[pair] = m.ID
	return true, nil
}

func (t *tx) GetMatchByPair(ctx context.Context, pair models.PairKey) (*models.Match, error) {
	id, ok := t.st.matchByPair[pair]
	if !ok {
		return nil, notFound("match for pair", pair.CandidateID+"/"+pair.ListingID)
	}
	m := t.st.matches[id]
	return &m, nil
}

func (t *tx) AdvancePendingApplication(ctx context.Context, pair models.PairKey, status models.ApplicationStatus, at time.Time) (bool, error) {
	if err := t.store.failure("AdvancePendingApplication"); err != nil {
		return false, err
	}
	id, ok := t.st.appByPair[pair]
	if !ok {
		return false, nil
	}
	app := t.st.apps[id]
	if app.Status != models.StatusPending {
		return false, nil
	}
	app.Status = status
	app.UpdatedAt = at
	t.st.apps[id] = app
	return true, nil
}
