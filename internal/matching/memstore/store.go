// internal/matching/memstore/store.go

// Package memstore is an in-memory matching.Repository. It enforces the same
// uniqueness rules as the relational schema and gives transactions all or
// nothing semantics, which makes it suitable for tests and local runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"match-engine/internal/matching"
	"match-engine/internal/models"
)

type swipeKey struct {
	actorID   string
	listingID string
	targetID  string
}

type state struct {
	users        map[string]models.User
	userOrder    []string
	listings     map[string]models.Listing
	listingOrder []string
	swipes       []models.Swipe
	swipeKeys    map[swipeKey]struct{}
	apps         map[string]models.Application
	appByPair    map[models.PairKey]string
	matches      map[string]models.Match
	matchByPair  map[models.PairKey]string
	pairs        map[models.PairKey]models.PairState
	messages     []models.Message
}

func newState() *state {
	return &state{
		users:       map[string]models.User{},
		listings:    map[string]models.Listing{},
		swipeKeys:   map[swipeKey]struct{}{},
		apps:        map[string]models.Application{},
		appByPair:   map[models.PairKey]string{},
		matches:     map[string]models.Match{},
		matchByPair: map[models.PairKey]string{},
		pairs:       map[models.PairKey]models.PairState{},
	}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[string]models.User, len(s.users)),
		userOrder:    append([]string(nil), s.userOrder...),
		listings:     make(map[string]models.Listing, len(s.listings)),
		listingOrder: append([]string(nil), s.listingOrder...),
		swipes:       append([]models.Swipe(nil), s.swipes...),
		swipeKeys:    make(map[swipeKey]struct{}, len(s.swipeKeys)),
		apps:         make(map[string]models.Application, len(s.apps)),
		appByPair:    make(map[models.PairKey]string, len(s.appByPair)),
		matches:      make(map[string]models.Match, len(s.matches)),
		matchByPair:  make(map[models.PairKey]string, len(s.matchByPair)),
		pairs:        make(map[models.PairKey]models.PairState, len(s.pairs)),
		messages:     append([]models.Message(nil), s.messages...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k := range s.swipeKeys {
		c.swipeKeys[k] = struct{}{}
	}
	for k, v := range s.apps {
		c.apps[k] = v
	}
	for k, v := range s.appByPair {
		c.appByPair[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.matchByPair {
		c.matchByPair[k] = v
	}
	for k, v := range s.pairs {
		c.pairs[k] = v
	}
	return c
}

// Store is safe for concurrent use. Writes run one at a time; a transaction
// works on a private copy that replaces the shared state on commit.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state

	failMu   sync.Mutex
	failures map[string]error
}

var _ matching.Repository = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOn makes every later call to op return err until cleared with a nil err.
// op is the method name, e.g. "CreateMatchIfAbsent".
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

func (s *Store) AddUser(u models.User) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[u.ID]; !ok {
		s.st.userOrder = append(s.st.userOrder, u.ID)
	}
	s.st.users[u.ID] = u
}

func (s *Store) AddListing(l models.Listing) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.listings[l.ID]; !ok {
		s.st.listingOrder = append(s.st.listingOrder, l.ID)
	}
	s.st.listings[l.ID] = l
}

func (s *Store) Swipes() []models.Swipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Swipe(nil), s.st.swipes...)
}

func (s *Store) Applications() []models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, 0, len(s.st.apps))
	for _, a := range s.st.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ApplicationFor(pair models.PairKey) (models.Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.st.appByPair[pair]
	if !ok {
		return models.Application{}, false
	}
	return s.st.apps[id], true
}

func (s *Store) MatchesFor(pair models.PairKey) []models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Match
	for _, m := range s.st.matches {
		if m.Pair() == pair {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) PairState(pair models.PairKey) models.PairState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.st.pairs[pair]; ok {
		return st
	}
	return models.PairNoInteraction
}

func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.st.messages...)
}

func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", matching.ErrNotFound, kind, id)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := s.failure("GetUser"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.st.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *Store) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	if err := s.failure("GetListing"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.st.listings[id]
	if !ok {
		return nil, notFound("listing", id)
	}
	return &l, nil
}

func (s *Store) FindEligibleListings(ctx context.Context, q matching.PoolQuery) ([]models.Listing, error) {
	if err := s.failure("FindEligibleListings"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	swiped := map[string]bool{}
	for _, sw := range s.st.swipes {
		if sw.ActorID == q.ActorID {
			swiped[sw.ListingID] = true
		}
	}
	var out []models.Listing
	for _, id := range s.st.listingOrder {
		l := s.st.listings[id]
		if !l.Active || swiped[l.ID] {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) FindEligibleCandidates(ctx context.Context, q matching.PoolQuery) ([]models.User, error) {
	if err := s.failure("FindEligibleCandidates"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	swiped := map[string]bool{}
	for _, sw := range s.st.swipes {
		if sw.ActorID == q.ActorID && sw.TargetUserID != "" {
			swiped[sw.TargetUserID] = true
		}
	}
	var out []models.User
	for _, id := range s.st.userOrder {
		u := s.st.users[id]
		if u.Role != models.RoleCandidate || swiped[u.ID] {
			continue
		}
		out = append(out, u)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListActiveListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	if err := s.failure("ListActiveListingsByOwner"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Listing
	for _, id := range s.st.listingOrder {
		l := s.st.listings[id]
		if l.Active && l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) CountRightSwipesSince(ctx context.Context, actorID string, since time.Time) (int, error) {
	if err := s.failure("CountRightSwipesSince"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sw := range s.st.swipes {
		if sw.ActorID == actorID && sw.Direction == models.DirectionRight && !sw.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindIncomingSignals(ctx context.Context, recruiterID string, limit int) ([]models.Signal, error) {
	if err := s.failure("FindIncomingSignals"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	answered := map[models.PairKey]bool{}
	for _, sw := range s.st.swipes {
		if sw.ActorID == recruiterID && sw.TargetUserID != "" {
			answered[models.PairKey{CandidateID: sw.TargetUserID, ListingID: sw.ListingID}] = true
		}
	}

	var out []models.Signal
	for _, sw := range s.st.swipes {
		if sw.TargetUserID != "" || sw.Direction != models.DirectionRight {
			continue
		}
		l, ok := s.st.listings[sw.ListingID]
		if !ok || !l.Active || l.OwnerID != recruiterID {
			continue
		}
		if answered[models.PairKey{CandidateID: sw.ActorID, ListingID: sw.ListingID}] {
			continue
		}
		c := s.st.users[sw.ActorID]
		out = append(out, models.Signal{
			SwipeID:      sw.ID,
			CandidateID:  sw.ActorID,
			ListingID:    l.ID,
			ListingTitle: l.Title,
			Skills:       c.Skills,
			Constraints:  c.Constraints,
			IntentText:   c.IntentText,
			ReceivedAt:   sw.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	if err := s.failure("GetApplication"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.st.apps[id]
	if !ok {
		return nil, notFound("application", id)
	}
	return &a, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, at time.Time) error {
	if err := s.failure("UpdateApplicationStatus"); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.apps[id]
	if !ok {
		return notFound("application", id)
	}
	if a.Status != from {
		return fmt.Errorf("%w: application %s is %s, expected %s", matching.ErrApplicationConflict, id, a.Status, from)
	}
	a.Status = to
	a.UpdatedAt = at
	s.st.apps[id] = a
	return nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	if err := s.failure("GetMatch"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.st.matches[id]
	if !ok {
		return nil, notFound("match", id)
	}
	return &m, nil
}

func (s *Store) ListMatches(ctx context.Context, actorID string, role models.Role) ([]models.Match, error) {
	if err := s.failure("ListMatches"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Match
	for _, m := range s.st.matches {
		switch role {
		case models.RoleCandidate:
			if m.CandidateID != actorID {
				continue
			}
		case models.RoleRecruiter:
			if s.st.listings[m.ListingID].OwnerID != actorID {
				continue
			}
		default:
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.failure("CreateMessage"); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.matches[msg.MatchID]; !ok {
		return notFound("match", msg.MatchID)
	}
	s.st.messages = append(s.st.messages, *msg)
	return nil
}

// WithinTx runs fn against a copy of the state and publishes the copy only
// when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx matching.Tx) error) error {
	if err := s.failure("WithinTx"); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	work := s.read().clone()
	if err := fn(ctx, &tx{store: s, st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}
