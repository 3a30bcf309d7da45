// internal/workers/workertest/fixture.go

// Package workertest builds an engine over the in-memory store for worker
// handler tests.
package workertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/matching"
	"match-engine/internal/matching/memstore"
	"match-engine/internal/models"
)

const (
	Candidate      = "cand-1"
	OtherCandidate = "cand-2"
	Recruiter      = "rec-1"
	OtherRecruiter = "rec-2"
	Admin          = "admin-1"

	ListingGo   = "listing-go"
	ListingRust = "listing-rust"
)

// Events records dispatched events.
type Events struct {
	mu     sync.Mutex
	events []models.Event
}

func (e *Events) Dispatch(ctx context.Context, evt models.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *Events) Types() []models.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.EventType, 0, len(e.events))
	for _, evt := range e.events {
		out = append(out, evt.Type)
	}
	return out
}

type Fixture struct {
	Store  *memstore.Store
	Engine *matching.Engine
	Events *Events
}

// New seeds two candidates, two recruiters, an admin and one active listing
// per recruiter. The engine runs without a view cache.
func New(t testing.TB) *Fixture {
	t.Helper()

	store := memstore.New()
	seed(store)

	events := &Events{}
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	engine := matching.NewEngine(matching.DefaultConfig(), store, logger.NewTestLogger(t),
		matching.WithDispatcher(events),
		matching.WithClock(clock),
	)
	return &Fixture{Store: store, Engine: engine, Events: events}
}

func seed(s *memstore.Store) {
	remote := models.Constraints{"remote_only": models.Bool(true)}

	s.AddUser(models.User{
		ID:               Candidate,
		Role:             models.RoleCandidate,
		Skills:           []models.Skill{{Name: "Go", Confidence: 0.9}},
		Constraints:      remote,
		SubscriptionTier: models.TierFree,
	})
	s.AddUser(models.User{
		ID:               OtherCandidate,
		Role:             models.RoleCandidate,
		Skills:           []models.Skill{{Name: "Rust", Confidence: 0.6}},
		SubscriptionTier: models.TierFree,
	})
	s.AddUser(models.User{ID: Recruiter, Role: models.RoleRecruiter, SubscriptionTier: models.TierPro})
	s.AddUser(models.User{ID: OtherRecruiter, Role: models.RoleRecruiter, SubscriptionTier: models.TierFree})
	s.AddUser(models.User{ID: Admin, Role: models.RoleAdmin})

	s.AddListing(models.Listing{
		ID: ListingGo, CompanyID: "co-1", OwnerID: Recruiter, Title: "Backend Engineer",
		RequiredSkills: []string{"go"}, Constraints: remote, Active: true,
	})
	s.AddListing(models.Listing{
		ID: ListingRust, CompanyID: "co-2", OwnerID: OtherRecruiter, Title: "Systems Engineer",
		RequiredSkills: []string{"rust"}, Active: true,
	})
}

// Match drives both sides of the Go listing pair to a match and returns it.
func (f *Fixture) Match(t testing.TB) *models.Match {
	t.Helper()
	ctx := context.Background()
	if _, err := f.Engine.SubmitSwipe(ctx, matching.SwipeRequest{
		ActorID: Candidate, ListingID: ListingGo, Direction: models.DirectionRight,
	}); err != nil {
		t.Fatalf("candidate swipe: %v", err)
	}
	res, err := f.Engine.SubmitSwipe(ctx, matching.SwipeRequest{
		ActorID: Recruiter, ListingID: ListingGo, TargetUserID: Candidate, Direction: models.DirectionRight,
	})
	if err != nil {
		t.Fatalf("recruiter swipe: %v", err)
	}
	if res.Match == nil {
		t.Fatalf("expected a match")
	}
	return res.Match
}

// Application opens a pending application from Candidate on the Go listing.
func (f *Fixture) Application(t testing.TB) *models.Application {
	t.Helper()
	res, err := f.Engine.SubmitSwipe(context.Background(), matching.SwipeRequest{
		ActorID: Candidate, ListingID: ListingGo, Direction: models.DirectionRight,
	})
	if err != nil {
		t.Fatalf("candidate swipe: %v", err)
	}
	if res.Application == nil {
		t.Fatalf("expected an application")
	}
	return res.Application
}
