package matching_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"match-engine/internal/cache"
	"match-engine/internal/common/logger"
	"match-engine/internal/matching"
	"match-engine/internal/matching/memstore"
	"match-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

// clock advances one second per reading so swipes keep a strict order.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evt models.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}

func (d *recordingDispatcher) ofType(t models.EventType) []models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store  *memstore.Store
	engine *matching.Engine
	mr     *miniredis.Miniredis
	events *recordingDispatcher
	clock  *clock
	opts   []matching.Option
	log    logger.Logger
}

func newFixture(t *testing.T, opts ...matching.Option) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.NewTestLogger(t)
	f := &fixture{
		store:  memstore.New(),
		mr:     mr,
		events: &recordingDispatcher{},
		clock:  &clock{now: baseTime},
	}

	base := []matching.Option{
		matching.WithViews(cache.NewCoordinator(rdb, log)),
		matching.WithDispatcher(f.events),
		matching.WithClock(f.clock.Now),
	}
	f.opts = append(base, opts...)
	f.log = log
	f.engine = matching.NewEngine(matching.DefaultConfig(), f.store, log, f.opts...)
	seed(f.store)
	return f
}

// serveFrom rebuilds the engine over repo, keeping the fixture's views,
// dispatcher and clock.
func (f *fixture) serveFrom(repo matching.Repository) {
	f.engine = matching.NewEngine(matching.DefaultConfig(), repo, f.log, f.opts...)
}

const (
	cand1  = "cand-1"
	cand2  = "cand-2"
	cand3  = "cand-3"
	cand4  = "cand-4"
	rec1   = "rec-1"
	rec2   = "rec-2"
	rec3   = "rec-3"
	admin1 = "admin-1"

	listGo       = "listing-go"
	listJava     = "listing-java"
	listRust     = "listing-rust"
	listInactive = "listing-closed"
)

func seed(s *memstore.Store) {
	remote := models.Constraints{"remote_only": models.Bool(true)}
	onsite := models.Constraints{"remote_only": models.Bool(false)}

	s.AddUser(models.User{
		ID:               cand1,
		Role:             models.RoleCandidate,
		Skills:           []models.Skill{{Name: "Go", Confidence: 0.9}, {Name: "SQL", Confidence: 0.8}},
		Constraints:      remote,
		SubscriptionTier: models.TierFree,
		IntentText:       "backend roles",
	})
	s.AddUser(models.User{
		ID:               cand2,
		Role:             models.RoleCandidate,
		Skills:           []models.Skill{{Name: "Java", Confidence: 0.7}},
		Constraints:      onsite,
		SubscriptionTier: models.TierPremium,
	})
	s.AddUser(models.User{
		ID:               cand3,
		Role:             models.RoleCandidate,
		Constraints:      remote,
		SubscriptionTier: models.TierFree,
	})
	s.AddUser(models.User{
		ID:               cand4,
		Role:             models.RoleCandidate,
		Constraints:      models.Constraints{"remote_only": models.String("maybe")},
		SubscriptionTier: models.TierFree,
	})
	s.AddUser(models.User{ID: rec1, Role: models.RoleRecruiter, SubscriptionTier: models.TierPro})
	s.AddUser(models.User{ID: rec2, Role: models.RoleRecruiter, SubscriptionTier: models.TierFree})
	s.AddUser(models.User{ID: rec3, Role: models.RoleRecruiter, SubscriptionTier: models.TierFree})
	s.AddUser(models.User{ID: admin1, Role: models.RoleAdmin})

	s.AddListing(models.Listing{
		ID: listGo, CompanyID: "co-1", OwnerID: rec1, Title: "Backend Engineer",
		RequiredSkills: []string{"go", "sql"}, Constraints: remote, Active: true,
	})
	s.AddListing(models.Listing{
		ID: listJava, CompanyID: "co-1", OwnerID: rec1, Title: "Java Developer",
		RequiredSkills: []string{"java"}, Constraints: onsite, Active: true,
	})
	s.AddListing(models.Listing{
		ID: listRust, CompanyID: "co-2", OwnerID: rec2, Title: "Systems Engineer",
		RequiredSkills: []string{"rust"}, Active: true,
	})
	s.AddListing(models.Listing{
		ID: listInactive, CompanyID: "co-1", OwnerID: rec1, Title: "Filled Role",
		RequiredSkills: []string{"go"}, Active: false,
	})
}

func candidateSwipe(actor, listing string, dir models.Direction) matching.SwipeRequest {
	return matching.SwipeRequest{ActorID: actor, ListingID: listing, Direction: dir}
}

func recruiterSwipe(actor, candidate, listing string, dir models.Direction) matching.SwipeRequest {
	return matching.SwipeRequest{ActorID: actor, ListingID: listing, TargetUserID: candidate, Direction: dir}
}

func (f *fixture) swipe(t *testing.T, req matching.SwipeRequest) *matching.SwipeResult {
	t.Helper()
	res, err := f.engine.SubmitSwipe(context.Background(), req)
	require.NoError(t, err)
	return res
}

func listingIDs(items []matching.FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ListingID)
	}
	return out
}

func candidateIDs(items []matching.FeedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.CandidateID)
	}
	return out
}
