// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/cache"
	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/matching"
	"match-engine/internal/models"
	"match-engine/internal/notify"
	"match-engine/internal/repository/postgres"
)

// The suite runs against live PostgreSQL and Redis described by the config
// file in MATCH_E2E_CONFIG, e.g. configs/config.yaml with docker compose up.
type env struct {
	engine *matching.Engine
	redis  *database.RedisClient
	db     *sql.DB
	ids    struct{ candidate, recruiter, listing string }
}

func setup(t *testing.T) *env {
	t.Helper()
	path := os.Getenv("MATCH_E2E_CONFIG")
	if path == "" {
		t.Skip("MATCH_E2E_CONFIG not set")
	}

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx))
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewTestLogger(t)
	repo := postgres.NewRepository(pg.GetDB(), log)
	require.NoError(t, repo.Migrate(ctx))

	dispatcher := notify.NewDispatcher(notify.DefaultConfig(), log,
		notify.NewRedisPublisher(rdb.GetClient(), cfg.Notifications.Redis.Channel))
	t.Cleanup(func() { dispatcher.Close(context.Background()) })

	e := &env{
		engine: matching.NewEngine(matching.DefaultConfig(), repo, log,
			matching.WithViews(cache.NewCoordinator(rdb.GetClient(), log)),
			matching.WithDispatcher(dispatcher),
		),
		redis: rdb,
		db:    pg.GetDB(),
	}
	e.seed(t)
	return e
}

// seed inserts one candidate, one recruiter and a listing under fresh IDs so
// runs do not interfere.
func (e *env) seed(t *testing.T) {
	t.Helper()
	run := uuid.NewString()[:8]
	e.ids.candidate = "e2e-cand-" + run
	e.ids.recruiter = "e2e-rec-" + run
	e.ids.listing = "e2e-listing-" + run

	ctx := context.Background()
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO users (id, role, skills, constraints, subscription_tier) VALUES
			($1, 'candidate', '[{"name":"Go","confidence":0.9}]', '{"remote_only":true}', 'free'),
			($2, 'recruiter', '[]', '{}', 'pro')`,
		e.ids.candidate, e.ids.recruiter)
	require.NoError(t, err)

	_, err = e.db.ExecContext(ctx,
		`INSERT INTO listings (id, company_id, owner_id, title, required_skills, constraints)
		 VALUES ($1, 'e2e-co', $2, 'Backend Engineer', $3, '{"remote_only":true}')`,
		e.ids.listing, e.ids.recruiter, pq.Array([]string{"go", "postgres"}))
	require.NoError(t, err)
}

func TestSwipeToMatchFlow(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	feed, err := e.engine.GetFeed(ctx, e.ids.candidate, models.RoleCandidate)
	require.NoError(t, err)
	var found bool
	for _, item := range feed.Recommended {
		if item.ListingID == e.ids.listing {
			found = true
			assert.Equal(t, 1, item.Score)
		}
	}
	require.True(t, found, "seeded listing should be recommended")

	res, err := e.engine.SubmitSwipe(ctx, matching.SwipeRequest{
		ActorID: e.ids.candidate, ListingID: e.ids.listing, Direction: models.DirectionRight,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Application)
	assert.Nil(t, res.Match)

	// The swipe invalidated the candidate feed, so the listing is gone.
	feed, err = e.engine.GetFeed(ctx, e.ids.candidate, models.RoleCandidate)
	require.NoError(t, err)
	for _, item := range append(feed.Recommended, feed.Remaining...) {
		assert.NotEqual(t, e.ids.listing, item.ListingID)
	}

	signals, err := e.engine.GetIncomingSignals(ctx, e.ids.recruiter)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, e.ids.candidate, signals[0].CandidateID)

	cached, err := e.redis.GetClient().Exists(ctx, cache.IncomingSignalsKey(e.ids.recruiter)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, cached)

	res, err = e.engine.SubmitSwipe(ctx, matching.SwipeRequest{
		ActorID: e.ids.recruiter, ListingID: e.ids.listing, TargetUserID: e.ids.candidate, Direction: models.DirectionRight,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Match)

	signals, err = e.engine.GetIncomingSignals(ctx, e.ids.recruiter)
	require.NoError(t, err)
	assert.Empty(t, signals)

	_, err = e.engine.SubmitSwipe(ctx, matching.SwipeRequest{
		ActorID: e.ids.recruiter, ListingID: e.ids.listing, TargetUserID: e.ids.candidate, Direction: models.DirectionRight,
	})
	assert.Equal(t, apperrors.ErrCodeAlreadySwiped, apperrors.FromDomain(err).Code)

	msg, err := e.engine.SendMessage(ctx, e.ids.candidate, res.Match.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, res.Match.ID, msg.MatchID)

	matches, err := e.engine.ListMatches(ctx, e.ids.recruiter)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, res.Match.ID, matches[0].ID)
}
