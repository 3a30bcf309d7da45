// internal/notify/dispatcher_test.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id string) models.Event {
	return models.NewMatchCreated(id, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), &models.Match{
		ID:          "match-" + id,
		CandidateID: "cand-1",
		ListingID:   "listing-go",
	})
}

type mockSNS struct {
	mu     sync.Mutex
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, nil
}

func (m *mockSNS) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// recordingPublisher can block until released to fill the queue.
type recordingPublisher struct {
	mu      sync.Mutex
	events  []models.Event
	release chan struct{}
}

func (p *recordingPublisher) Name() string { return "recording" }

func (p *recordingPublisher) Publish(ctx context.Context, evt models.Event) error {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.ID)
	}
	return out
}

type failingPublisher struct{}

func (failingPublisher) Name() string { return "failing" }

func (failingPublisher) Publish(ctx context.Context, evt models.Event) error {
	return errors.New("broker unavailable")
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "match-events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client, "match-events")
	require.NoError(t, pub.Publish(ctx, testEvent("evt-1")))

	select {
	case msg := <-sub.Channel():
		var got models.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, models.EventMatchCreated, got.Type)
		assert.Equal(t, "match-evt-1", got.Payload["matchId"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisPublisher(client, "match-events").Publish(context.Background(), testEvent("evt-1"))

	assert.Error(t, err)
}

func TestSNSPublisher_Publish(t *testing.T) {
	client := &mockSNS{}
	pub := NewSNSPublisher(client, "arn:aws:sns:eu-west-1:123456789012:match-events")

	require.NoError(t, pub.Publish(context.Background(), testEvent("evt-1")))

	require.Equal(t, 1, client.count())
	in := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:eu-west-1:123456789012:match-events", *in.TopicArn)
	assert.Equal(t, "match.created", *in.MessageAttributes["eventType"].StringValue)
	assert.Contains(t, *in.Message, `"matchId":"match-evt-1"`)
}

func TestSNSPublisher_Error(t *testing.T) {
	pub := NewSNSPublisher(&mockSNS{err: errors.New("throttled")}, "arn")

	err := pub.Publish(context.Background(), testEvent("evt-1"))

	assert.ErrorContains(t, err, "throttled")
}

func TestDispatcher_DeliversToEveryPublisher(t *testing.T) {
	rec := &recordingPublisher{}
	snsClient := &mockSNS{}
	d := NewDispatcher(Config{Workers: 2}, logger.NewTestLogger(t), rec, failingPublisher{}, NewSNSPublisher(snsClient, "arn"))

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		d.Dispatch(context.Background(), testEvent(id))
	}
	require.NoError(t, d.Close(context.Background()))

	assert.ElementsMatch(t, []string{"evt-1", "evt-2", "evt-3"}, rec.ids())
	assert.Equal(t, 3, snsClient.count(), "a failing sink does not block the others")
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	rec := &recordingPublisher{release: make(chan struct{})}
	d := NewDispatcher(Config{QueueSize: 1, Workers: 1}, logger.NewNoOpLogger(), rec)

	// One event is held by the worker, one fills the queue, the rest drop.
	start := time.Now()
	for i := 0; i < 10; i++ {
		d.Dispatch(context.Background(), testEvent(string(rune('a'+i))))
	}
	assert.Less(t, time.Since(start), time.Second, "dispatch must not block")

	close(rec.release)
	require.NoError(t, d.Close(context.Background()))

	delivered := len(rec.ids())
	assert.GreaterOrEqual(t, delivered, 1)
	assert.LessOrEqual(t, delivered, 2)
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	rec := &recordingPublisher{}
	d := NewDispatcher(Config{}, logger.NewNoOpLogger(), rec)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() { d.Dispatch(context.Background(), testEvent("late")) })
	assert.Empty(t, rec.ids())
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	rec := &recordingPublisher{release: make(chan struct{})}
	d := NewDispatcher(Config{Workers: 1}, logger.NewNoOpLogger(), rec)
	d.Dispatch(context.Background(), testEvent("stuck"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(rec.release)
}
