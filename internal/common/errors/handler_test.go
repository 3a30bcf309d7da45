// internal/common/errors/handler_test.go
package errors

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"match-engine/internal/common/camunda/camundatest"
	"match-engine/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func activatedJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7001, Type: "submit-swipe", Retries: retries}}
}

// redeliver replays err against the handler the way the broker would: each
// failed job comes back with the retries the previous attempt reported, until
// the handler throws instead of failing.
func redeliver(t *testing.T, startRetries int32, err error) (*camundatest.Gateway, []int32) {
	t.Helper()

	client := camundatest.NewJobClient()
	h := NewErrorHandler(&recordingLogger{})

	var seen []int32
	retries := startRetries
	for attempt := 0; attempt < 20; attempt++ {
		seen = append(seen, retries)
		h.HandleJobError(context.Background(), client, activatedJob(retries), err)

		if len(client.Gateway.Throws()) > 0 {
			return client.Gateway, seen
		}
		fails := client.Gateway.Fails()
		require.Len(t, fails, attempt+1)
		retries = fails[attempt].Retries
	}
	t.Fatalf("job was still being retried after %d deliveries", len(seen))
	return nil, nil
}

func TestHandleJobError_DependencyFailureExhaustsRetries(t *testing.T) {
	depErr := fmt.Errorf("%w: lock pair: %w", matching.ErrDependency, context.DeadlineExceeded)

	gw, seen := redeliver(t, 3, depErr)

	assert.Equal(t, []int32{3, 2, 1}, seen)
	fails := gw.Fails()
	require.Len(t, fails, 2)
	assert.Equal(t, int32(2), fails[0].Retries)
	assert.Equal(t, int32(1), fails[1].Retries)
	for _, f := range fails {
		assert.Equal(t, int64(7001), f.JobKey)
		assert.Contains(t, f.Variables, `"errorCode":"DEPENDENCY_FAILURE"`)
	}

	throws := gw.Throws()
	require.Len(t, throws, 1)
	assert.Equal(t, "DEPENDENCY_FAILURE", throws[0].ErrorCode)
	assert.Empty(t, gw.Completes())
}

func TestHandleJobError_RetriesCappedAtBudget(t *testing.T) {
	depErr := fmt.Errorf("%w: ping", matching.ErrDependency)

	gw, seen := redeliver(t, 10, depErr)

	assert.Equal(t, []int32{10, 3, 2, 1}, seen)
	assert.Len(t, gw.Fails(), 3)
	assert.Len(t, gw.Throws(), 1)
}

func TestHandleJobError_ConflictRetriesOnce(t *testing.T) {
	gw, seen := redeliver(t, 3, matching.ErrApplicationConflict)

	assert.Equal(t, []int32{3, 1}, seen)
	require.Len(t, gw.Fails(), 1)
	require.Len(t, gw.Throws(), 1)
	assert.Equal(t, "APPLICATION_CONFLICT", gw.Throws()[0].ErrorCode)
}

func TestHandleJobError_BusinessErrorThrownImmediately(t *testing.T) {
	gw, seen := redeliver(t, 3, matching.ErrAlreadySwiped)

	assert.Equal(t, []int32{3}, seen)
	assert.Empty(t, gw.Fails())
	require.Len(t, gw.Throws(), 1)
	assert.Equal(t, "ALREADY_SWIPED", gw.Throws()[0].ErrorCode)
	assert.Contains(t, gw.Throws()[0].Variables, `"originalErrorCode":"ALREADY_SWIPED"`)
}

func TestHandleJobError_LastRetryThrows(t *testing.T) {
	client := camundatest.NewJobClient()
	h := NewErrorHandler(&recordingLogger{})

	h.HandleJobError(context.Background(), client, activatedJob(1), matching.ErrDependency)

	assert.Empty(t, client.Gateway.Fails())
	require.Len(t, client.Gateway.Throws(), 1)
	assert.Equal(t, "DEPENDENCY_FAILURE", client.Gateway.Throws()[0].ErrorCode)
}

func TestHandleJobError_LogsUnsentCommands(t *testing.T) {
	client := camundatest.NewJobClient()
	client.Gateway.Err = fmt.Errorf("rpc error: code = Unavailable")
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	h.HandleJobError(context.Background(), client, activatedJob(3), matching.ErrDependency)
	h.HandleJobError(context.Background(), client, activatedJob(3), matching.ErrForbidden)

	assert.Len(t, client.Gateway.Fails(), 1)
	assert.Len(t, client.Gateway.Throws(), 1)
	assert.Equal(t, []string{
		"Job failed",
		"failed to send fail job command",
		"Job failed",
		"failed to send throw error command",
	}, log.messages())
}

func TestRemainingRetries(t *testing.T) {
	tests := []struct {
		job    int32
		budget int
		want   int32
	}{
		{3, 3, 2},
		{1, 3, 0},
		{0, 3, 0},
		{10, 3, 3},
		{5, 1, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RemainingRetries(tt.job, tt.budget), "job=%d budget=%d", tt.job, tt.budget)
	}
}
