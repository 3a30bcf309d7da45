// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task worker. Handlers complete or fail
// the job themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is an open job subscription for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// JobRecorder receives the outcome and duration of every handled job.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, d time.Duration, status string)
}

// Job outcomes reported to a JobRecorder.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusError     = "error"
	StatusUnknown   = "unknown"
)

// outcomeClient remembers which command the handler last built.
type outcomeClient struct {
	worker.JobClient

	mu     sync.Mutex
	status string
}

func (c *outcomeClient) set(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *outcomeClient) outcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == "" {
		return StatusUnknown
	}
	return c.status
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.set(StatusCompleted)
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.set(StatusFailed)
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.set(StatusError)
	return c.JobClient.NewThrowErrorCommand()
}

// Instrument wraps handler so every job is counted in the active gauge and
// the duration histogram, and its outcome is reported to rec when set.
func Instrument(taskType string, handler JobHandler, rec JobRecorder) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		start := time.Now()
		tracked := &outcomeClient{JobClient: client}
		defer func() {
			active.Dec()
			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			if rec != nil {
				status := tracked.outcome()
				rec.RecordJobProcessed(context.Background(), taskType, status)
				rec.RecordJobDuration(context.Background(), taskType, elapsed, status)
			}
		}()
		handler.Handle(tracked, job)
	}
}

// StartWorker opens a job worker for taskType, or returns nil when the
// worker is disabled in configuration.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, rec JobRecorder, log logger.Logger) *Worker {
	fields := map[string]interface{}{"taskType": taskType}
	if !wcfg.Enabled {
		log.Info("worker disabled", fields)
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, rec)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(wcfg.TimeoutDuration()).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{
		worker:   jobWorker,
		logger:   log.WithFields(fields),
		taskType: taskType,
	}
}

func (w *Worker) TaskType() string { return w.taskType }

// Close stops polling and waits for in-flight jobs.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
