// internal/notify/dispatcher.go
package notify

import (
	"context"
	"sync"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
)

type Config struct {
	QueueSize      int
	Workers        int
	PublishTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:      1024,
		Workers:        4,
		PublishTimeout: 5 * time.Second,
	}
}

// Dispatcher hands events to its publishers on background workers. Dispatch
// never blocks: when the queue is full the event is dropped and counted.
// Delivery is at most once.
type Dispatcher struct {
	cfg        Config
	publishers []Publisher
	logger     logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan models.Event
	wg     sync.WaitGroup
}

func NewDispatcher(cfg Config, log logger.Logger, publishers ...Publisher) *Dispatcher {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}

	d := &Dispatcher{
		cfg:        cfg,
		publishers: publishers,
		logger:     log.WithFields(map[string]interface{}{"component": "notify"}),
		queue:      make(chan models.Event, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, evt models.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(evt, "dispatcher closed")
		return
	}
	select {
	case d.queue <- evt:
	default:
		d.drop(evt, "queue full")
	}
}

func (d *Dispatcher) drop(evt models.Event, reason string) {
	metrics.NotificationsDropped.Inc()
	d.logger.Warn("event dropped", map[string]interface{}{
		"eventId":   evt.ID,
		"eventType": string(evt.Type),
		"reason":    reason,
	})
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt models.Event) {
	for _, p := range d.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
		err := p.Publish(ctx, evt)
		cancel()

		if err != nil {
			metrics.NotificationsPublished.WithLabelValues(p.Name(), "failed").Inc()
			d.logger.Error("event publish failed", map[string]interface{}{
				"sink":      p.Name(),
				"eventId":   evt.ID,
				"eventType": string(evt.Type),
				"error":     err.Error(),
			})
			continue
		}
		metrics.NotificationsPublished.WithLabelValues(p.Name(), "sent").Inc()
		d.logger.Debug("event published", map[string]interface{}{
			"sink":      p.Name(),
			"eventId":   evt.ID,
			"eventType": string(evt.Type),
		})
	}
}

// Close stops accepting events and waits for queued ones to drain, or for ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
