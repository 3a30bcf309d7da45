// internal/matching/engine.go
package matching

import (
	"context"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	PoolLimit          int
	RecruiterPoolLimit int
	FallbackTopN       int
	FeedTTL            time.Duration
	SignalsTTL         time.Duration
	SignalsLimit       int
	MaxMessageLength   int
}

func DefaultConfig() Config {
	return Config{
		PoolLimit:          200,
		RecruiterPoolLimit: 40,
		FallbackTopN:       DefaultFallbackTopN,
		FeedTTL:            60 * time.Second,
		SignalsTTL:         30 * time.Second,
		SignalsLimit:       50,
		MaxMessageLength:   4000,
	}
}

// Engine serves feeds and signals and records swipes, applications, matches
// and messages against a Repository.
type Engine struct {
	cfg      Config
	repo     Repository
	views    Views
	events   Dispatcher
	quota    *QuotaPolicy
	detector *Detector
	logger   logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

func WithViews(v Views) Option {
	return func(e *Engine) { e.views = v }
}

func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.events = d }
}

func WithQuotaPolicy(p *QuotaPolicy) Option {
	return func(e *Engine) { e.quota = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

func NewEngine(cfg Config, repo Repository, log logger.Logger, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.PoolLimit <= 0 {
		cfg.PoolLimit = def.PoolLimit
	}
	if cfg.RecruiterPoolLimit <= 0 {
		cfg.RecruiterPoolLimit = def.RecruiterPoolLimit
	}
	if cfg.FallbackTopN < 0 {
		cfg.FallbackTopN = def.FallbackTopN
	}
	if cfg.FeedTTL <= 0 {
		cfg.FeedTTL = def.FeedTTL
	}
	if cfg.SignalsTTL <= 0 {
		cfg.SignalsTTL = def.SignalsTTL
	}
	if cfg.SignalsLimit <= 0 {
		cfg.SignalsLimit = def.SignalsLimit
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = def.MaxMessageLength
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	e := &Engine{
		cfg:    cfg,
		repo:   repo,
		quota:  DefaultQuotaPolicy(),
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
		tracer: otel.Tracer("match-engine/matching"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.detector = NewDetector(e.now, e.newID)
	return e
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "matching."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// readThrough serves key from the view cache, computing on a miss. Without a
// cache every read computes.
func readThrough[T any](ctx context.Context, e *Engine, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if e.views == nil {
		return compute(ctx)
	}
	var out T
	err := e.views.Fetch(ctx, key, ttl, &out, func(ctx context.Context) (interface{}, error) {
		return compute(ctx)
	})
	return out, err
}

// invalidateTimeout bounds view invalidation once it is detached from the
// caller's context.
const invalidateTimeout = 2 * time.Second

// invalidate drops views after a committed write. It runs even if the caller
// has gone away, since the write is already visible. Failures are logged only.
func (e *Engine) invalidate(ctx context.Context, keys ...string) {
	if e.views == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := e.views.Invalidate(ctx, keys...); err != nil {
		metrics.CacheInvalidationFailures.Inc()
		e.logger.Warn("cache invalidation failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

func (e *Engine) emit(ctx context.Context, evt models.Event) {
	if e.events == nil {
		return
	}
	e.events.Dispatch(context.WithoutCancel(ctx), evt)
}

// loadActor resolves the authenticated actor. An unknown actor is treated as
// unauthenticated.
func (e *Engine) loadActor(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := e.repo.GetUser(ctx, actorID)
	if err != nil {
		if isNotFound(err) {
			return nil, wrapf(ErrUnauthorized, "unknown actor %s", actorID)
		}
		return nil, storeFailure("load actor", err)
	}
	return actor, nil
}
