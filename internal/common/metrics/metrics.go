// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	SwipesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_swipes_recorded_total",
			Help: "Swipes committed, by actor role and direction",
		},
		[]string{"role", "direction"},
	)

	SwipesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_swipes_rejected_total",
			Help: "Swipes refused as expected outcomes (already_swiped, quota_exceeded)",
		},
		[]string{"reason"},
	)

	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_matches_created_total",
			Help: "Matches created by the reciprocal swipe detector",
		},
	)

	ApplicationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_applications_created_total",
			Help: "Applications opened by candidate right swipes",
		},
	)

	FeedItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_feed_items",
			Help:    "Items per served feed tier",
			Buckets: []float64{0, 1, 5, 15, 40, 100, 200},
		},
		[]string{"role", "tier"},
	)
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_cache_lookups_total",
			Help: "View cache lookups by view kind and result (hit, miss, error)",
		},
		[]string{"view", "result"},
	)

	CacheInvalidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "view_cache_invalidation_failures_total",
			Help: "Invalidations that failed after a committed write",
		},
	)

	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Event publications by sink and status",
		},
		[]string{"sink", "status"},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Events dropped because the dispatch queue was full or closed",
		},
	)
)
