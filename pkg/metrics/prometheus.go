// Package metrics provides Prometheus metrics for the gridiron season engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Simulation metrics
	gamesSimulated  prometheus.Counter
	postseasonGames prometheus.Counter
	overtimePeriods prometheus.Counter
	drivesPerGame   prometheus.Histogram
	pointsPerGame   prometheus.Histogram
	weekDuration    prometheus.Histogram

	// Injury and fatigue metrics
	injuriesTotal *prometheus.CounterVec
	fatigueLevel  prometheus.Histogram

	// Schedule and standings metrics
	scheduledGames      prometheus.Gauge
	standingsRecomputes prometheus.Counter
	standingsErrors     prometheus.Counter

	// Narrative metrics
	recapsAccepted prometheus.Counter
	recapsRejected prometheus.Counter
	recapsFellBack prometheus.Counter

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueErrors      prometheus.Counter

	// Worker metrics
	workerActiveCount prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// Store metrics
	storeResults prometheus.Gauge
	storeLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridiron",
		subsystem:        "season",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesSimulated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_simulated_total",
		Help:      "Total number of regular-season games resolved",
	})

	m.postseasonGames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "postseason_games_total",
		Help:      "Total number of postseason games resolved",
	})

	m.overtimePeriods = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overtime_periods_total",
		Help:      "Total number of sudden-score overtime continuations played",
	})

	m.drivesPerGame = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drives_per_game",
		Help:      "Histogram of drive counts per resolved game",
		Buckets:   []float64{16, 20, 22, 24, 26, 28, 32, 40},
	})

	m.pointsPerGame = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combined_points_per_game",
		Help:      "Histogram of combined final scores",
		Buckets:   []float64{20, 30, 37, 44, 51, 58, 65, 80},
	})

	m.weekDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "week_duration_milliseconds",
		Help:      "Wall-clock time spent simulating one week",
		Buckets:   m.histogramBuckets,
	})

	m.injuriesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "injuries_total",
		Help:      "Total injuries generated, by severity tier",
	}, []string{"severity"})

	m.fatigueLevel = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "player_fatigue_level",
		Help:      "Histogram of post-game player fatigue values",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.scheduledGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scheduled_games",
		Help:      "Number of games in the current season schedule",
	})

	m.standingsRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_recomputes_total",
		Help:      "Number of times a full standings order was computed",
	})

	m.standingsErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_errors_total",
		Help:      "Number of rejected standings mutations",
	})

	m.recapsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_recaps_accepted_total",
		Help:      "Recaps that passed fact validation",
	})

	m.recapsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_recaps_rejected_total",
		Help:      "Recaps rejected for contradicting computed facts",
	})

	m.recapsFellBack = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "narrative_recaps_fallback_total",
		Help:      "Template recaps served after rejection or generator failure",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_size",
		Help:      "Current number of queued game jobs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_capacity",
		Help:      "Configured game queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_utilization",
		Help:      "Queue size as a fraction of capacity",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_enqueues_total",
		Help:      "Total game jobs enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_dequeues_total",
		Help:      "Total game jobs dequeued",
	})

	m.queueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_queue_errors_total",
		Help:      "Enqueue failures (closed, full, or cancelled)",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active simulation workers",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_game_latency_milliseconds",
		Help:      "Time spent resolving one game inside a worker",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Game resolutions that failed inside a worker",
	})

	m.storeResults = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_results_total",
		Help:      "Number of game results held by the franchise state store",
	})

	m.storeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operation_latency_milliseconds",
		Help:      "Latency of franchise state store operations",
		Buckets:   m.histogramBuckets,
	})
}

// RecordGameSimulated increments the regular-season games counter.
func RecordGameSimulated() {
	globalManager.gamesSimulated.Inc()
}

// RecordPostseasonGame increments the postseason games counter.
func RecordPostseasonGame() {
	globalManager.postseasonGames.Inc()
}

// RecordOvertimePeriod increments the overtime continuation counter.
func RecordOvertimePeriod() {
	globalManager.overtimePeriods.Inc()
}

// RecordDrives observes the drive count for one game.
func RecordDrives(count int) {
	globalManager.drivesPerGame.Observe(float64(count))
}

// RecordCombinedPoints observes the combined score for one game.
func RecordCombinedPoints(points int) {
	globalManager.pointsPerGame.Observe(float64(points))
}

// RecordWeekDuration observes the wall-clock time for one simulated week.
func RecordWeekDuration(ms float64) {
	globalManager.weekDuration.Observe(ms)
}

// RecordInjury increments the injury counter for a severity tier.
func RecordInjury(severity string) {
	globalManager.injuriesTotal.WithLabelValues(severity).Inc()
}

// RecordFatigueLevel observes a player's post-game fatigue value.
func RecordFatigueLevel(fatigue float64) {
	globalManager.fatigueLevel.Observe(fatigue)
}

// UpdateScheduledGames sets the schedule size gauge.
func UpdateScheduledGames(count int) {
	globalManager.scheduledGames.Set(float64(count))
}

// RecordStandingsRecompute increments the standings recompute counter.
func RecordStandingsRecompute() {
	globalManager.standingsRecomputes.Inc()
}

// RecordStandingsError increments the rejected-mutation counter.
func RecordStandingsError() {
	globalManager.standingsErrors.Inc()
}

// RecordRecapAccepted increments the accepted-recap counter.
func RecordRecapAccepted() {
	globalManager.recapsAccepted.Inc()
}

// RecordRecapRejected increments the rejected-recap counter.
func RecordRecapRejected() {
	globalManager.recapsRejected.Inc()
}

// RecordRecapFallback increments the template-fallback counter.
func RecordRecapFallback() {
	globalManager.recapsFellBack.Inc()
}

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueError increments the queue error counter.
func RecordQueueError() {
	globalManager.queueErrors.Inc()
}

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerLatency observes per-game worker latency in milliseconds.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateStoreResults sets the stored game result gauge.
func UpdateStoreResults(count int) {
	globalManager.storeResults.Set(float64(count))
}

// RecordStoreLatency observes one store operation's latency in milliseconds.
func RecordStoreLatency(ms float64) {
	globalManager.storeLatency.Observe(ms)
}

// GetRegistry returns the custom registry for exposing metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
