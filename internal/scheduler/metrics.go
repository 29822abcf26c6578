package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abdulachik/releasebot/internal/detector"
)

// Cycle outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus collectors for detection cycles.
type Metrics struct {
	// CyclesTotal counts cycles by outcome.
	CyclesTotal *prometheus.CounterVec

	// CycleDuration observes the duration of cycles that ran.
	CycleDuration prometheus.Histogram

	// TracksFetched is the number of tracks listed by the last cycle.
	TracksFetched prometheus.Gauge

	// NewTracksTotal counts tracks that were not in the seen set.
	NewTracksTotal prometheus.Counter

	// AnnouncementsTotal counts announcements by status (delivered, failed).
	AnnouncementsTotal *prometheus.CounterVec

	// LastSuccess is the Unix time of the last successful cycle.
	LastSuccess prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "releasebot_cycles_total",
			Help: "Total number of detection cycles by outcome",
		}, []string{"outcome"}),

		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "releasebot_cycle_duration_seconds",
			Help:    "Duration of detection cycles",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}),

		TracksFetched: factory.NewGauge(prometheus.GaugeOpts{
			Name: "releasebot_tracks_fetched",
			Help: "Number of tracks listed by the most recent cycle",
		}),

		NewTracksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "releasebot_new_tracks_total",
			Help: "Total number of newly discovered tracks",
		}),

		AnnouncementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "releasebot_announcements_total",
			Help: "Total number of announcements by delivery status",
		}, []string{"status"}),

		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "releasebot_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful cycle",
		}),
	}
}

// Observe records the outcome of a cycle.
func (m *Metrics) Observe(result detector.CycleResult) {
	if result.Skipped {
		m.CyclesTotal.WithLabelValues(OutcomeSkipped).Inc()
		return
	}

	m.CycleDuration.Observe(result.Duration.Seconds())
	m.TracksFetched.Set(float64(result.Fetched))
	m.NewTracksTotal.Add(float64(result.New))
	m.AnnouncementsTotal.WithLabelValues("delivered").Add(float64(result.Announced))
	m.AnnouncementsTotal.WithLabelValues("failed").Add(float64(result.DeliveryFailures))

	if result.Err != nil {
		m.CyclesTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	m.CyclesTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.LastSuccess.Set(float64(time.Now().Unix()))
}
