package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sohamda/fantasy-football/internal/domain"
)

var (
	sessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poly",
			Subsystem: "wizard",
			Name:      "sessions_started_total",
			Help:      "Total number of wizard sessions started",
		},
	)

	stepTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poly",
			Subsystem: "wizard",
			Name:      "step_transitions_total",
			Help:      "Total number of step navigation attempts by origin step and outcome",
		},
		[]string{"from", "outcome"},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poly",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Total number of finished registration submissions by outcome",
		},
		[]string{"outcome"},
	)

	submissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poly",
			Subsystem: "wizard",
			Name:      "submission_duration_seconds",
			Help:      "Duration of registration submissions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"outcome"},
	)

	submitRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "poly",
			Subsystem: "wizard",
			Name:      "submit_rate_limited_total",
			Help:      "Total number of submissions refused by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		sessionsStartedTotal,
		stepTransitionsTotal,
		submissionsTotal,
		submissionDuration,
		submitRateLimitedTotal,
	)
}

// Metrics records wizard activity in Prometheus. It satisfies wizard.Observer.
type Metrics struct{}

func (Metrics) StepTransition(from, _ domain.WizardStep, outcome string) {
	stepTransitionsTotal.WithLabelValues(stepLabel(from), outcome).Inc()
}

func (Metrics) SubmissionFinished(outcome string, elapsed time.Duration) {
	submissionsTotal.WithLabelValues(outcome).Inc()
	submissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func stepLabel(s domain.WizardStep) string {
	switch s {
	case domain.StepPersonalInfo:
		return "personal_info"
	case domain.StepPlanSelection:
		return "plan_selection"
	case domain.StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}
