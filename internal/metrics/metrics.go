package metrics

import (
	"errors"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "op_shuffle"

type Metrics struct {
	operations    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	shuffles      prometheus.Counter
	mmrSpread     prometheus.Histogram
	balanceSwaps  prometheus.Histogram
	reserved      prometheus.Histogram
	matches       prometheus.Counter
	champions     prometheus.Counter
	registrations *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		shuffles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shuffles_total",
			Help:      "Completed team formation runs.",
		}),
		mmrSpread: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "team_mmr_spread",
			Help:      "Difference between the strongest and weakest team average.",
			Buckets:   []float64{25, 50, 100, 200, 400, 800, 1600},
		}),
		balanceSwaps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_swaps",
			Help:      "Swaps applied while balancing one formation run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		reserved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reserved_players",
			Help:      "Players left without a team per formation run.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_decided_total",
			Help:      "Match winners recorded.",
		}),
		champions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "champions_total",
			Help:      "Brackets played to completion.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.operations, m.duration, m.shuffles, m.mmrSpread, m.balanceSwaps,
			m.reserved, m.matches, m.champions, m.registrations,
		)
	}
	return m
}

func (m *Metrics) RecordOperation(op string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) RecordFormation(res *team.Result) {
	m.shuffles.Inc()
	m.mmrSpread.Observe(float64(res.Balance.Spread))
	m.balanceSwaps.Observe(float64(res.Swaps))
	m.reserved.Observe(float64(len(res.Reserved)))
}

func (m *Metrics) RecordMatchDecided(champion bool) {
	m.matches.Inc()
	if champion {
		m.champions.Inc()
	}
}

// RecordRegistration labels the attempt with the first matching sentinel in
// known, or "ok"/"error".
func (m *Metrics) RecordRegistration(err error, known map[string]error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		for label, target := range known {
			if errors.Is(err, target) {
				outcome = label
				break
			}
		}
	}
	m.registrations.WithLabelValues(outcome).Inc()
}
