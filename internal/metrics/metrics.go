package metrics

import (
	"errors"
	"time"
	"timetracker/pkg/customerrors"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	//Request duration histogram with method, endpoint, and status labels
	RequestDuration *prometheus.HistogramVec
	//Login attempts counter
	LoginAttempts *prometheus.CounterVec
	//Clock-in/clock-out outcomes with event and result labels
	ClockEvents *prometheus.CounterVec
	//Total errors counter with error type label
	TotalErrors *prometheus.CounterVec
	//Database query duration histogram with query type and status labels
	DbQueryDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "Duration of HTTP requests in seconds."},
			[]string{"method", "endpoint", "status"},
		),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts.",
		},
			[]string{"status"},
		),
		ClockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clock_events_total",
			Help: "Total number of clock-in and clock-out requests by outcome.",
		},
			[]string{"event", "result"},
		),
		TotalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "total_errors_total",
				Help: "Number of total errors.",
			},
			[]string{"error_type"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
			[]string{"query_type", "status"},
		),
	}
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.LoginAttempts)
	reg.MustRegister(m.ClockEvents)
	reg.MustRegister(m.TotalErrors)
	reg.MustRegister(m.DbQueryDuration)
	return m
}

// ObserveDB records the duration and status of a database query.
func (m *Metrics) ObserveDB(queryName string, start time.Time, err error) {
	duration := time.Since(start).Seconds()

	status := "ok"
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, customerrors.ErrNotFound) {
			status = "not_found"
		} else {
			status = "error"
		}
	}

	m.DbQueryDuration.WithLabelValues(queryName, status).Observe(duration)
}

// ObserveClock counts a clock event. result is "ok", a validation reason, or "error".
func (m *Metrics) ObserveClock(event, result string) {
	m.ClockEvents.WithLabelValues(event, result).Inc()
}
