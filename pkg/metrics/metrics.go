package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса.
// Все методы безопасны для вызова на nil-получателе: если метрики выключены,
// в компоненты передается (*Metrics)(nil).
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge
	DBWaitCount        prometheus.Gauge

	BookingTransitions *prometheus.CounterVec

	SweepRuns        prometheus.Counter
	SweepTransitions prometheus.Counter
	SweepFailures    prometheus.Counter

	PayoutsCreated   prometheus.Counter
	PayoutNetCents   prometheus.Counter
	PayoutOwnerFails prometheus.Counter
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в переданном регистре
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}),

		BookingTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Booking state transitions by source and target status",
			ConstLabels: labels,
		}, []string{"from", "to"}),

		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name:        "lifecycle_sweep_runs_total",
			Help:        "Number of lifecycle sweeps executed",
			ConstLabels: labels,
		}),
		SweepTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name:        "lifecycle_sweep_transitions_total",
			Help:        "Transitions applied by lifecycle sweeps",
			ConstLabels: labels,
		}),
		SweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "lifecycle_sweep_failures_total",
			Help:        "Bookings that failed to advance during a sweep",
			ConstLabels: labels,
		}),

		PayoutsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "payouts_created_total",
			Help:        "Number of payout records created",
			ConstLabels: labels,
		}),
		PayoutNetCents: factory.NewCounter(prometheus.CounterOpts{
			Name:        "payouts_net_cents_total",
			Help:        "Sum of net owner amounts paid out, in cents",
			ConstLabels: labels,
		}),
		PayoutOwnerFails: factory.NewCounter(prometheus.CounterOpts{
			Name:        "payout_owner_failures_total",
			Help:        "Owner groups that failed during a payout run",
			ConstLabels: labels,
		}),
	}
}

// ObserveHTTPRequest фиксирует обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordTransition фиксирует переход бронирования между статусами
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(from, to).Inc()
}

// RecordSweep фиксирует результат прохода sweeper'а
func (m *Metrics) RecordSweep(transitions, failures int) {
	if m == nil {
		return
	}
	m.SweepRuns.Inc()
	m.SweepTransitions.Add(float64(transitions))
	m.SweepFailures.Add(float64(failures))
}

// RecordPayout фиксирует созданную выплату
func (m *Metrics) RecordPayout(netCents int64) {
	if m == nil {
		return
	}
	m.PayoutsCreated.Inc()
	m.PayoutNetCents.Add(float64(netCents))
}

// RecordPayoutFailure фиксирует ошибку обработки группы комиссий владельца
func (m *Metrics) RecordPayoutFailure() {
	if m == nil {
		return
	}
	m.PayoutOwnerFails.Inc()
}

// ObservePoolStats обновляет метрики пула соединений
func (m *Metrics) ObservePoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.Set(float64(stats.OpenConnections))
	m.DBInUseConnections.Set(float64(stats.InUse))
	m.DBIdleConnections.Set(float64(stats.Idle))
	m.DBWaitCount.Set(float64(stats.WaitCount))
}
