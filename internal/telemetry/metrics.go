package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace — общий префикс всех метрик.
const namespace = "outreach"

// HTTP.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests handled by outreach-api",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Сохранение и планирование.
var (
	SaveRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "save_runs_total",
		Help:      "Save runs by terminal state",
	}, []string{"state"})

	EmailsScheduledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "emails_scheduled_total",
		Help:      "Scheduling requests accepted by the backend",
	})

	FlowsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "flows_saved_total",
		Help:      "Flow snapshots persisted",
	})
)

// Доставка.
var (
	EmailsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "emails_queued_total",
		Help:      "Due emails published to the delivery queue",
	})

	SchedulerTicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "ticks_total",
		Help:      "Scheduler ticks by result",
	}, []string{"result"})

	EmailsDeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mailer",
		Name:      "emails_delivered_total",
		Help:      "Delivery attempts by result",
	}, []string{"result"})

	DeliveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mailer",
		Name:      "delivery_duration_seconds",
		Help:      "Time spent handing one email to the sender",
		Buckets:   prometheus.DefBuckets,
	})
)
