package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	IntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_intents_total",
			Help: "Questions answered, by matched intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	FulfillmentEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_fulfillment_events_total",
			Help: "Fulfillment events applied to the read store",
		},
		[]string{"event_type", "result"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_cache_requests_total",
			Help: "Cache lookups by key family and result",
		},
		[]string{"key", "result"},
	)
)
