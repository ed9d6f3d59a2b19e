package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studymate_http_requests_total",
			Help: "Total number of HTTP requests processed by the chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studymate_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studymate_cache_lookups_total",
			Help: "Message cache lookups by result.",
		},
		[]string{"result"},
	)
	pushDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studymate_push_dispatch_total",
			Help: "Push notification dispatch attempts by result.",
		},
		[]string{"result"},
	)
	pushTokensPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studymate_push_tokens_pruned_total",
			Help: "Device tokens removed after the provider reported them undeliverable.",
		},
	)
	notifyQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studymate_notify_queue_depth",
			Help: "Number of fan-out jobs waiting in the notification queue.",
		},
	)
	notifyDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studymate_notify_dropped_total",
			Help: "Fan-out jobs dropped because the notification queue was full.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studymate_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studymate_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studymate_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		cacheLookupsTotal,
		pushDispatchTotal,
		pushTokensPrunedTotal,
		notifyQueueDepth,
		notifyDroppedTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

func IncPushDispatch(result string) {
	pushDispatchTotal.WithLabelValues(result).Inc()
}

func IncPushTokenPruned() {
	pushTokensPrunedTotal.Inc()
}

func SetNotifyQueueDepth(depth int) {
	notifyQueueDepth.Set(float64(depth))
}

func IncNotifyDropped() {
	notifyDroppedTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
