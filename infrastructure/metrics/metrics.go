package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry: HTTP metrics plus campaign counters.
// All recording methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge

	campaignsPlanned *prometheus.CounterVec
	postsPlanned     prometheus.Counter
	planningFailures *prometheus.CounterVec
	postsDispatched  *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

// NewCollector creates a collector whose metric names are prefixed with the sanitized service name
func NewCollector(serviceName string) *Collector {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ns + "_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "endpoint", "status"})
	c.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    ns + "_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})
	c.activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ns + "_active_connections",
		Help: "Number of in-flight HTTP requests",
	})

	c.campaignsPlanned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ns + "_campaigns_planned_total",
		Help: "Campaigns successfully planned and persisted",
	}, []string{"policy"})
	c.postsPlanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: ns + "_posts_planned_total",
		Help: "Scheduled posts produced by the planner",
	})
	c.planningFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ns + "_planning_failures_total",
		Help: "Planner rejections by error kind",
	}, []string{"kind"})
	c.postsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ns + "_posts_dispatched_total",
		Help: "Posts handed to a platform publisher by outcome",
	}, []string{"status"})
	c.dispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ns + "_dispatch_batch_duration_seconds",
		Help:    "Duration of one dispatcher batch",
		Buckets: prometheus.DefBuckets,
	})

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.activeConnections,
		c.campaignsPlanned,
		c.postsPlanned,
		c.planningFailures,
		c.postsDispatched,
		c.dispatchDuration,
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Middleware records request count and latency per route template
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}
		start := time.Now()
		c.activeConnections.Inc()
		defer c.activeConnections.Dec()

		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := ctx.Request.Method
		c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

func (c *Collector) CampaignPlanned(policy string, posts int) {
	if c == nil {
		return
	}
	c.campaignsPlanned.WithLabelValues(policy).Inc()
	c.postsPlanned.Add(float64(posts))
}

func (c *Collector) PlanningFailed(kind string) {
	if c == nil {
		return
	}
	c.planningFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) PostDispatched(status string) {
	if c == nil {
		return
	}
	c.postsDispatched.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveDispatch(d time.Duration) {
	if c == nil {
		return
	}
	c.dispatchDuration.Observe(d.Seconds())
}
