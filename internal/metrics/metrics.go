package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialnet",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialnet",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// FriendRequests counts friend-edge transitions by action
	// (requested, accepted, rejected, removed).
	FriendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialnet",
		Name:      "friend_requests_total",
		Help:      "Friend request transitions by action.",
	}, []string{"action"})

	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "socialnet",
		Name:      "messages_sent_total",
		Help:      "Direct messages sent.",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "socialnet",
		Name:      "posts_created_total",
		Help:      "Posts created.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, FriendRequests, MessagesSent, PostsCreated)
}

// Middleware records request count and latency. Unmatched routes are grouped
// under "unmatched" to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
