// Package metrics exposes Prometheus collectors for HTTP traffic and blog
// activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	PostsCreated    prometheus.Counter
	PostsDeleted    prometheus.Counter
	CommentsCreated prometheus.Counter
	Signups         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blogicum",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PostsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "posts_created_total",
			Help:      "Posts created.",
		}),
		PostsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "posts_deleted_total",
			Help:      "Posts deleted.",
		}),
		CommentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "comments_created_total",
			Help:      "Comments created.",
		}),
		Signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "blogicum",
			Name:      "signups_total",
			Help:      "User accounts created.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.PostsCreated,
		m.PostsDeleted,
		m.CommentsCreated,
		m.Signups,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records every request under its chi route pattern, so
// /posts/1 and /posts/2 share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
