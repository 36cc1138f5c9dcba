package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSize       *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Security metrics
	CSRFFailuresTotal *prometheus.CounterVec

	// Database metrics
	DatabaseConnectionsOpen *prometheus.GaugeVec

	// Blog activity
	PostsCreatedTotal     *prometheus.CounterVec
	PostsDeletedTotal     prometheus.Counter
	CommentsTotal         *prometheus.CounterVec
	UsersRegisteredTotal  prometheus.Counter
	PasswordResetsTotal   *prometheus.CounterVec
	ImageUploadsTotal     *prometheus.CounterVec
	ListingPagesRendered  *prometheus.CounterVec
	PostsHiddenFromViewer prometheus.Counter

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			// HTTP metrics
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_size_bytes",
					Help:    "HTTP request body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			// Rate limiting metrics
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			CSRFFailuresTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "csrf_failures_total",
					Help: "Total number of rejected form submissions without a valid CSRF token",
				},
				[]string{"reason"},
			),

			// Database metrics
			DatabaseConnectionsOpen: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "database_connections_open",
					Help: "Number of currently open database connections",
				},
				[]string{"database"},
			),

			// Blog activity
			PostsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_posts_created_total",
					Help: "Total number of posts created",
				},
				[]string{"scheduled"},
			),
			PostsDeletedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "blog_posts_deleted_total",
					Help: "Total number of posts deleted",
				},
			),
			CommentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_comments_total",
					Help: "Total number of comment operations",
				},
				[]string{"operation"},
			),
			UsersRegisteredTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "blog_users_registered_total",
					Help: "Total number of registered accounts",
				},
			),
			PasswordResetsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_password_resets_total",
					Help: "Total number of password reset events",
				},
				[]string{"stage"},
			),
			ImageUploadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_image_uploads_total",
					Help: "Total number of post image uploads",
				},
				[]string{"status"},
			),
			ListingPagesRendered: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_listing_pages_total",
					Help: "Total number of post listing pages rendered",
				},
				[]string{"listing"},
			),
			PostsHiddenFromViewer: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "blog_posts_hidden_total",
					Help: "Post detail requests answered 404, either missing or not visible to the viewer",
				},
			),

			// Error metrics
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
