package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	loginsTotal        *prometheus.CounterVec
	sessionChecksTotal *prometheus.CounterVec
	videosAddedTotal   prometheus.Counter
	storeErrorsTotal   *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec

	// Histograms
	httpRequestDuration *prometheus.HistogramVec
}

// NewPrometheusCollector registers all collectors with reg. The server passes
// prometheus.DefaultRegisterer; tests pass a fresh registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		loginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unlistedtube_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),

		sessionChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unlistedtube_session_checks_total",
			Help: "Session token validations by result",
		}, []string{"result"}),

		videosAddedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "unlistedtube_videos_added_total",
			Help: "Total number of video records added",
		}),

		storeErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unlistedtube_store_errors_total",
			Help: "Video store failures by operation",
		}, []string{"operation"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "unlistedtube_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unlistedtube_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}
}

func (p *PrometheusCollector) RecordLogin(success bool) {
	p.loginsTotal.WithLabelValues(resultLabel(success, "success", "rejected")).Inc()
}

func (p *PrometheusCollector) RecordSessionCheck(authenticated bool) {
	p.sessionChecksTotal.WithLabelValues(resultLabel(authenticated, "authenticated", "unauthenticated")).Inc()
}

func (p *PrometheusCollector) RecordVideoAdded() {
	p.videosAddedTotal.Inc()
}

func (p *PrometheusCollector) RecordStoreError(operation string) {
	p.storeErrorsTotal.WithLabelValues(operation).Inc()
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
