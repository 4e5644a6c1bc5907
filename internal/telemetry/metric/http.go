package metric

import (
	"strconv"
	"time"
)

// DefaultLatencyBuckets are the request duration bounds in seconds.
var DefaultLatencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1.0, 2.5, 5.0, 7.5, 10.0,
}

// DefaultSizeBuckets are the request/response size bounds in bytes.
var DefaultSizeBuckets = []float64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000,
}

// HTTPMetrics is the instrument set fed by the request middleware.
type HTTPMetrics struct {
	Requests     *CounterVec   // method, endpoint, status_code
	Duration     *HistogramVec // method, endpoint
	RequestSize  *HistogramVec // method, endpoint
	ResponseSize *HistogramVec // method, endpoint, status_code
	Active       *GaugeVec     // method, endpoint
	LastRequest  *Gauge
	StartTime    *Gauge

	now     func() time.Time
	started time.Time
}

// NewHTTPMetrics registers the HTTP instruments on reg. Application start
// time is taken from now at construction.
func NewHTTPMetrics(reg *Registry, latencyBuckets, sizeBuckets []float64, now func() time.Time) (*HTTPMetrics, error) {
	if now == nil {
		now = time.Now
	}
	m := &HTTPMetrics{now: now, started: now()}

	var err error
	if m.Requests, err = reg.Counter("http_requests_total",
		"Total number of HTTP requests", "method", "endpoint", "status_code"); err != nil {
		return nil, err
	}
	if m.Duration, err = reg.Histogram("http_request_duration_seconds",
		"HTTP request duration in seconds", latencyBuckets, "method", "endpoint"); err != nil {
		return nil, err
	}
	if m.RequestSize, err = reg.Histogram("http_request_size_bytes",
		"HTTP request size in bytes", sizeBuckets, "method", "endpoint"); err != nil {
		return nil, err
	}
	if m.ResponseSize, err = reg.Histogram("http_response_size_bytes",
		"HTTP response size in bytes", sizeBuckets, "method", "endpoint", "status_code"); err != nil {
		return nil, err
	}
	if m.Active, err = reg.Gauge("http_requests_active",
		"Number of active HTTP requests", "method", "endpoint"); err != nil {
		return nil, err
	}
	lastRequest, err := reg.Gauge("http_last_request_time_seconds",
		"Unix timestamp of the last HTTP request")
	if err != nil {
		return nil, err
	}
	startTime, err := reg.Gauge("application_start_time_seconds",
		"Unix timestamp when the application started")
	if err != nil {
		return nil, err
	}
	m.LastRequest = lastRequest.WithLabelValues()
	m.StartTime = startTime.WithLabelValues()
	m.StartTime.Set(unixSeconds(m.started))
	return m, nil
}

// IncActive marks a request to (method, endpoint) as in flight.
func (m *HTTPMetrics) IncActive(method, endpoint string) {
	m.Active.WithLabelValues(method, endpoint).Inc()
}

// DecActive is the counterpart of IncActive.
func (m *HTTPMetrics) DecActive(method, endpoint string) {
	m.Active.WithLabelValues(method, endpoint).Dec()
}

// RecordRequest records one completed request. Sizes of zero or less are
// treated as unknown and not observed.
func (m *HTTPMetrics) RecordRequest(method, endpoint string, status int, duration time.Duration, reqSize, respSize int64) {
	code := strconv.Itoa(status)

	m.Requests.WithLabelValues(method, endpoint, code).Inc()
	m.Duration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if reqSize > 0 {
		m.RequestSize.WithLabelValues(method, endpoint).Observe(float64(reqSize))
	}
	if respSize > 0 {
		m.ResponseSize.WithLabelValues(method, endpoint, code).Observe(float64(respSize))
	}
	m.LastRequest.Set(unixSeconds(m.now()))
}

// StartedAt returns the application start time.
func (m *HTTPMetrics) StartedAt() time.Time {
	return m.started
}

// Uptime returns the time elapsed since the application started.
func (m *HTTPMetrics) Uptime() time.Duration {
	return m.now().Sub(m.started)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
