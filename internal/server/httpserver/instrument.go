package httpserver

import (
	"io"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yndnr/vitals/internal/telemetry/metric"
)

// UnmatchedEndpoint labels requests that match no registered route.
const UnmatchedEndpoint = "unmatched"

// UnknownMethod labels requests whose method is not a standard HTTP
// method, so client-chosen tokens cannot grow the series set.
const UnknownMethod = "unknown"

var knownMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodConnect,
	http.MethodOptions, http.MethodTrace,
}

func methodLabel(m string) string {
	if slices.Contains(knownMethods, m) {
		return m
	}
	return UnknownMethod
}

// RouteResolver reports the pattern that would serve r. *http.ServeMux
// satisfies it.
type RouteResolver interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// InstrumentConfig configures the Instrument middleware.
type InstrumentConfig struct {
	Metrics *metric.HTTPMetrics

	// Routes resolves the route template used as the endpoint label.
	Routes RouteResolver

	// ExcludePaths are raw request paths that are served unrecorded.
	ExcludePaths []string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Instrument records request count, latency, sizes and in-flight requests
// into cfg.Metrics. The endpoint label is the route template, never the
// raw path, and methods outside the standard set are labeled
// UnknownMethod. A panic downstream is recorded as a 500 and then
// re-panicked unchanged.
func Instrument(cfg InstrumentConfig) Middleware {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	exclude := slices.Clone(cfg.ExcludePaths)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(exclude, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			method := methodLabel(r.Method)
			endpoint := routeTemplate(cfg.Routes, r)
			start := now()

			cfg.Metrics.IncActive(method, endpoint)

			body := &countingReader{r: r.Body}
			if r.Body != nil {
				r.Body = body
			}
			wrapped := wrapResponseWriter(w)

			completed := false
			defer func() {
				status := wrapped.statusCode
				rec := recover()
				if !completed {
					status = http.StatusInternalServerError
				}

				reqSize := r.ContentLength
				if reqSize <= 0 {
					reqSize = body.n.Load()
				}

				cfg.Metrics.RecordRequest(method, endpoint, status, now().Sub(start), reqSize, wrapped.written)
				cfg.Metrics.DecActive(method, endpoint)

				// rec is nil when runtime.Goexit unwinds; let it continue.
				if !completed && rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(wrapped, r)
			completed = true
		})
	}
}

// routeTemplate resolves r to its registered pattern with the method and
// host stripped, e.g. "GET /data/{id}" becomes "/data/{id}".
func routeTemplate(routes RouteResolver, r *http.Request) string {
	if routes == nil {
		return UnmatchedEndpoint
	}
	_, pattern := routes.Handler(r)
	if pattern == "" {
		return UnmatchedEndpoint
	}
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = strings.TrimLeft(pattern[i+1:], " \t")
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	return pattern
}

type countingReader struct {
	r io.ReadCloser
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

func (c *countingReader) Close() error {
	return c.r.Close()
}
