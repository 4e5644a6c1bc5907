package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/vitals/internal/telemetry/logger"
)

func newBufferLogger(t *testing.T, buf *bytes.Buffer) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "debug", Format: "text", Output: buf})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
		if _, ok := r.Context().Value(ContextKeyStartTime).(time.Time); !ok {
			t.Error("expected start time in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		requestID := rec.Header().Get(HeaderRequestID)
		if !strings.HasPrefix(requestID, "req-") {
			t.Errorf("expected request ID to start with 'req-', got %s", requestID)
		}
		// req- + 26 char ULID
		if len(requestID) != 30 {
			t.Errorf("len(request ID) = %d, want 30", len(requestID))
		}
		if seen != requestID {
			t.Errorf("context request ID = %q, header = %q", seen, requestID)
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(HeaderRequestID, "existing-id-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(HeaderRequestID); got != "existing-id-123" {
			t.Errorf("expected 'existing-id-123', got %s", got)
		}
	})

	t.Run("unique per request", func(t *testing.T) {
		a, b := httptest.NewRecorder(), httptest.NewRecorder()
		handler.ServeHTTP(a, httptest.NewRequest("GET", "/test", nil))
		handler.ServeHTTP(b, httptest.NewRequest("GET", "/test", nil))
		if a.Header().Get(HeaderRequestID) == b.Header().Get(HeaderRequestID) {
			t.Error("two requests got the same ID")
		}
	})
}

func TestChain(t *testing.T) {
	var order []int

	mark := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, 4)
			w.WriteHeader(http.StatusOK)
		}),
		mark(1), mark(2), mark(3),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	expected := []int{1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d] = %d, got %d", i, v, order[i])
		}
	}
}

func TestRateLimit(t *testing.T) {
	send := func(h http.Handler, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("disabled when rate is zero", func(t *testing.T) {
		handler := RateLimit(0, 0)(okHandler())
		for i := 0; i < 50; i++ {
			if rec := send(handler, "10.0.0.1:1"); rec.Code != http.StatusOK {
				t.Fatalf("request %d: status %d", i, rec.Code)
			}
		}
	})

	t.Run("limits requests from same IP", func(t *testing.T) {
		handler := RateLimit(0.001, 2)(okHandler())

		for i := 0; i < 2; i++ {
			if rec := send(handler, "10.0.0.99:12345"); rec.Code != http.StatusOK {
				t.Errorf("request %d: expected status 200, got %d", i+1, rec.Code)
			}
		}

		rec := send(handler, "10.0.0.99:12345")
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status 429, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-Error-Code"); got != "VT-SYS-4290" {
			t.Errorf("X-Error-Code = %q, want VT-SYS-4290", got)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After header")
		}
	})

	t.Run("different IPs have separate limits", func(t *testing.T) {
		handler := RateLimit(0.001, 1)(okHandler())

		if rec := send(handler, "192.168.100.1:12345"); rec.Code != http.StatusOK {
			t.Errorf("first IP: expected status 200, got %d", rec.Code)
		}
		if rec := send(handler, "192.168.100.2:12345"); rec.Code != http.StatusOK {
			t.Errorf("second IP: expected status 200, got %d", rec.Code)
		}
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		handler := RateLimit(20, 1)(okHandler())

		send(handler, "10.0.0.88:12345")
		if rec := send(handler, "10.0.0.88:12345"); rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", rec.Code)
		}

		time.Sleep(100 * time.Millisecond)

		if rec := send(handler, "10.0.0.88:12345"); rec.Code != http.StatusOK {
			t.Errorf("after refill: expected status 200, got %d", rec.Code)
		}
	})
}

func TestRateLimitConcurrency(t *testing.T) {
	handler := RateLimit(1, 100)(okHandler())

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successCount int
		failCount    int
	)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			mu.Lock()
			if rec.Code == http.StatusOK {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Burst of 100 at 1 rps: at most one token refills during the test.
	if successCount < 100 || successCount > 102 {
		t.Errorf("success = %d, want about 100", successCount)
	}
	if failCount == 0 {
		t.Error("expected some rate-limited requests")
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(t, &buf)

	t.Run("recovers from panic", func(t *testing.T) {
		handler := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("test panic")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-Error-Code"); got != "VT-SYS-5000" {
			t.Errorf("X-Error-Code = %q, want VT-SYS-5000", got)
		}
		if !strings.Contains(buf.String(), "panic recovered") {
			t.Errorf("expected panic log, got: %s", buf.String())
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Recover(log)(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("re-panics ErrAbortHandler", func(t *testing.T) {
		handler := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		defer func() {
			if r := recover(); r != http.ErrAbortHandler {
				t.Errorf("recovered %v, want http.ErrAbortHandler", r)
			}
		}()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"X-Forwarded-For", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "192.168.1.1:12345", "10.0.0.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "10.0.0.1"}, "192.168.1.1:12345", "10.0.0.1"},
		{"RemoteAddr", nil, "192.168.1.1:12345", "192.168.1.1"},
		{"IPv6 RemoteAddr", nil, "[::1]:8080", "::1"},
		{"RemoteAddr without port", nil, "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remote

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAudit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"logs successful requests", http.StatusOK, "request completed"},
		{"logs client errors", http.StatusBadRequest, "client error"},
		{"logs server errors", http.StatusInternalServerError, "completed with error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}), RequestID(), Audit(newBufferLogger(t, &buf)))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in log, got: %s", tt.want, out)
			}
			if !strings.Contains(out, "request_id=req-") {
				t.Errorf("expected request_id in log, got: %s", out)
			}
		})
	}

	t.Run("redacts sensitive query values", func(t *testing.T) {
		var buf bytes.Buffer
		handler := Audit(newBufferLogger(t, &buf))(okHandler())

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test?token=s3cret&page=2", nil))

		out := buf.String()
		if strings.Contains(out, "s3cret") {
			t.Errorf("secret leaked into log: %s", out)
		}
		if !strings.Contains(out, "page=2") {
			t.Errorf("expected non-sensitive query in log, got: %s", out)
		}
	})
}

func TestResponseWriter(t *testing.T) {
	t.Run("captures first status code", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())

		wrapped.WriteHeader(http.StatusCreated)
		wrapped.WriteHeader(http.StatusInternalServerError)

		if wrapped.statusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", wrapped.statusCode)
		}
	})

	t.Run("defaults to 200", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		_, _ = wrapped.Write([]byte("hi"))

		if wrapped.statusCode != http.StatusOK {
			t.Errorf("expected default status 200, got %d", wrapped.statusCode)
		}
	})

	t.Run("counts bytes", func(t *testing.T) {
		wrapped := wrapResponseWriter(httptest.NewRecorder())
		_, _ = wrapped.Write([]byte("hello"))
		_, _ = wrapped.Write([]byte(" world"))

		if wrapped.written != 11 {
			t.Errorf("written = %d, want 11", wrapped.written)
		}
	})

	t.Run("unwraps", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if wrapResponseWriter(rec).Unwrap() != rec {
			t.Error("Unwrap did not return the underlying writer")
		}
	})
}
