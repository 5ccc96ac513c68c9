package api

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vytor/swipequiz/internal/errors"
	"github.com/vytor/swipequiz/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder remembers what the handler wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// requestLogger puts a request-scoped logger in the context and writes one
// access line per request. Probes only log at DEBUG.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		log := logger.Default().WithPrefix("http").WithFields(map[string]any{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.NewContext(r.Context(), log)))

		log = log.WithFields(map[string]any{
			"status":      rec.status,
			"size":        rec.size,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case rec.status >= 500:
			log.Error("request failed")
		case rec.status >= 400:
			log.Warn("request rejected")
		case r.URL.Path == "/health" || r.URL.Path == "/ready":
			log.Debug("probe")
		default:
			log.Info("request completed")
		}
	})
}

// recoverer turns panics, including failed engine assertions, into a 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic recovered: %v\n%s", rec, debug.Stack())
				writeError(w, errors.NewInternalError(nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// sessionScope tags the request logger with the session id from the URL.
func sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context()).WithField("session", chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), log)))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// withTimeout bounds session requests; long frame batches and slow upstream
// calls answer with the JSON error shape instead of hanging.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(errorResponse{Error: errorBody{
		Code:    errors.ErrCodeTimeout,
		Message: "request timed out",
	}})
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, string(body))
	}
}
