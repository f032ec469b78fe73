package server

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/metrics"
)

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader records the first status code written.
func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Write implies 200 when no status was written yet.
func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// newLoggingMiddleware logs one line per request and counts the status.
// 5xx logs at Error, 4xx at Warn, everything else at Info.
func newLoggingMiddleware(logger *slog.Logger, rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			rec.RecordHTTPStatus(sr.statusCode)

			level := slog.LevelInfo
			switch {
			case sr.statusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case sr.statusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, config.MsgHTTPRequest,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyMethod, r.Method,
				config.LogKeyPath, r.URL.Path,
				config.LogKeyStatus, sr.statusCode,
				config.LogKeyDuration, time.Since(start).Milliseconds(),
			)
		})
	}
}

// newRateLimitMiddleware rejects requests beyond the global token bucket
// with 429 and a Retry-After hint.
func newRateLimitMiddleware(limiter *rate.Limiter, rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				rec.RecordRateLimited()
				slog.Warn(config.MsgRateLimited,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyLimitType, "global",
					config.LogKeyPath, r.URL.Path,
				)
				writeRateLimitResponse(w, limiter.Limit())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitResponse writes the 429 body with a Retry-After derived from limit.
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1 / float64(limit)))
		if retryAfter < 1 {
			retryAfter = 1
		}
	}
	w.Header().Set(config.HeaderRetryAfter, strconv.Itoa(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Code:    config.CodeRateLimited,
		Message: config.HTTPMsgRateLimited,
	})
}
