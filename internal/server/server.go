package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/tartampluch/go-manse/internal/config"
	"github.com/tartampluch/go-manse/internal/engine"
	"github.com/tartampluch/go-manse/internal/feedback"
	"github.com/tartampluch/go-manse/internal/i18n"
	"github.com/tartampluch/go-manse/internal/metrics"
	"github.com/tartampluch/go-manse/internal/printout"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// FeedbackStore is the feedback log behind /api/feedback.
// *feedback.Store implements it.
type FeedbackStore interface {
	Submit(ctx context.Context, text string) (feedback.Entry, error)
	List(ctx context.Context) ([]feedback.Entry, error)
	SetStatus(ctx context.Context, id uuid.UUID, status feedback.Status) error
}

// Server exposes the resolver, the print page, the feedback log and the
// lunar birthday calendar over HTTP.
type Server struct {
	Port string

	Resolver   *engine.Resolver
	Calendar   *engine.CalendarBuilder
	Translator *i18n.Translator
	Feedback   FeedbackStore // optional

	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer // optional, enables /metrics
	Limiter  *rate.Limiter

	// cache holds the calendar served at /calendar.ics without a query.
	// It is read on every request and replaced only on sync, so an
	// atomic.Pointer keeps the hot path free of locks.
	cache atomic.Pointer[cacheItem]

	// layout positions the blocks of /print. It may be swapped while serving.
	layout atomic.Pointer[printout.Layout]
}

// New creates a server with a Nop recorder and the default API rate limit.
func New(port string, resolver *engine.Resolver, cal *engine.CalendarBuilder, tr *i18n.Translator) *Server {
	s := &Server{
		Port:       port,
		Resolver:   resolver,
		Calendar:   cal,
		Translator: tr,
		Metrics:    metrics.Nop{},
		Limiter:    rate.NewLimiter(rate.Limit(config.APIRatePerSecond), config.APIRateBurst),
	}
	s.SetLayout(printout.DefaultLayout())
	return s
}

// SetLayout replaces the print layout. It is safe to call while serving.
func (s *Server) SetLayout(l printout.Layout) {
	s.layout.Store(&l)
}

// Layout returns the current print layout.
func (s *Server) Layout() printout.Layout {
	if l := s.layout.Load(); l != nil {
		return *l
	}
	return printout.DefaultLayout()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(newLoggingMiddleware(slog.Default(), s.Metrics))

	r.Get(config.RouteHealth, s.handleHealth)
	if s.Gatherer != nil {
		r.Handle(config.RouteMetrics, metrics.Handler(s.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(newRateLimitMiddleware(s.Limiter, s.Metrics))

		r.Get(config.RouteCalendar, s.handleCalendarRequest)
		r.Head(config.RouteCalendar, s.handleCalendarRequest)
		r.Get(config.RoutePrint, s.handlePrint)

		r.Route(config.RouteAPI, func(r chi.Router) {
			r.Get(config.RoutePillars, s.handlePillars)
			r.Get(config.RouteRegions, s.handleRegions)
			r.Get(config.RouteSlots, s.handleSlots)

			if s.Feedback != nil {
				r.Route(config.RouteFeedback, func(r chi.Router) {
					r.Get("/", s.handleFeedbackList)
					r.Post("/", s.handleFeedbackSubmit)
					r.Patch(config.RouteFeedbackID, s.handleFeedbackStatus)
				})
			}
		})
	})

	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the calendar served at /calendar.ics.
func (s *Server) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest builds a one-person feed when the request names a
// birth date, and otherwise serves the cached feed with HTTP caching support.
func (s *Server) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get(config.QueryDate) != "" {
		s.handleCalendarQuery(w, r)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": config.HTTPMsgOK})
}
