package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatebot/internal/logger"
	"gatebot/internal/table"
)

// Server exposes /healthz and /metrics.
type Server struct {
	srv    *http.Server
	cache  *table.Cache
	maxAge time.Duration
}

// NewServer builds the ops endpoint. The health check degrades when the
// dataset snapshot is older than maxAge, signalling that refreshes keep
// failing.
func NewServer(listen string, cache *table.Cache, maxAge time.Duration, reg *prometheus.Registry) *Server {
	s := &Server{cache: cache, maxAge: maxAge}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	age := s.cache.Age()
	if age > s.maxAge {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "stale dataset: age %s\n", age.Round(time.Second))
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Ops.Info("ops endpoint listening",
			slog.String("event", "ops.listen"),
			slog.String("addr", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}
