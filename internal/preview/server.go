// Package preview runs the local development server: it serves the rendered
// site, rebuilds on source changes, and pushes live-reload events to open
// browser tabs.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/logfields"
	"github.com/docsmith/docsmith/internal/metrics"
	"github.com/docsmith/docsmith/internal/site"
)

// Server serves the output directory and coordinates rebuilds.
type Server struct {
	cfg      *config.Config
	builder  *site.Builder
	hub      *ReloadHub
	recorder metrics.Recorder
	handler  http.Handler
}

// NewServer wires the preview server. The recorder may be a PrometheusRecorder
// to expose /metrics, or nil to disable it.
func NewServer(cfg *config.Config, builder *site.Builder, recorder metrics.Recorder) *Server {
	s := &Server{
		cfg:      cfg,
		builder:  builder,
		hub:      NewReloadHub(),
		recorder: recorder,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc("/livereload.js", handleReloadScript)
	if prom, ok := recorder.(*metrics.PrometheusRecorder); ok {
		mux.Handle("/metrics", prom.Handler())
	}
	mux.Handle("/", http.FileServer(http.Dir(cfg.Output.Directory)))
	s.handler = mux
	return s
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run performs an initial build, then serves until the context ends.
// Source changes and the optional periodic schedule both trigger rebuilds.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.rebuild(ctx); err != nil {
		// A broken initial build still serves whatever output exists; the
		// next successful rebuild fixes the site in place.
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := NewWatcher(s.cfg.Source.Dir, s.cfg.Preview.Debounce.Std())
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	go watcher.Run(ctx)

	scheduler, err := s.startSchedule(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	addr := fmt.Sprintf(":%d", s.cfg.Preview.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "bind preview port").
			WithContext("addr", addr).
			Build()
	}
	slog.Info("Preview server listening",
		logfields.Port(s.cfg.Preview.Port),
		logfields.Output(s.cfg.Output.Directory))

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Serve(listener) }()

	for {
		select {
		case <-ctx.Done():
			s.hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-watcher.Requests():
			if res, err := s.rebuild(ctx); err == nil && res.Report.Outcome != site.OutcomeFailed {
				s.hub.Broadcast(res.Report.BuildID)
			}
		}
	}
}

// startSchedule sets up the optional periodic full rebuild.
func (s *Server) startSchedule(ctx context.Context) (gocron.Scheduler, error) {
	interval := s.cfg.Preview.RebuildEvery.Std()
	if interval <= 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create rebuild scheduler").Build()
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if res, err := s.rebuild(ctx); err == nil && res.Report.Outcome != site.OutcomeFailed {
				s.hub.Broadcast(res.Report.BuildID)
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "schedule periodic rebuild").Build()
	}
	scheduler.Start()
	slog.Info("Periodic rebuild scheduled", logfields.DurationMS(float64(interval.Milliseconds())))
	return scheduler, nil
}

func (s *Server) rebuild(ctx context.Context) (*site.BuildResult, error) {
	res, err := s.builder.Build(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Error(err))
		return res, err
	}
	return res, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","clients":%d}`, s.hub.ClientCount())
}

func handleReloadScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(reloadScript))
}
