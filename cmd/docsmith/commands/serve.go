package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/docsmith/docsmith/internal/metrics"
	"github.com/docsmith/docsmith/internal/preview"
	"github.com/docsmith/docsmith/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port    int  `short:"p" help:"Override the configured preview port"`
	Metrics bool `help:"Expose Prometheus metrics at /metrics"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		logClassified(err)
		return err
	}
	if s.Port != 0 {
		cfg.Preview.Port = s.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncGitSource(ctx, cfg); err != nil {
		logClassified(err)
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if s.Metrics {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	opts := []site.Option{site.WithRecorder(recorder)}
	if cfg.Preview.LiveReload {
		opts = append(opts, site.WithLiveReload())
	}
	builder, err := site.NewBuilder(cfg, opts...)
	if err != nil {
		logClassified(err)
		return err
	}

	server := preview.NewServer(cfg, builder, recorder)
	if err := server.Run(ctx); err != nil {
		logClassified(err)
		return err
	}
	return nil
}
