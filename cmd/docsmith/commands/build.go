package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/history"
	"github.com/docsmith/docsmith/internal/logfields"
	"github.com/docsmith/docsmith/internal/notify"
	"github.com/docsmith/docsmith/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override the configured output directory"`
	Clean  bool   `help:"Remove the output directory before building"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		logClassified(err)
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	ctx := context.Background()
	if err := syncGitSource(ctx, cfg); err != nil {
		logClassified(err)
		return err
	}

	builder, err := site.NewBuilder(cfg)
	if err != nil {
		logClassified(err)
		return err
	}

	result, err := builder.Build(ctx)
	if result != nil && result.Report != nil {
		recordHistory(ctx, cfg, result.Report)
		publishNotification(cfg, result.Report)
		printSummary(result.Report)
	}
	if err != nil {
		logClassified(err)
		return err
	}
	if result.Report.Outcome == site.OutcomeFailed {
		return fmt.Errorf("build finished with %d errors", len(result.Report.Errors()))
	}
	return nil
}

func printSummary(report *site.Report) {
	fmt.Printf("Build %s: %s\n", report.BuildID, report.Outcome)
	fmt.Printf("  pages rendered: %d, skipped: %d, assets: %d\n",
		report.PagesRendered, report.PagesSkipped, report.AssetsCopied)
	for _, issue := range report.Issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Page, issue.Message)
	}
}

func recordHistory(ctx context.Context, cfg *config.Config, report *site.Report) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		slog.Warn("Build history unavailable", logfields.Error(err))
		return
	}
	defer func() { _ = store.Close() }()
	if err := store.Record(ctx, report); err != nil {
		slog.Warn("Failed to record build history", logfields.Error(err))
	}
}

func publishNotification(cfg *config.Config, report *site.Report) {
	if !cfg.Notify.Enabled {
		return
	}
	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		slog.Warn("Build notifier unavailable", logfields.Error(err))
		return
	}
	defer notifier.Close()
	if err := notifier.Publish(report); err != nil {
		slog.Warn("Failed to publish build event", logfields.Error(err))
	}
}
