// Package commands defines the docsmith CLI subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/gitsource"
	"github.com/docsmith/docsmith/internal/logfields"
)

// Global holds state shared across subcommands.
type Global struct{}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsmith.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the documentation site"`
	Serve ServeCmd `cmd:"" help:"Serve the site locally with rebuild on change"`
	Init  InitCmd  `cmd:"" help:"Write a starter configuration file"`
	Lint  LintCmd  `cmd:"" help:"Check links in the rendered output"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration named by the root --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// syncGitSource fetches the remote source repository when one is configured.
func syncGitSource(ctx context.Context, cfg *config.Config) error {
	if cfg.Source.Git == nil {
		return nil
	}
	fetcher := gitsource.NewFetcher(*cfg.Source.Git, cfg.Source.Dir)
	commit, err := fetcher.Sync(ctx)
	if err != nil {
		return ferrors.GitError(err, "sync source repository").Build()
	}
	slog.Info("Source synced from git", slog.String("commit", commit[:8]))
	return nil
}

func logClassified(err error) {
	if classified, ok := ferrors.AsClassified(err); ok {
		slog.Error("Command failed",
			slog.String("category", string(classified.Category())),
			logfields.Error(err))
		return
	}
	slog.Error("Command failed", logfields.Error(err))
}
