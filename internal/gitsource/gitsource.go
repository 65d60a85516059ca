// Package gitsource syncs page sources from a remote git repository into the
// local source directory before a build.
package gitsource

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/docsmith/docsmith/internal/config"
	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/logfields"
)

// Fetcher clones or updates the configured source repository.
type Fetcher struct {
	cfg config.GitSourceConfig
	dir string
}

// NewFetcher builds a fetcher targeting dir.
func NewFetcher(cfg config.GitSourceConfig, dir string) *Fetcher {
	return &Fetcher{cfg: cfg, dir: dir}
}

// Sync makes dir match the remote: clone on first use, pull afterwards.
// It returns the HEAD commit hash after syncing.
func (f *Fetcher) Sync(ctx context.Context) (string, error) {
	if _, err := os.Stat(filepath.Join(f.dir, ".git")); err == nil {
		return f.pull(ctx)
	}
	return f.clone(ctx)
}

func (f *Fetcher) clone(ctx context.Context) (string, error) {
	slog.Debug("Cloning source repository",
		logfields.Source(f.cfg.URL),
		logfields.Path(f.dir))

	opts := &git.CloneOptions{
		URL:   f.cfg.URL,
		Depth: f.cfg.Depth,
	}
	if f.cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(f.cfg.Branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, f.dir, false, opts)
	if err != nil {
		return "", ferrors.GitError(err, "clone source repository").
			WithContext("url", f.cfg.URL).
			Build()
	}
	return headHash(repo)
}

func (f *Fetcher) pull(ctx context.Context) (string, error) {
	slog.Debug("Updating source repository", logfields.Path(f.dir))

	repo, err := git.PlainOpen(f.dir)
	if err != nil {
		return "", ferrors.GitError(err, "open source repository").
			WithContext("path", f.dir).
			Build()
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", ferrors.GitError(err, "get worktree").
			WithContext("path", f.dir).
			Build()
	}

	opts := &git.PullOptions{RemoteName: "origin"}
	if f.cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(f.cfg.Branch)
	}
	if err := worktree.PullContext(ctx, opts); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", ferrors.GitError(err, "pull source repository").
			WithContext("path", f.dir).
			Build()
	}
	return headHash(repo)
}

func headHash(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", ferrors.GitError(err, "resolve HEAD").Build()
	}
	hash := ref.Hash().String()
	slog.Debug("Resolved source HEAD", slog.String("commit", hash[:8]))
	return hash, nil
}
