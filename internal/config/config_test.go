package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, "site:\n  title: My Docs\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Docs", cfg.Site.Title)
	require.Equal(t, "./docs", cfg.Source.Dir)
	require.Equal(t, "./site", cfg.Output.Directory)
	require.Positive(t, cfg.Build.Workers)
	require.Equal(t, 8080, cfg.Preview.Port)
	require.Equal(t, 400*time.Millisecond, cfg.Preview.Debounce.Std())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("DOCSMITH_TEST_TITLE", "Expanded Title")
	path := writeConfig(t, "site:\n  title: ${DOCSMITH_TEST_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Expanded Title", cfg.Site.Title)
}

func TestLoad_DurationParsing(t *testing.T) {
	path := writeConfig(t, "preview:\n  rebuild_every: 15m\n  debounce: 250ms\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.Preview.RebuildEvery.Std())
	require.Equal(t, 250*time.Millisecond, cfg.Preview.Debounce.Std())
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "preview:\n  rebuild_every: often\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_GitSourceRequiresURL(t *testing.T) {
	path := writeConfig(t, "source:\n  dir: ./docs\n  git: {}\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestValidate_NotifyRequiresURL(t *testing.T) {
	path := writeConfig(t, "notify:\n  enabled: true\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestHistoryDefaults(t *testing.T) {
	path := writeConfig(t, "history:\n  enabled: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./docsmith-history.db", cfg.History.Path)
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsmith.yaml")
	require.NoError(t, WriteStarter(path, false))

	// Starter must round-trip through Load.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Documentation", cfg.Site.Title)

	// Refuses to clobber without force.
	require.Error(t, WriteStarter(path, false))
	require.NoError(t, WriteStarter(path, true))
}
