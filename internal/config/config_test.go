package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultTopN, cfg.Source.TopN)
	require.Equal(t, DefaultEncyclopediaBase, cfg.Scraper.BaseURL)
	require.Equal(t, 1, cfg.Scraper.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
source:
  top_n: 50
scraper:
  timeout: 5s
  workers: 4
store:
  path: ":memory:"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Source.TopN)
	require.Equal(t, DefaultSourceURL, cfg.Source.URL)
	require.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	require.Equal(t, 4, cfg.Scraper.Workers)
	require.Equal(t, ":memory:", cfg.Store.Path)
	require.Equal(t, DefaultOutputDir, cfg.Output.Dir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
source:
  top_n: 0
scraper:
  workers: -1
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "top_n")
	require.Contains(t, err.Error(), "workers")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "offersleuth.example.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultSourceURL, cfg.Source.URL)
	require.Equal(t, 4, cfg.Scraper.Workers)
	require.Equal(t, 15*time.Second, cfg.Scraper.Timeout)
}
