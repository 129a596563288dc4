package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreComplete(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Gateway.BaseURL)
	assert.NotEmpty(t, cfg.LogStore.Addresses)
	assert.NotEmpty(t, cfg.LogStore.Index)
	assert.NotEmpty(t, cfg.Simulator.BaseURL)
	assert.NotEmpty(t, cfg.Simulator.ReturnURL)
	assert.Equal(t, 20*time.Second, cfg.Run.WaitBudget())
	assert.Equal(t, time.Second, cfg.Run.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.Run.StepTimeout())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gateway:
  baseUrl: http://gateway.test:8280
logStore:
  addresses: ["http://elastic.test:9200"]
  index: logs-acc-*
run:
  waitBudgetMs: 5000
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gateway.test:8280", cfg.Gateway.BaseURL)
	assert.Equal(t, []string{"http://elastic.test:9200"}, cfg.LogStore.Addresses)
	assert.Equal(t, "logs-acc-*", cfg.LogStore.Index)
	assert.Equal(t, 5*time.Second, cfg.Run.WaitBudget())
	// untouched keys keep their defaults
	assert.Equal(t, Default().Simulator.ReturnURL, cfg.Simulator.ReturnURL)
	assert.Equal(t, Default().Run.PollIntervalMS, cfg.Run.PollIntervalMS)
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadMalformedYAMLIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: ["), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}
