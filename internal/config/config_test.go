package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.ScanWindow(), 10*time.Second)
	assert.Equal(t, cfg.ConnectTimeout(), 15*time.Second)
	assert.Equal(t, cfg.LogCap, 200)
	assert.Equal(t, cfg.RefreshInterval(), 250*time.Millisecond)
	assert.Assert(t, cfg.ErrorLogPath != "")
}

func TestLoad(t *testing.T) {
	content := `
scan_seconds: 5
connect_timeout_seconds: 30
log_cap: 50
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.ScanWindow(), 5*time.Second)
	assert.Equal(t, cfg.ConnectTimeout(), 30*time.Second)
	assert.Equal(t, cfg.LogCap, 50)
	// unspecified fields keep defaults
	assert.Equal(t, cfg.RefreshHz, 4)
}

func TestLoadRejectsBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("scan_seconds: ["), 0644))
	_, err := Load(path)
	assert.Assert(t, err != nil)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NilError(t, err)
	assert.Equal(t, cfg.LogCap, 200)
}

func TestSanitizedClampsNonsense(t *testing.T) {
	content := `
scan_seconds: -4
refresh_hz: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))
	cfg, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.ScanSeconds, 10)
	assert.Equal(t, cfg.RefreshHz, 4)
}
