package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/arenaforbots/internal/controller"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "arena.hcl", `
tournament {
  runs    = 100
  seed    = 42
  workers = 4
}

controller "alice" {
  kind = "random"
}

controller "steady" {
  kind  = "constant"
  value = 500
}

controller "seq" {
  kind   = "sequence"
  values = [3, 1, 2]
}

controller "far" {
  kind    = "remote"
  url     = "ws://localhost:9000/ws"
  timeout = "2s"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Tournament.Runs)
	assert.Equal(t, int64(42), cfg.Tournament.Seed)
	assert.Equal(t, 4, cfg.Tournament.Workers)
	require.Len(t, cfg.Controllers, 4)
	assert.Equal(t, "alice", cfg.Controllers[0].Name)
	require.NotNil(t, cfg.Controllers[1].Value)
	assert.Equal(t, 500, *cfg.Controllers[1].Value)
	assert.Equal(t, []int{3, 1, 2}, cfg.Controllers[2].Values)

	specs, err := cfg.Specs()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:9000/ws", specs[3].URL)
	assert.Equal(t, 2*time.Second, specs[3].Timeout)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "arena.yaml", `
tournament:
  runs: 10
  seed: 7
controllers:
  - name: alice
    kind: random
  - name: steady
    kind: constant
    value: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Tournament.Runs)
	assert.Equal(t, 1, cfg.Tournament.Workers, "workers default")
	require.Len(t, cfg.Controllers, 2)
	require.NotNil(t, cfg.Controllers[1].Value)
	assert.Zero(t, *cfg.Controllers[1].Value)
	require.NoError(t, cfg.Validate(controller.NewRegistry()))
}

func TestLoadDefaults(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing tournament block", func(t *testing.T) {
		path := writeFile(t, "arena.hcl", `
controller "a" {
  kind = "random"
}
controller "b" {
  kind = "random"
}
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Tournament.Runs)
		assert.Equal(t, 1, cfg.Tournament.Workers)
	})
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "bad.hcl", `controller "a" {`))
	assert.ErrorContains(t, err, "parse HCL")

	_, err = Load(writeFile(t, "bad.hcl", `controller "a" { value = 1 }`))
	assert.ErrorContains(t, err, "decode HCL")

	_, err = Load(writeFile(t, "bad.yml", "controllers: [\n"))
	assert.ErrorContains(t, err, "decode YAML")
}

func TestValidate(t *testing.T) {
	reg := controller.NewRegistry()
	valid := DefaultConfig

	require.NoError(t, valid().Validate(reg))

	tests := map[string]func(c *Config){
		"zero runs":        func(c *Config) { c.Tournament.Runs = 0 },
		"zero workers":     func(c *Config) { c.Tournament.Workers = 0 },
		"one controller":   func(c *Config) { c.Controllers = c.Controllers[:1] },
		"duplicate name":   func(c *Config) { c.Controllers[1].Name = c.Controllers[0].Name },
		"empty name":       func(c *Config) { c.Controllers[0].Name = "" },
		"unknown kind":     func(c *Config) { c.Controllers[0].Kind = "psychic" },
		"bad timeout":      func(c *Config) { c.Controllers[0].Timeout = "soon" },
		"missing settings": func(c *Config) { c.Tournament = nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate(reg))
		})
	}
}
