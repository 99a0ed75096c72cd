package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/arenaforbots/internal/controller"
	"github.com/lox/arenaforbots/internal/remote"
)

func quietGlobals() *Globals {
	return &Globals{LogLevel: "error"}
}

func TestLoadConfigOverrides(t *testing.T) {
	reg := controller.NewRegistry()
	missing := filepath.Join(t.TempDir(), "arena.hcl")

	cfg, err := loadConfig(missing, []string{"constant:low:1", "sequence:seq:3,1,2"}, reg)
	require.NoError(t, err)
	require.Len(t, cfg.Controllers, 2)
	assert.Equal(t, "low", cfg.Controllers[0].Name)
	assert.Equal(t, []int{3, 1, 2}, cfg.Controllers[1].Values)

	_, err = loadConfig(missing, []string{"constant:only:1"}, reg)
	assert.ErrorContains(t, err, "at least two controllers")

	_, err = loadConfig(missing, []string{"bogus"}, reg)
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	resultsFile := filepath.Join(dir, "results.json")
	seed := int64(42)

	var out, bar bytes.Buffer
	cmd := &RunCmd{
		Config:       filepath.Join(dir, "missing.hcl"),
		Runs:         3,
		Seed:         &seed,
		Workers:      2,
		Controller:   []string{"constant:low:1", "constant:high:2"},
		DB:           filepath.Join(dir, "arena.db"),
		WriteResults: resultsFile,
		out:          &out,
		progressOut:  &bar,
	}
	require.NoError(t, cmd.Run(quietGlobals()))
	assert.Contains(t, bar.String(), "3/3")

	text := out.String()
	assert.Contains(t, text, "Final scores after 3 matches (seed 42)")
	assert.Contains(t, text, "All-time totals")
	assert.Less(t, strings.Index(text, "high"), strings.Index(text, "low"), "highest score listed first")
	assert.Contains(t, text, "95% CI")
	assert.Regexp(t, `high\s+│\s+6\s+│\s+2\.00\s+│\s+0\.00\s+│\s+\[2\.00, 2\.00\]\s+│\s+2\.0\s+│\s+2\s+│\s+3\s+│\s+3 \(100%\)`, text)

	b, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	var decoded struct {
		Seed   int64          `json:"seed"`
		Totals map[string]int `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, int64(42), decoded.Seed)
	assert.Equal(t, map[string]int{"low": 3, "high": 6}, decoded.Totals)

	// A second run accumulates in the database.
	out.Reset()
	require.NoError(t, cmd.Run(quietGlobals()))
	assert.Regexp(t, `high\s+│\s+12\s`, out.String())
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "arena.db")
	resultsFile := filepath.Join(dir, "results.json")
	seed := int64(5)

	run := &RunCmd{
		Config:       filepath.Join(dir, "missing.hcl"),
		Runs:         2,
		Seed:         &seed,
		Workers:      1,
		Controller:   []string{"constant:low:1", "constant:high:2"},
		DB:           db,
		WriteResults: resultsFile,
		NoProgress:   true,
		out:          io.Discard,
	}
	require.NoError(t, run.Run(quietGlobals()))

	b, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	var decoded struct {
		Matches []struct {
			ID string `json:"id"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Matches, 2)
	id := decoded.Matches[0].ID

	var out bytes.Buffer
	require.NoError(t, (&HistoryCmd{DB: db, Limit: 10, out: &out}).Run(quietGlobals()))
	assert.Contains(t, out.String(), "2 matches recorded")
	assert.Regexp(t, `high\s+│\s+4\s`, out.String())
	assert.Contains(t, out.String(), id)

	out.Reset()
	require.NoError(t, (&HistoryCmd{DB: db, ID: id, out: &out}).Run(quietGlobals()))
	assert.Contains(t, out.String(), "Match "+id)
	assert.Contains(t, out.String(), "Winner: high")
	assert.Less(t, strings.Index(out.String(), "low"), strings.Index(out.String(), "high"), "first eliminated listed first")
}

func TestHistoryCommandRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "arena.db")

	err := (&HistoryCmd{DB: db, ID: "not-a-match-id", out: io.Discard}).Run(quietGlobals())
	assert.ErrorContains(t, err, "must be exactly 26 characters")

	err = (&HistoryCmd{DB: db, out: io.Discard}).Run(quietGlobals())
	assert.ErrorContains(t, err, "failed to open database")
	assert.NoFileExists(t, db)
}

func TestControllersCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&ControllersCmd{out: &out}).Run(quietGlobals()))
	assert.Equal(t, "constant\nrandom\nremote\nsequence\n", out.String())
}

func TestNewRegistry(t *testing.T) {
	reg, err := newRegistry(log.New(io.Discard))
	require.NoError(t, err)
	assert.True(t, reg.Has(remote.KindRemote))
}

func TestBotSpec(t *testing.T) {
	spec := (&BotCmd{Kind: controller.KindConstant, Name: "steady", Value: 0}).spec()
	require.NotNil(t, spec.Value)
	assert.Zero(t, *spec.Value)

	spec = (&BotCmd{Kind: controller.KindRandom, Name: "r", Value: 5}).spec()
	assert.Nil(t, spec.Value)
}

func TestGlobalsLogger(t *testing.T) {
	_, err := (&Globals{LogLevel: "loud"}).newLogger(nil)
	assert.Error(t, err)

	var buf bytes.Buffer
	logger, err := (&Globals{LogLevel: "info"}).newLogger(&buf)
	require.NoError(t, err)
	logger.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}
