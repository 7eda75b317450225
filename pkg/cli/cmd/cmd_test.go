package cmd

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/plan-engine/pkg/api"
	"github.com/LENAX/plan-engine/pkg/core/block"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/storage/sqlite"
)

func setupServer(t *testing.T) (string, *engine.Engine) {
	t.Helper()
	store, err := sqlite.NewStoreFromDSN(filepath.Join(t.TempDir(), "cmd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	eng := engine.NewEngine(store)
	server := httptest.NewServer(api.SetupRouter(eng, nil, "test"))
	t.Cleanup(server.Close)
	return server.URL, eng
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	outputJSON = false
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan Engine CLI")
	assert.Contains(t, out, Version)
}

func TestPlanRun_FlagValidation(t *testing.T) {
	_, err := run(t, "plan", "run", "--mode", "sideways")
	assert.Error(t, err)

	_, err = run(t, "plan", "run", "--mode", "retro", "--date", "")
	assert.Error(t, err)
}

func TestCommandsAgainstServer(t *testing.T) {
	url, eng := setupServer(t)
	ctx := t.Context()

	a := &block.Block{Name: "A", QtyToProduce: 1, PlannedHours: block.Float64(2)}
	require.NoError(t, eng.CreateBlock(ctx, a))

	_, err := run(t, "--server", url, "plan", "run", "--mode", "asap", "--date", "2024-01-01")
	require.NoError(t, err)

	_, err = run(t, "--server", url, "plan", "status")
	require.NoError(t, err)

	_, err = run(t, "--server", url, "plan", "integrity")
	require.NoError(t, err)

	_, err = run(t, "--server", url, "block", "list", "--completed", "false")
	require.NoError(t, err)

	_, err = run(t, "--server", url, "block", "list", "--completed", "maybe")
	assert.Error(t, err)

	_, err = run(t, "--server", url, "block", "get", "abc")
	assert.Error(t, err)

	_, err = run(t, "--server", url, "block", "done", "1")
	assert.Error(t, err, "产出不足时不能关闭")

	_, err = run(t, "--server", url, "block", "done", "1", "--produced", "1")
	require.NoError(t, err)

	got, err := eng.GetBlock(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestPlanStatus_JSONAndText(t *testing.T) {
	url, eng := setupServer(t)
	ctx := t.Context()

	require.NoError(t, eng.CreateBlock(ctx, &block.Block{Name: "A", PlannedHours: block.Float64(1)}))
	require.NoError(t, eng.CreateBlock(ctx, &block.Block{Name: "B", PlannedHours: block.Float64(1)}))

	out, err := run(t, "--server", url, "--json", "plan", "status")
	require.NoError(t, err)
	var status struct {
		Total   int `json:"total"`
		Planned int `json:"planned"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 2, status.Total)
	assert.Equal(t, 0, status.Planned)

	out, err = run(t, "--server", url, "plan", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "工序总数: 2")
	assert.Contains(t, out, "0.0%")
}
