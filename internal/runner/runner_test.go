package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/particleviz/internal/config"
	"github.com/zeusync/particleviz/internal/scenefile"
	"github.com/zeusync/particleviz/internal/telemetry"
)

const flareScene = `
name: %s
entities:
  - id: flare
    remove: 5s
    position:
      constant: [6378137, 0, 0]
    particle_system:
      rate:
        samples:
          - {at: 0s, value: 1}
          - {at: 2s, value: 2}
  - id: beacon
    appear: 3s
    position:
      constant: [6378137, 0, 10]
    particle_system: {}
`

func writeScene(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	doc := strings.Replace(flareScene, "%s", name, 1)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func testConfig(t *testing.T, telemetryDir string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Run.Step = time.Second
	cfg.Run.Frames = 8
	cfg.Run.TelemetryDir = telemetryDir
	return cfg
}

func TestRunPlaysScenesInParallel(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	a := writeScene(t, dir, "alpha")
	b := writeScene(t, dir, "beta")

	r := New(testConfig(t, out), nil)
	require.NoError(t, r.Run(context.Background(), []string{a, b, a}))

	summaries := r.Summaries()
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.Equal(t, 8, s.Frames)
		assert.Equal(t, uint64(2), s.Created)
		assert.Equal(t, uint64(1), s.Destroyed)
		assert.Equal(t, 2, s.PeakResources)
		assert.Equal(t, 1, s.Bounded)
		assert.Equal(t, uint64(3), s.ChangeBatches, "appear at 0s and 3s, removal at 5s")
		assert.Zero(t, s.HandlerErrors)
		assert.Equal(t, 1, s.Topics)
	}

	_, err := os.Stat(filepath.Join(out, "config.yaml"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "alpha.csv"))
	require.NoError(t, err)
	var rows []telemetry.FrameRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 8)

	assert.Equal(t, 1, rows[0].Resources)
	assert.Equal(t, 1, rows[0].ChangedSnapshots)
	assert.Equal(t, 1, rows[0].ChangeBatches)
	assert.Equal(t, 0, rows[1].ChangeBatches)
	assert.Equal(t, 1, rows[3].ChangeBatches)
	assert.Equal(t, 0, rows[1].ChangedSnapshots)
	assert.Equal(t, 1, rows[2].ChangedSnapshots, "rate steps at 2s")
	assert.Equal(t, 2, rows[3].Resources)
	assert.Equal(t, 1, rows[5].Resources, "flare is removed at 5s")
	assert.Equal(t, uint64(1), rows[5].Destroyed)
}

func TestRunWithoutScenes(t *testing.T) {
	r := New(testConfig(t, ""), nil)
	require.ErrorIs(t, r.Run(context.Background(), nil), ErrNoScenes)
}

func TestRunReportsBadScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities: [{id: a, parent: ghost}]\n"), 0644))

	r := New(testConfig(t, ""), nil)
	err := r.Run(context.Background(), []string{path})
	require.ErrorIs(t, err, scenefile.ErrUnknownParent)
}

func TestRunRejectsScenesSharingTelemetryFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0755))
	first := writeScene(t, filepath.Join(dir, "a"), "harbor")
	second := writeScene(t, filepath.Join(dir, "b"), "harbor")

	r := New(testConfig(t, out), nil)
	err := r.Run(context.Background(), []string{first, second})
	require.ErrorIs(t, err, ErrDuplicateOutput)
	assert.Contains(t, err.Error(), first)
	assert.Contains(t, err.Error(), second)
	assert.Empty(t, r.Summaries())

	_, err = os.Stat(filepath.Join(out, "harbor.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunAllowsSharedNamesWithoutTelemetry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0755))
	first := writeScene(t, filepath.Join(dir, "a"), "harbor")
	second := writeScene(t, filepath.Join(dir, "b"), "harbor")

	r := New(testConfig(t, ""), nil)
	require.NoError(t, r.Run(context.Background(), []string{first, second}))
	require.Len(t, r.Summaries(), 2)
}

func TestPlayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(testConfig(t, ""), nil)
	summary, err := r.Play(ctx, &scenefile.Scene{Name: "cancelled"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Frames)
}
