package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/particleviz/internal/core/events/bus"
)

func TestNilWriterDiscards(t *testing.T) {
	w, err := NewWriter("", "scene")
	require.NoError(t, err)
	require.Nil(t, w)

	require.NoError(t, w.Write(FrameRecord{Frame: 1}))
	require.NoError(t, w.Close())
	assert.Empty(t, w.Path())
}

func TestWriterWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "scenes/harbor.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "harbor.csv"), w.Path())

	require.NoError(t, w.Write(FrameRecord{Scene: "harbor", Frame: 0, Active: 2, Resources: 1}))
	require.NoError(t, w.Write(FrameRecord{Scene: "harbor", Frame: 1, Active: 2, Resources: 2, ChangedSnapshots: 1}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "scene,frame,time,active"))

	var rows []FrameRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].Resources)
	assert.Equal(t, 1, rows[1].ChangedSnapshots)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "harbor.csv", FileName("harbor"))
	assert.Equal(t, "my_scene.csv", FileName("my scene.yaml"))
	assert.Equal(t, "scene.csv", FileName(""))
}

func TestFingerprints(t *testing.T) {
	f := NewFingerprints()

	assert.True(t, f.Observe("a", 1))
	assert.False(t, f.Observe("a", 1))
	assert.True(t, f.Observe("a", 2))
	assert.True(t, f.Observe("b", 7))
	f.Prune()
	assert.Equal(t, 2, f.Len())

	assert.False(t, f.Observe("a", 2))
	f.Prune()
	assert.Equal(t, 1, f.Len())
	assert.True(t, f.Observe("b", 7), "pruned ids start over")
}

func TestBusRecorderCountsPerFrame(t *testing.T) {
	b := bus.New()
	rec := NewBusRecorder()
	b.AddObserver(rec)

	boom := errors.New("boom")
	_, err := b.SubscribeTopic("scene", "changed", func(bus.Event) error { return nil })
	require.NoError(t, err)
	_, err = b.SubscribeTopic("scene", "failed", func(bus.Event) error { return boom })
	require.NoError(t, err)

	require.NoError(t, b.PublishToTopic("scene", bus.NewEvent("changed", "test", nil)))
	require.ErrorIs(t, b.PublishToTopic("scene", bus.NewEvent("failed", "test", nil)), boom)

	first := rec.Take()
	assert.Equal(t, 2, first.Batches)
	assert.Equal(t, 1, first.HandlerErrors)
	assert.Zero(t, rec.Take().Batches)

	require.NoError(t, b.PublishToTopic("scene", bus.NewEvent("changed", "test", nil)))
	assert.Equal(t, 1, rec.Take().Batches)

	total := rec.Total()
	assert.Equal(t, 3, total.Batches)
	assert.Equal(t, 1, total.HandlerErrors)

	b.RemoveObserver(rec)
	require.NoError(t, b.PublishToTopic("scene", bus.NewEvent("changed", "test", nil)))
	assert.Zero(t, rec.Take().Batches)
}
