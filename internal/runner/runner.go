// Package runner drives scripted scenes through the particle visualizer.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeusync/particleviz/internal/config"
	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/internal/core/visualizer"
	"github.com/zeusync/particleviz/internal/injector"
	"github.com/zeusync/particleviz/internal/scenefile"
	"github.com/zeusync/particleviz/internal/telemetry"
	"github.com/zeusync/particleviz/pkg/concurrent"
	"github.com/zeusync/particleviz/pkg/sequence"
)

// Summary describes one finished scene run.
type Summary struct {
	Scene         string
	Frames        int
	Created       uint64
	Destroyed     uint64
	PeakResources int
	// Bounded is the number of entities with a bounding sphere on the last frame.
	Bounded int
	// ChangeBatches and HandlerErrors count collection change sets delivered
	// on the scene's bus and the deliveries that failed.
	ChangeBatches uint64
	HandlerErrors uint64
	Topics        int
	Telemetry     string
}

type Runner struct {
	cfg    *config.Config
	logger *log.Logger

	mu        sync.Mutex
	summaries []Summary
}

func New(cfg *config.Config, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run plays every distinct scene file, up to run.parallel at a time. The
// first failure cancels the scenes still running. All scenes are loaded
// up front; two scenes that would write the same telemetry file are
// rejected before any of them starts.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return ErrNoScenes
	}

	sources := sequence.Distinct(sequence.From(paths)).Collect()
	scenes := make([]*scenefile.Scene, 0, len(sources))
	for _, path := range sources {
		sc, err := scenefile.LoadFile(path)
		if err != nil {
			return err
		}
		scenes = append(scenes, sc)
	}

	if dir := r.cfg.Run.TelemetryDir; dir != "" {
		if err := checkOutputs(scenes, sources); err != nil {
			return err
		}
		if err := r.writeConfig(dir); err != nil {
			return err
		}
	}

	return concurrent.ForEach(ctx, sequence.From(scenes), r.cfg.Run.Parallel, func(ctx context.Context, sc *scenefile.Scene) error {
		summary, err := r.Play(ctx, sc)
		if err != nil {
			return fmt.Errorf("scene %s: %w", sc.Name, err)
		}

		r.mu.Lock()
		r.summaries = append(r.summaries, summary)
		r.mu.Unlock()
		return nil
	})
}

// checkOutputs rejects scenes whose names map to the same telemetry file.
// sources[i] is the file scenes[i] was loaded from.
func checkOutputs(scenes []*scenefile.Scene, sources []string) error {
	seen := make(map[string]string, len(scenes))
	for i, sc := range scenes {
		name := telemetry.FileName(sc.Name)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, sources[i], name)
		}
		seen[name] = sources[i]
	}
	return nil
}

// Summaries returns the summaries of the scenes completed so far, in
// completion order.
func (r *Runner) Summaries() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Summary(nil), r.summaries...)
}

func (r *Runner) writeConfig(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return r.cfg.WriteYAML(filepath.Join(dir, "config.yaml"))
}

// Play runs sc frame by frame on the calling goroutine.
func (r *Runner) Play(ctx context.Context, sc *scenefile.Scene) (Summary, error) {
	run := r.cfg.Run
	summary := Summary{Scene: sc.Name}

	timeline, err := sc.Build(run.Start)
	if err != nil {
		return summary, err
	}

	rt, cleanup, err := injector.InitializeRuntime(r.cfg, r.logger, injector.SceneName(sc.Name))
	if err != nil {
		return summary, fmt.Errorf("initializing runtime: %w", err)
	}
	defer cleanup()

	out, err := telemetry.NewWriter(run.TelemetryDir, sc.Name)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := out.Close(); err != nil {
			rt.Logger.Error("failed to close telemetry", log.Error(err))
		}
	}()
	summary.Telemetry = out.Path()

	rec := telemetry.NewBusRecorder()
	rt.Bus.AddObserver(rec)
	defer rt.Bus.RemoveObserver(rec)

	rt.Logger.Info("scene started",
		log.Int("entities", len(timeline.Entities())),
		log.Int("frames", run.Frames),
		log.Duration("step", run.Step),
	)

	fingerprints := telemetry.NewFingerprints()
	var bounds geom.BoundingSphere

	for frame := 0; frame < run.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		elapsed := time.Duration(frame) * run.Step
		now := run.Start.Add(elapsed)

		if _, err := timeline.Apply(rt.Collection, elapsed); err != nil {
			rt.Logger.Warn("scene event failed", log.Int("frame", frame), log.Error(err))
		}

		began := time.Now()
		if _, err := rt.Visualizer.Update(now); err != nil {
			return summary, fmt.Errorf("frame %d: %w", frame, err)
		}
		took := time.Since(began)
		delivered := rec.Take()
		if delivered.HandlerErrors > 0 {
			rt.Logger.Warn("change delivery failed", log.Int("frame", frame), log.Int("errors", delivered.HandlerErrors))
		}

		changed, bounded := 0, 0
		for _, e := range rt.Collection.Values() {
			if p, ok := rt.Visualizer.Resource(e.ID()); ok && fingerprints.Observe(e.ID(), p.Fingerprint()) {
				changed++
			}
			if state, _ := rt.Visualizer.BoundingSphere(e, &bounds); state == visualizer.BoundingSphereDone {
				bounded++
			}
		}
		fingerprints.Prune()

		stats := rt.Visualizer.Stats()
		if stats.Resources > summary.PeakResources {
			summary.PeakResources = stats.Resources
		}
		summary.Frames++
		summary.Bounded = bounded

		record := telemetry.FrameRecord{
			Scene:            sc.Name,
			Frame:            frame,
			Time:             now.Format(time.RFC3339Nano),
			Active:           stats.Active,
			Resources:        stats.Resources,
			Visible:          stats.Visible,
			Created:          stats.Created,
			Destroyed:        stats.Destroyed,
			ChangedSnapshots: changed,
			Bounded:          bounded,
			ChangeBatches:    delivered.Batches,
			HandlerErrors:    delivered.HandlerErrors,
			UpdateUS:         took.Microseconds(),
		}
		if err := out.Write(record); err != nil {
			return summary, err
		}
	}

	stats := rt.Visualizer.Stats()
	summary.Created = stats.Created
	summary.Destroyed = stats.Destroyed
	metrics := rt.Bus.GetMetrics()
	summary.ChangeBatches = metrics.Published
	summary.HandlerErrors = metrics.Errors
	summary.Topics = len(rt.Bus.GetTopics())

	rt.Logger.Info("scene finished",
		log.Int("frames", summary.Frames),
		log.Uint64("created", summary.Created),
		log.Uint64("destroyed", summary.Destroyed),
		log.Int("peak_resources", summary.PeakResources),
		log.Uint64("change_batches", summary.ChangeBatches),
		log.Uint64("handler_errors", summary.HandlerErrors),
	)
	return summary, nil
}
