package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeusync/particleviz/internal/config"
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/internal/runner"
)

type sceneList []string

func (s *sceneList) String() string { return strings.Join(*s, ",") }

func (s *sceneList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	var scenes sceneList
	flag.Var(&scenes, "scene", "Scene file to play; repeatable, added to run.scenes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel())
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	paths := append(append([]string(nil), cfg.Run.Scenes...), scenes...)
	r := runner.New(cfg, logger)
	if err := r.Run(ctx, paths); err != nil {
		logger.Error("run failed", log.Error(err))
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}

	for _, s := range r.Summaries() {
		logger.Info("scene summary",
			log.String("scene", s.Scene),
			log.Int("frames", s.Frames),
			log.Uint64("created", s.Created),
			log.Uint64("destroyed", s.Destroyed),
			log.Int("peak_resources", s.PeakResources),
			log.Uint64("change_batches", s.ChangeBatches),
			log.Uint64("handler_errors", s.HandlerErrors),
			log.String("telemetry", s.Telemetry),
		)
	}
}
