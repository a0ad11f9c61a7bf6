package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/particleviz/internal/config"
	"github.com/zeusync/particleviz/internal/core/events/bus"
	"github.com/zeusync/particleviz/internal/core/models"
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/internal/core/scene"
	"github.com/zeusync/particleviz/internal/core/visualizer"
)

// SceneName names the collection a runtime visualizes.
type SceneName string

// Runtime is everything needed to drive one scene.
type Runtime struct {
	Logger     log.Log
	Bus        bus.EventBus
	Collection *models.Collection
	Primitives *scene.Primitives
	Visualizer *visualizer.Visualizer
}

var ProviderSet = wire.NewSet(
	ProvideSceneLogger,
	ProvideBus,
	ProvideCollection,
	ProvidePrimitives,
	ProvideVisualizer,
)

func ProvideSceneLogger(base *log.Logger, name SceneName) log.Log {
	return base.With(log.String("scene", string(name)))
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideCollection(name SceneName, b bus.EventBus) *models.Collection {
	return models.NewCollection(string(name), b)
}

func ProvidePrimitives(logger log.Log) *scene.Primitives {
	return scene.NewPrimitives(logger)
}

// ProvideVisualizer builds the visualizer; the cleanup destroys it.
func ProvideVisualizer(
	primitives *scene.Primitives,
	collection *models.Collection,
	logger log.Log,
	cfg *config.Config,
) (*visualizer.Visualizer, func(), error) {
	opts, err := cfg.VisualizerOptions()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, visualizer.WithLogger(logger))

	v, err := visualizer.New(primitives, collection, opts...)
	if err != nil {
		return nil, nil, err
	}
	return v, v.Destroy, nil
}
