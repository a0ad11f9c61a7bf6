package visualizer

import "github.com/zeusync/particleviz/internal/core/observability/log"

// Option configures a Visualizer.
type Option func(*options)

type options struct {
	logger           log.Log
	defaults         Defaults
	hideWhenNotShown bool
}

func defaultOptions() options {
	return options{
		logger:   log.NewNop(),
		defaults: DefaultTable(),
	}
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(logger log.Log) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaults replaces the default parameter table.
func WithDefaults(d Defaults) Option {
	return func(o *options) {
		o.defaults = d
	}
}

// WithHideWhenNotShown makes Update hide the resource of an entity that is
// not shown, and skip resolving its parameters, instead of forcing every
// synchronized resource visible. No resource is created for an entity that
// has never been shown.
func WithHideWhenNotShown(enabled bool) Option {
	return func(o *options) {
		o.hideWhenNotShown = enabled
	}
}
