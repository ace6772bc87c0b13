package descriptors

import (
	"github.com/goliatone/go-descriptors/pkg/activity"
)

// Option configures a Dynamic at construction.
type Option func(*dynamicConfig)

type dynamicConfig struct {
	logger          OverrideLogger
	activityHooks   activity.Hooks
	activityChannel string
	actorID         string
	tenantID        string
	emitter         *activity.Emitter
}

func applyOptions(opts []Option) dynamicConfig {
	cfg := dynamicConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.activityChannel,
	})
	return cfg
}

// WithLogger attaches a logger notified on every override change.
func WithLogger(logger OverrideLogger) Option {
	return func(cfg *dynamicConfig) {
		if logger == nil {
			cfg.logger = noopOverrideLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks notified on every override
// change. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *dynamicConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel sets the channel stamped on emitted events
// (default "descriptors").
func WithActivityChannel(channel string) Option {
	return func(cfg *dynamicConfig) {
		cfg.activityChannel = channel
	}
}

// WithActor records who performs the overrides on emitted events.
func WithActor(actorID, tenantID string) Option {
	return func(cfg *dynamicConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

func (c dynamicConfig) overrideLogger() OverrideLogger {
	if c.logger != nil {
		return c.logger
	}
	return noopOverrideLogger{}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
