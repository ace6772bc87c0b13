package overlay

import (
	"github.com/goliatone/go-descriptors/pkg/activity"
	"github.com/goliatone/go-descriptors/rules"
)

// ApplierOption configures an Applier.
type ApplierOption func(*applierConfig)

type applierConfig struct {
	evaluator       rules.Evaluator
	ruleLogger      rules.EvaluatorLogger
	registry        *Registry
	logger          ApplyLogger
	activityHooks   activity.Hooks
	activityChannel string
	actorID         string
	tenantID        string
	emitter         *activity.Emitter
}

// WithEvaluator sets the engine used for when expressions.
func WithEvaluator(evaluator rules.Evaluator) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.evaluator = evaluator
	}
}

// WithRuleLogger reports every when evaluation.
func WithRuleLogger(logger rules.EvaluatorLogger) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.ruleLogger = logger
	}
}

// WithRegistry sets the registry converter and editor names resolve against.
func WithRegistry(registry *Registry) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.registry = registry
	}
}

// WithApplyLogger attaches a logger notified for every applied or skipped
// entry.
func WithApplyLogger(logger ApplyLogger) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.logger = logger
	}
}

// WithActivityHooks emits a descriptor.overlay.applied event per applied
// entry.
func WithActivityHooks(hooks activity.Hooks) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.activityHooks = append(activity.Hooks(nil), hooks...)
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.activityChannel = channel
	}
}

// WithActor records who applies the overlay on emitted events.
func WithActor(actorID, tenantID string) ApplierOption {
	return func(cfg *applierConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

// ApplyLogEvent describes one document entry handled by Apply.
type ApplyLogEvent struct {
	Property string
	Fields   []string
	Scope    string
	Skipped  SkipReason
	// Err carries activity hook failures; the entry itself was applied.
	Err error
}

// ApplyLogger records Apply progress.
type ApplyLogger interface {
	LogApply(ApplyLogEvent)
}

// ApplyLoggerFunc adapts a function to ApplyLogger.
type ApplyLoggerFunc func(ApplyLogEvent)

// LogApply implements ApplyLogger.
func (f ApplyLoggerFunc) LogApply(event ApplyLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopApplyLogger struct{}

func (noopApplyLogger) LogApply(ApplyLogEvent) {}
