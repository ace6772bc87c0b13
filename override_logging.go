package descriptors

// OverrideLogEvent describes a change to a decorator's overrides.
type OverrideLogEvent struct {
	Property string
	Field    Field
	Kind     EditorKind // set for FieldEditor only
	Value    any
	Cleared  bool
	// Err carries activity hook failures; the override itself still applies.
	Err error
}

// OverrideLogger records override changes.
type OverrideLogger interface {
	LogOverride(OverrideLogEvent)
}

// OverrideLoggerFunc adapts a function to OverrideLogger.
type OverrideLoggerFunc func(OverrideLogEvent)

// LogOverride implements OverrideLogger.
func (f OverrideLoggerFunc) LogOverride(event OverrideLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopOverrideLogger struct{}

func (noopOverrideLogger) LogOverride(OverrideLogEvent) {}
