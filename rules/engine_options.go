package rules

// EngineOption configures any of the bundled evaluators.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithProgramCache stores compiled programs in cache, keyed by expression
// text. Share a cache only between evaluators of the same engine.
func WithProgramCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes registry's functions to conditions, by name
// and through call(name, ...). The registry is copied when the option is
// applied. Repeating the option merges registries, later ones winning.
func WithFunctionRegistry(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		if registry == nil {
			return
		}
		if cfg.registry == nil {
			cfg.registry = NewFunctionRegistry()
		}
		cfg.registry.absorb(registry)
	}
}

// WithBuiltins exposes the helpers returned by Builtins.
func WithBuiltins() EngineOption {
	return WithFunctionRegistry(Builtins())
}

func newEngineConfig(opts []EngineOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
