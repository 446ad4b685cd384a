package resolver

// Program is a compiled script ready to run against a set of named
// variables.
type Program interface {
	Run(vars map[string]any) (any, error)
}

// Engine compiles script source text into a runnable Program. Engines are
// identified by a short name which is recorded alongside the source in
// the document so the decoder can pick the matching engine.
type Engine interface {
	Name() string
	Compile(source string) (Program, error)
}

// EngineOption configures a script engine instance.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache ProgramCache
}

// WithProgramCache wires a ProgramCache into an engine so repeated
// compilations of the same source are served from cache.
func WithProgramCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

func applyEngineOptions(opts []EngineOption) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// DefaultEngines returns one instance of every built-in engine sharing a
// single program cache.
func DefaultEngines() []Engine {
	cache := NewMemoryCache()
	return []Engine{
		NewExprEngine(WithProgramCache(cache)),
		NewJSEngine(WithProgramCache(cache)),
		NewCELEngine(WithProgramCache(cache)),
	}
}
