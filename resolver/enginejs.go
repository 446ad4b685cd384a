package resolver

import (
	"fmt"

	"github.com/dop251/goja"
)

// JSEngine compiles JavaScript expressions with goja. Variables passed to
// Run become globals of the evaluation.
type JSEngine struct {
	cache ProgramCache
}

// NewJSEngine constructs a JavaScript script engine.
func NewJSEngine(opts ...EngineOption) *JSEngine {
	cfg := applyEngineOptions(opts)
	return &JSEngine{cache: cfg.cache}
}

// Name returns "js".
func (e *JSEngine) Name() string {
	return "js"
}

// Compile wraps source in a function scope and compiles it.
func (e *JSEngine) Compile(source string) (Program, error) {
	if source == "" {
		return nil, fmt.Errorf("resolver: js source must not be empty")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(source); ok {
			if program, ok := cached.(*goja.Program); ok {
				return &jsProgram{program: program}, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(source), false)
	if err != nil {
		return nil, fmt.Errorf("resolver: compile js source: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(source, program)
	}
	return &jsProgram{program: program}, nil
}

type jsProgram struct {
	program *goja.Program
}

func (p *jsProgram) Run(vars map[string]any) (any, error) {
	vm := goja.New()
	for name, value := range vars {
		if err := vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("resolver: bind js variable %q: %w", name, err)
		}
	}
	value, err := vm.RunProgram(p.program)
	if err != nil {
		return nil, fmt.Errorf("resolver: run js program: %w", err)
	}
	return value.Export(), nil
}

func wrapJSExpression(source string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", source)
}
