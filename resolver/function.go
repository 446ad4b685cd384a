package resolver

import (
	"fmt"
	"sort"
)

// Func is a scripted callable: an expression over named variables,
// compiled by one of the script engines. Its source text round-trips
// through documents via the Function resolver.
type Func struct {
	engine  Engine
	source  string
	program Program
}

// Script compiles source with engine and returns the resulting callable.
func Script(engine Engine, source string) (*Func, error) {
	if engine == nil {
		return nil, fmt.Errorf("resolver: script engine is nil")
	}
	program, err := engine.Compile(source)
	if err != nil {
		return nil, err
	}
	return &Func{engine: engine, source: source, program: program}, nil
}

// Call evaluates the function against the named variables.
func (f *Func) Call(vars map[string]any) (any, error) {
	if f == nil || f.program == nil {
		return nil, fmt.Errorf("resolver: function is not compiled")
	}
	return f.program.Run(vars)
}

// Source returns the original source text.
func (f *Func) Source() string {
	return f.source
}

// Engine returns the name of the engine the source was compiled with.
func (f *Func) Engine() string {
	if f.engine == nil {
		return ""
	}
	return f.engine.Name()
}

// Function resolves scripted callables: the source text and engine name
// are stored in the document and the callable is recreated by compiling
// the source on decode.
//
// Recompiling source text from a document executes whatever that text
// evaluates to. Only decode documents from trusted origins with this
// resolver, and attach it per parameter, never as a blanket default.
//
// Values that are not *Func pass through Encode unchanged, so a callable
// that is itself a registered serializable object is handled by the
// ordinary nested-object encoding instead.
type Function struct {
	engines map[string]Engine
}

// NewFunction constructs a Function resolver over the given engines,
// defaulting to DefaultEngines when none are supplied.
func NewFunction(engines ...Engine) *Function {
	if len(engines) == 0 {
		engines = DefaultEngines()
	}
	byName := make(map[string]Engine, len(engines))
	for _, engine := range engines {
		if engine != nil {
			byName[engine.Name()] = engine
		}
	}
	return &Function{engines: byName}
}

// Engines returns the names of the configured engines, sorted.
func (r *Function) Engines() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode stores a *Func as {engine, source}; other values pass through.
func (r *Function) Encode(_ Context, value any) (any, error) {
	fn, ok := value.(*Func)
	if !ok {
		return value, nil
	}
	if fn.Engine() == "" {
		return nil, fmt.Errorf("resolver: function has no engine")
	}
	return map[string]any{
		"engine": fn.Engine(),
		"source": fn.Source(),
	}, nil
}

// Decode recompiles the stored source with the named engine.
func (r *Function) Decode(_ Context, value any) (any, error) {
	stored, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	engineName, ok := stored["engine"].(string)
	if !ok {
		return nil, fmt.Errorf("resolver: stored function is missing an engine name")
	}
	source, ok := stored["source"].(string)
	if !ok {
		return nil, fmt.Errorf("resolver: stored function is missing source text")
	}
	engine, ok := r.engines[engineName]
	if !ok {
		return nil, fmt.Errorf("resolver: script engine %q is not configured", engineName)
	}
	return Script(engine, source)
}

// EncodedType reports the mapping wire shape.
func (r *Function) EncodedType() Type {
	return TypeMap
}
