package resolver

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
)

// CELEngine compiles expressions with cel-go. CEL requires variable
// declarations at compile time, so programs are materialized lazily per
// variable shape and cached by source plus shape.
type CELEngine struct {
	cache ProgramCache
}

// NewCELEngine constructs a CEL script engine.
func NewCELEngine(opts ...EngineOption) *CELEngine {
	cfg := applyEngineOptions(opts)
	return &CELEngine{cache: cfg.cache}
}

// Name returns "cel".
func (e *CELEngine) Name() string {
	return "cel"
}

// Compile returns a program that binds variable declarations on first run.
func (e *CELEngine) Compile(source string) (Program, error) {
	if source == "" {
		return nil, fmt.Errorf("resolver: cel source must not be empty")
	}
	return &celLazyProgram{engine: e, source: source}, nil
}

type celLazyProgram struct {
	engine *CELEngine
	source string
}

func (p *celLazyProgram) Run(vars map[string]any) (any, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	program, err := p.engine.loadOrCompile(p.source, vars)
	if err != nil {
		return nil, err
	}
	out, _, err := program.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("resolver: run cel program: %w", err)
	}
	return out.Value(), nil
}

func (e *CELEngine) loadOrCompile(source string, vars map[string]any) (celgo.Program, error) {
	key := cacheKey(source, vars)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}
	opts := make([]celgo.EnvOption, 0, len(vars))
	for name := range vars {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("resolver: build cel environment: %w", err)
	}
	ast, issues := env.Parse(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("resolver: parse cel source: %w", issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("resolver: check cel source: %w", issues.Err())
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("resolver: build cel program: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func cacheKey(source string, vars map[string]any) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return source + "|" + strings.Join(names, ",")
}
