package resolver

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEngine compiles expressions with expr-lang/expr. Variables passed
// to Run form the evaluation environment.
type ExprEngine struct {
	cache ProgramCache
}

// NewExprEngine constructs an expr script engine.
func NewExprEngine(opts ...EngineOption) *ExprEngine {
	cfg := applyEngineOptions(opts)
	return &ExprEngine{cache: cfg.cache}
}

// Name returns "expr".
func (e *ExprEngine) Name() string {
	return "expr"
}

// Compile builds a reusable expr program allowing undefined variables so
// the environment shape is decided at run time.
func (e *ExprEngine) Compile(source string) (Program, error) {
	if source == "" {
		return nil, fmt.Errorf("resolver: expr source must not be empty")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(source); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return &exprProgram{program: program}, nil
			}
		}
	}
	program, err := exprlang.Compile(source,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("resolver: compile expr source: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(source, program)
	}
	return &exprProgram{program: program}, nil
}

type exprProgram struct {
	program *exprvm.Program
}

func (p *exprProgram) Run(vars map[string]any) (any, error) {
	if vars == nil {
		vars = map[string]any{}
	}
	result, err := exprlang.Run(p.program, vars)
	if err != nil {
		return nil, fmt.Errorf("resolver: run expr program: %w", err)
	}
	return result, nil
}
