// Package filter evaluates user-supplied CEL predicates over records.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

// Evaluator compiles and runs boolean CEL expressions against a single
// dynamic variable, caching compiled programs.
type Evaluator struct {
	env      *cel.Env
	variable string
	cache    *lru.Cache[string, cel.Program]
}

// NewEvaluator creates an evaluator exposing one dynamic variable to expressions
func NewEvaluator(variable string) (*Evaluator, error) {
	env, err := cel.NewEnv(cel.Variable(variable, cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	cache, err := lru.New[string, cel.Program](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}

	return &Evaluator{env: env, variable: variable, cache: cache}, nil
}

// Compile checks expr and caches its program. Expressions must yield a bool.
func (e *Evaluator) Compile(expr string) (cel.Program, error) {
	if prg, ok := e.cache.Get(expr); ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("CEL expression must return bool, got %s", out)
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	e.cache.Add(expr, prg)
	return prg, nil
}

// Match evaluates expr with value bound to the evaluator's variable
func (e *Evaluator) Match(expr string, value map[string]interface{}) (bool, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]interface{}{
		e.variable: value,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}

	return result, nil
}

// CacheSize returns the number of cached programs
func (e *Evaluator) CacheSize() int {
	return e.cache.Len()
}
