package cel

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// Input is the view of a classified chat message that hide rules can see.
type Input struct {
	Type        string
	Stripped    string
	Sender      string
	Source      string
	ClickAction string
	HasSound    bool
	LineCount   int
	Cancelled   bool
}

func (in Input) vars() map[string]interface{} {
	return map[string]interface{}{
		"type":         in.Type,
		"stripped":     in.Stripped,
		"sender":       in.Sender,
		"source":       in.Source,
		"click_action": in.ClickAction,
		"has_sound":    in.HasSound,
		"line_count":   int64(in.LineCount),
		"cancelled":    in.Cancelled,
	}
}

// Evaluator compiles hide expressions and caches the resulting programs by
// source text.
type Evaluator struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("stripped", cel.StringType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("source", cel.StringType),
		cel.Variable("click_action", cel.StringType),
		cel.Variable("has_sound", cel.BoolType),
		cel.Variable("line_count", cel.IntType),
		cel.Variable("cancelled", cel.BoolType),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Validate checks that expression compiles and yields a bool.
func (e *Evaluator) Validate(expression string) error {
	_, err := e.compile(expression)
	return err
}

// Compile returns the cached program for expression, compiling it on first
// use.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = program
	e.mu.Unlock()

	return program, nil
}

func (e *Evaluator) compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("hide expression must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return program, nil
}

func (e *Evaluator) Evaluate(ctx context.Context, expression string, in Input) (bool, error) {
	program, err := e.Compile(expression)
	if err != nil {
		return false, err
	}
	return EvaluateProgram(ctx, program, in)
}

func EvaluateProgram(ctx context.Context, program cel.Program, in Input) (bool, error) {
	result, _, err := program.ContextEval(ctx, in.vars())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return matched, nil
}

// CachedPrograms reports how many distinct expressions are compiled.
func (e *Evaluator) CachedPrograms() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.programs)
}
