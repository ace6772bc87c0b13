// Package rules evaluates the conditions that gate overlay overrides. The
// expr engine is the default; CEL and JS (build tag js_eval) are available.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoEvaluator is returned when no evaluator could be resolved.
	ErrNoEvaluator = errors.New("rules: evaluator not configured")
	// ErrNotBoolean is returned when a condition does not produce a bool.
	ErrNotBoolean = errors.New("rules: condition must evaluate to a boolean")
)

// RuleContext carries the inputs a condition is evaluated against.
type RuleContext struct {
	// Component is the component whose descriptors are being customised. Maps
	// are used as-is; other values are snapshotted through JSON. expr and JS
	// also bind its fields at the top level, except those named in
	// ReservedNames, which stay reachable only as component.<field>.
	Component any
	Property  string
	Scope     string
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope != "" {
		return ctx.Scope
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Default returns the expr-backed evaluator.
func Default() Evaluator {
	return NewExprEvaluator()
}

// EvaluateBool evaluates expr and requires a boolean result. The attempt is
// reported to logger, which may be nil.
func EvaluateBool(evaluator Evaluator, ctx RuleContext, expr string, logger EvaluatorLogger) (bool, error) {
	if evaluator == nil {
		return false, ErrNoEvaluator
	}
	if expr == "" {
		return false, fmt.Errorf("rules: expression must not be empty")
	}
	ctx = ctx.withDefaults()
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	at := evalSite(EngineName(evaluator), expr, ctx)
	err = at.wrap(err)
	result, ok := value.(bool)
	if err == nil && !ok {
		err = at.wrap(fmt.Errorf("%w, got %T", ErrNotBoolean, value))
	}
	if logger != nil {
		event := EvaluatorLogEvent{
			Engine:    EngineName(evaluator),
			Expr:      expr,
			Property:  ctx.Property,
			Scope:     ctx.scopeLabel(),
			Component: fmt.Sprintf("%T", ctx.Component),
			Duration:  time.Since(start),
			Err:       err,
		}
		event.Result = err == nil && result
		logger.LogEvaluation(event)
	}
	if err != nil {
		return false, err
	}
	return result, nil
}

// EngineName reports the engine behind e.
func EngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if isJSEvaluator(e) {
			return "js"
		}
		return "custom"
	}
}

// Snapshot converts a component into the map the engines bind as variables.
func Snapshot(component any) map[string]any {
	switch typed := component.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return typed
	}
	payload, err := json.Marshal(component)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// ReservedNames are the variables every engine binds. They take precedence
// over component fields of the same name.
var ReservedNames = []string{"component", "property", "scope", "now", "args", "metadata"}

func bindings(ctx RuleContext) map[string]any {
	snapshot := Snapshot(ctx.Component)
	env := make(map[string]any, len(snapshot)+len(ReservedNames))
	for key, value := range snapshot {
		env[key] = value
	}
	env["component"] = snapshot
	env["property"] = ctx.Property
	env["scope"] = ctx.Scope
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	return env
}
