package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Phase tells whether an expression failed to compile or to run.
type Phase string

const (
	PhaseCompile  Phase = "compile"
	PhaseEvaluate Phase = "evaluate"
)

// EvaluationError ties an engine failure to the condition that failed and
// the property and scope it was gating.
type EvaluationError struct {
	Engine   string
	Phase    Phase
	Expr     string
	Property string
	Scope    string
	Err      error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	phase := e.Phase
	if phase == "" {
		phase = PhaseEvaluate
	}
	fmt.Fprintf(&b, "rules: %s %s %s", e.Engine, phase, describeExpression(e.Expr))
	if e.Property != "" {
		fmt.Fprintf(&b, " property=%s", e.Property)
	}
	if e.Scope != "" {
		fmt.Fprintf(&b, " scope=%s", e.Scope)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsCompileError reports whether err comes from an expression that does not
// compile, as opposed to one that failed against a particular component.
func IsCompileError(err error) bool {
	var evalErr *EvaluationError
	return errors.As(err, &evalErr) && evalErr.Phase == PhaseCompile
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

// site locates an engine call so its failures can be reported against the
// condition and overlay entry involved.
type site struct {
	engine   string
	phase    Phase
	expr     string
	property string
	scope    string
}

func compileSite(engine, expr string) site {
	return site{engine: engine, phase: PhaseCompile, expr: expr}
}

func evalSite(engine, expr string, ctx RuleContext) site {
	return site{
		engine:   engine,
		phase:    PhaseEvaluate,
		expr:     expr,
		property: ctx.Property,
		scope:    ctx.scopeLabel(),
	}
}

// wrap attaches the site to err. An EvaluationError already in the chain has
// its blank fields filled instead of being nested.
func (s site) wrap(err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = s.engine
		}
		if evalErr.Phase == "" {
			evalErr.Phase = s.phase
		}
		if evalErr.Expr == "" {
			evalErr.Expr = s.expr
		}
		if evalErr.Property == "" {
			evalErr.Property = s.property
		}
		if evalErr.Scope == "" {
			evalErr.Scope = s.scope
		}
		return evalErr
	}
	return &EvaluationError{
		Engine:   s.engine,
		Phase:    s.phase,
		Expr:     s.expr,
		Property: s.property,
		Scope:    s.scope,
		Err:      err,
	}
}
