package rules

import (
	"fmt"
	"time"
)

// EvaluatorLogEvent records one condition check made by EvaluateBool.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Property string
	Scope    string
	// Component is the Go type of the component, e.g. map[string]interface {}.
	Component string
	// Result is the condition outcome. It is false whenever Err is set.
	Result   bool
	Duration time.Duration
	Err      error
}

// String renders the event as a single log line.
func (e EvaluatorLogEvent) String() string {
	target := e.Property
	if target == "" {
		target = "<any>"
	}
	outcome := fmt.Sprint(e.Result)
	if e.Err != nil {
		outcome = "error: " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s@%s %q -> %s (%s)", e.Engine, target, e.Scope, e.Expr, outcome, e.Duration)
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}
