//go:build !js_eval

package rules

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	_ = newEngineConfig(opts)
	return nil
}

func isJSEvaluator(Evaluator) bool {
	return false
}
