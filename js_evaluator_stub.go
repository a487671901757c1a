//go:build !js_eval

package jsonio

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSEvaluator(opts)
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with the js_eval tag.
func JSEvaluatorAvailable() bool {
	return false
}
