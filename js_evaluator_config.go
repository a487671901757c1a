package jsonio

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsEvaluator)

// JSWithProgramCache wires a ProgramCache into the JS evaluator.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(e *jsEvaluator) {
		e.cache = cache
	}
}

// JSWithFunctionRegistry wires a FunctionRegistry into the JS evaluator.
// Registered functions are globals and are also reachable through call.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(e *jsEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// jsEvaluator runs section queries with goja when built with the js_eval
// tag. Each evaluation gets a fresh runtime.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

func newJSEvaluator(opts []JSEvaluatorOption) *jsEvaluator {
	e := &jsEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}
