//go:build js_eval

package jsonio

import "testing"

func TestJSEvaluatorSectionBindings(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", doubleFunction); err != nil {
		t.Fatalf("register: %v", err)
	}
	evaluator := NewJSEvaluator(JSWithProgramCache(NewMemoryProgramCache()), JSWithFunctionRegistry(registry))
	rule := RuleContext{
		Section: map[string]any{"name": "x", "count": int64(5)},
		RootKey: "Config",
	}

	for expression, want := range map[string]any{
		`name === "x" && count > 3`:     true,
		`root_key + ":" + section.name`: "Config:x",
		`call("double", count) === 10`:  true,
		`double(count) === 10`:          true,
	} {
		got, err := evaluator.Evaluate(rule, expression)
		if err != nil {
			t.Fatalf("evaluate %q: %v", expression, err)
		}
		if got != want {
			t.Fatalf("evaluate %q: expected %v, got %v", expression, want, got)
		}
	}

	if got := evaluatorEngineName(evaluator); got != "js" {
		t.Fatalf("expected js engine, got %s", got)
	}
	if !JSEvaluatorAvailable() {
		t.Fatalf("expected js evaluator to be available")
	}
}
