package jsonio

import "time"

// RuleContext carries inputs needed when evaluating an expression against a
// document section.
type RuleContext struct {
	Section  map[string]any
	RootKey  string
	Path     string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Section == nil {
		ctx.Section = map[string]any{}
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
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) label() string {
	if ctx.RootKey != "" {
		return ctx.RootKey
	}
	return "unknown"
}

// builtinBindings are always present in an evaluation environment and shadow
// section fields of the same name. Shadowed fields stay reachable through
// section.<name>.
var builtinBindings = []string{"now", "args", "metadata", "section", "root_key", "path"}

func isBuiltinBinding(name string) bool {
	for _, builtin := range builtinBindings {
		if name == builtin {
			return true
		}
	}
	return false
}

// bindings returns the variables visible to an expression: every section
// field as a top-level variable plus the built-in bindings.
func (ctx RuleContext) bindings() map[string]any {
	env := make(map[string]any, len(ctx.Section)+len(builtinBindings))
	for key, value := range ctx.Section {
		env[key] = value
	}
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	env["metadata"] = ctx.Metadata
	env["section"] = ctx.Section
	env["root_key"] = ctx.RootKey
	env["path"] = ctx.Path
	return env
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

// engineNamer is implemented by the built-in evaluators.
type engineNamer interface {
	engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.engine()
	}
	return "custom"
}
