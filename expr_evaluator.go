package jsonio

import (
	"fmt"
	"sort"
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator executes section queries using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) engine() string { return "expr" }

// Evaluate compiles and runs expression against the section in ctx.
func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	env := e.environment(ctx)
	program, err := e.loadOrCompile(expression, shadowedBuiltins(env))
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, ctx, err)
	}
	return result, nil
}

// Compile checks the syntax of expression and returns a rule that compiles
// it per context, since the section fields in scope decide which expr
// builtins are shadowed.
func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	if _, err := parser.Parse(expression); err != nil {
		return nil, wrapEvaluationError("expr", expression, RuleContext{}, err)
	}
	return &exprCompiledRule{evaluator: e, expression: expression}, nil
}

// loadOrCompile compiles expression with the named builtins disabled so that
// bindings of the same name resolve to their values.
func (e *exprEvaluator) loadOrCompile(expression string, shadowed []string) (*exprvm.Program, error) {
	key := "expr:" + expression + "\x00" + strings.Join(shadowed, ",")
	return cachedProgram(e.cache, key, func() (*exprvm.Program, error) {
		options := []exprlang.Option{
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
		}
		for _, name := range shadowed {
			options = append(options, exprlang.DisableBuiltin(name))
		}
		for _, name := range e.registry.Names() {
			options = append(options, exprlang.Function(name, e.registryFunction(name)))
		}
		program, err := exprlang.Compile(expression, options...)
		if err != nil {
			return nil, wrapEvaluationError("expr", expression, RuleContext{}, err)
		}
		return program, nil
	})
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

var exprBuiltinNames = func() map[string]struct{} {
	names := make(map[string]struct{}, len(builtin.Builtins))
	for _, fn := range builtin.Builtins {
		names[fn.Name] = struct{}{}
	}
	return names
}()

// shadowedBuiltins returns the sorted env keys that collide with expr builtins.
func shadowedBuiltins(env map[string]any) []string {
	var names []string
	for name := range env {
		if _, ok := exprBuiltinNames[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (e *exprEvaluator) environment(ctx RuleContext) map[string]any {
	env := ctx.bindings()
	if e.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return env
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
