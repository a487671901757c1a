package jsonio

import (
	"fmt"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Functions are reached through call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

var celReserved = map[string]struct{}{
	"as": {}, "break": {}, "const": {}, "continue": {}, "else": {}, "false": {},
	"for": {}, "function": {}, "if": {}, "import": {}, "in": {}, "let": {},
	"loop": {}, "namespace": {}, "null": {}, "package": {}, "return": {},
	"true": {}, "var": {}, "void": {}, "while": {}, "call": {},
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Section fields
// whose names are not CEL identifiers are only reachable through section.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	variables := celVariables(ctx.Section)
	program, err := e.loadOrCompile(expression, variables)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx, err)
	}
	out, _, err := program.program.Eval(e.activation(ctx, variables))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx, err)
	}
	return out.Value(), nil
}

// Compile parses expression once to surface syntax errors. Type checking
// happens per section since the variable set depends on the section fields.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	env, err := e.buildEnv(nil)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, RuleContext{}, issues.Err())
	}
	return &celCompiledRule{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, variables []string) (*celProgram, error) {
	key := "cel:" + expression + "\x00" + strings.Join(variables, ",")
	return cachedProgram(e.cache, key, func() (*celProgram, error) {
		env, err := e.buildEnv(variables)
		if err != nil {
			return nil, err
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, err
		}
		return &celProgram{env: env, program: prg}, nil
	})
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("section", celgo.DynType),
		celgo.Variable("root_key", celgo.StringType),
		celgo.Variable("path", celgo.StringType),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(e.callBinding),
			),
		))
	}
	for _, name := range variables {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx RuleContext, variables []string) map[string]any {
	activation := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"section":  ctx.Section,
		"root_key": ctx.RootKey,
		"path":     ctx.Path,
	}
	for _, name := range variables {
		activation[name] = ctx.Section[name]
	}
	return activation
}

// celVariables returns the section fields declared as top-level variables,
// sorted so equal field sets share a cached program.
func celVariables(section map[string]any) []string {
	names := make([]string, 0, len(section))
	for name := range section {
		if isBuiltinBinding(name) || !queryIdentifier.MatchString(name) {
			continue
		}
		if _, reserved := celReserved[name]; reserved {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func (e *celEvaluator) callBinding(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("jsonio: call name must be string")
	}
	list, ok := argsVal.(traits.Lister)
	if !ok {
		return types.NewErr("jsonio: call arguments must be a list")
	}
	size, _ := list.Size().(types.Int)
	args := make([]any, 0, int(size))
	for i := types.Int(0); i < size; i++ {
		args = append(args, list.Get(i).Value())
	}
	result, err := e.registry.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
