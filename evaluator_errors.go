package jsonio

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a query that failed to compile or run, together
// with the section it targeted.
type EvaluationError struct {
	Engine  string
	Expr    string
	RootKey string
	// Path is the document the section was read from; empty for in-memory
	// sections and context-free compiles.
	Path string
	Err  error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("jsonio: %s query on %s %s: %v", e.Engine, e.Section(), describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Section names the queried section as `"root_key" in path`.
func (e *EvaluationError) Section() string {
	if e == nil {
		return ""
	}
	section := "section"
	if e.RootKey != "" {
		section = fmt.Sprintf("section %q", e.RootKey)
	}
	if e.Path != "" {
		section += " in " + e.Path
	}
	return section
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "jsonio:") {
		return err
	}
	return fmt.Errorf("jsonio: %s evaluator: %w", engine, err)
}

// wrapEvaluationError attaches the engine, expression and target section to
// err. Fields already set on an existing EvaluationError are kept.
func wrapEvaluationError(engine, expr string, target RuleContext, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{
			Engine:  engine,
			Expr:    expr,
			RootKey: target.RootKey,
			Path:    target.Path,
			Err:     err,
		}
	}
	fill := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	fill(&evalErr.Engine, engine)
	fill(&evalErr.Expr, expr)
	fill(&evalErr.RootKey, target.RootKey)
	fill(&evalErr.Path, target.Path)
	return evalErr
}
