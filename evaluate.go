package jsonio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("jsonio: evaluator not configured")

// Evaluate runs expression against the section stored under rootKey in the
// document at path. Section fields are exposed as top-level variables.
func (s *Store) Evaluate(ctx context.Context, path, rootKey, expression string) (any, error) {
	return s.EvaluateWith(ctx, RuleContext{Path: path, RootKey: rootKey}, expression)
}

// EvaluateWith runs expression using rule. When rule.Section is nil the
// section is read from rule.Path under rule.RootKey.
func (s *Store) EvaluateWith(ctx context.Context, rule RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("jsonio: expression must not be empty")
	}
	if rule.Section == nil {
		section, err := s.Section(ctx, rule.Path, rule.RootKey)
		if err != nil {
			return nil, err
		}
		rule.Section = section.Plain()
	}
	return s.evaluate(rule, expression)
}

// EvaluateEntity runs expression against the current in-memory state of
// entity without touching the filesystem.
func (s *Store) EvaluateEntity(entity Entity, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("jsonio: expression must not be empty")
	}
	rootKey, err := s.rootKey(entity)
	if err != nil {
		return nil, err
	}
	tree, err := s.codec.Serialize(entity)
	if err != nil {
		return nil, err
	}
	return s.evaluate(RuleContext{Section: tree.Plain(), RootKey: rootKey}, expression)
}

func (s *Store) evaluate(rule RuleContext, expression string) (any, error) {
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	rule = rule.withDefaults()
	engine := evaluatorEngineName(s.evaluator)
	start := time.Now()
	value, evalErr := s.evaluator.Evaluate(rule, expression)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expression, rule, evalErr)
	s.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expression,
		RootKey:  rule.label(),
		Path:     rule.Path,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func (s *Store) resolveEvaluator() Evaluator {
	if s.cfg.evaluator != nil {
		return s.cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if s.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(s.cfg.programCache))
	}
	if s.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(s.cfg.functions))
	}
	return NewExprEvaluator(exprOpts...)
}
