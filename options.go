package jsonio

import (
	"log/slog"
	"os"

	"github.com/goliatone/go-jsonio/pkg/activity"
	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

// DefaultFileMode is the permission used when a document file is written.
const DefaultFileMode os.FileMode = 0o644

// Option configures a Codec or a Store.
type Option func(*config)

type config struct {
	sink            DiagnosticSink
	strictBooleans  bool
	indent          string
	fileMode        os.FileMode
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	evaluatorLogger EvaluatorLogger
	activityHooks   activity.Hooks
	activityChannel string
	activityActor   string
}

func applyOptions(opts []Option) config {
	cfg := config{
		sink:            NewSlogSink(nil),
		indent:          valuetree.DefaultIndent,
		fileMode:        DefaultFileMode,
		evaluatorLogger: noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithDiagnosticSink routes diagnostics to sink. A nil sink discards them.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(cfg *config) {
		if sink == nil {
			cfg.sink = noopDiagnosticSink{}
			return
		}
		cfg.sink = sink
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.sink = NewSlogSink(logger)
	}
}

// WithStrictBooleans only accepts the numbers 0 and 1 in place of a boolean.
// By default any number is accepted and non-zero means true.
func WithStrictBooleans() Option {
	return func(cfg *config) {
		cfg.strictBooleans = true
	}
}

// WithIndent sets the indentation of written documents. An empty string
// writes compact JSON.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// WithFileMode sets the permission bits for newly written documents.
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *config) {
		if mode != 0 {
			cfg.fileMode = mode
		}
	}
}

// WithEvaluator configures the evaluator used by Evaluate and EvaluateEntity.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes the functions in registry to query
// expressions evaluated by the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for query expressions.
// Invalid or duplicate names are ignored.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithEvaluatorLogger attaches an evaluator logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// WithActivityHooks attaches activity hooks notified after save, load and
// section removal. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on activity events.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.activityChannel = channel
	}
}

// WithActivityActor sets the actor id stamped on activity events.
func WithActivityActor(actorID string) Option {
	return func(cfg *config) {
		cfg.activityActor = actorID
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
