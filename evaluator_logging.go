package jsonio

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes an evaluation attempt for logging.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	RootKey  string
	Path     string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// NewSlogEvaluatorLogger writes evaluations to logger at debug level, or at
// warn level when the evaluation failed.
func NewSlogEvaluatorLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		attrs := []slog.Attr{
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.String("root_key", event.RootKey),
			slog.Duration("duration", event.Duration),
		}
		if event.Path != "" {
			attrs = append(attrs, slog.String("path", event.Path))
		}
		if event.Err != nil {
			attrs = append(attrs, slog.String("error", event.Err.Error()))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "evaluation failed", attrs...)
			return
		}
		logger.LogAttrs(context.Background(), slog.LevelDebug, "evaluation", attrs...)
	})
}
