package jsonio

import (
	"context"
	"log/slog"
)

// Severity grades a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// DiagnosticCode identifies the condition a diagnostic reports.
type DiagnosticCode string

const (
	CodeCorruptDocument DiagnosticCode = "corrupt_document"
	CodeNotFound        DiagnosticCode = "not_found"
	CodeParseError      DiagnosticCode = "parse_error"
	CodeMissingRootKey  DiagnosticCode = "missing_root_key"
	CodeTypeMismatch    DiagnosticCode = "type_mismatch"
	CodeActivityFailed  DiagnosticCode = "activity_failed"
)

// Diagnostic is a non-fatal report. Sinks must not influence control flow.
type Diagnostic struct {
	Severity Severity
	Code     DiagnosticCode
	Path     string
	RootKey  string
	Field    string
	Message  string
	Err      error
}

// DiagnosticSink receives diagnostics.
type DiagnosticSink interface {
	Report(Diagnostic)
}

// DiagnosticSinkFunc adapts a function to DiagnosticSink.
type DiagnosticSinkFunc func(Diagnostic)

// Report implements DiagnosticSink.
func (f DiagnosticSinkFunc) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

type noopDiagnosticSink struct{}

func (noopDiagnosticSink) Report(Diagnostic) {}

// NewSlogSink returns a sink writing diagnostics to logger. A nil logger
// uses slog.Default at report time.
func NewSlogSink(logger *slog.Logger) DiagnosticSink {
	return slogSink{logger: logger}
}

type slogSink struct {
	logger *slog.Logger
}

func (s slogSink) Report(d Diagnostic) {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{slog.String("code", string(d.Code))}
	if d.Path != "" {
		attrs = append(attrs, slog.String("path", d.Path))
	}
	if d.RootKey != "" {
		attrs = append(attrs, slog.String("root_key", d.RootKey))
	}
	if d.Field != "" {
		attrs = append(attrs, slog.String("field", d.Field))
	}
	if d.Err != nil {
		attrs = append(attrs, slog.String("error", d.Err.Error()))
	}
	logger.LogAttrs(context.Background(), slogLevel(d.Severity), d.Message, attrs...)
}

func slogLevel(s Severity) slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// DiagnosticRecorder collects diagnostics in memory.
type DiagnosticRecorder struct {
	Diagnostics []Diagnostic
}

// Report implements DiagnosticSink.
func (r *DiagnosticRecorder) Report(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// ByCode returns recorded diagnostics matching code.
func (r *DiagnosticRecorder) ByCode(code DiagnosticCode) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
