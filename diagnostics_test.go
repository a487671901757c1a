package jsonio

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogSinkWritesStructuredAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewSlogSink(logger)

	sink.Report(Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeTypeMismatch,
		Path:     "settings.json",
		RootKey:  "Config",
		Field:    "count",
		Message:  "failed to update field count",
		Err:      errors.New("want number"),
	})

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		`msg="failed to update field count"`,
		"code=type_mismatch",
		"path=settings.json",
		"root_key=Config",
		"field=count",
		`error="want number"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestWithLoggerRoutesCodecDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	codec := NewCodec(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	if _, err := codec.Update(&otherEntity{}, decodeTree(t, `{"flag": "yes"}`)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(buf.String(), "field=flag") {
		t.Fatalf("expected mismatch logged, got %q", buf.String())
	}
}

func TestNilDiagnosticSinkDiscards(t *testing.T) {
	codec := NewCodec(WithDiagnosticSink(nil))
	mismatches, err := codec.Update(&otherEntity{}, decodeTree(t, `{"flag": "yes"}`))
	if err != nil || len(mismatches) != 1 {
		t.Fatalf("expected one mismatch without a sink, got %v %v", mismatches, err)
	}
}

func TestDiagnosticSinkFunc(t *testing.T) {
	var got []DiagnosticCode
	sink := DiagnosticSinkFunc(func(d Diagnostic) {
		got = append(got, d.Code)
	})
	sink.Report(Diagnostic{Code: CodeNotFound})
	DiagnosticSinkFunc(nil).Report(Diagnostic{Code: CodeParseError})
	if len(got) != 1 || got[0] != CodeNotFound {
		t.Fatalf("unexpected codes %v", got)
	}
}

func TestSeverityString(t *testing.T) {
	for severity, want := range map[Severity]string{
		SeverityInfo:    "info",
		SeverityWarning: "warning",
		SeverityError:   "error",
		Severity(9):     "unknown",
	} {
		if got := severity.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
