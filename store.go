package jsonio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-jsonio/pkg/activity"
	"github.com/goliatone/go-jsonio/pkg/valuetree"
	"github.com/google/uuid"
)

// Store persists entities into shared JSON documents. Each entity owns the
// section under its root key; saving one entity leaves every other section of
// the document untouched.
//
// Store does not lock files. Concurrent saves to the same path race and the
// last writer wins.
type Store struct {
	cfg       config
	codec     *Codec
	emitter   *activity.Emitter
	evaluator Evaluator
}

// New constructs a Store.
func New(opts ...Option) *Store {
	cfg := applyOptions(opts)
	s := &Store{
		cfg:   cfg,
		codec: &Codec{cfg: cfg},
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: cfg.activityHooks.Enabled(),
			Channel: cfg.activityChannel,
		}),
	}
	s.evaluator = s.resolveEvaluator()
	return s
}

// Codec returns the codec used by the store.
func (s *Store) Codec() *Codec {
	return s.codec
}

// SaveReport describes a completed save.
type SaveReport struct {
	OperationID string
	Path        string
	RootKey     string
	// Preserved lists the other sections carried over from the existing document.
	Preserved []string
	// DiscardedCorrupt is set when an unparsable document was replaced.
	DiscardedCorrupt bool
}

// LoadStatus is the outcome of a load.
type LoadStatus int

const (
	StatusLoaded LoadStatus = iota
	StatusNotFound
	StatusParseError
	StatusMissingRootKey
)

func (s LoadStatus) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusNotFound:
		return "not_found"
	case StatusParseError:
		return "parse_error"
	case StatusMissingRootKey:
		return "missing_root_key"
	default:
		return "unknown"
	}
}

// LoadReport describes a load. Only StatusLoaded touches the entity.
type LoadReport struct {
	OperationID string
	Path        string
	RootKey     string
	Status      LoadStatus
	Mismatches  []FieldMismatch
	parseErr    error
}

// Loaded reports whether the entity was updated from the document.
func (r LoadReport) Loaded() bool {
	return r.Status == StatusLoaded
}

// Err maps the status to ErrNotFound, a *ParseError or ErrMissingRootKey.
// It returns nil for StatusLoaded, even when fields were skipped.
func (r LoadReport) Err() error {
	switch r.Status {
	case StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, r.Path)
	case StatusParseError:
		var parseErr *ParseError
		if errors.As(r.parseErr, &parseErr) {
			return parseErr
		}
		return &ParseError{Path: r.Path, Err: r.parseErr}
	case StatusMissingRootKey:
		return fmt.Errorf("%w: %q in %s", ErrMissingRootKey, r.RootKey, r.Path)
	default:
		return nil
	}
}

// Save writes entity's section to the document at path. Other sections of an
// existing document are kept in place and byte-for-byte; a new section is
// appended. An existing document that cannot be parsed is replaced and the
// loss is reported as a diagnostic. Only invalid entities, serialization
// failures and filesystem errors are returned.
func (s *Store) Save(ctx context.Context, entity Entity, path string) (SaveReport, error) {
	rootKey, err := s.rootKey(entity)
	if err != nil {
		return SaveReport{}, err
	}
	if err := contextErr(ctx); err != nil {
		return SaveReport{}, err
	}

	tree, err := s.codec.Serialize(entity)
	if err != nil {
		return SaveReport{}, err
	}
	section, err := valuetree.Compact(tree)
	if err != nil {
		return SaveReport{}, err
	}

	report := SaveReport{
		OperationID: uuid.NewString(),
		Path:        path,
		RootKey:     rootKey,
	}

	doc, err := s.readDocument(path)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		doc = valuetree.New()
	case errors.Is(err, ErrParse):
		s.cfg.sink.Report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeCorruptDocument,
			Path:     path,
			RootKey:  rootKey,
			Message:  "existing document is not valid JSON, replacing it",
			Err:      err,
		})
		report.DiscardedCorrupt = true
		doc = valuetree.New()
	default:
		return SaveReport{}, err
	}

	for _, key := range doc.Keys() {
		if key != rootKey {
			report.Preserved = append(report.Preserved, key)
		}
	}
	doc.Set(rootKey, json.RawMessage(section))

	if err := s.writeDocument(path, doc); err != nil {
		return SaveReport{}, err
	}

	s.emit(ctx, activity.BuildDocumentSavedEvent(activity.DocumentEventInput{
		OperationID: report.OperationID,
		ActorID:     s.cfg.activityActor,
		Path:        path,
		RootKey:     rootKey,
		Preserved:   report.Preserved,
		Discarded:   report.DiscardedCorrupt,
	}), path, rootKey)
	return report, nil
}

// Load updates entity in place from its section of the document at path.
// A missing document, an unparsable document, or a document without the
// entity's section leaves entity unchanged; the outcome is reported through
// LoadReport.Status and a diagnostic rather than the returned error, which is
// reserved for invalid entities and filesystem failures.
func (s *Store) Load(ctx context.Context, entity Entity, path string) (LoadReport, error) {
	rootKey, err := s.rootKey(entity)
	if err != nil {
		return LoadReport{}, err
	}
	if err := contextErr(ctx); err != nil {
		return LoadReport{}, err
	}

	report := LoadReport{
		OperationID: uuid.NewString(),
		Path:        path,
		RootKey:     rootKey,
	}

	section, err := s.section(path, rootKey)
	switch {
	case err == nil:
		mismatches, err := s.codec.update(entity, section, path)
		if err != nil {
			return LoadReport{}, err
		}
		report.Status = StatusLoaded
		report.Mismatches = mismatches
	case errors.Is(err, ErrNotFound):
		report.Status = StatusNotFound
		s.reportLoad(report, CodeNotFound, "document not found", err)
	case errors.Is(err, ErrParse):
		report.Status = StatusParseError
		report.parseErr = err
		s.reportLoad(report, CodeParseError, "document could not be parsed", err)
	case errors.Is(err, ErrMissingRootKey):
		report.Status = StatusMissingRootKey
		s.reportLoad(report, CodeMissingRootKey, fmt.Sprintf("document has no %q section", rootKey), err)
	default:
		return LoadReport{}, err
	}

	s.emit(ctx, activity.BuildDocumentLoadedEvent(activity.DocumentEventInput{
		OperationID: report.OperationID,
		ActorID:     s.cfg.activityActor,
		Path:        path,
		RootKey:     rootKey,
		Status:      report.Status.String(),
		Mismatches:  len(report.Mismatches),
	}), path, rootKey)
	return report, nil
}

func (s *Store) reportLoad(report LoadReport, code DiagnosticCode, message string, err error) {
	s.cfg.sink.Report(Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Path:     report.Path,
		RootKey:  report.RootKey,
		Message:  message,
		Err:      err,
	})
}

// Sections returns the root keys of the document at path in file order.
func (s *Store) Sections(ctx context.Context, path string) ([]string, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}
	doc, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Keys(), nil
}

// Section decodes the section stored under rootKey. Missing documents and
// sections are reported as ErrNotFound and ErrMissingRootKey; a section that
// is not a JSON object is a *ParseError.
func (s *Store) Section(ctx context.Context, path, rootKey string) (*valuetree.Tree, error) {
	if err := contextErr(ctx); err != nil {
		return nil, err
	}
	return s.section(path, rootKey)
}

func (s *Store) section(path, rootKey string) (*valuetree.Tree, error) {
	doc, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}
	value, ok := doc.Get(rootKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrMissingRootKey, rootKey, path)
	}
	raw, _ := value.(json.RawMessage)
	tree, err := valuetree.Decode(raw)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("section %q: %w", rootKey, err)}
	}
	return tree, nil
}

// RemoveSection deletes the section under rootKey and rewrites the document.
// The remaining sections are kept byte-for-byte.
func (s *Store) RemoveSection(ctx context.Context, path, rootKey string) error {
	if rootKey == "" {
		return ErrEmptyRootKey
	}
	if err := contextErr(ctx); err != nil {
		return err
	}
	doc, err := s.readDocument(path)
	if err != nil {
		return err
	}
	if !doc.Has(rootKey) {
		return fmt.Errorf("%w: %q in %s", ErrMissingRootKey, rootKey, path)
	}
	doc.Delete(rootKey)
	if err := s.writeDocument(path, doc); err != nil {
		return err
	}
	s.emit(ctx, activity.BuildSectionRemovedEvent(activity.DocumentEventInput{
		OperationID: uuid.NewString(),
		ActorID:     s.cfg.activityActor,
		Path:        path,
		RootKey:     rootKey,
	}), path, rootKey)
	return nil
}

// readDocument returns the sections of the document at path as raw JSON.
func (s *Store) readDocument(path string) (*valuetree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("jsonio: read %s: %w", path, err)
	}
	doc, err := valuetree.DecodeSections(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

func (s *Store) writeDocument(path string, doc *valuetree.Tree) error {
	data, err := valuetree.Encode(doc, s.cfg.indent)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, s.cfg.fileMode); err != nil {
		return fmt.Errorf("jsonio: write %s: %w", path, err)
	}
	return nil
}

func (s *Store) rootKey(entity Entity) (string, error) {
	if _, err := entityStruct(entity); err != nil {
		return "", err
	}
	rootKey := entity.RootKey()
	if rootKey == "" {
		return "", ErrEmptyRootKey
	}
	return rootKey, nil
}

func (s *Store) emit(ctx context.Context, event activity.Event, path, rootKey string) {
	if !s.emitter.Enabled() {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.cfg.sink.Report(Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeActivityFailed,
			Path:     path,
			RootKey:  rootKey,
			Message:  fmt.Sprintf("activity hook failed for %s", event.Verb),
			Err:      err,
		})
	}
}

func contextErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

var defaultStore = New()

// Save writes entity to path using a Store with default options.
func Save(ctx context.Context, entity Entity, path string) (SaveReport, error) {
	return defaultStore.Save(ctx, entity, path)
}

// Load updates entity from path using a Store with default options.
func Load(ctx context.Context, entity Entity, path string) (LoadReport, error) {
	return defaultStore.Load(ctx, entity, path)
}
