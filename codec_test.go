package jsonio

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-jsonio/pkg/valuetree"
)

type subConfig struct {
	Level int     `json:"level"`
	Ratio float64 `json:"ratio"`
	Label string  `json:"label"`
}

func (*subConfig) RootKey() string { return "SubConfig" }

type appConfig struct {
	Name     string         `json:"name"`
	Count    int            `json:"count"`
	Items    []int          `json:"items"`
	Enabled  bool           `json:"enabled"`
	Sub      *subConfig     `json:"sub"`
	DictData map[string]any `json:"dictdata"`
	Skipped  string         `json:"-"`
	internal string
}

func (*appConfig) RootKey() string { return "Config" }

func newAppConfig() *appConfig {
	return &appConfig{
		Items: []int{},
		Sub:   &subConfig{},
		DictData: map[string]any{
			"threshold": 0.5,
			"mode":      "fast",
			"nested":    &subConfig{},
		},
	}
}

func populatedAppConfig() *appConfig {
	cfg := newAppConfig()
	cfg.Name = "x"
	cfg.Count = 5
	cfg.Items = []int{1, 2, 3}
	cfg.Enabled = true
	cfg.Sub.Level = 2
	cfg.Sub.Ratio = 0.25
	cfg.Sub.Label = "deep"
	cfg.DictData["threshold"] = 0.75
	cfg.DictData["mode"] = "slow"
	cfg.DictData["nested"].(*subConfig).Level = 7
	cfg.Skipped = "never written"
	cfg.internal = "hidden"
	return cfg
}

func decodeTree(t *testing.T, input string) *valuetree.Tree {
	t.Helper()
	tree, err := valuetree.Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode %s: %v", input, err)
	}
	return tree
}

func quietCodec(opts ...Option) (*Codec, *DiagnosticRecorder) {
	recorder := &DiagnosticRecorder{}
	opts = append([]Option{WithDiagnosticSink(recorder)}, opts...)
	return NewCodec(opts...), recorder
}

func TestSerializeExpandsNestedEntitiesAndMaps(t *testing.T) {
	codec, _ := quietCodec()
	tree, err := codec.Serialize(populatedAppConfig())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	out, err := valuetree.Encode(tree, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"name":"x","count":5,"items":[1,2,3],"enabled":true,` +
		`"sub":{"level":2,"ratio":0.25,"label":"deep"},` +
		`"dictdata":{"mode":"slow","nested":{"level":7,"ratio":0,"label":""},"threshold":0.75}}`
	if string(out) != want {
		t.Fatalf("unexpected tree:\n got %s\nwant %s", out, want)
	}
}

func TestSerializeIsDeepCopy(t *testing.T) {
	codec, _ := quietCodec()
	cfg := populatedAppConfig()
	tree, err := codec.Serialize(cfg)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	cfg.Items[0] = 99
	cfg.Sub.Label = "changed"
	cfg.DictData["mode"] = "changed"

	items, _ := tree.Get("items")
	if items.([]any)[0] != int64(1) {
		t.Fatalf("expected tree items untouched, got %v", items)
	}
	sub, _ := tree.Get("sub")
	if label, _ := sub.(*valuetree.Tree).Get("label"); label != "deep" {
		t.Fatalf("expected tree sub label untouched, got %v", label)
	}
	dict, _ := tree.Get("dictdata")
	if mode, _ := dict.(*valuetree.Tree).Get("mode"); mode != "slow" {
		t.Fatalf("expected tree map untouched, got %v", mode)
	}
}

func TestSerializeNilValues(t *testing.T) {
	codec, _ := quietCodec()
	cfg := &appConfig{}
	tree, err := codec.Serialize(cfg)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	out, _ := valuetree.Encode(tree, "")
	want := `{"name":"","count":0,"items":[],"enabled":false,"sub":null,"dictdata":{}}`
	if string(out) != want {
		t.Fatalf("unexpected tree %s", out)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	codec, recorder := quietCodec()
	source := populatedAppConfig()
	tree, err := codec.Serialize(source)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	target := newAppConfig()
	nested := target.DictData["nested"]
	sub := target.Sub
	mismatches, err := codec.Update(target, tree)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(mismatches) != 0 || len(recorder.Diagnostics) != 0 {
		t.Fatalf("expected clean update, got %v", mismatches)
	}

	source.Skipped = ""
	source.internal = ""
	if !reflect.DeepEqual(target, source) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", target, source)
	}
	if target.Sub != sub {
		t.Fatalf("expected nested entity updated in place")
	}
	if target.DictData["nested"] != nested {
		t.Fatalf("expected nested entity inside map updated in place")
	}
}

func TestUpdateIsPartial(t *testing.T) {
	codec, _ := quietCodec()
	cfg := populatedAppConfig()
	mismatches, err := codec.Update(cfg, decodeTree(t, `{"count": 9, "unknown": true, "sub": {"label": "new"}}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("unexpected mismatches %v", mismatches)
	}
	if cfg.Count != 9 || cfg.Name != "x" || cfg.Sub.Label != "new" || cfg.Sub.Level != 2 {
		t.Fatalf("unexpected partial update result %+v %+v", cfg, cfg.Sub)
	}
	if !reflect.DeepEqual(cfg.Items, []int{1, 2, 3}) {
		t.Fatalf("expected items untouched, got %v", cfg.Items)
	}
}

func TestUpdateSkipsMismatchWithSingleDiagnostic(t *testing.T) {
	codec, recorder := quietCodec()
	cfg := populatedAppConfig()
	mismatches, err := codec.Update(cfg, decodeTree(t, `{"count": "ten", "name": "y"}`))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %v", mismatches)
	}
	if m := mismatches[0]; m.Path != "count" || m.Want != "number" || m.Got != "string" {
		t.Fatalf("unexpected mismatch %+v", m)
	}
	if cfg.Count != 5 || cfg.Name != "y" {
		t.Fatalf("expected count kept and name updated, got %+v", cfg)
	}
	diags := recorder.ByCode(CodeTypeMismatch)
	if len(diags) != 1 || len(recorder.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %+v", recorder.Diagnostics)
	}
	if diags[0].Field != "count" || diags[0].RootKey != "Config" || diags[0].Severity != SeverityWarning {
		t.Fatalf("unexpected diagnostic %+v", diags[0])
	}
}

func TestUpdateBooleanCoercion(t *testing.T) {
	codec, _ := quietCodec()

	cfg := newAppConfig()
	if m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": 1}`)); len(m) != 0 || !cfg.Enabled {
		t.Fatalf("expected numeric 1 to set true, got %v %v", cfg.Enabled, m)
	}
	if m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": 0}`)); len(m) != 0 || cfg.Enabled {
		t.Fatalf("expected numeric 0 to set false, got %v %v", cfg.Enabled, m)
	}
	if m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": 2}`)); len(m) != 0 || !cfg.Enabled {
		t.Fatalf("expected permissive coercion of 2, got %v %v", cfg.Enabled, m)
	}

	cfg.Enabled = false
	m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": "true"}`))
	if len(m) != 1 || cfg.Enabled {
		t.Fatalf("expected text to be rejected, got %v %v", cfg.Enabled, m)
	}
}

func TestUpdateStrictBooleans(t *testing.T) {
	codec, _ := quietCodec(WithStrictBooleans())
	cfg := newAppConfig()
	if m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": 2}`)); len(m) != 1 || cfg.Enabled {
		t.Fatalf("expected 2 rejected in strict mode, got %v %v", cfg.Enabled, m)
	}
	if m, _ := codec.Update(cfg, decodeTree(t, `{"enabled": 1}`)); len(m) != 0 || !cfg.Enabled {
		t.Fatalf("expected 1 accepted in strict mode, got %v %v", cfg.Enabled, m)
	}
}

func TestUpdateMismatchPaths(t *testing.T) {
	cases := []struct {
		name  string
		input string
		path  string
		want  string
	}{
		{name: "nested scalar", input: `{"sub": {"level": "high"}}`, path: "sub.level", want: "number"},
		{name: "nested entity", input: `{"sub": 5}`, path: "sub", want: "object"},
		{name: "map", input: `{"dictdata": []}`, path: "dictdata", want: "object"},
		{name: "map entry", input: `{"dictdata": {"mode": 3}}`, path: "dictdata.mode", want: "string"},
		{name: "sequence element", input: `{"items": [1, "two"]}`, path: "items", want: "array"},
		{name: "sequence", input: `{"items": 1}`, path: "items", want: "array"},
		{name: "fraction into int", input: `{"count": 1.5}`, path: "count", want: "number"},
		{name: "null into int", input: `{"count": null}`, path: "count", want: "number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec, _ := quietCodec()
			cfg := populatedAppConfig()
			before := populatedAppConfig()
			mismatches, err := codec.Update(cfg, decodeTree(t, tc.input))
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if len(mismatches) != 1 {
				t.Fatalf("expected one mismatch, got %v", mismatches)
			}
			if mismatches[0].Path != tc.path || mismatches[0].Want != tc.want {
				t.Fatalf("unexpected mismatch %+v", mismatches[0])
			}
			if !reflect.DeepEqual(cfg, before) {
				t.Fatalf("expected entity unchanged, got %+v", cfg)
			}
		})
	}
}

func TestUpdateMapIgnoresUnknownEntries(t *testing.T) {
	codec, _ := quietCodec()
	cfg := populatedAppConfig()
	if _, err := codec.Update(cfg, decodeTree(t, `{"dictdata": {"extra": 1, "threshold": 2}}`)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := cfg.DictData["extra"]; ok {
		t.Fatalf("expected unknown map entry ignored")
	}
	if cfg.DictData["threshold"] != float64(2) {
		t.Fatalf("expected threshold to keep float64 type, got %#v", cfg.DictData["threshold"])
	}
}

func TestUpdateNilFieldsAreNeverAllocated(t *testing.T) {
	codec, _ := quietCodec()
	cfg := &appConfig{}

	if m, _ := codec.Update(cfg, decodeTree(t, `{"sub": null}`)); len(m) != 0 {
		t.Fatalf("expected null into nil field to be a no-op, got %v", m)
	}
	m, _ := codec.Update(cfg, decodeTree(t, `{"sub": {"level": 1}}`))
	if len(m) != 1 || m[0].Path != "sub" || m[0].Want != "null" {
		t.Fatalf("expected mismatch for nil target, got %v", m)
	}
	if cfg.Sub != nil {
		t.Fatalf("expected nil sub to stay nil")
	}
	if m, _ := codec.Update(cfg, decodeTree(t, `{"dictdata": {"a": 1}}`)); len(m) != 0 || cfg.DictData != nil {
		t.Fatalf("expected nil map untouched, got %v %v", cfg.DictData, m)
	}
}

type numericEntity struct {
	Small  int8      `json:"small"`
	Count  uint      `json:"count"`
	Ratio  float32   `json:"ratio"`
	Fixed  [2]string `json:"fixed"`
	Seen   time.Time `json:"seen"`
	Ptr    *int      `json:"ptr"`
	Values []any     `json:"values"`
}

func TestUpdateNumericRangesAndText(t *testing.T) {
	codec, _ := quietCodec()
	n := 1
	e := &numericEntity{Ptr: &n}

	m, err := codec.Update(e, decodeTree(t, `{
		"small": 12, "count": 7, "ratio": 0.5, "fixed": ["a", "b"],
		"seen": "2024-05-01T12:00:00Z", "ptr": 4, "values": [1, "x", true, null]
	}`))
	if err != nil || len(m) != 0 {
		t.Fatalf("unexpected update result %v %v", m, err)
	}
	if e.Small != 12 || e.Count != 7 || e.Ratio != 0.5 || e.Fixed != [2]string{"a", "b"} {
		t.Fatalf("unexpected numeric update %+v", e)
	}
	if !e.Seen.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", e.Seen)
	}
	if e.Ptr != &n || n != 4 {
		t.Fatalf("expected pointer target updated in place, got %v", n)
	}
	if !reflect.DeepEqual(e.Values, []any{int64(1), "x", true, nil}) {
		t.Fatalf("unexpected dynamic sequence %#v", e.Values)
	}

	m, _ = codec.Update(e, decodeTree(t, `{"small": 300, "count": -1, "ratio": 1e300, "fixed": ["a"], "seen": "yesterday"}`))
	if len(m) != 5 {
		t.Fatalf("expected five mismatches, got %v", m)
	}
	if e.Small != 12 || e.Count != 7 || e.Ratio != 0.5 || e.Fixed != [2]string{"a", "b"} {
		t.Fatalf("expected values unchanged, got %+v", e)
	}
}

func TestSerializeTextMarshalerRoundTrip(t *testing.T) {
	codec, _ := quietCodec()
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tree, err := codec.Serialize(&numericEntity{Seen: seen})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if value, _ := tree.Get("seen"); value != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected time text %v", value)
	}
	if value, _ := tree.Get("fixed"); !reflect.DeepEqual(value, []any{"", ""}) {
		t.Fatalf("unexpected fixed array %v", value)
	}
}

type node struct {
	Name string `json:"name"`
	Next *node  `json:"next"`
}

type rows struct {
	Rows []map[string]any `json:"rows"`
}

type mixed struct {
	Values []any `json:"values"`
}

type withChan struct {
	C chan int `json:"c"`
}

type withFloat struct {
	F float64 `json:"f"`
}

type intKeys struct {
	M map[int]string `json:"m"`
}

type withMap struct {
	M map[string]any `json:"m"`
}

func TestSerializeRejectsUnsupportedGraphs(t *testing.T) {
	cyclic := &node{Name: "a"}
	cyclic.Next = &node{Name: "b", Next: cyclic}

	selfMap := map[string]any{}
	selfMap["self"] = selfMap

	cases := []struct {
		name   string
		entity any
		path   string
	}{
		{name: "cycle", entity: cyclic, path: "next.next"},
		{name: "map cycle", entity: &withMap{M: selfMap}, path: "m.self"},
		{name: "sequence of maps", entity: &rows{Rows: []map[string]any{{}}}, path: "rows"},
		{name: "object in dynamic sequence", entity: &mixed{Values: []any{1, &subConfig{}}}, path: "values[1]"},
		{name: "channel", entity: &withChan{C: make(chan int)}, path: "c"},
		{name: "nan", entity: &withFloat{F: math.NaN()}, path: "f"},
		{name: "non-string keys", entity: &intKeys{M: map[int]string{1: "a"}}, path: "m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec, _ := quietCodec()
			_, err := codec.Serialize(tc.entity)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("expected ErrUnsupported, got %v", err)
			}
			var unsupported *UnsupportedError
			if !errors.As(err, &unsupported) || unsupported.Path != tc.path {
				t.Fatalf("expected path %q, got %v", tc.path, err)
			}
		})
	}
}

func TestSerializeSharedPointerIsNotACycle(t *testing.T) {
	type pair struct {
		A *subConfig `json:"a"`
		B *subConfig `json:"b"`
	}
	shared := &subConfig{Level: 1}
	codec, _ := quietCodec()
	if _, err := codec.Serialize(&pair{A: shared, B: shared}); err != nil {
		t.Fatalf("expected shared pointer to serialize twice, got %v", err)
	}
}

func TestCodecRejectsInvalidEntities(t *testing.T) {
	codec, _ := quietCodec()
	for name, entity := range map[string]any{
		"nil":         nil,
		"value":       appConfig{},
		"nil pointer": (*appConfig)(nil),
		"non struct":  new(int),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Serialize(entity); !errors.Is(err, ErrInvalidEntity) {
				t.Fatalf("serialize: expected ErrInvalidEntity, got %v", err)
			}
			if _, err := codec.Update(entity, valuetree.New()); !errors.Is(err, ErrInvalidEntity) {
				t.Fatalf("update: expected ErrInvalidEntity, got %v", err)
			}
		})
	}
}
