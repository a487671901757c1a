package jsonio

import (
	"errors"
	"testing"
)

func TestCachedProgramCompilesOnce(t *testing.T) {
	cache := NewMemoryProgramCache()
	compiles := 0
	compile := func() (string, error) {
		compiles++
		return "program", nil
	}

	for i := 0; i < 3; i++ {
		got, err := cachedProgram(cache, "k", compile)
		if err != nil {
			t.Fatalf("cached program: %v", err)
		}
		if got != "program" {
			t.Fatalf("unexpected program %q", got)
		}
	}
	if compiles != 1 {
		t.Fatalf("expected one compile, got %d", compiles)
	}
}

func TestCachedProgramSkipsForeignEntriesAndErrors(t *testing.T) {
	cache := NewMemoryProgramCache()
	cache.Set("k", 42)

	got, err := cachedProgram(cache, "k", func() (string, error) { return "fresh", nil })
	if err != nil || got != "fresh" {
		t.Fatalf("expected fresh compile, got %q %v", got, err)
	}
	if stored, _ := cache.Get("k"); stored != "fresh" {
		t.Fatalf("expected foreign entry to be replaced, got %v", stored)
	}

	failure := errors.New("boom")
	if _, err := cachedProgram(cache, "bad", func() (string, error) { return "", failure }); !errors.Is(err, failure) {
		t.Fatalf("expected compile error, got %v", err)
	}
	if _, ok := cache.Get("bad"); ok {
		t.Fatalf("expected failed compile not to be cached")
	}

	if got, err := cachedProgram[string](nil, "k", func() (string, error) { return "nocache", nil }); err != nil || got != "nocache" {
		t.Fatalf("expected nil cache to compile, got %q %v", got, err)
	}
}
