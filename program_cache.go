package jsonio

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewMemoryProgramCache returns a ProgramCache safe for concurrent use that
// keeps every program for the life of the process.
func NewMemoryProgramCache() ProgramCache {
	return &memoryProgramCache{}
}

type memoryProgramCache struct {
	programs sync.Map
}

func (c *memoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *memoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

// cachedProgram returns the program stored under key, compiling and storing
// it on a miss. A nil cache always compiles. Entries of another type are
// treated as misses and overwritten.
func cachedProgram[P any](cache ProgramCache, key string, compile func() (P, error)) (P, error) {
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := compile()
	if err != nil {
		return program, err
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return program, nil
}
