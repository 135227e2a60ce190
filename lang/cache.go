package lang

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// programCache maps source digests to parsed programs. Programs are never
// modified after parsing, so cached values are shared between callers.
//
//nolint:gochecknoglobals
var programCache sync.Map

// cacheEntry guards against digest collisions by keeping the source.
type cacheEntry struct {
	source  string
	program *Program
}

// Digest returns the 64-bit XXH3 hash of src. It is the key used by the
// parse cache and lets callers detect unchanged content cheaply.
func Digest(src string) uint64 {
	return xxh3.HashString(src)
}

func cachedProgram(src string) (*Program, bool) {
	v, ok := programCache.Load(Digest(src))
	if !ok {
		return nil, false
	}

	entry, ok := v.(cacheEntry)
	if !ok || entry.source != src {
		return nil, false
	}

	return entry.program, true
}

func storeProgram(src string, prog *Program) {
	programCache.Store(Digest(src), cacheEntry{source: src, program: prog})
}

// ClearCache removes all cached programs.
func ClearCache() {
	programCache.Clear()
}
