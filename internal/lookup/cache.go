package lookup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheVersion guards against decoding caches written by an incompatible
// schema.
const cacheVersion = 1

type cacheFile struct {
	Version int   `msgpack:"version"`
	Lists   lists `msgpack:"lists"`
}

// Compile reads the term directory and writes a compiled msgpack cache that
// Load prefers on subsequent startups. It returns the number of terms
// written.
func Compile(dir, cachePath string) (int, error) {
	l, err := readDir(dir)
	if err != nil {
		return 0, err
	}
	data, err := msgpack.Marshal(cacheFile{Version: cacheVersion, Lists: l})
	if err != nil {
		return 0, fmt.Errorf("encode lookup cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return 0, fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0o644); err != nil {
		return 0, fmt.Errorf("write lookup cache: %w", err)
	}
	total := len(l.Places) + len(l.Hospitals) + len(l.CareInstitutes) +
		len(l.FirstNames) + len(l.Surnames) + len(l.Interfixes)
	return total, nil
}

func loadCache(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf cacheFile
	if err := msgpack.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("decode lookup cache: %w", err)
	}
	if cf.Version != cacheVersion {
		return nil, fmt.Errorf("lookup cache version %d, want %d", cf.Version, cacheVersion)
	}
	return cf.Lists.build(), nil
}
