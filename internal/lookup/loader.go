package lookup

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names expected inside a term directory. Each file holds one term per
// line; blank lines and '#' comments are skipped. Missing files fall back
// to the built-in seed list for that category.
const (
	placesFile         = "places.txt"
	hospitalsFile      = "hospitals.txt"
	careInstitutesFile = "care_institutes.txt"
	firstNamesFile     = "first_names.txt"
	surnamesFile       = "surnames.txt"
	interfixesFile     = "interfixes.txt"
)

// Load builds a Store. Preference order: compiled cache file (if cachePath
// is set and readable), term directory (if dir is set), built-in seeds.
// The returned Store must be treated as read-only for the process lifetime.
func Load(dir, cachePath string) (*Store, error) {
	if cachePath != "" {
		st, err := loadCache(cachePath)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load lookup cache %s: %w", cachePath, err)
		}
	}
	if dir != "" {
		l, err := readDir(dir)
		if err != nil {
			return nil, err
		}
		return l.build(), nil
	}
	return Builtin(), nil
}

func readDir(dir string) (lists, error) {
	l := builtinLists
	for _, f := range []struct {
		name string
		dst  *[]string
	}{
		{placesFile, &l.Places},
		{hospitalsFile, &l.Hospitals},
		{careInstitutesFile, &l.CareInstitutes},
		{firstNamesFile, &l.FirstNames},
		{surnamesFile, &l.Surnames},
		{interfixesFile, &l.Interfixes},
	} {
		terms, err := readTermFile(filepath.Join(dir, f.name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return lists{}, err
		}
		*f.dst = terms
	}
	return l, nil
}

func readTermFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read term file %s: %w", path, err)
	}
	return terms, nil
}
