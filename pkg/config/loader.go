package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadSeedFile parses one seed file.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	var content seedFile
	if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), &content); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range content.Entries {
		content.Entries[i].Source = path
	}
	return content.Entries, nil
}

// LoadSeedFiles loads every file matching pattern, in lexical order. The
// pattern may be a plain path or a glob; ** matches across directories.
// A glob that matches nothing is not an error, a missing plain path is.
func LoadSeedFiles(pattern string) ([]SeedEntry, error) {
	if !isGlob(pattern) {
		return LoadSeedFile(pattern)
	}

	matches, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)

	var result []SeedEntry
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && info.IsDir() {
			continue
		}
		entries, err := LoadSeedFile(match)
		if err != nil {
			return nil, err
		}
		result = append(result, entries...)
	}
	return result, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple patterns.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") || strings.Contains(pattern, "{") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}
