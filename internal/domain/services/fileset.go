// Package services contains domain business logic.
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSetService resolves a manifest's declared glob set into the ordered
// member list of the plugin archive.
//
// Ordering is deterministic: matches are sorted within each pattern,
// patterns keep their manifest order, and duplicates are dropped on first
// occurrence. Member paths are relative to the plugin root and use forward
// slashes regardless of host OS.
type FileSetService struct{}

// NewFileSetService creates a new file set service
func NewFileSetService() *FileSetService {
	return &FileSetService{}
}

// Resolve expands the include patterns against root and returns the member
// list. Literal patterns (no glob metacharacters) name mandatory files and
// fail when absent; glob patterns may legitimately match nothing.
func (s *FileSetService) Resolve(root string, include []string) ([]string, error) {
	if len(include) == 0 {
		return nil, fmt.Errorf("manifest declares no include patterns")
	}

	seen := make(map[string]bool)
	var members []string

	for _, pattern := range include {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			if isLiteralPattern(pattern) {
				return nil, fmt.Errorf("declared file missing: %s", pattern)
			}
			continue
		}

		sort.Strings(matches)

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", match, err)
			}
			// Directories are never archive members; their files must be
			// matched explicitly (e.g. images/*.png)
			if info.IsDir() {
				continue
			}

			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, fmt.Errorf("failed to relativize %s: %w", match, err)
			}
			rel = filepath.ToSlash(rel)

			if !seen[rel] {
				seen[rel] = true
				members = append(members, rel)
			}
		}
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("include patterns matched no files under %s", root)
	}

	return members, nil
}

// isLiteralPattern reports whether a pattern contains no glob metacharacters
func isLiteralPattern(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[")
}
