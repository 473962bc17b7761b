package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// IgnoreFileName is the optional pattern file read from the root of the source tree.
const IgnoreFileName = ".odindoc-ignore"

// GetIgnorePatterns reads and returns the patterns from the ignore file in rootDir.
// If the file does not exist, it returns an empty pattern list.
func GetIgnorePatterns(rootDir string) ([]string, error) {
	ignorePath := filepath.Join(rootDir, IgnoreFileName)

	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", IgnoreFileName, err)
	}

	patterns, err := readIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}
	return patterns, nil
}

// readIgnoreFile reads the ignore file and returns the list of ignore patterns.
func readIgnoreFile(ignorePath string) ([]string, error) {
	content, err := os.ReadFile(ignorePath)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	var patterns []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// NormalizeIgnoreList splits comma separated entries, cleans them into
// slash-separated relative form and removes duplicates. The result is sorted.
func NormalizeIgnoreList(entries []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(filepath.ToSlash(part))
			if part == "" {
				continue
			}
			part = strings.TrimPrefix(path.Clean(part), "./")
			if part == "." || part == "/" || seen[part] {
				continue
			}
			seen[part] = true
			result = append(result, part)
		}
	}
	sort.Strings(result)
	return result
}

// anchorPrefix marks an ignore entry that matches only its exact path from
// the walk root, never a directory name at another depth.
const anchorPrefix = "./"

// ResolveIgnoreDirs turns absolute entries into root-anchored relative paths.
// Absolute entries outside rootDir can never match and are dropped. Relative
// entries are returned unchanged.
func ResolveIgnoreDirs(rootDir string, entries []string) ([]string, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", rootDir, err)
	}

	resolved := make([]string, 0, len(entries))
	for _, entry := range entries {
		native := filepath.FromSlash(entry)
		if !filepath.IsAbs(native) {
			resolved = append(resolved, entry)
			continue
		}
		rel, err := filepath.Rel(absRoot, filepath.Clean(native))
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		resolved = append(resolved, anchorPrefix+filepath.ToSlash(rel))
	}
	return resolved, nil
}

// IsIgnoredDir reports whether a directory should be skipped. An entry matches
// either the directory's own name, at any depth, or its full slash-separated
// path relative to the walk root. Anchored entries from ResolveIgnoreDirs
// match the full path only.
func IsIgnoredDir(relativePath string, ignoreDirs []string) bool {
	relativePath = filepath.ToSlash(relativePath)
	name := path.Base(relativePath)
	for _, entry := range ignoreDirs {
		if anchored, ok := strings.CutPrefix(entry, anchorPrefix); ok {
			if anchored == relativePath {
				return true
			}
			continue
		}
		if entry == name || entry == relativePath {
			return true
		}
	}
	return false
}

// IsPatternIgnored checks if a path matches any of the patterns from the ignore file.
func IsPatternIgnored(relativePath string, patterns []string) bool {
	relativePath = filepath.ToSlash(relativePath)
	for _, pattern := range patterns {
		match, _ := path.Match(pattern, relativePath)
		if match {
			return true
		}
		if match, _ := path.Match(pattern, path.Base(relativePath)); match {
			return true
		}
		// Handle patterns like "dir/" that ignore entire directories
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(relativePath+"/", pattern) {
			return true
		}
	}
	return false
}
