// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline wires the five analysis components into the six
// top-level entry points of SPEC_FULL.md §5: scan_repository,
// build_registry, extract_relationships, calculate_blast_radius,
// validate_repository, analyze_repository.
package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// SourceFile is one discovered repository file queued for parsing.
type SourceFile struct {
	Path     string // repo-relative, slash-separated
	FullPath string // path on disk
	Size     int64
}

// ScanConfig controls repository discovery.
type ScanConfig struct {
	ExcludeGlobs     []string
	MaxFileSizeBytes int64
	Extensions       []string // e.g. []string{".go"}; empty means accept all
}

// DefaultExcludeGlobs mirrors the teacher's ingestion defaults, skipping VCS
// metadata, vendored dependencies and Go test files.
func DefaultExcludeGlobs() []string {
	return []string{".git/**", "vendor/**", "node_modules/**", "**/*_test.go"}
}

// ScanRepository walks rootPath and returns every non-excluded, size-bounded
// source file, sorted by path for deterministic downstream processing
// (§5 ordering guarantees). Cancellation is honoured at file boundaries.
func ScanRepository(ctx context.Context, rootPath string, cfg ScanConfig, logger *slog.Logger) ([]SourceFile, map[string]int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	skipReasons := map[string]int{}
	var files []SourceFile

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			logger.Warn("pipeline.scan.walk_error", "path", path, "err", err)
			return nil
		}

		relPath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && shouldExclude(relPath, cfg.ExcludeGlobs) {
				skipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}

		if shouldExclude(relPath, cfg.ExcludeGlobs) {
			skipReasons["excluded"]++
			return nil
		}
		if len(cfg.Extensions) > 0 && !hasAnyExt(relPath, cfg.Extensions) {
			skipReasons["wrong_extension"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if cfg.MaxFileSizeBytes > 0 && info.Size() > cfg.MaxFileSizeBytes {
			skipReasons["too_large"]++
			logger.Warn("pipeline.scan.skip_large_file", "path", relPath, "size", info.Size())
			return nil
		}

		files = append(files, SourceFile{Path: relPath, FullPath: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, skipReasons, err
	}

	sortFiles(files)
	return files, skipReasons, nil
}

func sortFiles(files []SourceFile) {
	for i := 1; i < len(files); i++ {
		for j := i; j > 0 && files[j].Path < files[j-1].Path; j-- {
			files[j], files[j-1] = files[j-1], files[j]
		}
	}
}

func hasAnyExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// shouldExclude reports whether relPath matches any of the exclude glob
// patterns. Adapted from the teacher's repository-walker glob matcher
// (pkg/ingestion/repo_loader.go): '*' matches within one path segment,
// '**' matches across segments, '?' and '[...]' character classes are
// supported, and a pattern without '**' may match at any depth.
func shouldExclude(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(path, pattern) {
			return true
		}
	}
	return false
}

func matchesGlob(path, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
		parts := strings.Split(path, "/")
		for i := range parts {
			subpath := strings.Join(parts[i:], "/")
			if subpath == prefix || strings.HasPrefix(subpath, prefix+"/") {
				return true
			}
		}
	}

	if strings.HasPrefix(pattern, "*.") && !strings.Contains(pattern, "/") {
		return strings.HasSuffix(path, pattern[1:])
	}

	if strings.HasPrefix(pattern, "**/") {
		suffix := pattern[3:]
		if path == suffix || strings.HasSuffix(path, "/"+suffix) {
			return true
		}
		if matchGlobPattern(path, suffix) {
			return true
		}
		parts := strings.Split(path, "/")
		for i := range parts {
			if matchGlobPattern(strings.Join(parts[i:], "/"), suffix) {
				return true
			}
		}
		return false
	}

	if !strings.ContainsAny(pattern, "*?[") {
		return path == pattern || strings.HasSuffix(path, "/"+pattern) || strings.HasPrefix(path, pattern+"/")
	}

	if matchGlobPattern(path, pattern) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if matchGlobPattern(strings.Join(parts[i:], "/"), pattern) {
			return true
		}
	}
	return false
}

func matchGlobPattern(path, pattern string) bool {
	return matchGlobRecursive(path, pattern, 0, 0)
}

func matchGlobRecursive(path, pattern string, pi, pti int) bool {
	for pi < len(path) || pti < len(pattern) {
		if pti >= len(pattern) {
			return false
		}

		if pti+1 < len(pattern) && pattern[pti] == '*' && pattern[pti+1] == '*' {
			nextPti := pti + 2
			if nextPti < len(pattern) && pattern[nextPti] == '/' {
				nextPti++
			}
			if nextPti >= len(pattern) {
				return true
			}
			for i := pi; i <= len(path); i++ {
				if matchGlobRecursive(path, pattern, i, nextPti) {
					return true
				}
			}
			return false
		}

		if pattern[pti] == '*' {
			nextPti := pti + 1
			for i := pi; i <= len(path); i++ {
				if i > pi && path[i-1] == '/' {
					break
				}
				if matchGlobRecursive(path, pattern, i, nextPti) {
					return true
				}
			}
			return false
		}

		if pattern[pti] == '?' {
			if pi >= len(path) || path[pi] == '/' {
				return false
			}
			pi++
			pti++
			continue
		}

		if pattern[pti] == '[' {
			if pi >= len(path) {
				return false
			}
			closeIdx := pti + 1
			if closeIdx < len(pattern) && (pattern[closeIdx] == '!' || pattern[closeIdx] == '^') {
				closeIdx++
			}
			for closeIdx < len(pattern) && pattern[closeIdx] != ']' {
				closeIdx++
			}
			if closeIdx >= len(pattern) {
				if path[pi] != '[' {
					return false
				}
				pi++
				pti++
				continue
			}
			if !matchCharClass(path[pi], pattern[pti+1:closeIdx]) {
				return false
			}
			pi++
			pti = closeIdx + 1
			continue
		}

		if pi >= len(path) || path[pi] != pattern[pti] {
			return false
		}
		pi++
		pti++
	}
	return pi == len(path) && pti == len(pattern)
}

func matchCharClass(c byte, class string) bool {
	if len(class) == 0 {
		return false
	}
	negated := false
	idx := 0
	if class[0] == '!' || class[0] == '^' {
		negated = true
		idx = 1
	}
	matched := false
	for idx < len(class) {
		if idx+2 < len(class) && class[idx+1] == '-' {
			if c >= class[idx] && c <= class[idx+2] {
				matched = true
			}
			idx += 3
			continue
		}
		if c == class[idx] {
			matched = true
		}
		idx++
	}
	if negated {
		return !matched
	}
	return matched
}
