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

package gitanalysis

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CLIProvider is the default Provider implementation: it shells out to the
// system `git` binary and parses plumbing output (`--numstat`,
// `--porcelain`, `ls-tree`), the same adapter-boundary shape
// repo_loader.go uses for `git clone` — an external process wrapped
// behind a narrow Go interface.
type CLIProvider struct {
	repoDir string
	logger  *slog.Logger
}

// NewCLIProvider returns a Provider rooted at repoDir (must be inside a
// git working tree).
func NewCLIProvider(repoDir string, logger *slog.Logger) *CLIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIProvider{repoDir: repoDir, logger: logger}
}

var validRefPattern = regexp.MustCompile(`^[A-Za-z0-9._/\-]+$`)

// sanitizeRef rejects anything that isn't a plausible commit hash/ref,
// guarding every exec.Command call below against argument injection the
// same way repo_loader.go's validateGitURL guards `git clone`.
func sanitizeRef(ref string) error {
	if ref == "" || !validRefPattern.MatchString(ref) {
		return fmt.Errorf("gitanalysis: invalid git ref %q", ref)
	}
	return nil
}

func (p *CLIProvider) run(args ...string) ([]byte, error) {
	// #nosec G204 - args are built from fixed flags plus sanitized refs/paths
	cmd := exec.Command("git", append([]string{"-C", p.repoDir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		p.logger.Warn("gitanalysis.git.failed", "args", args, "stderr", stderr.String())
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

const numstatFormat = "--pretty=format:>>>%H|%ae|%at|%s"

func (p *CLIProvider) CommitsTouchingFile(path string, limit int) ([]Commit, error) {
	args := []string{"log", numstatFormat, "--numstat"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, "--", path)
	out, err := p.run(args...)
	if err != nil {
		return nil, err
	}
	return parseLogNumstat(out), nil
}

func (p *CLIProvider) RecentCommits(limit int) ([]Commit, error) {
	args := []string{"log", numstatFormat, "--numstat"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	out, err := p.run(args...)
	if err != nil {
		return nil, err
	}
	return parseLogNumstat(out), nil
}

// parseLogNumstat parses `git log --pretty=format:>>>%H|%ae|%at|%s
// --numstat` output: a commit header line prefixed ">>>" followed by zero
// or more "<additions>\t<deletions>\t<path>" numstat lines.
func parseLogNumstat(out []byte) []Commit {
	var commits []Commit
	var cur *Commit

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">>>") {
			if cur != nil {
				commits = append(commits, *cur)
			}
			cur = parseCommitHeader(line[3:])
			continue
		}
		if cur == nil || strings.TrimSpace(line) == "" {
			continue
		}
		if fc, ok := parseNumstatLine(line); ok {
			cur.Files = append(cur.Files, fc)
		}
	}
	if cur != nil {
		commits = append(commits, *cur)
	}
	return commits
}

func parseCommitHeader(s string) *Commit {
	parts := strings.SplitN(s, "|", 4)
	c := &Commit{}
	if len(parts) > 0 {
		c.Hash = parts[0]
	}
	if len(parts) > 1 {
		c.Author = parts[1]
	}
	if len(parts) > 2 {
		if sec, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			c.Timestamp = time.Unix(sec, 0).UTC()
		}
	}
	if len(parts) > 3 {
		c.Message = parts[3]
	}
	return c
}

func parseNumstatLine(line string) (FileChange, bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return FileChange{}, false
	}
	add, _ := strconv.Atoi(fields[0]) // "-" for binary files parses to 0
	del, _ := strconv.Atoi(fields[1])
	return FileChange{Path: fields[2], Additions: add, Deletions: del}, true
}

func (p *CLIProvider) FileBlameByLine(path string) ([]BlameLine, error) {
	out, err := p.run("blame", "--porcelain", "--", path)
	if err != nil {
		return nil, err
	}
	return parseBlamePorcelain(out), nil
}

func parseBlamePorcelain(out []byte) []BlameLine {
	var lines []BlameLine
	var cur BlameLine
	lineNo := 0

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		switch {
		case len(text) == 40 || (len(text) > 40 && text[40] == ' '):
			// commit header: "<hash> <orig-line> <final-line> [<count>]"
			fields := strings.Fields(text)
			if len(fields) >= 3 {
				lineNo++
				if n, err := strconv.Atoi(fields[2]); err == nil {
					lineNo = n
				}
				cur = BlameLine{Line: lineNo, CommitHash: fields[0]}
			}
		case strings.HasPrefix(text, "author-mail "):
			cur.Author = strings.Trim(strings.TrimPrefix(text, "author-mail "), "<>")
		case strings.HasPrefix(text, "author-time "):
			if sec, err := strconv.ParseInt(strings.TrimPrefix(text, "author-time "), 10, 64); err == nil {
				cur.Timestamp = time.Unix(sec, 0).UTC()
			}
		case strings.HasPrefix(text, "\t"):
			lines = append(lines, cur)
		}
	}
	return lines
}

func (p *CLIProvider) CommitDiffStats(hash string) (DiffStats, error) {
	if err := sanitizeRef(hash); err != nil {
		return DiffStats{}, err
	}
	out, err := p.run("show", "--numstat", "--pretty=format:", hash)
	if err != nil {
		return DiffStats{}, err
	}
	var stats DiffStats
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if fc, ok := parseNumstatLine(scanner.Text()); ok {
			stats.FilesChanged++
			stats.Additions += fc.Additions
			stats.Deletions += fc.Deletions
		}
	}
	return stats, nil
}

func (p *CLIProvider) AllTrackedFiles() ([]string, error) {
	out, err := p.run("ls-tree", "-r", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func (p *CLIProvider) FileContentsAt(path, commit string) ([]byte, error) {
	ref := commit
	if ref == "" {
		ref = "HEAD"
	}
	if err := sanitizeRef(ref); err != nil {
		return nil, err
	}
	return p.run("show", fmt.Sprintf("%s:%s", ref, path))
}

func (p *CLIProvider) AllContributors(path string) ([]string, error) {
	args := []string{"log", "--pretty=format:%ae"}
	if path != "" {
		args = append(args, "--", path)
	}
	out, err := p.run(args...)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var authors []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		email := strings.TrimSpace(scanner.Text())
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		authors = append(authors, email)
	}
	return authors, nil
}
