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

// Package gitanalysis implements the Git History Analyzer & Expertise
// Scorer (SPEC_FULL.md §4.I): commit classification, change-frequency/
// bus-factor risk, and the seven-factor developer expertise score, plus a
// default git-CLI-backed GitProvider adapter.
package gitanalysis

import "time"

// Commit is one repository commit touching one or more files.
type Commit struct {
	Hash      string
	Author    string // email
	Message   string
	Timestamp time.Time
	Files     []FileChange
}

// FileChange is one file's delta within a commit.
type FileChange struct {
	Path      string
	Additions int
	Deletions int
}

// BlameLine is one line's last-touching commit, from `git blame`.
type BlameLine struct {
	Line       int
	CommitHash string
	Author     string
	Timestamp  time.Time
}

// DiffStats summarises one commit's aggregate change size.
type DiffStats struct {
	FilesChanged int
	Additions    int
	Deletions    int
}

// Provider is the Git provider port (§6): `commits_touching_file`,
// `file_blame_by_line`, `commit_diff_stats`, `all_tracked_files`,
// `file_contents_at`, `all_contributors`.
type Provider interface {
	CommitsTouchingFile(path string, limit int) ([]Commit, error)
	FileBlameByLine(path string) ([]BlameLine, error)
	CommitDiffStats(hash string) (DiffStats, error)
	AllTrackedFiles() ([]string, error)
	FileContentsAt(path, commit string) ([]byte, error)
	AllContributors(path string) ([]string, error)

	// RecentCommits returns the most recent N commits repository-wide, the
	// input the history analyzer's risk-signal scan operates over.
	RecentCommits(limit int) ([]Commit, error)
}
