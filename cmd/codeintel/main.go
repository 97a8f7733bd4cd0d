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

// Package main implements the codeintel CLI: scanning a repository,
// building its entity registry, extracting relationships, calculating
// blast radius, validating architectural governance, and scoring git
// history expertise.
//
// Usage:
//
//	codeintel analyze [--root .] [--config codeintel.yaml] [--json]
//	codeintel blast-radius --target <name-or-id> [--json]
//	codeintel validate [--strict] [--json]
//	codeintel expertise --file <path> [--json]
//	codeintel --version
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `codeintel - code intelligence CLI

Usage:
  codeintel <command> [options]

Commands:
  analyze        Scan, parse, extract relationships, validate governance and score history
  blast-radius   Calculate the blast radius of one function or class
  validate       Validate the repository against architectural governance rules
  expertise      Score developer expertise on one file from git history

Global Options:
  --version     Show version and exit

Examples:
  codeintel analyze --root . --json
  codeintel blast-radius --target pkg/auth.Login
  codeintel validate --strict
  codeintel expertise --file pkg/auth/login.go

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("codeintel version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs)
	case "blast-radius":
		runBlastRadius(cmdArgs)
	case "validate":
		runValidate(cmdArgs)
	case "expertise":
		runExpertise(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
