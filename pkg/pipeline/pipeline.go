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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/kraklabs/codeintel/internal/metrics"
	"github.com/kraklabs/codeintel/pkg/astprovider"
	"github.com/kraklabs/codeintel/pkg/astprovider/golang"
	"github.com/kraklabs/codeintel/pkg/extractor"
	"github.com/kraklabs/codeintel/pkg/gitanalysis"
	"github.com/kraklabs/codeintel/pkg/governance"
	"github.com/kraklabs/codeintel/pkg/graphstore"
	"github.com/kraklabs/codeintel/pkg/impact"
	"github.com/kraklabs/codeintel/pkg/langprofile"
	"github.com/kraklabs/codeintel/pkg/model"
	"github.com/kraklabs/codeintel/pkg/parser"
	"github.com/kraklabs/codeintel/pkg/registry"
	"github.com/kraklabs/codeintel/pkg/resolver"
)

// maxParseWorkers bounds the per-file parse worker pool at runtime.NumCPU(),
// capped at 8, mirroring the teacher's call-resolution worker pool (§5).
const maxParseWorkers = 8

// Config configures one Pipeline instance. Zero-value fields fall back to
// the Go-binding defaults (golang.New() AST provider, langprofile.Go()).
type Config struct {
	RootPath   string
	Scan       ScanConfig
	Governance governance.Config
	RiskWeights impact.RiskWeights

	GitWindow     int
	RecencyWindow time.Duration
	MinExpertise  int

	Provider astprovider.Provider
	Profile  langprofile.Profile

	// GraphBackend selects the Code Graph Store implementation (§6
	// environment signals): "in_memory" (default) or "remote".
	GraphBackend string
	Querier      graphstore.Querier
}

func (c *Config) applyDefaults() {
	if c.Provider == nil {
		c.Provider = golang.New()
	}
	if c.Profile.Builtins == nil {
		c.Profile = langprofile.Go()
	}
	if len(c.Scan.ExcludeGlobs) == 0 {
		c.Scan.ExcludeGlobs = DefaultExcludeGlobs()
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = []string{".go"}
	}
	if c.GitWindow <= 0 {
		c.GitWindow = gitanalysis.DefaultScanWindow
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = gitanalysis.DefaultRecencyWindow
	}
	if c.MinExpertise <= 0 {
		c.MinExpertise = 3
	}
	if c.RiskWeights == (impact.RiskWeights{}) {
		c.RiskWeights = impact.DefaultRiskWeights()
	}
	if c.GraphBackend == "" {
		c.GraphBackend = "in_memory"
	}
}

// Pipeline wires the five analysis components into the six top-level
// entry points of §5, adapted from the teacher's LocalPipeline
// orchestration shape (construction validates/defaults config once; Run
// stages are independently invocable methods here instead of one
// monolithic Run, since the spec requires each to be externally callable).
type Pipeline struct {
	config Config
	logger *slog.Logger
	graph  graphstore.GraphStore
	gitLog gitanalysis.Provider
}

// New constructs a Pipeline, applying Go-binding defaults and selecting the
// graph store implementation named by config.GraphBackend.
func New(cfg Config, logger *slog.Logger, gitProvider gitanalysis.Provider) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	var graph graphstore.GraphStore
	switch cfg.GraphBackend {
	case "in_memory":
		graph = graphstore.NewMemoryStore()
	case "remote":
		if cfg.Querier == nil {
			return nil, fmt.Errorf("pipeline: graph backend %q requires a Querier", cfg.GraphBackend)
		}
		graph = graphstore.NewRemoteStore(cfg.Querier)
	default:
		return nil, fmt.Errorf("pipeline: unknown graph backend %q", cfg.GraphBackend)
	}

	return &Pipeline{config: cfg, logger: logger, graph: graph, gitLog: gitProvider}, nil
}

// Graph returns the underlying graph store, for callers that need direct
// traversal access beyond the six entry points.
func (p *Pipeline) Graph() graphstore.GraphStore { return p.graph }

// ScanRepository is entry point 1 of §5: discover source files under
// config.RootPath.
func (p *Pipeline) ScanRepository(ctx context.Context) ([]SourceFile, map[string]int, error) {
	start := time.Now()
	files, skipped, err := ScanRepository(ctx, p.config.RootPath, p.config.Scan, p.logger)
	if err != nil {
		return files, skipped, err
	}
	skippedTotal := 0
	for _, n := range skipped {
		skippedTotal += n
	}
	metrics.RecordScan(len(files), skippedTotal, time.Since(start))
	return files, skipped, nil
}

// ParsedRepository is the per-file parse output BuildRegistry produces,
// alongside the registry itself.
type ParsedRepository struct {
	Registry      *registry.Registry
	ParsedByFile  map[string]parser.ParsedFile
	FunctionsByFile map[string][]model.FunctionEntity
	ImportsByFile map[string][]model.ImportEntity
	ParseErrors   int
}

// BuildRegistry is entry point 2 of §5: parse every file (bounded worker
// pool, sequential fallback below 10 files, mirroring
// pkg/ingestion/local_pipeline.go's parseFilesParallel/parseFilesSequential
// split) and populate the Entity Registry.
func (p *Pipeline) BuildRegistry(ctx context.Context, files []SourceFile) (*ParsedRepository, error) {
	start := time.Now()
	workers := runtime.NumCPU()
	if workers > maxParseWorkers {
		workers = maxParseWorkers
	}

	var parsed []parser.ParsedFile
	var parseErrors int
	if len(files) < 10 || workers <= 1 {
		parsed, parseErrors = p.parseSequential(ctx, files)
	} else {
		parsed, parseErrors = p.parseParallel(ctx, files, workers)
	}

	reg := registry.New()
	out := &ParsedRepository{
		Registry:        reg,
		ParsedByFile:    map[string]parser.ParsedFile{},
		FunctionsByFile: map[string][]model.FunctionEntity{},
		ImportsByFile:   map[string][]model.ImportEntity{},
		ParseErrors:     parseErrors,
	}

	for _, pf := range parsed {
		out.ParsedByFile[pf.Module.File] = pf
		out.FunctionsByFile[pf.Module.File] = pf.Functions
		out.ImportsByFile[pf.Module.File] = pf.Imports

		reg.AddModule(pf.Module)
		for _, fn := range pf.Functions {
			if err := reg.AddFunction(fn); err != nil {
				p.logger.Warn("pipeline.registry.duplicate_function", "id", fn.ID, "err", err)
			}
		}
		for _, cls := range pf.Classes {
			if err := reg.AddClass(cls); err != nil {
				p.logger.Warn("pipeline.registry.duplicate_class", "id", cls.ID, "err", err)
			}
		}
		for _, imp := range pf.Imports {
			reg.AddImport(imp)
		}
	}

	metrics.RecordBuildRegistry(len(reg.AllFunctions()), len(reg.AllClasses()), parseErrors, time.Since(start))
	return out, nil
}

func (p *Pipeline) parseSequential(ctx context.Context, files []SourceFile) ([]parser.ParsedFile, int) {
	var out []parser.ParsedFile
	errs := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return out, errs
		default:
		}
		pf, err := p.parseOne(f)
		if err != nil {
			errs++
			continue
		}
		out = append(out, pf)
	}
	return out, errs
}

func (p *Pipeline) parseParallel(ctx context.Context, files []SourceFile, workers int) ([]parser.ParsedFile, int) {
	jobs := make(chan int, len(files))
	results := make([]*parser.ParsedFile, len(files))
	var errCount int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				pf, err := p.parseOne(files[i])
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					p.logger.Warn("pipeline.parse.error", "path", files[i].Path, "err", err)
					continue
				}
				results[i] = &pf
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]parser.ParsedFile, 0, len(files))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, int(errCount)
}

func (p *Pipeline) parseOne(f SourceFile) (parser.ParsedFile, error) {
	source, err := os.ReadFile(f.FullPath)
	if err != nil {
		return parser.ParsedFile{}, err
	}
	return parser.Parse(p.config.Provider, p.config.Profile, f.Path, source), nil
}

// ExtractRelationships is entry point 3 of §5: one extraction sweep per
// parsed file, writing into a single in-memory batch that is merged into
// the graph store sequentially after all files are processed (§5
// concurrency note: "edges are accumulated per file and merged ...
// sequentially").
func (p *Pipeline) ExtractRelationships(ctx context.Context, parsed *ParsedRepository) ([]model.Relationship, error) {
	start := time.Now()
	idx := resolver.BuildIndex(parsed.Registry, parsed.FunctionsByFile)

	seen := map[model.EdgeKey]bool{}
	var rels []model.Relationship
	deduped := 0

	files := make([]string, 0, len(parsed.ParsedByFile))
	for f := range parsed.ParsedByFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		select {
		case <-ctx.Done():
			return rels, ctx.Err()
		default:
		}
		pf := parsed.ParsedByFile[file]
		imports := resolver.BuildImportMapping(pf.Imports)
		for _, rel := range extractor.Extract(pf, parsed.Registry, idx, imports, p.config.Profile) {
			key := rel.Key()
			if seen[key] {
				deduped++
				continue // §3 invariant vi: no parallel edges of the same type between the same pair
			}
			seen[key] = true
			rels = append(rels, rel)
		}
	}

	metrics.RecordExtractRelationships(len(rels), deduped, time.Since(start))
	return rels, nil
}

// BuildGraph populates the graph store from a parsed repository's
// relationships, adding every function/class id as a node first so
// isolated entities (no incoming or outgoing edges) are still enumerable.
func (p *Pipeline) BuildGraph(ctx context.Context, parsed *ParsedRepository, rels []model.Relationship) error {
	for _, fn := range parsed.Registry.AllFunctions() {
		if err := p.graph.AddNode(ctx, graphstore.Node{ID: fn.ID, Attributes: map[string]interface{}{"kind": string(model.EntityFunction)}}); err != nil {
			return err
		}
	}
	for _, cls := range parsed.Registry.AllClasses() {
		if err := p.graph.AddNode(ctx, graphstore.Node{ID: cls.ID, Attributes: map[string]interface{}{"kind": string(model.EntityClass)}}); err != nil {
			return err
		}
	}
	for _, rel := range rels {
		edge := graphstore.Edge{Source: rel.SourceID, Target: rel.TargetID, Type: rel.Type, Weight: rel.Weight, Attributes: rel.Metadata}
		if err := p.graph.AddEdge(ctx, edge); err != nil {
			return err
		}
	}
	return nil
}

// CalculateBlastRadius is entry point 4 of §5.
func (p *Pipeline) CalculateBlastRadius(ctx context.Context, parsed *ParsedRepository, history *gitanalysis.History, target string) (impact.ImpactAssessment, error) {
	start := time.Now()
	defer func() { metrics.RecordBlastRadius(time.Since(start)) }()
	analyzer := impact.New(p.graph)
	analyzer.Weights = p.config.RiskWeights
	analyzer.Complexity = func(id string) (int, int, bool) {
		fn, ok := parsed.Registry.Function(id)
		if !ok {
			return 0, 0, false
		}
		return fn.Cyclomatic, fn.Cognitive, true
	}
	if history != nil {
		analyzer.GitRisk = func(id string) (float64, float64, bool) {
			fn, ok := parsed.Registry.Function(id)
			if !ok {
				return 0, 0, false
			}
			return history.ChangeFrequencyRisk(fn.File), history.BusFactorRisk(fn.File), true
		}
	}
	analyzer.Stub = func(id string) (*model.StubDetection, bool) {
		fn, ok := parsed.Registry.Function(id)
		if !ok || fn.Stub == nil {
			return nil, false
		}
		return fn.Stub, true
	}
	return analyzer.CalculateBlastRadius(ctx, target)
}

// ValidateRepository is entry point 5 of §5.
func (p *Pipeline) ValidateRepository(ctx context.Context, parsed *ParsedRepository) governance.RepositoryValidationResult {
	start := time.Now()
	cl := governance.NewClassifier(p.config.Governance.Layers)
	result := governance.ValidateRepository(p.config.Governance, cl, parsed.ImportsByFile)
	metrics.RecordValidation(result.TotalViolations, result.TotalWarnings, time.Since(start))
	return result
}

// AnalysisResult is the consolidated output of AnalyzeRepository.
type AnalysisResult struct {
	Parsed       *ParsedRepository
	Relationships []model.Relationship
	Validation   governance.RepositoryValidationResult
	History      *gitanalysis.History
	Duration     time.Duration
}

// AnalyzeRepository is entry point 6 of §5: the full pipeline run — scan,
// build registry, extract relationships, build the graph, validate
// governance, and (when a git provider is configured) scan history —
// staged and logged the way pkg/ingestion/local_pipeline.go's Run does.
func (p *Pipeline) AnalyzeRepository(ctx context.Context) (*AnalysisResult, error) {
	start := time.Now()
	p.logger.Info("pipeline.analyze.start", "root", p.config.RootPath)

	files, skipped, err := p.ScanRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan repository: %w", err)
	}
	p.logger.Info("pipeline.analyze.scanned", "files", len(files), "skipped", skipped)

	parsed, err := p.BuildRegistry(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	p.logger.Info("pipeline.analyze.registry_built",
		"functions", len(parsed.Registry.AllFunctions()),
		"classes", len(parsed.Registry.AllClasses()),
		"parse_errors", parsed.ParseErrors,
	)

	rels, err := p.ExtractRelationships(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("extract relationships: %w", err)
	}
	p.logger.Info("pipeline.analyze.relationships_extracted", "edges", len(rels))

	if err := p.BuildGraph(ctx, parsed, rels); err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	validation := p.ValidateRepository(ctx, parsed)
	p.logger.Info("pipeline.analyze.validated",
		"violations", validation.TotalViolations,
		"warnings", validation.TotalWarnings,
	)

	var history *gitanalysis.History
	if p.gitLog != nil {
		historyStart := time.Now()
		history, err = gitanalysis.AnalyzeHistory(p.gitLog, p.config.GitWindow, p.config.RecencyWindow)
		if err != nil {
			p.logger.Warn("pipeline.analyze.history_scan_failed", "err", err)
		} else {
			metrics.RecordHistoryScan(p.config.GitWindow, time.Since(historyStart))
		}
	}

	result := &AnalysisResult{
		Parsed:        parsed,
		Relationships: rels,
		Validation:    validation,
		History:       history,
		Duration:      time.Since(start),
	}
	p.logger.Info("pipeline.analyze.complete", "duration_ms", result.Duration.Milliseconds())
	return result, nil
}
