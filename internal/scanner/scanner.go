// Package scanner orchestrates one analysis run: it collects the inventory,
// runs the independent analysis stages and assembles the ScanResult.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/duplicates"
	"github.com/petrarca/repo-analyzer/internal/inventory"
	"github.com/petrarca/repo-analyzer/internal/manifest"
	"github.com/petrarca/repo-analyzer/internal/progress"
	"github.com/petrarca/repo-analyzer/internal/provider"
	"github.com/petrarca/repo-analyzer/internal/quality"
	"github.com/petrarca/repo-analyzer/internal/recommend"
	"github.com/petrarca/repo-analyzer/internal/security"
	"github.com/petrarca/repo-analyzer/internal/types"
	"github.com/petrarca/repo-analyzer/internal/usage"
	"golang.org/x/sync/errgroup"
)

// Options configure a scan. Empty values fall back to the project
// configuration and then to the built-in defaults.
type Options struct {
	IncludePatterns []string
	ExcludePatterns []string
	ReportPath      string
	Sequential      bool
	NoGitignore     bool
	QualityProvider string
	Project         *config.ProjectConfig
	Progress        *progress.Progress
}

// Scanner runs a single analysis over a source tree. Build a new one per scan.
type Scanner struct {
	provider   types.Provider
	project    *config.ProjectConfig
	collector  *inventory.Collector
	sizer      *inventory.Sizer
	rules      []*security.Rule
	quality    quality.Provider
	parallel   bool
	reportPath string
	include    []string
	exclude    []string
	progress   *progress.Progress
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a scanner over a provider. Invalid globs, rules or quality
// provider names are reported here, before any file is read.
func New(p types.Provider, opts Options, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	prog := opts.Progress
	if prog == nil {
		prog = progress.Disabled()
	}
	project := opts.Project
	root := p.GetBasePath()

	t1 := time.Now()
	rules, err := security.LoadRules(project.SecurityRules())
	if err != nil {
		return nil, fmt.Errorf("failed to load security rules: %w", err)
	}
	logger.Debug("Loaded security rules", "count", len(rules), "duration", time.Since(t1))

	qp, err := quality.New(project.QualityProvider(opts.QualityProvider), project, p, logger)
	if err != nil {
		return nil, err
	}

	reportPath := project.ReportPath(root, opts.ReportPath)
	include := project.IncludePatterns(opts.IncludePatterns)
	exclude := project.MergeExcludes(opts.ExcludePatterns)

	collector, err := inventory.NewCollector(p, inventory.CollectorOptions{
		Include:   include,
		Exclude:   exclude,
		Gitignore: project.UseGitignore(opts.NoGitignore),
		SkipPaths: []string{reportPath},
	}, prog, logger)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		provider:   p,
		project:    project,
		collector:  collector,
		sizer:      inventory.NewSizer(p, prog, logger),
		rules:      rules,
		quality:    qp,
		parallel:   !opts.Sequential,
		reportPath: reportPath,
		include:    include,
		exclude:    exclude,
		progress:   prog,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// NewWithSettings creates a file system scanner for path from CLI settings
// and the project configuration found at path
func NewWithSettings(path string, settings *config.Settings, project *config.ProjectConfig, logger *slog.Logger) (*Scanner, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	prog := progress.Disabled()
	if settings.Verbose {
		prog = progress.New(true, progress.NewSimpleHandler(os.Stderr))
	}

	return New(provider.NewFSProvider(absPath), Options{
		IncludePatterns: settings.IncludePatterns,
		ExcludePatterns: settings.ExcludePatterns,
		ReportPath:      settings.ReportFile,
		Sequential:      settings.Sequential,
		NoGitignore:     settings.NoGitignore,
		QualityProvider: settings.QualityProvider,
		Project:         project,
		Progress:        prog,
	}, logger)
}

// Root returns the absolute scan root
func (s *Scanner) Root() string {
	return s.provider.GetBasePath()
}

// ReportPath returns where the report is written
func (s *Scanner) ReportPath() string {
	return s.reportPath
}

// Rules returns the effective security rules in application order
func (s *Scanner) Rules() []*security.Rule {
	return s.rules
}

// QualityProviderName returns the name of the selected quality provider
func (s *Scanner) QualityProviderName() string {
	return s.quality.Name()
}

// Parallel reports whether stages run concurrently
func (s *Scanner) Parallel() bool {
	return s.parallel
}

// stageOutputs holds what each analysis stage produced. Every stage writes
// only its own fields.
type stageOutputs struct {
	duplicates  []types.DuplicateGroup
	unusedFiles []string
	unusedDeps  []types.DependencyRecord
	findings    []types.SecurityFinding
	metrics     types.QualityMetrics
}

// Scan collects the inventory, runs every analysis stage and returns the
// result. The only error for an ordinary tree is an unenumerable root.
func (s *Scanner) Scan(ctx context.Context) (*types.ScanResult, error) {
	root := s.provider.GetBasePath()
	start := time.Now()
	s.progress.ScanStart(root, s.exclude)

	paths, err := s.collector.Collect(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Collected inventory", "files", len(paths), "duration", time.Since(start))

	files, totalSize, err := s.sizer.Size(ctx, paths)
	if err != nil {
		return nil, err
	}

	var out stageOutputs
	if err := s.runStages(ctx, s.stages(files, &out)); err != nil {
		return nil, err
	}

	result := types.NewScanResult()
	result.TotalFiles = len(files)
	result.TotalSizeBytes = totalSize
	result.DuplicateGroups = out.duplicates
	result.UnusedFiles = out.unusedFiles
	result.UnusedDependencies = out.unusedDeps
	result.SecurityFindings = out.findings
	result.QualityMetrics = out.metrics
	result.Recommendations = recommend.Generate(recommend.FromResult(result))
	result.GeneratedAt = s.now().UTC()

	s.progress.ScanComplete(result.TotalFiles, time.Since(start))
	return result, nil
}

func (s *Scanner) stages(files []types.FileRecord, out *stageOutputs) []stage {
	sourceExts := s.project.SourceExts()

	return []stage{
		{
			name: "duplicates",
			run: func(ctx context.Context) (int, error) {
				groups, err := duplicates.NewDetector(s.provider, sourceExts, s.logger).Detect(ctx, files)
				out.duplicates = groups
				return len(groups), err
			},
		},
		{
			name: "usage",
			run: func(ctx context.Context) (int, error) {
				index, err := usage.BuildIndex(ctx, s.provider, files, sourceExts, s.logger)
				if err != nil {
					return 0, err
				}
				engine := usage.NewEngine(index)

				fileDetector := usage.NewFileDetector(engine, s.project.ModuleExts(), s.project.EntryPointNames(), s.project.EntryPointDirs())
				if out.unusedFiles, err = fileDetector.Detect(ctx, files); err != nil {
					return 0, err
				}

				deps := manifest.NewReader(s.provider, s.logger).Load(s.project.ManifestPaths())
				if out.unusedDeps, err = usage.NewDependencyDetector(engine).Detect(ctx, deps); err != nil {
					return 0, err
				}
				return len(out.unusedFiles) + len(out.unusedDeps), nil
			},
		},
		{
			name: "security",
			run: func(ctx context.Context) (int, error) {
				findings, err := security.NewScanner(s.provider, s.rules, sourceExts, s.logger).Scan(ctx, files)
				out.findings = findings
				return len(findings), err
			},
		},
		{
			name: "quality",
			run: func(ctx context.Context) (int, error) {
				metrics, err := s.quality.Metrics(ctx, files)
				out.metrics = metrics
				return 1, err
			},
		},
	}
}

type stage struct {
	name string
	run  func(ctx context.Context) (int, error)
}

// runStages runs every stage on an errgroup, or one after another when the
// scanner is sequential. The first error cancels the remaining stages.
func (s *Scanner) runStages(ctx context.Context, stages []stage) error {
	if !s.parallel {
		for _, st := range stages {
			if err := s.runStage(ctx, st); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, st := range stages {
		g.Go(func() error {
			return s.runStage(gctx, st)
		})
	}
	return g.Wait()
}

func (s *Scanner) runStage(ctx context.Context, st stage) error {
	s.progress.StageStart(st.name)
	start := time.Now()

	count, err := st.run(ctx)
	if err != nil {
		return fmt.Errorf("%s stage failed: %w", st.name, err)
	}

	duration := time.Since(start)
	s.logger.Debug("Stage completed", "stage", st.name, "results", count, "duration", duration)
	s.progress.StageComplete(st.name, count, duration)
	return nil
}
