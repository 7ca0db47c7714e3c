package quality

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"github.com/boyter/scc/v3/processor"
	"github.com/go-enry/go-enry/v2"
	"github.com/petrarca/repo-analyzer/internal/types"
)

var initOnce sync.Once

// SCCProvider derives metrics from scc line counts and cyclomatic
// complexity of programming-language files (as classified by go-enry)
type SCCProvider struct {
	provider types.Provider
	logger   *slog.Logger
}

// NewSCCProvider creates an scc-backed provider
func NewSCCProvider(provider types.Provider, logger *slog.Logger) *SCCProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &SCCProvider{provider: provider, logger: logger}
}

func (p *SCCProvider) Name() string {
	return "scc"
}

// totals accumulates scc counts for programming files
type totals struct {
	files      int
	code       int64
	comments   int64
	complexity int64
	testCode   int64
}

// Metrics computes:
//   - complexity: average cyclomatic complexity per programming file
//   - documentation: comments / (code + comments) in percent
//   - testCoverage: test code / non-test code in percent, capped at 100
//   - maintainability: 100 minus a complexity-density and documentation penalty
//
// lintIssues is always 0.
func (p *SCCProvider) Metrics(ctx context.Context, files []types.FileRecord) (types.QualityMetrics, error) {
	initOnce.Do(func() {
		processor.ProcessConstants()
	})

	var t totals
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return types.QualityMetrics{}, err
		}

		content, err := p.provider.ReadFile(file.Path)
		if err != nil || len(content) == 0 {
			continue
		}

		language := detectLanguage(file.Path, content)
		if language == "" || enry.GetLanguageType(language) != enry.Programming {
			continue
		}

		job, ok := countStats(file.Path, content)
		if !ok {
			continue
		}

		t.files++
		t.code += job.Code
		t.comments += job.Comment
		t.complexity += job.Complexity
		if enry.IsTest(file.Path) {
			t.testCode += job.Code
		}
	}

	p.logger.Debug("Computed code statistics", "files", t.files, "code", t.code, "comments", t.comments, "complexity", t.complexity)
	return t.metrics(), nil
}

func (t totals) metrics() types.QualityMetrics {
	if t.files == 0 {
		return types.QualityMetrics{Maintainability: 100}
	}

	complexity := float64(t.complexity) / float64(t.files)

	var documentation float64
	if t.code+t.comments > 0 {
		documentation = float64(t.comments) / float64(t.code+t.comments) * 100
	}

	var coverage float64
	if production := t.code - t.testCode; production > 0 {
		coverage = math.Min(100, float64(t.testCode)/float64(production)*100)
	} else if t.testCode > 0 {
		coverage = 100
	}

	var perKLOC float64
	if t.code > 0 {
		perKLOC = float64(t.complexity) / (float64(t.code) / 1000)
	}
	maintainability := 100 - math.Min(60, perKLOC/2) - math.Max(0, 20-documentation)

	return types.QualityMetrics{
		Complexity:      round2(complexity),
		Maintainability: round2(math.Max(0, maintainability)),
		TestCoverage:    round2(coverage),
		Documentation:   round2(documentation),
	}
}

// detectLanguage tries the extension first and falls back to content
// analysis for ambiguous extensions
func detectLanguage(filename string, content []byte) string {
	lang, safe := enry.GetLanguageByExtension(filename)
	if !safe && lang != "" && len(content) > 0 {
		lang = enry.GetLanguage(filepath.Base(filename), content)
	}
	if lang == "" {
		lang, _ = enry.GetLanguageByFilename(filename)
	}
	return lang
}

func countStats(filename string, content []byte) (*processor.FileJob, bool) {
	sccLangs, _ := processor.DetectLanguage(filename)
	if len(sccLangs) == 0 {
		return nil, false
	}

	job := &processor.FileJob{
		Filename: filename,
		Language: sccLangs[0],
		Content:  content,
		Bytes:    int64(len(content)),
	}
	processor.CountStats(job)
	return job, true
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
