package recommend

import (
	"testing"

	"github.com/petrarca/repo-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
)

var healthy = types.QualityMetrics{Complexity: 5, Maintainability: 90, TestCoverage: 85, Documentation: 60, LintIssues: 3}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		findings Findings
		expected []string
	}{
		{
			name:     "nothing to recommend",
			findings: Findings{QualityMetrics: healthy},
			expected: []string{},
		},
		{
			name: "all rules fire in order",
			findings: Findings{
				UnusedFiles:        []string{"/r/a.ts", "/r/b.ts"},
				DuplicateGroups:    []types.DuplicateGroup{{Files: []string{"/r/x.ts", "/r/y.ts"}, Similarity: 1}},
				UnusedDependencies: []types.DependencyRecord{{Name: "left-pad", Ecosystem: "npm"}},
				SecurityFindings: []types.SecurityFinding{
					{File: "/r/a.ts", Line: 1, Severity: types.SeverityCritical},
					{File: "/r/a.ts", Line: 2, Severity: types.SeverityMedium},
					{File: "/r/b.ts", Line: 9, Severity: types.SeverityCritical},
				},
				QualityMetrics: types.QualityMetrics{Complexity: 12.5, TestCoverage: 45, LintIssues: 51},
			},
			expected: []string{
				"Remove 2 unused files to reduce codebase size",
				"Consolidate 1 duplicate file groups into shared modules",
				"Remove 1 unused dependencies from the manifest",
				"URGENT: Fix 2 critical security issues immediately",
				"Address 3 security issues",
				"Increase test coverage from 45% to 80%",
				"Reduce code complexity (current: 12.5)",
				"Fix 51 linting issues",
			},
		},
		{
			name: "non-critical findings only",
			findings: Findings{
				SecurityFindings: []types.SecurityFinding{{Severity: types.SeverityHigh}},
				QualityMetrics:   healthy,
			},
			expected: []string{"Address 1 security issues"},
		},
		{
			name:     "thresholds are exclusive",
			findings: Findings{QualityMetrics: types.QualityMetrics{Complexity: 10, TestCoverage: 80, LintIssues: 50}},
			expected: []string{},
		},
		{
			name:     "baseline metrics",
			findings: Findings{QualityMetrics: types.QualityMetrics{Complexity: 8, Maintainability: 72, TestCoverage: 65, Documentation: 48, LintIssues: 12}},
			expected: []string{"Increase test coverage from 65% to 80%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.findings))
		})
	}
}

func TestGenerate_LowCoverageCitesValueAndTarget(t *testing.T) {
	recs := Generate(Findings{QualityMetrics: types.QualityMetrics{TestCoverage: 45}})

	assert.Contains(t, recs, "Increase test coverage from 45% to 80%")
}

func TestGenerate_Deterministic(t *testing.T) {
	findings := Findings{
		UnusedFiles:      []string{"/r/a.ts"},
		SecurityFindings: []types.SecurityFinding{{Severity: types.SeverityCritical}},
		QualityMetrics:   types.QualityMetrics{TestCoverage: 12.25, Complexity: 30},
	}
	first := Generate(findings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Generate(findings))
	}
}

func TestFromResult(t *testing.T) {
	result := types.NewScanResult()
	result.UnusedFiles = []string{"/r/a.ts"}
	result.QualityMetrics = healthy

	assert.Equal(t, []string{"Remove 1 unused files to reduce codebase size"}, Generate(FromResult(result)))
}
