package quality

import (
	"context"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// DefaultBaseline is reported when no analysis tool is wired in
var DefaultBaseline = types.QualityMetrics{
	Complexity:      8,
	Maintainability: 72,
	TestCoverage:    65,
	Documentation:   48,
	LintIssues:      12,
}

// BaselineProvider returns fixed values regardless of the inventory
type BaselineProvider struct {
	metrics types.QualityMetrics
}

// NewBaselineProvider creates a provider that always returns metrics
func NewBaselineProvider(metrics types.QualityMetrics) *BaselineProvider {
	return &BaselineProvider{metrics: metrics}
}

func (p *BaselineProvider) Name() string {
	return "baseline"
}

func (p *BaselineProvider) Metrics(ctx context.Context, _ []types.FileRecord) (types.QualityMetrics, error) {
	if err := ctx.Err(); err != nil {
		return types.QualityMetrics{}, err
	}
	return p.metrics, nil
}
