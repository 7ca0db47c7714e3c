// Package quality supplies the aggregate code quality numbers of a scan.
package quality

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// Provider computes quality metrics once per scan. Callers treat the
// result as opaque input.
type Provider interface {
	Name() string
	Metrics(ctx context.Context, files []types.FileRecord) (types.QualityMetrics, error)
}

// New builds the named provider
func New(name string, project *config.ProjectConfig, provider types.Provider, logger *slog.Logger) (Provider, error) {
	switch name {
	case "", config.QualityBaseline:
		return NewBaselineProvider(project.ApplyBaseline(DefaultBaseline)), nil
	case config.QualitySCC:
		return NewSCCProvider(provider, logger), nil
	default:
		return nil, fmt.Errorf("unknown quality provider %q (valid: %s, %s)", name, config.QualityBaseline, config.QualitySCC)
	}
}
