package usage

import (
	"context"
	"sort"

	"github.com/petrarca/repo-analyzer/internal/manifest"
	"github.com/petrarca/repo-analyzer/internal/types"
)

// DependencyDetector finds declared dependencies no source file loads
type DependencyDetector struct {
	engine *Engine
}

// NewDependencyDetector creates an unused-dependency detector
func NewDependencyDetector(engine *Engine) *DependencyDetector {
	return &DependencyDetector{engine: engine}
}

// Detect checks each declared dependency against the index. npm packages
// match import and require forms; Go modules match quoted import paths in
// .go files.
func (d *DependencyDetector) Detect(ctx context.Context, deps []manifest.Dependency) ([]types.DependencyRecord, error) {
	unused := []types.DependencyRecord{}

	for _, dep := range deps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.isUsed(dep) {
			continue
		}
		unused = append(unused, types.DependencyRecord{
			Name:      dep.Name,
			Ecosystem: dep.Ecosystem,
			Used:      false,
		})
	}

	sort.SliceStable(unused, func(i, j int) bool {
		if unused[i].Ecosystem != unused[j].Ecosystem {
			return unused[i].Ecosystem < unused[j].Ecosystem
		}
		return unused[i].Name < unused[j].Name
	})

	return unused, nil
}

func (d *DependencyDetector) isUsed(dep manifest.Dependency) bool {
	switch dep.Ecosystem {
	case manifest.EcosystemGo:
		return d.engine.ReferencesGoModule(dep.Name)
	default:
		return d.engine.ReferencesModule(dep.Name)
	}
}
