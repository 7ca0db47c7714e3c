package manifest

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

// ParseGoMod extracts direct requirements using the official modfile parser.
// Indirect requirements are not referenced by source and are skipped.
func ParseGoMod(content []byte) ([]Dependency, error) {
	file, err := modfile.Parse("go.mod", content, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid go.mod: %w", err)
	}

	deps := make([]Dependency, 0, len(file.Require))
	for _, req := range file.Require {
		if req.Indirect {
			continue
		}
		deps = append(deps, Dependency{
			Name:      req.Mod.Path,
			Version:   req.Mod.Version,
			Ecosystem: EcosystemGo,
		})
	}

	return deps, nil
}
