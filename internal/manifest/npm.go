package manifest

import (
	"encoding/json"
	"fmt"
)

// PackageJSON represents the structure of package.json
type PackageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON parses package.json content
func ParsePackageJSON(content []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	return &pkg, nil
}

// ExtractDependencies merges dependencies and devDependencies.
// A name present in both keeps the runtime version.
func (p *PackageJSON) ExtractDependencies() []Dependency {
	deps := make([]Dependency, 0, len(p.Dependencies)+len(p.DevDependencies))

	for name, version := range p.Dependencies {
		deps = append(deps, Dependency{Name: name, Version: version, Ecosystem: EcosystemNPM})
	}

	for name, version := range p.DevDependencies {
		if _, ok := p.Dependencies[name]; ok {
			continue
		}
		deps = append(deps, Dependency{Name: name, Version: version, Ecosystem: EcosystemNPM})
	}

	return deps
}
