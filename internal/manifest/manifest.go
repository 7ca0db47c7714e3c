// Package manifest reads declared dependencies from package manifests.
package manifest

import (
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// Ecosystems
const (
	EcosystemNPM = "npm"
	EcosystemGo  = "go"
)

// Dependency is a dependency declared in a manifest
type Dependency struct {
	Name      string
	Version   string
	Ecosystem string
	Manifest  string // Absolute path of the declaring manifest
}

// Reader loads manifests through a provider
type Reader struct {
	provider types.Provider
	logger   *slog.Logger
}

// NewReader creates a manifest reader
func NewReader(provider types.Provider, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{provider: provider, logger: logger}
}

// Load reads every manifest path (relative to the provider root) and returns
// the declared dependencies sorted by ecosystem and name. Missing or
// malformed manifests contribute nothing; when none can be read a warning
// is logged and the result is empty.
func (r *Reader) Load(paths []string) []Dependency {
	root := r.provider.GetBasePath()
	seen := make(map[string]bool)
	deps := []Dependency{}
	loaded := 0

	for _, rel := range paths {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, rel)
		}

		exists, err := r.provider.Exists(path)
		if err != nil || !exists {
			r.logger.Debug("Manifest not present", "path", path)
			continue
		}

		content, err := r.provider.ReadFile(path)
		if err != nil {
			r.logger.Warn("Cannot read manifest", "path", path, "error", err)
			continue
		}

		parsed, err := parse(path, content)
		if err != nil {
			r.logger.Warn("Cannot parse manifest", "path", path, "error", err)
			continue
		}
		loaded++

		for _, dep := range parsed {
			key := dep.Ecosystem + "\x00" + dep.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			dep.Manifest = path
			deps = append(deps, dep)
		}
	}

	if loaded == 0 {
		r.logger.Warn("No dependency manifest found, skipping unused dependency detection", "paths", paths)
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Ecosystem != deps[j].Ecosystem {
			return deps[i].Ecosystem < deps[j].Ecosystem
		}
		return deps[i].Name < deps[j].Name
	})

	return deps
}

func parse(path string, content []byte) ([]Dependency, error) {
	switch filepath.Base(path) {
	case "go.mod":
		return ParseGoMod(content)
	default:
		pkg, err := ParsePackageJSON(content)
		if err != nil {
			return nil, err
		}
		return pkg.ExtractDependencies(), nil
	}
}
