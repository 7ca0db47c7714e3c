package usage

import (
	"path/filepath"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// Engine answers reference questions against an Index
type Engine struct {
	index *Index
}

// NewEngine creates an engine over a built index
func NewEngine(index *Index) *Engine {
	return &Engine{index: index}
}

// Index returns the underlying index
func (e *Engine) Index() *Index {
	return e.index
}

// IsReferenced reports whether any corpus file other than path itself
// contains a quoted relative specifier pointing at the candidate. A
// specifier counts when it is ./name, ../name or ./name.ext regardless of
// location, or when it resolves from the referencing file's directory to
// the candidate with or without its extension.
func (e *Engine) IsReferenced(name, path string, corpus []types.FileRecord) bool {
	path = filepath.Clean(path)
	file := filepath.Base(path)
	ext := filepath.Ext(path)
	withoutExt := strings.TrimSuffix(path, ext)

	nameForms := []string{"./" + name, "../" + name, "./" + file}
	targets := []string{withoutExt, path}
	if ext == ".ts" || ext == ".tsx" || ext == ".mts" {
		// ESM TypeScript imports the emitted .js name
		targets = append(targets, withoutExt+".js")
	}
	if name == "index" {
		targets = append(targets, filepath.Dir(path))
	}

	for _, record := range corpus {
		if filepath.Clean(record.Path) == path {
			continue
		}
		ref, ok := e.index.lookup(record.Path)
		if !ok {
			continue
		}
		for _, form := range nameForms {
			if ref.relative[form] {
				return true
			}
		}
		for _, target := range targets {
			if ref.resolved[target] {
				return true
			}
		}
	}

	return false
}

// ReferencesModule reports whether any indexed file loads the npm package
// through import-from, a side-effect import, require(...) or import(...),
// either directly or through a subpath such as name/sub
func (e *Engine) ReferencesModule(name string) bool {
	for _, f := range e.index.files {
		if f.moduleRoot[name] || f.modules[name] {
			return true
		}
	}
	return false
}

// ReferencesGoModule reports whether any indexed .go file contains the
// module path as a quoted import or import prefix
func (e *Engine) ReferencesGoModule(modulePath string) bool {
	exact := `"` + modulePath + `"`
	prefix := `"` + modulePath + `/`
	for _, f := range e.index.files {
		if filepath.Ext(f.record.Path) != ".go" {
			continue
		}
		if strings.Contains(f.content, exact) || strings.Contains(f.content, prefix) {
			return true
		}
	}
	return false
}
