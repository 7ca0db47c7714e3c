package provider

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// FakeProvider implements the Provider interface for testing.
// Paths are slash separated; directories are implied by the files below them.
type FakeProvider struct {
	mu         sync.RWMutex
	basePath   string
	content    map[string]string
	dirs       map[string]bool
	statErrors map[string]error
	readErrors map[string]error
	listErrors map[string]error
}

// NewFakeProvider creates a new fake provider rooted at basePath
func NewFakeProvider(basePath string) *FakeProvider {
	p := &FakeProvider{
		basePath:   path.Clean(basePath),
		content:    make(map[string]string),
		dirs:       make(map[string]bool),
		statErrors: make(map[string]error),
		readErrors: make(map[string]error),
		listErrors: make(map[string]error),
	}
	p.dirs[p.basePath] = true
	return p
}

// AddFile adds a file; relative paths are resolved against the base path
func (p *FakeProvider) AddFile(filePath, content string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	full := p.resolve(filePath)
	p.content[full] = content
	for dir := path.Dir(full); ; dir = path.Dir(dir) {
		p.dirs[dir] = true
		if dir == "/" || dir == "." || dir == p.basePath {
			break
		}
	}
	return full
}

// AddDir adds an empty directory
func (p *FakeProvider) AddDir(dirPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirs[p.resolve(dirPath)] = true
}

// Remove deletes a file, simulating a file that vanished mid-scan
func (p *FakeProvider) Remove(filePath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.content, p.resolve(filePath))
}

// FailStat makes Stat fail for the path while it stays listed
func (p *FakeProvider) FailStat(filePath string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statErrors[p.resolve(filePath)] = err
}

// FailRead makes ReadFile fail for the path
func (p *FakeProvider) FailRead(filePath string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErrors[p.resolve(filePath)] = err
}

// FailList makes ListDir fail for the directory
func (p *FakeProvider) FailList(dirPath string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErrors[p.resolve(dirPath)] = err
}

// ListDir returns the direct children of a directory
func (p *FakeProvider) ListDir(dirPath string) ([]types.File, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	dir := p.resolve(dirPath)
	if err, ok := p.listErrors[dir]; ok {
		return nil, err
	}
	if !p.dirs[dir] {
		return nil, fmt.Errorf("open %s: %w", dir, fs.ErrNotExist)
	}

	seen := make(map[string]bool)
	var files []types.File
	for full, content := range p.content {
		if path.Dir(full) == dir {
			files = append(files, types.File{Name: path.Base(full), Path: full, Type: "file", Size: int64(len(content))})
		}
	}
	for sub := range p.dirs {
		if sub != dir && path.Dir(sub) == dir && !seen[sub] {
			seen[sub] = true
			files = append(files, types.File{Name: path.Base(sub), Path: sub, Type: "dir"})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stat returns the entry for a single path
func (p *FakeProvider) Stat(filePath string) (types.File, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	full := p.resolve(filePath)
	if err, ok := p.statErrors[full]; ok {
		return types.File{}, err
	}
	if content, ok := p.content[full]; ok {
		return types.File{Name: path.Base(full), Path: full, Type: "file", Size: int64(len(content))}, nil
	}
	if p.dirs[full] {
		return types.File{Name: path.Base(full), Path: full, Type: "dir"}, nil
	}
	return types.File{}, fmt.Errorf("stat %s: %w", full, fs.ErrNotExist)
}

// ReadFile reads file content as bytes
func (p *FakeProvider) ReadFile(filePath string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	full := p.resolve(filePath)
	if err, ok := p.readErrors[full]; ok {
		return nil, err
	}
	content, ok := p.content[full]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", full, fs.ErrNotExist)
	}
	return []byte(content), nil
}

// Exists checks if a file or directory exists
func (p *FakeProvider) Exists(filePath string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	full := p.resolve(filePath)
	_, fileExists := p.content[full]
	return fileExists || p.dirs[full], nil
}

// IsDir checks if a path is a directory
func (p *FakeProvider) IsDir(dirPath string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	full := p.resolve(dirPath)
	if p.dirs[full] {
		return true, nil
	}
	if _, ok := p.content[full]; ok {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", full, fs.ErrNotExist)
}

// GetBasePath returns the base path for this provider
func (p *FakeProvider) GetBasePath() string {
	return p.basePath
}

func (p *FakeProvider) resolve(filePath string) string {
	if strings.HasPrefix(filePath, "/") {
		return path.Clean(filePath)
	}
	if filePath == "" || filePath == "." {
		return p.basePath
	}
	return path.Join(p.basePath, filePath)
}
