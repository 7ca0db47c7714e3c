package provider

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/types"
)

// FSProvider implements the Provider interface for local file systems
type FSProvider struct {
	rootPath string
}

// NewFSProvider creates a new file system provider
func NewFSProvider(rootPath string) *FSProvider {
	return &FSProvider{
		rootPath: strings.TrimSuffix(rootPath, string(filepath.Separator)),
	}
}

// ListDir returns the contents of a directory
func (p *FSProvider) ListDir(path string) ([]types.File, error) {
	fullPath := p.getFullPath(path)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	files := make([]types.File, 0, len(entries))

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue // Entry vanished between ReadDir and Info
		}

		// Symlinks are not followed
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		files = append(files, toFile(filepath.Join(fullPath, entry.Name()), info))
	}

	return files, nil
}

// Stat returns the entry for a single path
func (p *FSProvider) Stat(path string) (types.File, error) {
	fullPath := p.getFullPath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return types.File{}, err
	}
	return toFile(fullPath, info), nil
}

// ReadFile reads file content as bytes
func (p *FSProvider) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(p.getFullPath(path))
}

// Exists checks if a file or directory exists
func (p *FSProvider) Exists(path string) (bool, error) {
	_, err := os.Stat(p.getFullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir checks if a path is a directory
func (p *FSProvider) IsDir(path string) (bool, error) {
	info, err := os.Stat(p.getFullPath(path))
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// getFullPath converts a relative path to an absolute path
func (p *FSProvider) getFullPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	if path == "." || path == "" {
		return p.rootPath
	}

	return filepath.Join(p.rootPath, path)
}

// GetBasePath returns the base path for this provider
func (p *FSProvider) GetBasePath() string {
	return p.rootPath
}

func toFile(path string, info os.FileInfo) types.File {
	fileType := "file"
	if info.IsDir() {
		fileType = "dir"
	}
	return types.File{
		Name:     info.Name(),
		Path:     path,
		Type:     fileType,
		Size:     info.Size(),
		Modified: info.ModTime().Unix(),
	}
}
