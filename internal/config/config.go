package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petrarca/repo-analyzer/internal/types"
	"github.com/petrarca/repo-analyzer/internal/validation"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional project configuration at the scan root
const ConfigFileName = ".repo-analyzer.yml"

// DefaultReportFile is written relative to the scan root
const DefaultReportFile = "CODE_ANALYSIS_REPORT.md"

// Quality provider names
const (
	QualityBaseline = "baseline"
	QualitySCC      = "scc"
)

var (
	DefaultIncludePatterns = []string{
		"**/*.{js,jsx,ts,tsx,mjs,cjs}",
		"**/*.{go,py}",
		"**/*.{json,md,css,scss,html,vue,svelte}",
	}

	DefaultExcludePatterns = []string{
		"**/node_modules/**",
		"**/.git/**",
		"**/dist/**",
		"**/build/**",
		"**/coverage/**",
		"**/.next/**",
		"**/vendor/**",
		"**/*.log",
	}

	DefaultSourceExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".go", ".py"}

	DefaultModuleExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

	DefaultEntryPointNames = []string{"index", "main", "app", "server"}

	DefaultEntryPointDirs = []string{"pages", "routes", "app", "api"}

	DefaultManifests = []string{"package.json", "go.mod"}
)

// ProjectConfig represents the .repo-analyzer.yml configuration file
type ProjectConfig struct {
	Include          []string         `yaml:"include,omitempty"`
	Exclude          []string         `yaml:"exclude,omitempty"`
	SourceExtensions []string         `yaml:"source_extensions,omitempty"`
	ModuleExtensions []string         `yaml:"module_extensions,omitempty"`
	EntryPoints      EntryPointConfig `yaml:"entry_points,omitempty"`
	Manifests        []string         `yaml:"manifests,omitempty"`
	Report           ReportConfig     `yaml:"report,omitempty"`
	Quality          QualityConfig    `yaml:"quality,omitempty"`
	Security         SecurityConfig   `yaml:"security,omitempty"`
	Gitignore        *bool            `yaml:"gitignore,omitempty"`
}

// EntryPointConfig overrides the unused-file exemptions
type EntryPointConfig struct {
	Names []string `yaml:"names,omitempty"`
	Dirs  []string `yaml:"dirs,omitempty"`
}

// ReportConfig configures the report artifact
type ReportConfig struct {
	Path string `yaml:"path,omitempty"`
}

// QualityConfig selects and tunes the quality metrics provider
type QualityConfig struct {
	Provider string          `yaml:"provider,omitempty"`
	Baseline *BaselineConfig `yaml:"baseline,omitempty"`
}

// BaselineConfig overrides individual baseline metrics
type BaselineConfig struct {
	Complexity      *float64 `yaml:"complexity,omitempty"`
	Maintainability *float64 `yaml:"maintainability,omitempty"`
	TestCoverage    *float64 `yaml:"test_coverage,omitempty"`
	Documentation   *float64 `yaml:"documentation,omitempty"`
	LintIssues      *int     `yaml:"lint_issues,omitempty"`
}

// SecurityConfig appends custom rules after the built-in ones
type SecurityConfig struct {
	Rules []RuleConfig `yaml:"rules,omitempty"`
}

// RuleConfig is a custom security rule
type RuleConfig struct {
	ID       string `yaml:"id"`
	Pattern  string `yaml:"pattern"`
	Unless   string `yaml:"unless,omitempty"`
	Severity string `yaml:"severity"`
	Issue    string `yaml:"issue"`
	Fix      string `yaml:"fix,omitempty"`
}

// LoadConfig attempts to load .repo-analyzer.yml from the scan root.
// A missing or empty file yields an empty config; an invalid one is an error.
func LoadConfig(scanPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(scanPath, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	return ParseConfig(data)
}

// ParseConfig validates and decodes project configuration content
func ParseConfig(data []byte) (*ProjectConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &ProjectConfig{}, nil
	}

	if err := validation.ValidateYAML(validation.ProjectConfigSchema, data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	return &config, nil
}

// IncludePatterns returns CLI includes, then config includes, then defaults
func (c *ProjectConfig) IncludePatterns(cliIncludes []string) []string {
	if len(cliIncludes) > 0 {
		return cliIncludes
	}
	if c != nil && len(c.Include) > 0 {
		return c.Include
	}
	return DefaultIncludePatterns
}

// MergeExcludes merges default, config and CLI excludes, dropping duplicates
// while keeping first-seen order
func (c *ProjectConfig) MergeExcludes(cliExcludes []string) []string {
	var configExcludes []string
	if c != nil {
		configExcludes = c.Exclude
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(DefaultExcludePatterns)+len(configExcludes)+len(cliExcludes))
	for _, group := range [][]string{DefaultExcludePatterns, configExcludes, cliExcludes} {
		for _, exclude := range group {
			if !seen[exclude] {
				seen[exclude] = true
				result = append(result, exclude)
			}
		}
	}

	return result
}

// ReportPath resolves the absolute report location for a scan root
func (c *ProjectConfig) ReportPath(root, cliReport string) string {
	report := DefaultReportFile
	if c != nil && c.Report.Path != "" {
		report = c.Report.Path
	}
	if cliReport != "" {
		report = cliReport
	}
	if filepath.IsAbs(report) {
		return filepath.Clean(report)
	}
	return filepath.Join(root, report)
}

// QualityProvider returns the provider name with CLI taking precedence
func (c *ProjectConfig) QualityProvider(cliProvider string) string {
	if cliProvider != "" {
		return cliProvider
	}
	if c != nil && c.Quality.Provider != "" {
		return c.Quality.Provider
	}
	return QualityBaseline
}

// UseGitignore reports whether .gitignore files should be honored
func (c *ProjectConfig) UseGitignore(cliDisabled bool) bool {
	if cliDisabled {
		return false
	}
	if c != nil && c.Gitignore != nil {
		return *c.Gitignore
	}
	return true
}

// SourceExts returns the configured or default source extensions
func (c *ProjectConfig) SourceExts() []string {
	if c != nil && len(c.SourceExtensions) > 0 {
		return c.SourceExtensions
	}
	return DefaultSourceExtensions
}

// ModuleExts returns the configured or default module extensions
func (c *ProjectConfig) ModuleExts() []string {
	if c != nil && len(c.ModuleExtensions) > 0 {
		return c.ModuleExtensions
	}
	return DefaultModuleExtensions
}

// EntryPointNames returns the configured or default entry-point base names
func (c *ProjectConfig) EntryPointNames() []string {
	if c != nil && len(c.EntryPoints.Names) > 0 {
		return c.EntryPoints.Names
	}
	return DefaultEntryPointNames
}

// EntryPointDirs returns the configured or default entry directory segments
func (c *ProjectConfig) EntryPointDirs() []string {
	if c != nil && len(c.EntryPoints.Dirs) > 0 {
		return c.EntryPoints.Dirs
	}
	return DefaultEntryPointDirs
}

// ManifestPaths returns manifest paths relative to the scan root
func (c *ProjectConfig) ManifestPaths() []string {
	if c != nil && len(c.Manifests) > 0 {
		return c.Manifests
	}
	return DefaultManifests
}

// SecurityRules returns the custom security rules
func (c *ProjectConfig) SecurityRules() []RuleConfig {
	if c == nil {
		return nil
	}
	return c.Security.Rules
}

// ApplyBaseline overlays configured baseline values onto defaults
func (c *ProjectConfig) ApplyBaseline(metrics types.QualityMetrics) types.QualityMetrics {
	if c == nil || c.Quality.Baseline == nil {
		return metrics
	}
	b := c.Quality.Baseline
	if b.Complexity != nil {
		metrics.Complexity = *b.Complexity
	}
	if b.Maintainability != nil {
		metrics.Maintainability = *b.Maintainability
	}
	if b.TestCoverage != nil {
		metrics.TestCoverage = *b.TestCoverage
	}
	if b.Documentation != nil {
		metrics.Documentation = *b.Documentation
	}
	if b.LintIssues != nil {
		metrics.LintIssues = *b.LintIssues
	}
	return metrics
}
