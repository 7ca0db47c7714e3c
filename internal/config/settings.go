package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"log/slog"

	"github.com/petrarca/repo-analyzer/internal/util"
)

// Settings holds all command line and environment configuration
type Settings struct {
	// Output settings
	ReportFile string // Empty = project config or DefaultReportFile
	Format     string // Summary printed to stdout
	Print      bool   // Render the report on the terminal

	// Scan behavior
	IncludePatterns []string
	ExcludePatterns []string
	Sequential      bool
	NoGitignore     bool
	QualityProvider string // Empty = project config or baseline
	Verbose         bool

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		ReportFile:      "",
		Format:          "text",
		Print:           false,
		IncludePatterns: []string{},
		ExcludePatterns: []string{},
		Sequential:      false,
		NoGitignore:     false,
		QualityProvider: "",
		Verbose:         false,
		LogLevel:        slog.LevelWarn, // Skipped files and missing manifests are warnings
		LogFormat:       "text",
		LogFile:         "", // Empty = stderr
	}
}

// LoadSettings creates settings from defaults and applies environment variable overrides
func LoadSettings() *Settings {
	settings := DefaultSettings()

	if reportFile := os.Getenv("REPO_ANALYZER_REPORT"); reportFile != "" {
		settings.ReportFile = reportFile
	}

	if format := os.Getenv("REPO_ANALYZER_FORMAT"); format != "" {
		settings.Format = format
	}

	if include := os.Getenv("REPO_ANALYZER_INCLUDE"); include != "" {
		settings.IncludePatterns = splitList(include)
	}

	if exclude := os.Getenv("REPO_ANALYZER_EXCLUDE"); exclude != "" {
		settings.ExcludePatterns = splitList(exclude)
	}

	if sequential := os.Getenv("REPO_ANALYZER_SEQUENTIAL"); sequential != "" {
		settings.Sequential = strings.ToLower(sequential) == "true"
	}

	if noGitignore := os.Getenv("REPO_ANALYZER_NO_GITIGNORE"); noGitignore != "" {
		settings.NoGitignore = strings.ToLower(noGitignore) == "true"
	}

	if quality := os.Getenv("REPO_ANALYZER_QUALITY"); quality != "" {
		settings.QualityProvider = quality
	}

	if verbose := os.Getenv("REPO_ANALYZER_VERBOSE"); verbose != "" {
		settings.Verbose = strings.ToLower(verbose) == "true"
	}

	// Logging settings
	if logLevel := os.Getenv("REPO_ANALYZER_LOG_LEVEL"); logLevel != "" {
		if level, err := parseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := os.Getenv("REPO_ANALYZER_LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := os.Getenv("REPO_ANALYZER_LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	return settings
}

// SetLogLevel parses and applies a log level name
func (s *Settings) SetLogLevel(level string) error {
	parsed, err := parseLogLevel(level)
	if err != nil {
		return err
	}
	s.LogLevel = parsed
	return nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger builds the process logger based on settings
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Fallback to stderr if file can't be opened
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{
		Level: s.LogLevel,
	}

	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// Validate checks if settings are valid
func (s *Settings) Validate() error {
	if err := util.ValidateOutputFormat(s.Format); err != nil {
		return err
	}

	switch s.QualityProvider {
	case "", QualityBaseline, QualitySCC:
	default:
		return fmt.Errorf("invalid quality provider %q (valid: %s, %s)", s.QualityProvider, QualityBaseline, QualitySCC)
	}

	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", s.LogFormat)
	}

	return nil
}

func splitList(value string) []string {
	items := strings.Split(value, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
