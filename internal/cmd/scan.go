package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/petrarca/repo-analyzer/internal/config"
	"github.com/petrarca/repo-analyzer/internal/report"
	"github.com/petrarca/repo-analyzer/internal/scanner"
	"github.com/petrarca/repo-analyzer/internal/util"
	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	settings := loadScanSettings()

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a source tree and write the analysis report",
		Long: `Scan a directory and write a Markdown analysis report.

The report lists unused files, duplicate files, unused dependencies, security
findings, quality metrics and recommendations. A short summary is printed to
stdout in the selected format.

Examples:
  repo-analyzer scan
  repo-analyzer scan /path/to/project
  repo-analyzer scan --output reports/analysis.md --format json
  repo-analyzer scan --exclude "fixtures/**" --sequential
  repo-analyzer scan --quality scc --print`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, settings)
		},
	}
	addScanFlags(scanCmd, settings)

	return scanCmd
}

// loadScanSettings returns defaults with environment overrides applied
func loadScanSettings() *config.Settings {
	return config.LoadSettings()
}

// addScanFlags binds the scan flags to settings; environment values become the flag defaults
func addScanFlags(cmd *cobra.Command, settings *config.Settings) {
	cmd.Flags().StringVarP(&settings.ReportFile, "output", "o", settings.ReportFile, "Report file path (default: CODE_ANALYSIS_REPORT.md at the scan root)")
	cmd.Flags().StringVarP(&settings.Format, "format", "f", settings.Format, "Summary format: "+strings.Join(util.GetValidFormats(), ", "))
	cmd.Flags().BoolVar(&settings.Print, "print", settings.Print, "Render the report on the terminal after writing it")

	cmd.Flags().StringSliceVar(&settings.IncludePatterns, "include", settings.IncludePatterns, "Glob patterns of files to analyze (default: "+strings.Join(config.DefaultIncludePatterns, ", ")+")")
	cmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (supports glob patterns, can be specified multiple times)")
	cmd.Flags().BoolVar(&settings.Sequential, "sequential", settings.Sequential, "Run the analysis stages one after another")
	cmd.Flags().BoolVar(&settings.NoGitignore, "no-gitignore", settings.NoGitignore, "Do not apply .gitignore files")
	cmd.Flags().StringVar(&settings.QualityProvider, "quality", settings.QualityProvider, "Quality metrics provider: baseline or scc")
	cmd.Flags().BoolVarP(&settings.Verbose, "verbose", "v", settings.Verbose, "Show progress on stderr")

	cmd.Flags().String("log-level", strings.ToLower(settings.LogLevel.String()), "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&settings.LogFormat, "log-format", settings.LogFormat, "Log format: text or json")
	cmd.Flags().StringVar(&settings.LogFile, "log-file", settings.LogFile, "Log file path (default: stderr)")
}

// configureLogging applies the log level flag and builds the logger
func configureLogging(cmd *cobra.Command, settings *config.Settings) (*slog.Logger, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	if err := settings.SetLogLevel(logLevel); err != nil {
		return nil, err
	}
	return settings.ConfigureLogger(), nil
}

// resolveScanPath returns the absolute scan root; the current directory when no path is given
func resolveScanPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = strings.TrimSpace(args[0])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	return absPath, nil
}

func trimPatterns(patterns []string) []string {
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			result = append(result, pattern)
		}
	}
	return result
}

func runScan(cmd *cobra.Command, args []string, settings *config.Settings) error {
	settings.Format = util.NormalizeFormat(settings.Format)
	settings.IncludePatterns = trimPatterns(settings.IncludePatterns)
	settings.ExcludePatterns = trimPatterns(settings.ExcludePatterns)

	logger, err := configureLogging(cmd, settings)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	absPath, err := resolveScanPath(args)
	if err != nil {
		return err
	}

	project, err := config.LoadConfig(absPath)
	if err != nil {
		return err
	}

	s, err := scanner.NewWithSettings(absPath, settings, project, logger)
	if err != nil {
		return err
	}

	logger.Info("Scanning", "path", absPath, "parallel", s.Parallel(), "quality", s.QualityProviderName(), "rules", len(s.Rules()))

	result, meta, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stderr, "Report written to %s\n", meta.ReportPath)

	if settings.Print {
		content, err := os.ReadFile(meta.ReportPath)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
		rendered, err := report.RenderTerminal(string(content), report.DefaultWrap)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, rendered)
		return err
	}

	if settings.Format == "markdown" {
		return report.Render(stdout, result, meta)
	}

	return Output(stdout, &ScanSummary{Result: result, Metadata: meta, Styled: isTerminal(stdout)}, settings.Format)
}
