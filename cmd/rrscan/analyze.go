package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reviewrabbit/rrscan/app"
	"github.com/reviewrabbit/rrscan/domain"
	"github.com/reviewrabbit/rrscan/internal/config"
	"github.com/reviewrabbit/rrscan/service"
)

// analyzeFlags holds the flag values shared by analyze, review, and export
type analyzeFlags struct {
	format          string
	configPath      string
	outputPath      string
	showDetails     bool
	includePatterns []string
	excludePatterns []string
	enabledRules    []string
	maxFiles        int
	noProgress      bool
}

func (f *analyzeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "",
		"Output format: text, json, yaml, markdown, html")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "",
		"Path to config file (default: discovered upward from the target)")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&f.showDetails, "details", false,
		"Include per-file metrics and fix hints in text output")
	cmd.Flags().StringSliceVar(&f.includePatterns, "include", nil,
		"Include glob patterns (overrides config)")
	cmd.Flags().StringSliceVar(&f.excludePatterns, "exclude", nil,
		"Exclude glob patterns (overrides config)")
	cmd.Flags().StringSliceVar(&f.enabledRules, "rules", nil,
		"Rule ids to run (default: all registered rules)")
	cmd.Flags().IntVar(&f.maxFiles, "max-files", 0,
		"Maximum number of files to analyze (overrides config)")
	cmd.Flags().BoolVar(&f.noProgress, "no-progress", false,
		"Disable the progress bar")
}

// loadConfig loads and validates configuration for the given target path
func (f *analyzeFlags) loadConfig(target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(f.configPath, target)
	if err != nil {
		return nil, err
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.showDetails {
		cfg.Output.ShowDetails = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRequest assembles the domain request from flags and config
func (f *analyzeFlags) buildRequest(target string, cfg *config.Config, writer io.Writer) domain.AnalyzeRequest {
	return domain.AnalyzeRequest{
		Path:            target,
		OutputFormat:    domain.OutputFormat(cfg.Output.Format),
		OutputWriter:    writer,
		ShowDetails:     cfg.Output.ShowDetails,
		IncludePatterns: f.includePatterns,
		ExcludePatterns: f.excludePatterns,
		MaxFiles:        f.maxFiles,
		EnabledRules:    f.enabledRules,
		ConfigPath:      f.configPath,
	}
}

// openOutput returns the report writer and a cleanup func
func (f *analyzeFlags) openOutput() (io.Writer, func(), error) {
	if f.outputPath == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(f.outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// progressEnabled reports whether a progress bar should be shown
func (f *analyzeFlags) progressEnabled(cfg *config.Config, toStdout bool) bool {
	if f.noProgress {
		return false
	}
	// Structured output on stdout must stay clean
	if toStdout && cfg.Output.Format != "text" {
		return false
	}
	return service.IsInteractiveEnvironment()
}

func analyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze source files for issues and metrics",
		Long: `Analyze a file or directory tree for security, quality, bug, and
best-practice issues, and compute code metrics.

Examples:
  rrscan analyze src/
  rrscan analyze --format json src/
  rrscan analyze --rules command_injection,sql_injection app.py
  rrscan analyze --details --exclude vendor src/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}

			cfg, err := flags.loadConfig(target)
			if err != nil {
				return err
			}

			writer, closeOutput, err := flags.openOutput()
			if err != nil {
				return err
			}
			defer closeOutput()

			pm := service.NewProgressManager(flags.progressEnabled(cfg, flags.outputPath == ""))
			defer pm.Close()

			analyzer := service.NewAnalyzerService(cfg, pm)
			formatter := service.NewOutputFormatter(cfg.Output.ShowDetails)
			uc := app.NewAnalyzeUseCase(analyzer, formatter)

			_, err = uc.Execute(cmd.Context(), flags.buildRequest(target, cfg, writer))
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
