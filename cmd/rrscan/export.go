package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reviewrabbit/rrscan/app"
	"github.com/reviewrabbit/rrscan/service"
)

// formatForPath maps a report file extension to an output format
func formatForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	case ".md", ".markdown":
		return "markdown", true
	case ".html", ".htm":
		return "html", true
	case ".txt":
		return "text", true
	}
	return "", false
}

func exportCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Analyze and write a report file",
		Long: `Analyze a file or directory tree and write the report to a file.
The format is inferred from the output file extension unless --format is
given explicitly.

Examples:
  rrscan export --output report.html src/
  rrscan export --output report.json src/
  rrscan export --output findings.md --details src/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			if flags.outputPath == "" {
				flags.outputPath = "rrscan-report.html"
			}
			if flags.format == "" {
				format, ok := formatForPath(flags.outputPath)
				if !ok {
					return fmt.Errorf("cannot infer format from %s, use --format", flags.outputPath)
				}
				flags.format = format
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

			pm := service.NewProgressManager(flags.progressEnabled(cfg, false))
			defer pm.Close()

			analyzer := service.NewAnalyzerService(cfg, pm)
			formatter := service.NewOutputFormatter(cfg.Output.ShowDetails)
			uc := app.NewAnalyzeUseCase(analyzer, formatter)

			result, err := uc.Execute(cmd.Context(), flags.buildRequest(target, cfg, writer))
			if err != nil {
				return err
			}

			fmt.Printf("Wrote %s (%d files, %d issues)\n",
				flags.outputPath, result.Summary.FilesAnalyzed, result.Summary.TotalIssues)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
