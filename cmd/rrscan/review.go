package main

import (
	"github.com/spf13/cobra"

	"github.com/reviewrabbit/rrscan/app"
	"github.com/reviewrabbit/rrscan/service"
)

func reviewCmd() *cobra.Command {
	flags := &analyzeFlags{}
	var aiModel string
	var aiBaseURL string

	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "Analyze source files and request AI review suggestions",
		Long: `Run the full static analysis and then ask the configured AI
reviewer for per-file scores and suggestions. When the reviewer is
unreachable or unconfigured, the static results are still reported and
each review is marked unavailable.

Examples:
  rrscan review src/
  rrscan review --format json --output report.json src/
  rrscan review --model gpt-4o src/`,
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
			// The review command implies the AI collaborator
			cfg.AI.Enabled = true
			if aiModel != "" {
				cfg.AI.Model = aiModel
			}
			if aiBaseURL != "" {
				cfg.AI.BaseURL = aiBaseURL
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
			reviewer := service.NewReviewService(cfg.AI)
			uc := app.NewReviewUseCase(app.NewAnalyzeUseCase(analyzer, formatter), reviewer, cfg.AI.MaxFilesPerReview)

			_, err = uc.Execute(cmd.Context(), flags.buildRequest(target, cfg, writer))
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&aiModel, "model", "", "AI model name (overrides config)")
	cmd.Flags().StringVar(&aiBaseURL, "base-url", "", "AI service base URL (overrides config)")
	return cmd
}
