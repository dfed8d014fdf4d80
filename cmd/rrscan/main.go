package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reviewrabbit/rrscan/internal/constants"
	"github.com/reviewrabbit/rrscan/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "rrscan - multi-language code review static analyzer",
		Long: `rrscan analyzes Python, JavaScript, and TypeScript code for security,
quality, and bug-prone patterns, computes per-function and per-file
metrics, and can forward findings to an AI reviewer for suggestions.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitFatal)
	}
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("rrscan version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
