package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/reviewrabbit/rrscan/internal/config"
	"github.com/reviewrabbit/rrscan/internal/constants"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an rrscan configuration file",
		Long: `Generate a documented rrscan configuration file with sensible defaults.

By default, creates rrscan.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create rrscan.yaml in current directory
  rrscan init

  # Custom output path
  rrscan init --config custom.yaml

  # Overwrite existing file
  rrscan init --force

  # Generate smaller config with essential options only
  rrscan init --minimal

  # Interactive setup wizard
  rrscan init --interactive
  rrscan init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	projectType := config.ProjectTypeGeneric
	strictness := config.StrictnessStandard

	if interactive {
		var err error
		projectType, strictness, configPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(projectType, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'rrscan analyze .' to analyze your project.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.ProjectType, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("rrscan Configuration Setup")
	fmt.Println("==========================")
	fmt.Println()

	projectTypes := []struct {
		Label string
		Value config.ProjectType
	}{
		{"Generic (Python + JavaScript/TypeScript)", config.ProjectTypeGeneric},
		{"Python", config.ProjectTypePython},
		{"Node.js / frontend", config.ProjectTypeNode},
	}

	selectTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }}",
		Inactive: "   {{ .Label | white }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	projectPrompt := promptui.Select{
		Label:     "What type of project is this?",
		Items:     projectTypes,
		Templates: selectTemplates,
	}
	projectIdx, _, err := projectPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("setup cancelled: %w", err)
	}

	strictnessLevels := []struct {
		Label string
		Value config.Strictness
	}{
		{"Relaxed - fewer findings, generous thresholds", config.StrictnessRelaxed},
		{"Standard - balanced defaults", config.StrictnessStandard},
		{"Strict - tight thresholds for new code", config.StrictnessStrict},
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the analysis be?",
		Items:     strictnessLevels,
		Templates: selectTemplates,
	}
	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("setup cancelled: %w", err)
	}

	pathPrompt := promptui.Prompt{
		Label:   "Config file path",
		Default: defaultConfigPath,
	}
	configPath, err := pathPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("setup cancelled: %w", err)
	}

	fmt.Println()
	return projectTypes[projectIdx].Value, strictnessLevels[strictnessIdx].Value, configPath, nil
}
