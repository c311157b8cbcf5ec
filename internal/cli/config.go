package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/genmeta/internal/config"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage genmeta.yaml",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a genmeta.yaml with the default settings",
	Long: `Writes genmeta.yaml with every setting at its default, ready to edit.

An existing file is left alone unless --force is given.

Examples:
  # Create config in current directory
  genmeta config init

  # Point most_recent at ComfyUI's output folder
  genmeta config init --output-dir ~/ComfyUI/output`,
	Args:              OptionalPath("path", "./my-project"),
	ValidArgsFunction: completeDirectories,
	RunE:              runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings genmeta would use here",
	Long: `Prints the resolved settings as YAML after applying genmeta.yaml,
.env and GENMETA_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

type configFlagValues struct {
	force      bool
	outputDir  string
	configPath string
}

var configFlags configFlagValues

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configFlags.force, "force", false, "Overwrite an existing genmeta.yaml")
	configInitCmd.Flags().StringVar(&configFlags.outputDir, "output-dir", "", "Output directory to record in the file")
	_ = configInitCmd.RegisterFlagCompletionFunc("output-dir", completeDirectories)

	configShowCmd.Flags().StringVar(&configFlags.configPath, "config", "",
		"Path to a genmeta.yaml (default: ./genmeta.yaml when present)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	info, err := os.Stat(targetDir)
	if err != nil || !info.IsDir() {
		return &genmeta.SourceError{
			Path:    targetDir,
			Message: "target directory does not exist",
			Err:     genmeta.ErrNotFound,
		}
	}

	// Check if config already exists
	if _, err := config.Load(targetDir); !errors.Is(err, config.ErrConfigNotFound) && !configFlags.force {
		return fmt.Errorf("%s already exists in %s: %w\n\nHint: Use --force to overwrite it.",
			config.ConfigFileName, targetDir, genmeta.ErrInvalidConfig)
	}

	cfg := config.Default()
	cfg.OutputDir = configFlags.outputDir
	if err := config.Save(targetDir, cfg); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ConfigFileName, errors.Join(genmeta.ErrWrite, err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(targetDir, config.ConfigFileName))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, configFlags.configPath, nil)
	if err != nil {
		return err
	}
	return writeYAML(cmd.OutOrStdout(), cfg)
}

func writeYAML(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return enc.Close()
}
