package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/genmeta/internal/config"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// loadSettings resolves settings with precedence
// flags > GENMETA_* env (.env included) > genmeta.yaml > defaults.
// An explicit --config file must exist; the implicit ./genmeta.yaml may not.
func loadSettings(cmd *cobra.Command, configPath string, apply func(*config.Config)) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := loadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if apply != nil {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		logSettingsVerbose(cmd, cfg)
	}
	return cfg, nil
}

// loadProjectConfig loads genmeta.yaml. Returns the defaults if the
// implicit file does not exist (not an error).
func loadProjectConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFile(configPath)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, &genmeta.SourceError{
				Path:    configPath,
				Message: "config file does not exist",
				Hint:    "Create one with 'genmeta config init', or drop --config to use defaults.",
				Err:     genmeta.ErrInvalidConfig,
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			def := config.Default()
			return &def, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return cfg, nil
}

// logSettingsVerbose logs the resolved settings when verbose mode is enabled.
func logSettingsVerbose(cmd *cobra.Command, cfg *config.Config) {
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "[VERBOSE] Settings resolved:\n")
	fmt.Fprintf(w, "  Source Mode: %s\n", cfg.SourceMode)
	if cfg.ExplicitPath != "" {
		fmt.Fprintf(w, "  Explicit Path: %s\n", cfg.ExplicitPath)
	}
	if cfg.OutputDir != "" {
		fmt.Fprintf(w, "  Output Dir: %s\n", cfg.OutputDir)
	}
	fmt.Fprintf(w, "  Include Sidecar: %t\n", cfg.IncludeSidecar)
	fmt.Fprintf(w, "  Format: %s\n", cfg.Format)
	if cfg.SaveToFile {
		fmt.Fprintf(w, "  Save To: %s/%s\n", cfg.ReportDir(), cfg.OutputFilename)
	}
}
