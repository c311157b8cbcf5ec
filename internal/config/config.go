package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Report formats.
const (
	FormatReport     = "report"
	FormatParameters = "parameters"
)

// Config holds the settings of one extraction run.
type Config struct {
	SourceMode     string `yaml:"source_mode"`
	ExplicitPath   string `yaml:"explicit_path,omitempty"`
	OutputDir      string `yaml:"output_dir,omitempty"`
	SaveToFile     bool   `yaml:"save_to_file"`
	OutputPath     string `yaml:"output_path,omitempty"`
	OutputFilename string `yaml:"output_filename,omitempty"`
	IncludeSidecar bool   `yaml:"include_sidecar"`
	Format         string `yaml:"format,omitempty"`
}

const ConfigFileName = "genmeta.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENMETA_"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SourceMode:     string(genmeta.ModeMostRecent),
		OutputFilename: genmeta.DefaultOutputFilename,
		Format:         FormatReport,
	}
}

// Load reads genmeta.yaml from dir on top of the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file on top of the defaults. Keys missing from
// the file keep their default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, genmeta.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Save writes cfg to dir/genmeta.yaml.
func Save(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

// ApplyEnv overrides fields from GENMETA_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s=%q is not a boolean: %w", EnvPrefix, name, v, genmeta.ErrInvalidConfig))
			return
		}
		*dst = b
	}

	str("SOURCE_MODE", &c.SourceMode)
	str("EXPLICIT_PATH", &c.ExplicitPath)
	str("OUTPUT_DIR", &c.OutputDir)
	boolean("SAVE_TO_FILE", &c.SaveToFile)
	str("OUTPUT_PATH", &c.OutputPath)
	str("OUTPUT_FILENAME", &c.OutputFilename)
	boolean("INCLUDE_SIDECAR", &c.IncludeSidecar)
	str("FORMAT", &c.Format)
	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := genmeta.ParseSourceMode(c.SourceMode); err != nil {
		errs = append(errs, err)
	}
	switch c.Format {
	case FormatReport, FormatParameters:
	default:
		errs = append(errs, fmt.Errorf("format %q must be %s or %s: %w", c.Format, FormatReport, FormatParameters, genmeta.ErrInvalidConfig))
	}
	if name := c.OutputFilename; name != "" && (name != filepath.Base(name) || name == "." || name == "..") {
		errs = append(errs, fmt.Errorf("output_filename %q must be a file name without directories: %w", name, genmeta.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Mode returns the parsed source mode.
func (c *Config) Mode() genmeta.SourceMode {
	m, err := genmeta.ParseSourceMode(c.SourceMode)
	if err != nil {
		return genmeta.ModeMostRecent
	}
	return m
}

// ReportDir is where saved reports go: output_path, else the scanned
// output directory, else the working directory.
func (c *Config) ReportDir() string {
	for _, d := range []string{c.OutputPath, c.OutputDir} {
		if strings.TrimSpace(d) != "" {
			return d
		}
	}
	return "."
}
