package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/genmeta/internal/checksum"
	"github.com/vvka-141/genmeta/internal/config"
	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/locate"
	"github.com/vvka-141/genmeta/internal/logging"
	"github.com/vvka-141/genmeta/internal/report"
	"github.com/vvka-141/genmeta/internal/services"
	"github.com/vvka-141/genmeta/internal/tui"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image_path]",
	Short: "Print the generation metadata of one image",
	Long: `Extract reads the metadata of one image and prints a report.

The image is chosen by source mode:
  most_recent    newest .png/.jpg/.jpeg/.webp under the output directory (default)
  explicit_file  the image given as argument or explicit_path
  direct_input   a JSON payload on stdin: {"metadata": {...}, "width": W, "height": H}

Passing an image path implies explicit_file unless --mode says otherwise.

Settings come from flags, then GENMETA_* environment variables (a .env file
in the working directory is loaded first), then genmeta.yaml, then defaults.

Examples:
  # Newest image in the ComfyUI output folder
  genmeta extract --output-dir ~/ComfyUI/output

  # A specific image, as JSON
  genmeta extract ./ComfyUI_00042_.png --json

  # Re-encode as A1111 parameters text and save it next to the outputs
  genmeta extract ./img.png --format parameters --save --output-filename img.txt`,
	Args:              OptionalPath("image_path", "./ComfyUI_00042_.png"),
	ValidArgsFunction: completeImageFiles,
	RunE:              runExtract,
}

type extractFlagValues struct {
	mode, outputDir, outputPath, outputFilename string
	format, configPath                          string
	save, includeSidecar, json                  bool
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	f := extractCmd.Flags()
	f.StringVar(&extractFlags.mode, "mode", "",
		"Source mode: most_recent|explicit_file|direct_input\n"+
			"Precedence: --mode > $GENMETA_SOURCE_MODE > genmeta.yaml > most_recent")
	f.StringVar(&extractFlags.outputDir, "output-dir", "",
		"Directory scanned by most_recent (recursively)")
	f.BoolVar(&extractFlags.save, "save", false,
		"Also write the report to --output-path/--output-filename")
	f.StringVar(&extractFlags.outputPath, "output-path", "",
		"Directory for saved reports (default: the output directory, else .)")
	f.StringVar(&extractFlags.outputFilename, "output-filename", "",
		"File name for saved reports (default: "+genmeta.DefaultOutputFilename+")")
	f.BoolVar(&extractFlags.json, "json", false,
		"Print {id, source, digest, encodings, record} as JSON instead of the report")
	f.StringVar(&extractFlags.format, "format", "",
		"Report format: report|parameters (default: report)")
	f.BoolVar(&extractFlags.includeSidecar, "include-sidecar", false,
		"Read sidecar files even when the image embeds metadata")
	f.StringVar(&extractFlags.configPath, "config", "",
		"Path to a genmeta.yaml (default: ./genmeta.yaml when present)")

	_ = extractCmd.RegisterFlagCompletionFunc("mode", completeSourceModes)
	_ = extractCmd.RegisterFlagCompletionFunc("format", completeReportFormats)
	_ = extractCmd.RegisterFlagCompletionFunc("output-dir", completeDirectories)
	_ = extractCmd.RegisterFlagCompletionFunc("output-path", completeDirectories)
}

// applyExtractFlags layers explicitly set flags and the positional path
// over cfg.
func applyExtractFlags(cmd *cobra.Command, args []string) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if len(args) == 1 {
			cfg.ExplicitPath = args[0]
			if !flags.Changed("mode") {
				cfg.SourceMode = string(genmeta.ModeExplicitFile)
			}
		}
		if flags.Changed("mode") {
			cfg.SourceMode = extractFlags.mode
		}
		if flags.Changed("output-dir") {
			cfg.OutputDir = extractFlags.outputDir
		}
		if flags.Changed("save") {
			cfg.SaveToFile = extractFlags.save
		}
		if flags.Changed("output-path") {
			cfg.OutputPath = extractFlags.outputPath
		}
		if flags.Changed("output-filename") {
			cfg.OutputFilename = extractFlags.outputFilename
		}
		if flags.Changed("format") {
			cfg.Format = extractFlags.format
		}
		if flags.Changed("include-sidecar") {
			cfg.IncludeSidecar = extractFlags.includeSidecar
		}
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := loadSettings(cmd, extractFlags.configPath, applyExtractFlags(cmd, args))
	if err != nil {
		return err
	}

	req := locate.Request{
		Mode:           cfg.Mode(),
		Path:           cfg.ExplicitPath,
		Dir:            cfg.OutputDir,
		IncludeSidecar: cfg.IncludeSidecar,
	}
	if req.Mode == genmeta.ModeDirectInput {
		payload, err := readPayload(cmd.InOrStdin())
		if err != nil {
			return err
		}
		req.Payload = payload
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)
	fs := filesystem.NewOSFileSystem()
	svc := services.NewExtractionService(fs, checksum.New(), logger)

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := svc.Extract(ctx, req)
	if err != nil {
		return err
	}
	if res.Source.ImagePath != "" {
		logger.Verbose("Extraction %s from %s", res.ID, res.Source.ImagePath)
	}

	text := res.Report
	if cfg.Format == config.FormatParameters {
		text = report.FormatParameters(res.Record)
	}

	out := cmd.OutOrStdout()
	switch {
	case extractFlags.json:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case cfg.Format == config.FormatReport && tui.IsStyled():
		fmt.Fprintln(out, report.Styled(res.Record))
	default:
		fmt.Fprintln(out, text)
	}

	if cfg.SaveToFile {
		path, err := report.Save(fs, cfg.ReportDir(), cfg.OutputFilename, text+"\n")
		if err != nil {
			return err
		}
		logger.Info("Report saved to %s", path)
	}
	return nil
}

// readPayload decodes a direct_input payload.
func readPayload(r io.Reader) (*genmeta.Payload, error) {
	var p genmeta.Payload
	dec := json.NewDecoder(io.LimitReader(r, genmeta.MaxMetadataSize))
	if err := dec.Decode(&p); err != nil {
		if err == io.EOF {
			return &p, nil
		}
		return nil, &genmeta.SourceError{
			Message: "direct input is not a JSON payload",
			Hint:    `Pipe an object like {"metadata": {"parameters": "..."}, "width": 512, "height": 768}.`,
			Err:     fmt.Errorf("%w: %v", genmeta.ErrUnsupportedFormat, err),
		}
	}
	return &p, nil
}
