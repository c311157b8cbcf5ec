package cli

import (
	"context"
	"encoding/json"
	"fmt"
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
	"github.com/vvka-141/genmeta/internal/watch"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Print a report for every new image written to a directory",
	Long: `Watch follows the output directory (and its subdirectories) and prints
a report each time a generator finishes writing an image. Stop with Ctrl+C.

With --save every report also overwrites the configured report file, so it
always describes the latest image.

Examples:
  genmeta watch ~/ComfyUI/output
  genmeta watch --format parameters --save --output-filename last.txt`,
	Args:              OptionalPath("dir", "~/ComfyUI/output"),
	ValidArgsFunction: completeDirectories,
	RunE:              runWatch,
}

type watchFlagValues struct {
	format, configPath         string
	outputPath, outputFilename string
	save, includeSidecar, json bool
}

var watchFlags watchFlagValues

func init() {
	rootCmd.AddCommand(watchCmd)

	f := watchCmd.Flags()
	f.StringVar(&watchFlags.format, "format", "", "Report format: report|parameters (default: report)")
	f.BoolVar(&watchFlags.save, "save", false, "Also write each report to the configured report file")
	f.StringVar(&watchFlags.outputPath, "output-path", "",
		"Directory for saved reports (default: the watched directory)")
	f.StringVar(&watchFlags.outputFilename, "output-filename", "",
		"File name for saved reports (default: "+genmeta.DefaultOutputFilename+")")
	f.BoolVar(&watchFlags.includeSidecar, "include-sidecar", false,
		"Read sidecar files even when the image embeds metadata")
	f.BoolVar(&watchFlags.json, "json", false, "Print one JSON object per image")
	f.StringVar(&watchFlags.configPath, "config", "",
		"Path to a genmeta.yaml (default: ./genmeta.yaml when present)")

	_ = watchCmd.RegisterFlagCompletionFunc("format", completeReportFormats)
	_ = watchCmd.RegisterFlagCompletionFunc("output-path", completeDirectories)
}

// watchContext is replaced in tests to stop the loop.
var watchContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := loadSettings(cmd, watchFlags.configPath, func(c *config.Config) {
		flags := cmd.Flags()
		if len(args) == 1 {
			c.OutputDir = args[0]
		}
		if flags.Changed("format") {
			c.Format = watchFlags.format
		}
		if flags.Changed("save") {
			c.SaveToFile = watchFlags.save
		}
		if flags.Changed("output-path") {
			c.OutputPath = watchFlags.outputPath
		}
		if flags.Changed("output-filename") {
			c.OutputFilename = watchFlags.outputFilename
		}
		if flags.Changed("include-sidecar") {
			c.IncludeSidecar = watchFlags.includeSidecar
		}
	})
	if err != nil {
		return err
	}
	if cfg.OutputDir == "" {
		return &genmeta.SourceError{
			Message: "no output directory to watch",
			Hint:    "Pass a directory, or set output_dir in genmeta.yaml or GENMETA_OUTPUT_DIR.",
			Err:     genmeta.ErrNotFound,
		}
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)
	fs := filesystem.NewOSFileSystem()
	svc := services.NewExtractionService(fs, checksum.New(), logger)

	w, err := watch.New(cfg.OutputDir, watch.DefaultSettle, logger)
	if err != nil {
		return err
	}

	ctx, stop := watchContext()
	defer stop()

	logger.Info("Watching %s for new images (Ctrl+C to stop)", cfg.OutputDir)
	out := cmd.OutOrStdout()
	return w.Run(ctx, func(path string) {
		res, err := svc.Extract(ctx, locate.Request{
			Mode:           genmeta.ModeExplicitFile,
			Path:           path,
			IncludeSidecar: cfg.IncludeSidecar,
		})
		if err != nil {
			logger.Error("%v", err)
			return
		}

		text := res.Report
		if cfg.Format == config.FormatParameters {
			text = report.FormatParameters(res.Record)
		}
		if watchFlags.json {
			data, err := json.Marshal(res)
			if err != nil {
				logger.Error("failed to marshal JSON: %v", err)
				return
			}
			fmt.Fprintln(out, string(data))
		} else {
			fmt.Fprintf(out, "==> %s\n%s\n\n", path, text)
		}

		if cfg.SaveToFile {
			saved, err := report.Save(fs, cfg.ReportDir(), cfg.OutputFilename, text+"\n")
			if err != nil {
				logger.Error("%v", err)
				return
			}
			logger.Verbose("Report saved to %s", saved)
		}
	})
}
