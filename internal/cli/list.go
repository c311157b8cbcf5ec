package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vvka-141/genmeta/internal/checksum"
	"github.com/vvka-141/genmeta/internal/config"
	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/logging"
	"github.com/vvka-141/genmeta/internal/report"
	"github.com/vvka-141/genmeta/internal/services"
	"github.com/vvka-141/genmeta/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "Summarise the metadata of every image in a directory",
	Long: `List extracts every supported image under a directory (recursively) and
prints one table row per image, oldest first: file, metadata encodings
found, model, seed, steps and LoRA count.

Without an argument the configured output directory is listed.

Examples:
  genmeta list ~/ComfyUI/output
  genmeta list --include-sidecar`,
	Args:              OptionalPath("dir", "~/ComfyUI/output"),
	ValidArgsFunction: completeDirectories,
	RunE:              runList,
}

type listFlagValues struct {
	includeSidecar bool
	configPath     string
}

var listFlags listFlagValues

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listFlags.includeSidecar, "include-sidecar", false,
		"Read sidecar files even when the image embeds metadata")
	listCmd.Flags().StringVar(&listFlags.configPath, "config", "",
		"Path to a genmeta.yaml (default: ./genmeta.yaml when present)")
}

func runList(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := loadSettings(cmd, listFlags.configPath, func(c *config.Config) {
		if len(args) == 1 {
			c.OutputDir = args[0]
		}
		if cmd.Flags().Changed("include-sidecar") {
			c.IncludeSidecar = listFlags.includeSidecar
		}
	})
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), verbose)
	svc := services.NewExtractionService(filesystem.NewOSFileSystem(), checksum.New(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rows []report.SummaryRow
	err = tui.RunWithProgress(cmd.ErrOrStderr(), "Reading images in "+cfg.OutputDir, func() error {
		var scanErr error
		rows, scanErr = svc.Summarize(ctx, cfg.OutputDir, cfg.IncludeSidecar)
		return scanErr
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Table(rows))
	logger.Verbose("Listed %d image(s)", len(rows))
	return nil
}
