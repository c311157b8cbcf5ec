package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const banner = `genmeta - generation metadata for AI images`

var rootCmd = &cobra.Command{
	Use:   "genmeta",
	Short: "Recover generation metadata from AI-generated images",
	Long: banner + `

genmeta reads the metadata that image generators leave behind (embedded
workflow graphs, "parameters" text blocks, sidecar .json/.txt files),
reconciles them into one record, and prints a readable report.

Sources, most authoritative first:
  1. PNG text chunks (prompt, workflow, parameters, Description, Comment)
  2. Sidecar files next to the image (<name>.json, <name>.txt)
  3. Pixel dimensions of the image itself (resolution only)

Exit Codes:
  0  - Success (also when an image carries no metadata)
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  20 - Image or output directory not found
  21 - Unsupported image type
  22 - Report could not be written`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for genmeta")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
