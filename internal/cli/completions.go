package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/genmeta/internal/config"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// reportFormats contains valid --format values for shell completion.
var reportFormats = []string{config.FormatReport, config.FormatParameters}

func matching(values []string, toComplete string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, toComplete) {
			matches = append(matches, v)
		}
	}
	return matches
}

// completeSourceModes provides shell completion for --mode.
func completeSourceModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	modes := make([]string, 0, len(genmeta.SourceModes))
	for _, m := range genmeta.SourceModes {
		modes = append(modes, string(m))
	}
	return matching(modes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeReportFormats provides shell completion for --format.
func completeReportFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matching(reportFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeImageFiles limits positional completion to supported images.
func completeImageFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	exts := make([]string, 0, len(genmeta.SupportedImageExtensions))
	for _, e := range genmeta.SupportedImageExtensions {
		exts = append(exts, strings.TrimPrefix(e, "."))
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Let the shell handle directory completion
	return nil, cobra.ShellCompDirectiveFilterDirs
}
