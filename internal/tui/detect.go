package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the output mode for genmeta.
type Mode int

const (
	// ModePlain is used for pipes, redirected output and CI logs.
	ModePlain Mode = iota
	// ModeStyled is used when a human is reading the terminal.
	ModeStyled
)

// DetectMode determines whether reports should be styled.
//
// Returns ModePlain if:
//   - GENMETA_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdout is not a terminal (piped or redirected output)
//
// Returns ModeStyled otherwise.
func DetectMode() Mode {
	// Check environment overrides first
	if os.Getenv("GENMETA_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}

	// Reports are written to stdout, so only stdout matters here
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModePlain
	}

	return ModeStyled
}

// IsStyled is a convenience function that returns true if output should be styled.
func IsStyled() bool {
	return DetectMode() == ModeStyled
}
