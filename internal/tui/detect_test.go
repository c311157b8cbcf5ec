package tui

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GENMETA_PLAIN", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
}

func TestDetectMode_GENMETA_PLAIN(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENMETA_PLAIN", "1")

	if got := DetectMode(); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_CI(t *testing.T) {
	clearEnv(t)
	t.Setenv("CI", "true")

	if got := DetectMode(); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NO_COLOR(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")

	if got := DetectMode(); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain", got)
	}
}

func TestDetectMode_NoTerminal(t *testing.T) {
	// In test context, stdout is not a terminal
	clearEnv(t)

	if got := DetectMode(); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain (no terminal in test)", got)
	}
}

func TestIsStyled_ReturnsFalseInTests(t *testing.T) {
	clearEnv(t)

	if IsStyled() {
		t.Error("IsStyled() = true in test environment, want false")
	}
}

func TestDetectMode_GENMETA_PLAIN_WrongValue(t *testing.T) {
	// Only "1" forces plain output, not "true" or "yes"
	clearEnv(t)
	t.Setenv("GENMETA_PLAIN", "true")

	// Falls through to terminal check (which returns plain in tests)
	if got := DetectMode(); got != ModePlain {
		t.Errorf("DetectMode() = %d, want ModePlain (no terminal)", got)
	}
}
