package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteSourceModes(t *testing.T) {
	cmd := &cobra.Command{}

	t.Run("returns all modes for empty input", func(t *testing.T) {
		completions, directive := completeSourceModes(cmd, nil, "")
		if len(completions) != 3 {
			t.Errorf("expected 3 completions, got %d", len(completions))
		}
		if directive != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
		}
	})

	t.Run("filters by prefix", func(t *testing.T) {
		completions, _ := completeSourceModes(cmd, nil, "ex")
		if len(completions) != 1 || completions[0] != "explicit_file" {
			t.Errorf("expected [explicit_file], got %v", completions)
		}
	})

	t.Run("returns empty for non-matching prefix", func(t *testing.T) {
		completions, _ := completeSourceModes(cmd, nil, "xyz")
		if len(completions) != 0 {
			t.Errorf("expected 0 completions, got %d", len(completions))
		}
	})
}

func TestCompleteReportFormats(t *testing.T) {
	completions, _ := completeReportFormats(&cobra.Command{}, nil, "p")
	if len(completions) != 1 || completions[0] != "parameters" {
		t.Errorf("expected [parameters], got %v", completions)
	}
}

func TestCompleteImageFiles(t *testing.T) {
	cmd := &cobra.Command{}

	exts, directive := completeImageFiles(cmd, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("expected ShellCompDirectiveFilterFileExt, got %v", directive)
	}
	want := map[string]bool{"png": true, "jpg": true, "jpeg": true, "webp": true}
	if len(exts) != len(want) {
		t.Fatalf("expected %d extensions, got %v", len(want), exts)
	}
	for _, e := range exts {
		if !want[e] {
			t.Errorf("unexpected extension %q", e)
		}
	}

	_, directive = completeImageFiles(cmd, []string{"a.png"}, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("expected no completion after the first arg, got %v", directive)
	}
}
