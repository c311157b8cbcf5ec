package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/genmeta/internal/tui"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

func renderWith(s lipgloss.Style) func(string) string {
	return func(v string) string { return s.Render(v) }
}

var styledPainter = painter{
	header:      renderWith(tui.HeaderStyle),
	section:     renderWith(tui.SectionStyle),
	label:       renderWith(tui.LabelStyle),
	placeholder: renderWith(tui.PlaceholderStyle),
	heuristic:   renderWith(tui.HeuristicStyle),
}

// Styled renders the report with terminal colours. Lines and wording match
// Format; lipgloss drops the colours when the output cannot show them.
func Styled(rec genmeta.Record) string {
	if rec.IsEmpty() {
		return tui.HintStyle.Render(genmeta.NoMetadataMessage)
	}
	return render(rec, styledPainter)
}
