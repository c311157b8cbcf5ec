package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// SummaryRow is one image in a directory listing.
type SummaryRow struct {
	File     string
	Encoding string
	Record   genmeta.Record
}

var summaryHeaders = table.Row{"File", "Encoding", "Model", "Seed", "Steps", "LoRAs"}

// Table renders rows as a rounded table. Numeric columns are right-aligned.
func Table(rows []SummaryRow) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(summaryHeaders)

	for _, r := range rows {
		rec := r.Record
		tw.AppendRow(table.Row{
			r.File,
			r.Encoding,
			show(rec.ModelName, plainPainter, func(s string) string { return s }),
			show(rec.Seed, plainPainter, func(v uint64) string { return strconv.FormatUint(v, 10) }),
			show(rec.Steps, plainPainter, strconv.Itoa),
			strconv.Itoa(len(rec.Loras)),
		})
	}

	configs := make([]table.ColumnConfig, 0, len(summaryHeaders))
	for i := range summaryHeaders {
		align := text.AlignLeft
		if i >= 3 {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
