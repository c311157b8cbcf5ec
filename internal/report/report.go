package report

import (
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

const (
	Header       = "--- Generation Metadata Report ---"
	OtherHeader  = "--- Other Parameters ---"
	promptIndent = "  "
)

// painter decorates the pieces of a report line.
type painter struct {
	header      func(string) string
	section     func(string) string
	label       func(string) string
	placeholder func(string) string
	// heuristic marks labels of values a fallback rule attributed
	heuristic func(string) string
}

func plain(s string) string { return s }

var plainPainter = painter{header: plain, section: plain, label: plain, placeholder: plain, heuristic: plain}

// Format renders rec as the plain-text report. A record without any
// metadata renders as NoMetadataMessage alone.
func Format(rec genmeta.Record) string {
	return render(rec, plainPainter)
}

func render(rec genmeta.Record, p painter) string {
	if rec.IsEmpty() {
		return genmeta.NoMetadataMessage
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	kv := func(label, value string) {
		line(p.label(label+":") + " " + value)
	}
	text := func(f genmeta.Field[string]) string { return show(f, p, func(s string) string { return s }) }

	line(p.header(Header))
	kv("Model", text(rec.ModelName))
	kv("Resolution", resolution(rec, p))
	kv("Sampler", text(rec.SamplerName))
	kv("Scheduler", text(rec.SchedulerName))
	kv("Seed", show(rec.Seed, p, func(v uint64) string { return strconv.FormatUint(v, 10) }))
	kv("Steps", show(rec.Steps, p, strconv.Itoa))
	kv("CFG Scale", show(rec.CFGScale, p, formatFloat))
	kv("Denoise", show(rec.Denoise, p, formatFloat))

	if len(rec.Loras) == 0 {
		kv("LoRAs", p.placeholder(genmeta.PlaceholderAbsent))
	} else {
		line(p.label("LoRAs:"))
		for _, l := range rec.Loras {
			line("  - " + FormatLora(l))
		}
	}

	line("")
	promptLabel := func(label, field string) string {
		if rec.Provenance[field].Heuristic != "" {
			return p.heuristic(label)
		}
		return p.label(label)
	}
	line(promptLabel("Positive Prompt:", genmeta.FieldPositivePrompt))
	line(indent(text(rec.PositivePrompt)))
	line("")
	line(promptLabel("Negative Prompt:", genmeta.FieldNegativePrompt))
	line(indent(text(rec.NegativePrompt)))

	if rec.OtherParams.Len() > 0 {
		line("")
		line(p.section(OtherHeader))
		for _, k := range rec.OtherParams.Keys() {
			v, _ := rec.OtherParams.Get(k)
			kv(k, v)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLora renders one entry as "name (Model: m, CLIP: c)".
func FormatLora(l genmeta.Lora) string {
	return l.Name + " (Model: " + formatFloat(l.ModelWeight) + ", CLIP: " + formatFloat(l.ClipWeight) + ")"
}

func show[T any](f genmeta.Field[T], p painter, format func(T) string) string {
	switch f.State() {
	case genmeta.StatePresent:
		v, _ := f.Get()
		return format(v)
	case genmeta.StateEmpty:
		return p.placeholder(genmeta.PlaceholderEmpty)
	default:
		return p.placeholder(genmeta.PlaceholderAbsent)
	}
}

func resolution(rec genmeta.Record, p painter) string {
	if rec.Width.IsAbsent() && rec.Height.IsAbsent() {
		return p.placeholder(genmeta.PlaceholderAbsent)
	}
	return show(rec.Width, p, strconv.Itoa) + "x" + show(rec.Height, p, strconv.Itoa)
}

func indent(s string) string {
	return promptIndent + strings.ReplaceAll(s, "\n", "\n"+promptIndent)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
