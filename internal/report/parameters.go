package report

import (
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// FormatParameters renders rec as flat parameter text: the positive prompt,
// a "Negative prompt:" line when the negative is known, and one line of
// comma-separated settings. LoRAs missing from the prompt are appended to
// it as <lora:...> tags. Absent fields are left out; explicitly empty ones
// are written with no value.
func FormatParameters(rec genmeta.Record) string {
	var lines []string

	prompt := rec.PositivePrompt.Or("")
	var tags []string
	for _, l := range rec.Loras {
		if !hasLoraTag(prompt, l.Name) {
			tags = append(tags, loraTag(l))
		}
	}
	if len(tags) > 0 {
		if prompt != "" {
			prompt += " "
		}
		prompt += strings.Join(tags, " ")
	}
	if !rec.PositivePrompt.IsAbsent() || len(tags) > 0 {
		lines = append(lines, prompt)
	}
	if !rec.NegativePrompt.IsAbsent() {
		lines = append(lines, strings.TrimRight("Negative prompt: "+rec.NegativePrompt.Or(""), " "))
	}

	var tail []string
	add := func(key, value string) {
		tail = append(tail, key+": "+quoteValue(value))
	}
	addField := func(key string, state genmeta.FieldState, value func() string) {
		switch state {
		case genmeta.StatePresent:
			add(key, value())
		case genmeta.StateEmpty:
			tail = append(tail, key+": ")
		}
	}

	addField("Steps", rec.Steps.State(), func() string { return strconv.Itoa(rec.Steps.Or(0)) })
	addField("Sampler", rec.SamplerName.State(), func() string { return rec.SamplerName.Or("") })
	addField("Schedule type", rec.SchedulerName.State(), func() string { return rec.SchedulerName.Or("") })
	addField("CFG scale", rec.CFGScale.State(), func() string { return formatFloat(rec.CFGScale.Or(0)) })
	addField("Seed", rec.Seed.State(), func() string { return strconv.FormatUint(rec.Seed.Or(0), 10) })
	if rec.Width.IsPresent() && rec.Height.IsPresent() {
		add("Size", strconv.Itoa(rec.Width.Or(0))+"x"+strconv.Itoa(rec.Height.Or(0)))
	} else {
		addField("Width", rec.Width.State(), func() string { return strconv.Itoa(rec.Width.Or(0)) })
		addField("Height", rec.Height.State(), func() string { return strconv.Itoa(rec.Height.Or(0)) })
	}
	addField("Model", rec.ModelName.State(), func() string { return rec.ModelName.Or("") })
	addField("Denoising strength", rec.Denoise.State(), func() string { return formatFloat(rec.Denoise.Or(0)) })
	for _, k := range rec.OtherParams.Keys() {
		v, _ := rec.OtherParams.Get(k)
		add(k, v)
	}

	if len(tail) > 0 {
		lines = append(lines, strings.TrimRight(strings.Join(tail, ", "), " "))
	}
	return strings.Join(lines, "\n")
}

func loraTag(l genmeta.Lora) string {
	if l.ModelWeight == l.ClipWeight {
		return "<lora:" + l.Name + ":" + formatFloat(l.ModelWeight) + ">"
	}
	return "<lora:" + l.Name + ":" + formatFloat(l.ModelWeight) + ":" + formatFloat(l.ClipWeight) + ">"
}

func hasLoraTag(prompt, name string) bool {
	return strings.Contains(prompt, "<lora:"+name+":") || strings.Contains(prompt, "<lora:"+name+">")
}

// quoteValue quotes values that would otherwise split the settings line.
func quoteValue(v string) string {
	if strings.ContainsAny(v, ",:\"\n") {
		return strconv.Quote(v)
	}
	return v
}
