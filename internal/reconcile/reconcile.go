package reconcile

import (
	"sort"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Partial is one parsed blob waiting to be merged.
type Partial struct {
	Origin  genmeta.Origin
	Keyword string
	Record  genmeta.Record
}

// Reconcile merges partials into one record. image supplies the pixel
// dimensions used when no metadata states width or height; pass the zero
// value when they are unknown.
//
// LoRA lists are concatenated in input order. An entry that repeats one
// already contributed by an earlier partial is not added again, so the
// API and UI exports of the same graph do not double up. Their provenance
// follows the same rank order as every other field.
func Reconcile(partials []Partial, image genmeta.Dimensions) genmeta.Record {
	ordered := make([]Partial, len(partials))
	copy(ordered, partials)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Origin.Rank() < ordered[j].Origin.Rank()
	})

	var out genmeta.Record
	for _, p := range ordered {
		m := merger{out: &out, from: p}
		m.field(genmeta.FieldPositivePrompt, take(&out.PositivePrompt, p.Record.PositivePrompt))
		m.field(genmeta.FieldNegativePrompt, take(&out.NegativePrompt, p.Record.NegativePrompt))
		m.field(genmeta.FieldModelName, take(&out.ModelName, p.Record.ModelName))
		m.field(genmeta.FieldSeed, take(&out.Seed, p.Record.Seed))
		m.field(genmeta.FieldSteps, take(&out.Steps, p.Record.Steps))
		m.field(genmeta.FieldSamplerName, take(&out.SamplerName, p.Record.SamplerName))
		m.field(genmeta.FieldSchedulerName, take(&out.SchedulerName, p.Record.SchedulerName))
		m.field(genmeta.FieldCFGScale, take(&out.CFGScale, p.Record.CFGScale))
		m.field(genmeta.FieldDenoise, take(&out.Denoise, p.Record.Denoise))
		m.field(genmeta.FieldWidth, take(&out.Width, p.Record.Width))
		m.field(genmeta.FieldHeight, take(&out.Height, p.Record.Height))

		if p.Record.OtherParams.Len() > 0 {
			for _, k := range p.Record.OtherParams.Keys() {
				v, _ := p.Record.OtherParams.Get(k)
				out.OtherParams.Set(k, v)
			}
			m.field(genmeta.FieldOtherParams, true)
		}
	}

	out.Loras = concatLoras(partials)
	if len(out.Loras) > 0 {
		for i := len(ordered) - 1; i >= 0; i-- {
			if len(ordered[i].Record.Loras) > 0 {
				merger{out: &out, from: ordered[i]}.field(genmeta.FieldLoras, true)
				break
			}
		}
	}

	fallback(&out, genmeta.FieldWidth, &out.Width, image.Width)
	fallback(&out, genmeta.FieldHeight, &out.Height, image.Height)
	return out
}

type merger struct {
	out  *genmeta.Record
	from Partial
}

// field copies the partial's provenance for a field it supplied.
func (m merger) field(name string, taken bool) {
	if !taken {
		return
	}
	p, ok := m.from.Record.Provenance[name]
	if !ok {
		p = genmeta.Provenance{Origin: m.from.Origin}
	}
	m.out.Note(name, p)
}

func take[T any](dst *genmeta.Field[T], src genmeta.Field[T]) bool {
	if src.IsAbsent() {
		return false
	}
	*dst = src
	return true
}

func fallback(out *genmeta.Record, name string, f *genmeta.Field[int], pixels int) {
	if !f.IsAbsent() || pixels <= 0 {
		return
	}
	*f = genmeta.Present(pixels)
	out.Note(name, genmeta.Provenance{Origin: genmeta.OriginImage})
}

func concatLoras(partials []Partial) []genmeta.Lora {
	var out []genmeta.Lora
	seen := make(map[genmeta.Lora]int)
	for _, p := range partials {
		mine := make(map[genmeta.Lora]int)
		for _, l := range p.Record.Loras {
			mine[l]++
			if mine[l] <= seen[l] {
				continue
			}
			out = append(out, l)
		}
		for l, n := range mine {
			if n > seen[l] {
				seen[l] = n
			}
		}
	}
	return out
}
