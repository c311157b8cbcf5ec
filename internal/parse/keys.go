package parse

import (
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Pseudo fields that expand into, or promote to, something else.
const (
	keySize     = "size"
	keyClipSkip = "clip_skip"
)

// ClipSkipKey is the canonical other-params name for the clip skip setting.
const ClipSkipKey = "Clip skip"

// knownKeys maps normalized source keys to record fields. Flat tail keys and
// their snake_case spellings share the table.
var knownKeys = map[string]string{
	"prompt":             genmeta.FieldPositivePrompt,
	"positive prompt":    genmeta.FieldPositivePrompt,
	"positive":           genmeta.FieldPositivePrompt,
	"negative prompt":    genmeta.FieldNegativePrompt,
	"negative":           genmeta.FieldNegativePrompt,
	"model":              genmeta.FieldModelName,
	"model name":         genmeta.FieldModelName,
	"ckpt name":          genmeta.FieldModelName,
	"checkpoint":         genmeta.FieldModelName,
	"seed":               genmeta.FieldSeed,
	"noise seed":         genmeta.FieldSeed,
	"steps":              genmeta.FieldSteps,
	"sampler":            genmeta.FieldSamplerName,
	"sampler name":       genmeta.FieldSamplerName,
	"schedule type":      genmeta.FieldSchedulerName,
	"scheduler":          genmeta.FieldSchedulerName,
	"scheduler name":     genmeta.FieldSchedulerName,
	"cfg scale":          genmeta.FieldCFGScale,
	"cfg":                genmeta.FieldCFGScale,
	"denoising strength": genmeta.FieldDenoise,
	"denoise":            genmeta.FieldDenoise,
	"width":              genmeta.FieldWidth,
	"height":             genmeta.FieldHeight,
	"size":               keySize,
	"clip skip":          keyClipSkip,
}

func lookupKey(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "_", " ")
	k = strings.Join(strings.Fields(k), " ")
	field, ok := knownKeys[k]
	return field, ok
}

// builder accumulates one partial record and tags every field it sets with
// the blob's provenance.
type builder struct {
	rec  genmeta.Record
	prov genmeta.Provenance
}

func newBuilder(b genmeta.Blob, kind genmeta.EncodingKind) *builder {
	return &builder{prov: genmeta.Provenance{Origin: b.Origin(), Encoding: kind}}
}

func (b *builder) note(field string) {
	b.rec.Note(field, b.prov)
}

// put routes a key to its field when known, otherwise into other params.
func (b *builder) put(key, value string) {
	if field, ok := lookupKey(key); ok {
		b.set(field, value)
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	b.other(key, value)
}

func (b *builder) other(key, value string) {
	b.rec.OtherParams.Set(key, value)
	b.note(genmeta.FieldOtherParams)
}

// raw keeps an unreadable token next to the field it was meant for.
func (b *builder) raw(field, token string) {
	b.other(field+"_raw", token)
}

// set assigns a canonical field from its textual form. Empty text marks the
// field explicitly empty.
func (b *builder) set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case genmeta.FieldPositivePrompt:
		b.rec.PositivePrompt = genmeta.Text(value)
	case genmeta.FieldNegativePrompt:
		b.rec.NegativePrompt = genmeta.Text(value)
	case genmeta.FieldModelName:
		b.rec.ModelName = genmeta.Text(value)
	case genmeta.FieldSamplerName:
		b.rec.SamplerName = genmeta.Text(value)
	case genmeta.FieldSchedulerName:
		b.rec.SchedulerName = genmeta.Text(value)
	case genmeta.FieldSeed:
		if !setNumber(b, field, &b.rec.Seed, value, parseSeed) {
			return
		}
	case genmeta.FieldSteps:
		if !setNumber(b, field, &b.rec.Steps, value, parseInt) {
			return
		}
	case genmeta.FieldWidth:
		if !setNumber(b, field, &b.rec.Width, value, parseInt) {
			return
		}
	case genmeta.FieldHeight:
		if !setNumber(b, field, &b.rec.Height, value, parseInt) {
			return
		}
	case genmeta.FieldCFGScale:
		if !setNumber(b, field, &b.rec.CFGScale, value, parseFloat) {
			return
		}
	case genmeta.FieldDenoise:
		if !setNumber(b, field, &b.rec.Denoise, value, parseFloat) {
			return
		}
	case keySize:
		b.setSize(value)
		return
	case keyClipSkip:
		b.other(ClipSkipKey, value)
		return
	default:
		return
	}
	b.note(field)
}

// setSize splits "WxH" into width and height.
func (b *builder) setSize(value string) {
	w, h, ok := parseSize(value)
	if !ok {
		b.raw(keySize, value)
		return
	}
	b.rec.Width, b.rec.Height = genmeta.Present(w), genmeta.Present(h)
	b.note(genmeta.FieldWidth)
	b.note(genmeta.FieldHeight)
}

func (b *builder) addLora(l genmeta.Lora) {
	b.rec.Loras = append(b.rec.Loras, l)
	b.note(genmeta.FieldLoras)
}

// unquote strips one level of double quotes, honoring escapes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s[1 : len(s)-1]
}
