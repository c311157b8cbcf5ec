package genmeta

import (
	"bytes"
	"encoding/json"
)

// Field names used as provenance keys and in the structured output.
const (
	FieldPositivePrompt = "positive_prompt"
	FieldNegativePrompt = "negative_prompt"
	FieldModelName      = "model_name"
	FieldSeed           = "seed"
	FieldSteps          = "steps"
	FieldSamplerName    = "sampler_name"
	FieldSchedulerName  = "scheduler_name"
	FieldCFGScale       = "cfg_scale"
	FieldDenoise        = "denoise"
	FieldWidth          = "width"
	FieldHeight         = "height"
	FieldLoras          = "loras"
	FieldOtherParams    = "other_params"
)

// Lora is one LoRA adapter application. Both weights are always set.
type Lora struct {
	Name        string  `json:"name"`
	ModelWeight float64 `json:"model_weight"`
	ClipWeight  float64 `json:"clip_weight"`
}

// NewLora fills in missing weights: a missing clip weight copies the model
// weight, and when both are missing they default to 1.0.
func NewLora(name string, model, clip *float64) Lora {
	l := Lora{Name: name, ModelWeight: 1.0, ClipWeight: 1.0}
	switch {
	case model != nil && clip != nil:
		l.ModelWeight, l.ClipWeight = *model, *clip
	case model != nil:
		l.ModelWeight, l.ClipWeight = *model, *model
	case clip != nil:
		l.ModelWeight, l.ClipWeight = *clip, *clip
	}
	return l
}

// Provenance records which source supplied a field's final value.
type Provenance struct {
	Origin   Origin       `json:"origin"`
	Encoding EncodingKind `json:"-"`
	// Heuristic names the fallback rule used, if any.
	Heuristic string `json:"heuristic,omitempty"`
}

// MarshalJSON emits the encoding by name.
func (p Provenance) MarshalJSON() ([]byte, error) {
	type alias struct {
		Origin    Origin `json:"origin"`
		Encoding  string `json:"encoding,omitempty"`
		Heuristic string `json:"heuristic,omitempty"`
	}
	a := alias{Origin: p.Origin, Heuristic: p.Heuristic}
	if p.Encoding != EncodingAbsent {
		a.Encoding = p.Encoding.String()
	}
	return json.Marshal(a)
}

// Params is an insertion-ordered string map. The zero value is ready to use.
type Params struct {
	keys   []string
	values map[string]string
}

// Set stores a value. A new key is appended; an existing key keeps its position.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *Params) Len() int { return len(p.keys) }

// Param is one entry of Params.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Pairs returns the entries in insertion order.
func (p *Params) Pairs() []Param {
	out := make([]Param, len(p.keys))
	for i, k := range p.keys {
		out[i] = Param{Key: k, Value: p.values[k]}
	}
	return out
}

// MarshalJSON writes an object preserving insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is the normalized, encoding-independent description of how an
// image was produced. Parsers return partial records; the reconciler merges
// them into the final one.
type Record struct {
	PositivePrompt Field[string]  `json:"positive_prompt"`
	NegativePrompt Field[string]  `json:"negative_prompt"`
	ModelName      Field[string]  `json:"model_name"`
	Seed           Field[uint64]  `json:"seed"`
	Steps          Field[int]     `json:"steps"`
	SamplerName    Field[string]  `json:"sampler_name"`
	SchedulerName  Field[string]  `json:"scheduler_name"`
	CFGScale       Field[float64] `json:"cfg_scale"`
	Denoise        Field[float64] `json:"denoise"`
	Width          Field[int]     `json:"width"`
	Height         Field[int]     `json:"height"`
	Loras          []Lora         `json:"loras"`
	OtherParams    Params         `json:"other_params"`

	// Provenance maps field name to the source of its final value.
	Provenance map[string]Provenance `json:"source_provenance"`
}

// Note records provenance for a field.
func (r *Record) Note(field string, p Provenance) {
	if r.Provenance == nil {
		r.Provenance = make(map[string]Provenance)
	}
	r.Provenance[field] = p
}

// IsEmpty reports whether the record carries no metadata at all.
// Dimensions read from the image header are not metadata.
func (r *Record) IsEmpty() bool {
	if len(r.Loras) > 0 || r.OtherParams.Len() > 0 {
		return false
	}
	for _, s := range []FieldState{
		r.PositivePrompt.State(), r.NegativePrompt.State(), r.ModelName.State(),
		r.Seed.State(), r.Steps.State(), r.SamplerName.State(), r.SchedulerName.State(),
		r.CFGScale.State(), r.Denoise.State(),
	} {
		if s != StateAbsent {
			return false
		}
	}
	for _, f := range []struct {
		name  string
		state FieldState
	}{{FieldWidth, r.Width.State()}, {FieldHeight, r.Height.State()}} {
		if f.state != StateAbsent && r.Provenance[f.name].Origin != OriginImage {
			return false
		}
	}
	return true
}

// ToMap exposes the record as a plain mapping. Absent fields are omitted
// and Empty fields of any type map to "". Other params keep their order as
// a list of key/value pairs.
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any)
	for _, f := range []struct {
		key   string
		value func() (any, bool)
	}{
		{FieldPositivePrompt, r.PositivePrompt.plain},
		{FieldNegativePrompt, r.NegativePrompt.plain},
		{FieldModelName, r.ModelName.plain},
		{FieldSamplerName, r.SamplerName.plain},
		{FieldSchedulerName, r.SchedulerName.plain},
		{FieldSeed, r.Seed.plain},
		{FieldSteps, r.Steps.plain},
		{FieldCFGScale, r.CFGScale.plain},
		{FieldDenoise, r.Denoise.plain},
		{FieldWidth, r.Width.plain},
		{FieldHeight, r.Height.plain},
	} {
		if v, ok := f.value(); ok {
			m[f.key] = v
		}
	}
	if len(r.Loras) > 0 {
		loras := make([]map[string]any, 0, len(r.Loras))
		for _, l := range r.Loras {
			loras = append(loras, map[string]any{
				"name":         l.Name,
				"model_weight": l.ModelWeight,
				"clip_weight":  l.ClipWeight,
			})
		}
		m[FieldLoras] = loras
	}
	if r.OtherParams.Len() > 0 {
		m[FieldOtherParams] = r.OtherParams.Pairs()
	}
	if len(r.Provenance) > 0 {
		prov := make(map[string]map[string]string, len(r.Provenance))
		for k, p := range r.Provenance {
			entry := map[string]string{"origin": string(p.Origin)}
			if p.Encoding != EncodingAbsent {
				entry["encoding"] = p.Encoding.String()
			}
			if p.Heuristic != "" {
				entry["heuristic"] = p.Heuristic
			}
			prov[k] = entry
		}
		m["source_provenance"] = prov
	}
	return m
}
