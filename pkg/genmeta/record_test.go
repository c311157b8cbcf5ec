package genmeta_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

func TestField_ThreeStates(t *testing.T) {
	var absent genmeta.Field[string]
	empty := genmeta.Text("")
	present := genmeta.Text("blurry")

	assert.True(t, absent.IsAbsent())
	assert.True(t, empty.IsEmpty())
	assert.True(t, present.IsPresent())

	v, ok := present.Get()
	assert.True(t, ok)
	assert.Equal(t, "blurry", v)

	_, ok = empty.Get()
	assert.False(t, ok, "empty is not present")
	assert.Equal(t, "fallback", absent.Or("fallback"))
}

func TestNewLora_DefaultsWeights(t *testing.T) {
	w := func(f float64) *float64 { return &f }

	assert.Equal(t, genmeta.Lora{Name: "a", ModelWeight: 0.6, ClipWeight: 0.4}, genmeta.NewLora("a", w(0.6), w(0.4)))
	assert.Equal(t, genmeta.Lora{Name: "b", ModelWeight: 0.6, ClipWeight: 0.6}, genmeta.NewLora("b", w(0.6), nil))
	assert.Equal(t, genmeta.Lora{Name: "c", ModelWeight: 0.3, ClipWeight: 0.3}, genmeta.NewLora("c", nil, w(0.3)))
	assert.Equal(t, genmeta.Lora{Name: "d", ModelWeight: 1, ClipWeight: 1}, genmeta.NewLora("d", nil, nil))
}

func TestParams_InsertionOrder(t *testing.T) {
	var p genmeta.Params
	p.Set("Version", "v1.6")
	p.Set("Clip skip", "2")
	p.Set("Version", "v1.7")

	assert.Equal(t, []string{"Version", "Clip skip"}, p.Keys())
	v, _ := p.Get("Version")
	assert.Equal(t, "v1.7", v)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Version":"v1.7","Clip skip":"2"}`, string(data))
	assert.Equal(t, `{"Version":"v1.7","Clip skip":"2"}`, string(data))
}

func TestRecord_IsEmpty(t *testing.T) {
	var rec genmeta.Record
	assert.True(t, rec.IsEmpty())

	rec.Width = genmeta.Present(512)
	rec.Height = genmeta.Present(768)
	rec.Note(genmeta.FieldWidth, genmeta.Provenance{Origin: genmeta.OriginImage})
	rec.Note(genmeta.FieldHeight, genmeta.Provenance{Origin: genmeta.OriginImage})
	assert.True(t, rec.IsEmpty(), "image-derived dimensions are not metadata")

	rec.NegativePrompt = genmeta.Text("")
	assert.False(t, rec.IsEmpty(), "an explicitly empty field is still metadata")
}

func TestRecord_JSON(t *testing.T) {
	rec := genmeta.Record{
		PositivePrompt: genmeta.Present("cat"),
		NegativePrompt: genmeta.Empty[string](),
		Seed:           genmeta.Present(uint64(18446744073709551615)),
	}
	rec.Note(genmeta.FieldSeed, genmeta.Provenance{Origin: genmeta.OriginEmbedded, Encoding: genmeta.EncodingWorkflowGraph})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "cat", decoded["positive_prompt"])
	assert.Equal(t, "", decoded["negative_prompt"])
	assert.Nil(t, decoded["model_name"])
	assert.Contains(t, string(data), `"seed":18446744073709551615`)
	assert.Contains(t, string(data), `"encoding":"workflow-graph"`)

	m := rec.ToMap()
	assert.Equal(t, "", m[genmeta.FieldNegativePrompt])
	assert.NotContains(t, m, genmeta.FieldModelName)
}

func TestRecord_NumericStatesStayDistinct(t *testing.T) {
	encode := func(f genmeta.Field[uint64]) string {
		data, err := json.Marshal(genmeta.Record{Seed: f})
		require.NoError(t, err)
		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &decoded))
		return string(decoded["seed"])
	}

	assert.Equal(t, "null", encode(genmeta.Field[uint64]{}))
	assert.Equal(t, `""`, encode(genmeta.Empty[uint64]()))
	assert.Equal(t, "0", encode(genmeta.Present(uint64(0))))

	empty := genmeta.Record{Seed: genmeta.Empty[uint64](), Steps: genmeta.Present(0)}
	m := empty.ToMap()
	assert.Equal(t, "", m[genmeta.FieldSeed], "empty numbers are kept, not dropped")
	assert.Equal(t, 0, m[genmeta.FieldSteps])
	assert.NotContains(t, m, genmeta.FieldCFGScale)
}

func TestRecord_ToMapKeepsOrderAndHeuristic(t *testing.T) {
	var rec genmeta.Record
	rec.OtherParams.Set("zeta", "1")
	rec.OtherParams.Set("alpha", "2")
	rec.Note(genmeta.FieldPositivePrompt, genmeta.Provenance{
		Origin:    genmeta.OriginEmbedded,
		Encoding:  genmeta.EncodingWorkflowGraph,
		Heuristic: "positional-encoder-order",
	})

	m := rec.ToMap()
	assert.Equal(t, []genmeta.Param{{Key: "zeta", Value: "1"}, {Key: "alpha", Value: "2"}}, m[genmeta.FieldOtherParams])

	prov := m["source_provenance"].(map[string]map[string]string)
	assert.Equal(t, map[string]string{
		"origin":    "embedded-chunk",
		"encoding":  "workflow-graph",
		"heuristic": "positional-encoder-order",
	}, prov[genmeta.FieldPositivePrompt])
}
