package graph

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// UI node modes that take a node out of execution.
const (
	modeNever  = 2
	modeBypass = 4
)

// widgetNames maps positional widgets_values to input names for node types
// whose UI export does not name them.
var widgetNames = map[string][]string{
	"CheckpointLoaderSimple": {"ckpt_name"},
	"CheckpointLoader":       {"config_name", "ckpt_name"},
	"UNETLoader":             {"unet_name", "weight_dtype"},
	"UnetLoaderGGUF":         {"unet_name"},
	"LoraLoader":             {"lora_name", "strength_model", "strength_clip"},
	"LoraLoaderModelOnly":    {"lora_name", "strength_model"},
	"CLIPTextEncode":         {"text"},
	"CLIPTextEncodeSDXL":     {"width", "height", "crop_w", "crop_h", "target_width", "target_height", "text_g", "text_l"},
	"CLIPTextEncodeFlux":     {"clip_l", "t5xxl", "guidance"},
	"KSampler":               {"seed", "control_after_generate", "steps", "cfg", "sampler_name", "scheduler", "denoise"},
	"KSamplerAdvanced": {"add_noise", "noise_seed", "control_after_generate", "steps", "cfg", "sampler_name",
		"scheduler", "start_at_step", "end_at_step", "return_with_leftover_noise"},
	"EmptyLatentImage":    {"width", "height", "batch_size"},
	"EmptySD3LatentImage": {"width", "height", "batch_size"},
	"ImageScale":          {"upscale_method", "width", "height", "crop"},
	"PrimitiveNode":       {"value", "control_after_generate"},
	"Seed Everywhere":     {"seed", "control_after_generate"},
	"Seed (rgthree)":      {"seed"},
	"KSamplerSelect":      {"sampler_name"},
	"BasicScheduler":      {"scheduler", "steps", "denoise"},
	"RandomNoise":         {"noise_seed", "control_after_generate"},
	"CFGGuider":           {"cfg"},
}

type uiInput struct {
	Name string       `json:"name"`
	Link *json.Number `json:"link"`
}

type uiNode struct {
	ID            json.Number     `json:"id"`
	Type          string          `json:"type"`
	Title         string          `json:"title"`
	Mode          int             `json:"mode"`
	Inputs        []uiInput       `json:"inputs"`
	WidgetsValues json.RawMessage `json:"widgets_values"`
}

// fromUI converts a UI export to the API shape.
func fromUI(rawNodes []any, rawLinks any) (*Graph, error) {
	links := indexLinks(rawLinks)

	g := &Graph{nodes: make(map[string]*Node)}
	for _, raw := range rawNodes {
		var un uiNode
		if !remarshal(raw, &un) || un.Type == "" || un.ID == "" {
			continue
		}
		if un.Mode == modeNever || un.Mode == modeBypass {
			continue
		}
		node := &Node{ID: un.ID.String(), Type: un.Type, Title: un.Title, Inputs: make(map[string]any)}
		applyWidgets(node, un.WidgetsValues)
		for _, in := range un.Inputs {
			if in.Link == nil {
				continue
			}
			if ref, ok := links[in.Link.String()]; ok {
				node.Inputs[in.Name] = ref
			}
		}
		g.add(node)
	}
	if g.Len() == 0 {
		return nil, ErrNotGraph
	}
	g.sort()
	return g, nil
}

// indexLinks maps link id to its source. UI links are
// [id, from_node, from_slot, to_node, to_slot, type].
func indexLinks(raw any) map[string]Ref {
	out := make(map[string]Ref)
	arr, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, l := range arr {
		fields, ok := l.([]any)
		if !ok || len(fields) < 3 {
			continue
		}
		id, ok1 := fields[0].(json.Number)
		from, ok2 := fields[1].(json.Number)
		slot, ok3 := fields[2].(json.Number)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		s, err := strconv.Atoi(slot.String())
		if err != nil {
			continue
		}
		out[id.String()] = Ref{NodeID: from.String(), Slot: s}
	}
	return out
}

func applyWidgets(node *Node, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return
	}

	switch values := v.(type) {
	case map[string]any:
		for k, val := range values {
			node.Inputs[k] = val
		}
	case []any:
		if node.Type == "Power Lora Loader (rgthree)" {
			applyPowerLoraWidgets(node, values)
			return
		}
		names := widgetNames[node.Type]
		for i, val := range values {
			if i < len(names) {
				node.Inputs[names[i]] = val
			}
		}
	}
}

// applyPowerLoraWidgets keeps the object widgets that describe a LoRA slot
// and names them lora_1..lora_n like the API layout does.
func applyPowerLoraWidgets(node *Node, values []any) {
	n := 0
	for _, val := range values {
		obj, ok := val.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := obj["lora"]; !ok {
			continue
		}
		n++
		node.Inputs["lora_"+strconv.Itoa(n)] = obj
	}
}

func remarshal(in any, out any) bool {
	data, err := json.Marshal(in)
	if err != nil {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out) == nil
}
