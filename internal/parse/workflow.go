package parse

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vvka-141/genmeta/internal/graph"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// HeuristicPositionalEncoders marks prompts taken from encoder order because
// the sampler's conditioning inputs could not be traced.
const HeuristicPositionalEncoders = "positional-encoder-order"

// T5Key holds the T5XXL prompt of Flux encoders.
const T5Key = "T5XXL Prompt"

// Input names consulted when tracing from a sampler, or a guider, back to its
// text encoders.
var (
	positiveInputs = []string{"positive", "conditioning", "conditioning_1", "conditioning_to", "base_positive"}
	negativeInputs = []string{"negative", "neg_conditioning", "conditioning", "conditioning_1", "conditioning_to", "base_negative"}

	// Linked helper nodes that hold sampler settings in custom sampling graphs.
	samplerHops = []string{"noise", "sampler", "sigmas", "guider"}

	// Inputs that lead from a sampler towards the node defining latent size.
	latentInputs = []string{"latent_image", "samples", "latent", "image", "pixels"}
)

var resolutionPattern = regexp.MustCompile(`(\d+)\s*[xX×]\s*(\d+)`)

// sampler settings by field, in lookup order.
var samplerFields = []struct {
	field  string
	inputs []string
}{
	{genmeta.FieldSeed, []string{"seed", "noise_seed"}},
	{genmeta.FieldSteps, []string{"steps"}},
	{genmeta.FieldCFGScale, []string{"cfg"}},
	{genmeta.FieldSamplerName, []string{"sampler_name"}},
	{genmeta.FieldSchedulerName, []string{"scheduler"}},
	{genmeta.FieldDenoise, []string{"denoise", "denoise_strength"}},
}

// samplerExtras are sampler inputs without a record field.
var samplerExtras = []string{"true_gs", "timestep_to_start_cfg", "image_to_image_strength", "guidance"}

// component details copied to other params as "<Prefix> <Input>".
var components = map[string]struct {
	prefix string
	inputs []string
}{
	"LoadFluxControlNet":      {"ControlNet", []string{"model_name", "controlnet_path"}},
	"ControlNetLoader":        {"ControlNet", []string{"control_net_name"}},
	"ApplyFluxControlNet":     {"ControlNet", []string{"strength"}},
	"ControlNetApply":         {"ControlNet", []string{"strength"}},
	"ControlNetApplyAdvanced": {"ControlNet", []string{"strength", "start_percent", "end_percent"}},
	"CannyEdgePreprocessor":   {"ControlNet", []string{"low_threshold", "high_threshold", "resolution"}},
	"LoadFluxIPAdapter":       {"IPAdapter", []string{"ipadatper", "clip_vision", "provider"}},
	"ApplyFluxIPAdapter":      {"IPAdapter", []string{"ip_scale"}},
	"IPAdapterModelLoader":    {"IPAdapter", []string{"ipadapter_file"}},
	"IPAdapterAdvanced":       {"IPAdapter", []string{"weight", "weight_type"}},
	"FluxGuidance":            {"Flux", []string{"guidance"}},
}

type workflowParser struct{}

// Parse walks a workflow graph from its final sampler. A blob that does not
// decode as a graph yields an empty record.
func (workflowParser) Parse(blob genmeta.Blob) genmeta.Record {
	g, err := graph.Decode(blob.Bytes())
	if err != nil {
		return genmeta.Record{}
	}
	w := &walker{g: g, b: newBuilder(blob, genmeta.EncodingWorkflowGraph)}
	w.walk()
	return w.b.rec
}

type walker struct {
	g       *graph.Graph
	b       *builder
	sampler *graph.Node
}

func (w *walker) walk() {
	w.sampler = w.finalSampler()
	w.prompts()
	w.model()
	w.settings()
	w.resolution()
	w.loras()
	w.details()
}

// finalSampler is the sampler with the highest node id.
func (w *walker) finalSampler() *graph.Node {
	var last *graph.Node
	for _, n := range w.g.Nodes() {
		if RoleOf(n.Type) == RoleSampler {
			last = n
		}
	}
	return last
}

func (w *walker) ofRole(r Role) []*graph.Node {
	var out []*graph.Node
	for _, n := range w.g.Nodes() {
		if RoleOf(n.Type) == r {
			out = append(out, n)
		}
	}
	return out
}

// conditioningRoots are the nodes whose inputs carry the sampler's prompts:
// the sampler itself, and its guider when sampling through one.
func (w *walker) conditioningRoots() []*graph.Node {
	if w.sampler == nil {
		return nil
	}
	roots := []*graph.Node{w.sampler}
	if guider, _, ok := w.g.Follow(w.sampler, "guider"); ok {
		roots = append(roots, guider)
	}
	return roots
}

func (w *walker) prompts() {
	var pos, neg *graph.Node
	for _, root := range w.conditioningRoots() {
		if pos == nil {
			pos = w.trace(root, positiveInputs[:1], positiveInputs, 0)
			if pos == nil {
				pos = w.trace(root, []string{"conditioning"}, positiveInputs, 0)
			}
		}
		if neg == nil {
			neg = w.trace(root, []string{"negative", "neg_conditioning"}, negativeInputs, 0)
		}
	}

	posRule, negRule := "", ""
	if pos == nil {
		var rest []*graph.Node
		for _, enc := range w.ofRole(RoleEncoder) {
			if enc != neg {
				rest = append(rest, enc)
			}
		}
		if len(rest) > 0 {
			pos, posRule = rest[0], HeuristicPositionalEncoders
			if neg == nil && len(rest) > 1 {
				neg, negRule = rest[1], HeuristicPositionalEncoders
			}
		}
	}

	if pos != nil {
		w.promptFrom(pos, genmeta.FieldPositivePrompt, posRule)
	}
	if neg != nil && neg != pos {
		w.promptFrom(neg, genmeta.FieldNegativePrompt, negRule)
	}
}

// trace follows the first linked input among start, then keeps following
// pass-through nodes along the given inputs until an encoder is reached.
func (w *walker) trace(n *graph.Node, start, through []string, depth int) *graph.Node {
	if depth >= genmeta.MaxLinkDepth {
		return nil
	}
	for _, in := range start {
		src, _, ok := w.g.Follow(n, in)
		if !ok {
			continue
		}
		if RoleOf(src.Type) == RoleEncoder {
			return src
		}
		if enc := w.trace(src, through, through, depth+1); enc != nil {
			return enc
		}
	}
	return nil
}

func (w *walker) promptFrom(enc *graph.Node, field, heuristic string) {
	var text string
	var found bool
	for _, in := range []string{"text", "text_g", "clip_l", "text_l"} {
		if v, ok := w.g.Value(enc, in); ok {
			text, found = scalar(v), true
			break
		}
	}
	if !found {
		return
	}
	w.b.set(field, text)
	if heuristic != "" {
		p := w.b.prov
		p.Heuristic = heuristic
		w.b.rec.Note(field, p)
	}
	if field == genmeta.FieldPositivePrompt {
		if v, ok := w.g.Value(enc, "t5xxl"); ok {
			if t5 := scalar(v); t5 != "" {
				w.b.other(T5Key, t5)
			}
		}
	}
}

// model follows the sampler's model chain to a checkpoint loader, falling
// back to the first loader in the graph.
func (w *walker) model() {
	var ckpt *graph.Node
	for _, root := range w.conditioningRoots() {
		if ckpt = w.findUpstream(root, []string{"model"}, RoleCheckpoint, 0); ckpt != nil {
			break
		}
	}
	if ckpt == nil {
		if loaders := w.ofRole(RoleCheckpoint); len(loaders) > 0 {
			ckpt = loaders[0]
		}
	}
	if ckpt == nil {
		return
	}
	for _, in := range []string{"ckpt_name", "unet_name"} {
		if v, ok := w.g.Value(ckpt, in); ok {
			w.b.set(genmeta.FieldModelName, scalar(v))
			return
		}
	}
}

func (w *walker) findUpstream(n *graph.Node, inputs []string, role Role, depth int) *graph.Node {
	if depth >= genmeta.MaxLinkDepth {
		return nil
	}
	for _, in := range inputs {
		src, _, ok := w.g.Follow(n, in)
		if !ok {
			continue
		}
		if RoleOf(src.Type) == role {
			return src
		}
		if found := w.findUpstream(src, inputs, role, depth+1); found != nil {
			return found
		}
	}
	return nil
}

func (w *walker) settings() {
	if w.sampler == nil {
		w.fallbackSeed()
		return
	}
	for _, sf := range samplerFields {
		if v, ok := w.samplerValue(sf.inputs); ok {
			w.b.set(sf.field, scalar(v))
		}
	}
	for _, in := range samplerExtras {
		if v, ok := w.g.Value(w.sampler, in); ok {
			w.b.other(titleKey(in), scalar(v))
		}
	}
	if w.b.rec.Seed.IsAbsent() {
		w.fallbackSeed()
	}
}

// samplerValue looks an input up on the sampler, then on linked helper
// nodes (noise, sampler select, scheduler, guider).
func (w *walker) samplerValue(inputs []string) (any, bool) {
	for _, in := range inputs {
		if v, ok := w.g.Value(w.sampler, in); ok {
			return v, true
		}
	}
	for _, hop := range samplerHops {
		src, _, ok := w.g.Follow(w.sampler, hop)
		if !ok {
			continue
		}
		for _, in := range inputs {
			if v, ok := w.g.Value(src, in); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// fallbackSeed reads the first global seed node when the sampler carries
// no seed.
func (w *walker) fallbackSeed() {
	for _, n := range w.ofRole(RoleSeed) {
		for _, in := range []string{"seed", "noise_seed"} {
			if v, ok := w.g.Value(n, in); ok {
				w.b.set(genmeta.FieldSeed, scalar(v))
				return
			}
		}
	}
}

func (w *walker) resolution() {
	var latent *graph.Node
	if w.sampler != nil {
		latent = w.findUpstream(w.sampler, latentInputs, RoleLatent, 0)
	}
	if latent == nil {
		if nodes := w.ofRole(RoleLatent); len(nodes) > 0 {
			latent = nodes[0]
		}
	}
	if latent == nil {
		return
	}

	if v, ok := w.g.Value(latent, "size_selected"); ok {
		text := scalar(v)
		if m := resolutionPattern.FindStringSubmatch(text); m != nil {
			w.b.set(genmeta.FieldWidth, m[1])
			w.b.set(genmeta.FieldHeight, m[2])
		} else {
			w.b.raw(keySize, text)
		}
		return
	}
	if v, ok := w.g.Value(latent, "width"); ok {
		w.b.set(genmeta.FieldWidth, scalar(v))
	}
	if v, ok := w.g.Value(latent, "height"); ok {
		w.b.set(genmeta.FieldHeight, scalar(v))
	}
}

// loras emits one entry per LoRA loader, and per enabled slot of stacked
// loaders, in traversal order.
func (w *walker) loras() {
	for _, n := range w.ofRole(RoleLora) {
		if slots := loraSlots(n); len(slots) > 0 {
			for _, slot := range slots {
				if on, ok := slot["on"].(bool); !ok || !on {
					continue
				}
				name := scalar(slot["lora"])
				if !usableLoraName(name) {
					continue
				}
				w.b.addLora(genmeta.NewLora(name, number(slot["strength"]), number(slot["strengthTwo"])))
			}
			continue
		}

		v, ok := w.g.Value(n, "lora_name")
		if !ok {
			continue
		}
		name := scalar(v)
		if !usableLoraName(name) {
			continue
		}
		var model, clip *float64
		if v, ok := w.g.Value(n, "strength_model"); ok {
			model = number(v)
		}
		if v, ok := w.g.Value(n, "strength_clip"); ok {
			clip = number(v)
		}
		w.b.addLora(genmeta.NewLora(name, model, clip))
	}
}

// loraSlots returns lora_1..lora_n object inputs in numeric order.
func loraSlots(n *graph.Node) []map[string]any {
	type slot struct {
		idx int
		val map[string]any
	}
	var slots []slot
	for k, v := range n.Inputs {
		if !strings.HasPrefix(k, "lora_") {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(k, "lora_"))
		if err != nil {
			continue
		}
		slots = append(slots, slot{idx, obj})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].idx < slots[j].idx })
	out := make([]map[string]any, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.val)
	}
	return out
}

func usableLoraName(name string) bool {
	return name != "" && !strings.EqualFold(name, "none")
}

// details copies ControlNet, IPAdapter and guidance settings to other params.
func (w *walker) details() {
	for _, n := range w.g.Nodes() {
		c, ok := components[n.Type]
		if !ok {
			continue
		}
		for _, in := range c.inputs {
			if v, ok := w.g.Value(n, in); ok {
				w.b.other(c.prefix+" "+titleKey(in), scalar(v))
			}
		}
	}
}

func titleKey(input string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(input, "_", " "))
}

// scalar renders a JSON scalar as text. Structured values are re-encoded.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func number(v any) *float64 {
	if v == nil {
		return nil
	}
	return weight(scalar(v))
}
