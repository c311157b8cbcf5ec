package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// ErrNotGraph is returned when a payload does not have a workflow graph shape.
var ErrNotGraph = errors.New("not a workflow graph")

// Ref is a link to an output slot of another node.
type Ref struct {
	NodeID string
	Slot   int
}

// Node is one node of the graph.
type Node struct {
	ID     string
	Type   string
	Title  string
	Inputs map[string]any
}

// Link returns the reference held by a linked input.
func (n *Node) Link(input string) (Ref, bool) {
	ref, ok := n.Inputs[input].(Ref)
	return ref, ok
}

// Has reports whether the node declares the input at all.
func (n *Node) Has(input string) bool {
	_, ok := n.Inputs[input]
	return ok
}

// Graph is an adjacency lookup from node id to node, with a stable
// traversal order (ascending node id).
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns nodes in traversal order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Follow returns the node a linked input points to.
func (g *Graph) Follow(n *Node, input string) (*Node, Ref, bool) {
	ref, ok := n.Link(input)
	if !ok {
		return nil, Ref{}, false
	}
	src, ok := g.nodes[ref.NodeID]
	return src, ref, ok
}

// Value resolves an input to a literal, following links into value-holding
// nodes (primitives, seed providers, string nodes).
func (g *Graph) Value(n *Node, input string) (any, bool) {
	v, ok := n.Inputs[input]
	if !ok {
		return nil, false
	}
	return g.resolve(v, input, 0)
}

func (g *Graph) resolve(v any, name string, depth int) (any, bool) {
	ref, isRef := v.(Ref)
	if !isRef {
		return v, v != nil
	}
	if depth >= genmeta.MaxLinkDepth {
		return nil, false
	}
	src, ok := g.nodes[ref.NodeID]
	if !ok {
		return nil, false
	}
	for _, key := range valueKeys(name) {
		if sv, ok := src.Inputs[key]; ok {
			return g.resolve(sv, key, depth+1)
		}
	}
	return nil, false
}

func valueKeys(name string) []string {
	keys := []string{name}
	for _, k := range []string{"value", "seed", "noise_seed", "int", "float", "number", "string", "text"} {
		if k != name {
			keys = append(keys, k)
		}
	}
	return keys
}

// Decode parses data as a workflow graph in either layout.
func Decode(data []byte) (*Graph, error) {
	return decode(data, 0)
}

func decode(data []byte, depth int) (*Graph, error) {
	if depth > 2 {
		return nil, ErrNotGraph
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top map[string]any
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGraph, err)
	}

	// Wrapped forms: the API prompt is more precise than the UI workflow.
	for _, key := range []string{"prompt", "workflow"} {
		inner, ok := top[key]
		if !ok {
			continue
		}
		var g *Graph
		var err error
		switch val := inner.(type) {
		case string:
			g, err = decode([]byte(val), depth+1)
		case map[string]any:
			g, err = fromObject(val)
		default:
			continue
		}
		if err == nil {
			return g, nil
		}
	}

	return fromObject(top)
}

func fromObject(top map[string]any) (*Graph, error) {
	if nodes, ok := top["nodes"].([]any); ok {
		return fromUI(nodes, top["links"])
	}
	return fromAPI(top)
}

func fromAPI(top map[string]any) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*Node)}
	for id, raw := range top {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := obj["class_type"].(string)
		if typ == "" {
			typ, _ = obj["type"].(string)
		}
		inputs, ok := obj["inputs"].(map[string]any)
		if typ == "" || !ok {
			continue
		}
		node := &Node{ID: id, Type: typ, Inputs: make(map[string]any, len(inputs))}
		if meta, ok := obj["_meta"].(map[string]any); ok {
			node.Title, _ = meta["title"].(string)
		}
		for k, v := range inputs {
			if ref, ok := asRef(v); ok {
				node.Inputs[k] = ref
			} else {
				node.Inputs[k] = v
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

// asRef recognizes the API link form [source_id, slot].
func asRef(v any) (Ref, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return Ref{}, false
	}
	var id string
	switch src := arr[0].(type) {
	case string:
		id = src
	case json.Number:
		id = src.String()
	default:
		return Ref{}, false
	}
	num, ok := arr[1].(json.Number)
	if !ok {
		return Ref{}, false
	}
	slot, err := strconv.Atoi(num.String())
	if err != nil {
		return Ref{}, false
	}
	return Ref{NodeID: id, Slot: slot}, true
}

func (g *Graph) add(n *Node) {
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = n
}

func (g *Graph) sort() {
	sort.SliceStable(g.order, func(i, j int) bool {
		return LessID(g.order[i], g.order[j])
	})
}

// LessID orders node ids numerically per ":"-separated segment, falling
// back to string order for non-numeric segments.
func LessID(a, b string) bool {
	as, bs := strings.Split(a, ":"), strings.Split(b, ":")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, aerr := strconv.ParseInt(as[i], 10, 64)
		bi, berr := strconv.ParseInt(bs[i], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return ai < bi
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
