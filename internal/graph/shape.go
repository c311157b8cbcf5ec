package graph

import (
	"bytes"
	"encoding/json"
)

// Looks reports whether data has the shape of a workflow graph in either
// layout, wrapped or not. It only inspects the top two levels and never
// builds nodes, so it is cheap enough for sniffing. Decode remains the
// authority: a graph whose nodes are all muted passes Looks and still
// decodes to ErrNotGraph.
func Looks(data []byte) bool {
	return looks(data, 0)
}

func looks(data []byte, depth int) bool {
	if depth > 2 {
		return false
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return false
	}

	for _, key := range []string{"prompt", "workflow"} {
		inner, ok := top[key]
		if !ok {
			continue
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '"' {
			var s string
			if json.Unmarshal(inner, &s) == nil && looks([]byte(s), depth+1) {
				return true
			}
			continue
		}
		var obj map[string]json.RawMessage
		if json.Unmarshal(inner, &obj) == nil && objectLooks(obj) {
			return true
		}
	}
	return objectLooks(top)
}

func objectLooks(top map[string]json.RawMessage) bool {
	if raw, ok := top["nodes"]; ok {
		var nodes []json.RawMessage
		if json.Unmarshal(raw, &nodes) == nil {
			return hasUINode(nodes)
		}
	}
	for _, raw := range top {
		if isAPINode(raw) {
			return true
		}
	}
	return false
}

// shallowNode decodes only the keys that identify a node; nested values
// stay raw.
type shallowNode struct {
	ID        json.RawMessage `json:"id"`
	ClassType string          `json:"class_type"`
	Type      string          `json:"type"`
	Inputs    json.RawMessage `json:"inputs"`
}

func isAPINode(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}
	var n shallowNode
	if json.Unmarshal(raw, &n) != nil {
		return false
	}
	inputs := bytes.TrimSpace(n.Inputs)
	return (n.ClassType != "" || n.Type != "") && len(inputs) > 0 && inputs[0] == '{'
}

func hasUINode(nodes []json.RawMessage) bool {
	for _, el := range nodes {
		var n shallowNode
		if json.Unmarshal(el, &n) != nil {
			continue
		}
		if n.Type != "" && len(n.ID) > 0 && string(n.ID) != "null" {
			return true
		}
	}
	return false
}
