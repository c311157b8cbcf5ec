// Package graph decodes node-based workflow graphs into an adjacency map.
//
// Two layouts are accepted:
//
//   - API layout: {"3": {"class_type": "KSampler", "inputs": {...}}, ...}
//     where a linked input is a two-element array [source_id, output_slot].
//   - UI export: {"nodes": [...], "links": [...]} where widget values are
//     positional and links are referenced by id.
//
// Either layout may be wrapped in a {"prompt": ...} or {"workflow": ...}
// object, and the wrapped value may itself be a JSON string. UI exports are
// converted to the API shape so callers walk one representation: every
// linked input becomes a Ref, every literal stays a decoded JSON value
// (json.Number for numbers).
package graph
