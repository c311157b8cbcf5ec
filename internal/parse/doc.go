// Package parse turns raw metadata blobs into partial records.
//
// Classify sniffs a blob's encoding without side effects. Parse dispatches
// to the parser for that encoding:
//
//   - workflow graphs (node mappings in API or UI layout)
//   - flat parameter text (prompt, "Negative prompt:" line, tail of
//     "Key: value" pairs)
//   - key/value text (one pair per line, or a flat JSON object)
//
// Parsers never fail a whole blob. A fragment that cannot be read leaves
// its field Absent and keeps the raw token in other params under
// "<field>_raw".
package parse
