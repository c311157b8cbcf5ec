// Package locate finds the metadata sources for one extraction.
//
// A Locator resolves a Request to an image (the newest file in an output
// directory, or an explicit path) or takes a direct payload, then captures
// raw blobs in reconciliation order:
//
//  1. embedded text chunks, least authoritative first: Comment,
//     Description, parameters, workflow, prompt
//  2. sidecar files next to the image: <base>.json, then <base>.txt
//
// Sidecars are read when no embedded blob parses as generation metadata,
// when the embedded blobs leave the prompt, seed or steps unset, or when the
// request asks for them. A sidecar repeating an embedded blob is dropped. The
// locator never writes and never decodes pixels.
package locate
