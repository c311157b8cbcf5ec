// Package pngmeta reads text chunks and header dimensions from image files
// without decoding pixels.
//
// PNG text lives in tEXt (Latin-1), zTXt (zlib-compressed Latin-1) and
// iTXt (UTF-8, optionally compressed) chunks, each keyed by a keyword such
// as "parameters", "prompt" or "workflow".
package pngmeta
