package genmeta

import (
	"fmt"
	"strings"
)

// Origin identifies where a metadata blob (or a field value) came from.
type Origin string

const (
	OriginEmbedded Origin = "embedded-chunk"
	OriginSidecar  Origin = "sidecar-file"
	OriginDirect   Origin = "direct-input"
	// OriginImage tags values read from the image header rather than metadata.
	OriginImage Origin = "image-pixels"
)

// Rank orders origins for reconciliation. Higher ranks win.
// Embedded metadata travels with the pixel data, so it outranks sidecars.
func (o Origin) Rank() int {
	switch o {
	case OriginEmbedded, OriginDirect:
		return 2
	case OriginSidecar:
		return 1
	default:
		return 0
	}
}

// Blob is a raw metadata payload captured by the locator.
// Construct with NewBlob; a Blob is never mutated after capture.
type Blob struct {
	origin  Origin
	keyword string
	path    string
	data    []byte
}

// NewBlob captures data with its origin. The payload is copied.
//   - keyword: chunk keyword or metadata key ("prompt", "parameters", ...), may be empty
//   - path: provenance path, may be empty
func NewBlob(origin Origin, keyword, path string, data []byte) Blob {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Blob{origin: origin, keyword: keyword, path: path, data: cp}
}

func (b Blob) Origin() Origin  { return b.origin }
func (b Blob) Keyword() string { return b.keyword }
func (b Blob) Path() string    { return b.path }
func (b Blob) Len() int        { return len(b.data) }
func (b Blob) Text() string    { return string(b.data) }

// Bytes returns a copy of the payload.
func (b Blob) Bytes() []byte {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

// String describes the blob for logs.
func (b Blob) String() string {
	var parts []string
	parts = append(parts, string(b.origin))
	if b.keyword != "" {
		parts = append(parts, b.keyword)
	}
	if b.path != "" {
		parts = append(parts, b.path)
	}
	return fmt.Sprintf("%s (%d bytes)", strings.Join(parts, ":"), len(b.data))
}

// EncodingKind is the closed set of metadata encodings the sniffer recognizes.
type EncodingKind int

const (
	EncodingAbsent EncodingKind = iota
	EncodingWorkflowGraph
	EncodingFlatParameterText
	EncodingKeyValueText
	EncodingUnknown
)

func (k EncodingKind) String() string {
	switch k {
	case EncodingAbsent:
		return "absent"
	case EncodingWorkflowGraph:
		return "workflow-graph"
	case EncodingFlatParameterText:
		return "flat-parameter-text"
	case EncodingKeyValueText:
		return "key-value-text"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EncodingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SourceMode selects how the locator finds its input.
type SourceMode string

const (
	ModeMostRecent   SourceMode = "most_recent"
	ModeExplicitFile SourceMode = "explicit_file"
	ModeDirectInput  SourceMode = "direct_input"
)

// SourceModes lists the valid modes in display order.
var SourceModes = []SourceMode{ModeMostRecent, ModeExplicitFile, ModeDirectInput}

// ParseSourceMode accepts the canonical mode names and a few aliases.
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "most_recent", "most-recent", "recent", "":
		return ModeMostRecent, nil
	case "explicit_file", "explicit-file", "file":
		return ModeExplicitFile, nil
	case "direct_input", "direct-input", "direct":
		return ModeDirectInput, nil
	}
	return "", fmt.Errorf("source mode %q must be one of most_recent, explicit_file, direct_input: %w", s, ErrInvalidConfig)
}

// Payload is an already-decoded image handed over by a host. Metadata holds
// whatever key/value text the producer attached (e.g. PNG text chunks).
type Payload struct {
	Metadata map[string]string `json:"metadata"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
}

// Dimensions are pixel dimensions read from the image itself.
// Zero values mean unknown.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Known reports whether both dimensions are set.
func (d Dimensions) Known() bool { return d.Width > 0 && d.Height > 0 }

// Source describes the image an extraction ran against.
type Source struct {
	Mode       SourceMode `json:"mode"`
	ImagePath  string     `json:"image_path,omitempty"`
	Digest     string     `json:"image_digest,omitempty"`
	Dimensions Dimensions `json:"dimensions"`
}
