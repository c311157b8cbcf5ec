package parse

import (
	"fmt"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Parser converts one blob of a known encoding into a partial record.
type Parser interface {
	Parse(b genmeta.Blob) genmeta.Record
}

// ForKind returns the parser for an encoding. Absent and Unknown blobs have
// no parser.
func ForKind(kind genmeta.EncodingKind) (Parser, error) {
	switch kind {
	case genmeta.EncodingWorkflowGraph:
		return workflowParser{}, nil
	case genmeta.EncodingFlatParameterText:
		return flatParser{}, nil
	case genmeta.EncodingKeyValueText:
		return keyValueParser{}, nil
	default:
		return nil, fmt.Errorf("%w: no parser for %s metadata", genmeta.ErrUnsupportedFormat, kind)
	}
}

// Parse classifies the blob and runs the matching parser. Blobs without a
// parser yield an empty record.
func Parse(b genmeta.Blob) (genmeta.Record, genmeta.EncodingKind) {
	kind := Classify(b)
	p, err := ForKind(kind)
	if err != nil {
		return genmeta.Record{}, kind
	}
	return p.Parse(b), kind
}
