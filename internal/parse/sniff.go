package parse

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/internal/graph"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

const negativePrefix = "Negative prompt:"

// tailPair matches one "Key: value" pair of a flat parameter tail line.
// Quoted values may contain commas.
var tailPair = regexp.MustCompile(`\s*(\w[\w \-/]+):\s*("(?:\\.|[^\\"])+"|[^,]*)(?:,|$)`)

// kvLine matches "key: value" and "key=value" lines.
var kvLine = regexp.MustCompile(`^\s*([A-Za-z_][\w .\-/()]*?)\s*[:=]\s*(.*?)\s*$`)

// Classify decides which encoding a blob uses. Rules are checked in order
// and the first match wins. It never panics and never touches state.
func Classify(b genmeta.Blob) genmeta.EncodingKind {
	return classify(b.Bytes())
}

func classify(data []byte) genmeta.EncodingKind {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return genmeta.EncodingAbsent
	}
	if strings.HasPrefix(text, "{") {
		if graph.Looks([]byte(text)) {
			return genmeta.EncodingWorkflowGraph
		}
		// Valid JSON is never read as text.
		if pairs, ok := decodeScalarObject([]byte(text)); ok {
			if len(pairs) > 0 {
				return genmeta.EncodingKeyValueText
			}
			return genmeta.EncodingUnknown
		}
		if json.Valid([]byte(text)) {
			return genmeta.EncodingUnknown
		}
	}
	lines := splitLines(text)
	if isFlat(lines) {
		return genmeta.EncodingFlatParameterText
	}
	if isKeyValue(lines) {
		return genmeta.EncodingKeyValueText
	}
	return genmeta.EncodingUnknown
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func isFlat(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), negativePrefix) {
			return true
		}
	}
	_, ok := tailIndex(lines)
	return ok
}

// tailIndex finds the last non-blank line when it holds at least two
// "Key: value" pairs.
func tailIndex(lines []string) (int, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if len(tailPair.FindAllStringSubmatch(lines[i], -1)) >= 2 {
			return i, true
		}
		return -1, false
	}
	return -1, false
}

func isKeyValue(lines []string) bool {
	seen := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if !kvLine.MatchString(l) {
			return false
		}
		seen++
	}
	return seen > 0
}

type pair struct {
	key, value string
	null       bool
}

// decodeScalarObject reads a JSON object whose values are all strings,
// numbers, booleans or null, keeping key order.
func decodeScalarObject(data []byte) ([]pair, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, false
	}
	var pairs []pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, false
		}
		p := pair{key: key}
		switch v := tok.(type) {
		case string:
			p.value = v
		case json.Number:
			p.value = v.String()
		case bool:
			p.value = strconv.FormatBool(v)
		case nil:
			p.null = true
		default:
			return nil, false
		}
		pairs = append(pairs, p)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return pairs, true
}
