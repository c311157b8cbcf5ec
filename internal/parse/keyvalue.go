package parse

import (
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

type keyValueParser struct{}

// Parse reads one "key: value" or "key=value" pair per line, or a flat JSON
// object of scalars. Lines of any other shape are skipped.
func (keyValueParser) Parse(blob genmeta.Blob) genmeta.Record {
	b := newBuilder(blob, genmeta.EncodingKeyValueText)
	text := strings.TrimSpace(blob.Text())

	if pairs, ok := decodeScalarObject([]byte(text)); ok {
		for _, p := range pairs {
			if p.null {
				continue
			}
			b.put(p.key, p.value)
		}
		return b.rec
	}

	for _, line := range splitLines(text) {
		m := kvLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		b.put(m[1], unquote(m[2]))
	}
	if prompt, ok := b.rec.PositivePrompt.Get(); ok {
		for _, l := range promptLoras(prompt) {
			b.addLora(l)
		}
	}
	return b.rec
}
