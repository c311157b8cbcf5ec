package parse

import (
	"regexp"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// loraTag matches prompt tags of the form <lora:name:weight[:clip]>.
var loraTag = regexp.MustCompile(`<lora:([^:>]+)(?::([^:>]*))?(?::([^:>]*))?>`)

type flatParser struct{}

// Parse reads prompt lines, an optional "Negative prompt:" section and a
// trailing line of comma-separated "Key: value" pairs.
func (flatParser) Parse(blob genmeta.Blob) genmeta.Record {
	b := newBuilder(blob, genmeta.EncodingFlatParameterText)

	lines := splitLines(strings.TrimRight(blob.Text(), " \t\r\n"))
	end := len(lines)
	tail, hasTail := tailIndex(lines)
	if hasTail {
		end = tail
	}

	neg := -1
	for i := 0; i < end; i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), negativePrefix) {
			neg = i
			break
		}
	}

	promptEnd := end
	if neg >= 0 {
		promptEnd = neg
	}
	if promptEnd > 0 {
		b.set(genmeta.FieldPositivePrompt, strings.Join(lines[:promptEnd], "\n"))
	}
	if neg >= 0 {
		first := strings.TrimPrefix(strings.TrimSpace(lines[neg]), negativePrefix)
		rest := append([]string{first}, lines[neg+1:end]...)
		b.set(genmeta.FieldNegativePrompt, strings.Join(rest, "\n"))
	}

	if hasTail {
		for _, m := range tailPair.FindAllStringSubmatch(lines[tail], -1) {
			b.put(m[1], unquote(m[2]))
		}
	}

	if prompt, ok := b.rec.PositivePrompt.Get(); ok {
		for _, l := range promptLoras(prompt) {
			b.addLora(l)
		}
	}
	return b.rec
}

func promptLoras(prompt string) []genmeta.Lora {
	var out []genmeta.Lora
	for _, m := range loraTag.FindAllStringSubmatch(prompt, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		out = append(out, genmeta.NewLora(name, weight(m[2]), weight(m[3])))
	}
	return out
}
