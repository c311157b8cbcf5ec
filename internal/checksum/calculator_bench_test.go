package checksum

import (
	"strings"
	"testing"
)

func BenchmarkCalculateRaw(b *testing.B) {
	calc := New()
	content := []byte(strings.Repeat("x", 1<<20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = calc.CalculateRaw(content)
	}
}

func BenchmarkCalculateNormalizedWorkflow(b *testing.B) {
	calc := New()
	var sb strings.Builder
	sb.WriteString("{")
	for i := 0; i < 200; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`"` + strings.Repeat("1", i%5+1) + `": {"class_type": "KSampler", "inputs": {"seed": 1, "steps": 20}}`)
	}
	sb.WriteString("}")
	content := []byte(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = calc.CalculateNormalized(content)
	}
}
