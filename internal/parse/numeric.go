package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

var sizePattern = regexp.MustCompile(`^\s*(\d+)\s*[xX×]\s*(\d+)\s*$`)

// setNumber parses value into dst. Unreadable tokens leave dst untouched,
// are kept as "<field>_raw" and report false.
func setNumber[T any](b *builder, field string, dst *genmeta.Field[T], value string, parse func(string) (T, bool)) bool {
	if value == "" {
		*dst = genmeta.Empty[T]()
		return true
	}
	v, ok := parse(value)
	if !ok {
		b.raw(field, value)
		return false
	}
	*dst = genmeta.Present(v)
	return true
}

func parseSeed(s string) (uint64, bool) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= math.Exp2(64) {
		return 0, false
	}
	return uint64(f), true
}

func parseInt(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseSize(s string) (int, int, bool) {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(m[1])
	h, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return w, h, true
}

// weight parses an optional LoRA weight.
func weight(s string) *float64 {
	f, ok := parseFloat(s)
	if !ok {
		return nil
	}
	return &f
}
