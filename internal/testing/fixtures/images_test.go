package fixtures

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

func TestPNG_DecodesWithTextChunks(t *testing.T) {
	data := PNG(12, 7, TEXt("parameters", "a cat"), ZTXt("prompt", "{}"), ITXt("workflow", "{}"))

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("fixture is not a valid PNG: %v", err)
	}
	if cfg.Width != 12 || cfg.Height != 7 {
		t.Errorf("size = %dx%d, want 12x7", cfg.Width, cfg.Height)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("full decode failed, chunk CRCs are likely wrong: %v", err)
	}
	if !bytes.Contains(data, []byte("tEXtparameters\x00a cat")) {
		t.Error("tEXt chunk not found in output")
	}
}

func TestOutputDirBuilder(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fs := NewOutputDir("/out").
		AddPNG("a.png", 4, 4, t0).
		AddJPEG("day/b.jpg", 4, 4, t0).
		AddFile("a.txt", "seed: 1", t0).
		Build()

	for _, p := range []string{"a.png", "day/b.jpg", "a.txt"} {
		info, err := fs.Stat(p)
		if err != nil {
			t.Errorf("Stat(%q) error = %v", p, err)
			continue
		}
		if !info.ModTime().Equal(t0) {
			t.Errorf("%s mtime = %v, want %v", p, info.ModTime(), t0)
		}
	}
}
