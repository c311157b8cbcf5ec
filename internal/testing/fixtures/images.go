package fixtures

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/vvka-141/genmeta/internal/files/filesystem"
)

// TextChunk is a PNG text chunk to embed in a fixture image.
type TextChunk struct {
	Type    string // tEXt, zTXt or iTXt
	Keyword string
	Text    string
}

// TEXt returns an uncompressed Latin-1 text chunk.
func TEXt(keyword, text string) TextChunk { return TextChunk{"tEXt", keyword, text} }

// ZTXt returns a zlib-compressed text chunk.
func ZTXt(keyword, text string) TextChunk { return TextChunk{"zTXt", keyword, text} }

// ITXt returns an international (UTF-8) text chunk.
func ITXt(keyword, text string) TextChunk { return TextChunk{"iTXt", keyword, text} }

// PNG encodes a w×h image with the given text chunks placed right after
// IHDR. Panics on encoder failure; fixtures are built at test setup.
func PNG(w, h int, chunks ...TextChunk) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h)); err != nil {
		panic(err)
	}
	raw := buf.Bytes()

	// signature (8) + IHDR length/type/data/crc (4+4+13+4)
	const afterIHDR = 33
	out := make([]byte, 0, len(raw)+256)
	out = append(out, raw[:afterIHDR]...)
	for _, c := range chunks {
		out = append(out, encodeChunk(c.Type, chunkData(c))...)
	}
	return append(out, raw[afterIHDR:]...)
}

// JPEG encodes a w×h image without metadata.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	return img
}

func chunkData(c TextChunk) []byte {
	var b bytes.Buffer
	b.WriteString(c.Keyword)
	b.WriteByte(0)
	switch c.Type {
	case "zTXt":
		b.WriteByte(0)
		b.Write(deflate(c.Text))
	case "iTXt":
		b.Write([]byte{0, 0}) // uncompressed
		b.WriteByte(0)        // empty language tag
		b.WriteByte(0)        // empty translated keyword
		b.WriteString(c.Text)
	default:
		b.WriteString(c.Text)
	}
	return b.Bytes()
}

func deflate(text string) []byte {
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	_, _ = zw.Write([]byte(text))
	_ = zw.Close()
	return b.Bytes()
}

func encodeChunk(typ string, data []byte) []byte {
	out := make([]byte, 8, 12+len(data))
	binary.BigEndian.PutUint32(out[:4], uint32(len(data)))
	copy(out[4:8], typ)
	out = append(out, data...)
	crc := crc32.NewIEEE()
	crc.Write(out[4:])
	return binary.BigEndian.AppendUint32(out, crc.Sum32())
}

// OutputDirBuilder provides a fluent API for an in-memory output directory
// of generated images and sidecars.
//
// Example usage:
//
//	fs := NewOutputDir("/comfy/output").
//	    AddPNG("ComfyUI_00001_.png", 512, 768, t0, TEXt("parameters", "a cat\nSteps: 20, Seed: 1")).
//	    AddFile("ComfyUI_00001_.txt", "seed: 2", t0).
//	    Build()
type OutputDirBuilder struct {
	root  string
	files []entry
}

type entry struct {
	path    string
	content []byte
	modTime time.Time
}

// NewOutputDir starts a fixture rooted at root.
func NewOutputDir(root string) *OutputDirBuilder {
	return &OutputDirBuilder{root: root}
}

// AddPNG adds a PNG with embedded text chunks.
func (b *OutputDirBuilder) AddPNG(name string, w, h int, modTime time.Time, chunks ...TextChunk) *OutputDirBuilder {
	b.files = append(b.files, entry{name, PNG(w, h, chunks...), modTime})
	return b
}

// AddJPEG adds a JPEG without metadata.
func (b *OutputDirBuilder) AddJPEG(name string, w, h int, modTime time.Time) *OutputDirBuilder {
	b.files = append(b.files, entry{name, JPEG(w, h), modTime})
	return b
}

// AddFile adds an arbitrary file, typically a sidecar.
func (b *OutputDirBuilder) AddFile(name, content string, modTime time.Time) *OutputDirBuilder {
	b.files = append(b.files, entry{name, []byte(content), modTime})
	return b
}

// Build generates the in-memory filesystem from the accumulated files.
func (b *OutputDirBuilder) Build() *filesystem.MemoryFileSystem {
	fs := filesystem.NewMemoryFileSystem(b.root)
	for _, f := range b.files {
		fs.AddFileWithTime(f.path, string(f.content), f.modTime)
	}
	return fs
}
