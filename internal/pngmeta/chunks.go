package pngmeta

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNotPNG is returned when the stream lacks the PNG signature.
var ErrNotPNG = errors.New("not a PNG stream")

var signature = []byte("\x89PNG\r\n\x1a\n")

// Chunk is one decoded text chunk.
type Chunk struct {
	Type    string // tEXt, zTXt or iTXt
	Keyword string
	Text    []byte
}

// ReadText returns the text chunks of a PNG stream in file order. Chunks
// whose payload exceeds limit, or that fail to decompress, are skipped.
// Reading stops at IEND.
func ReadText(r io.Reader, limit int64) ([]Chunk, error) {
	br := bufio.NewReader(r)

	sig := make([]byte, len(signature))
	if _, err := io.ReadFull(br, sig); err != nil || !bytes.Equal(sig, signature) {
		return nil, ErrNotPNG
	}

	var out []Chunk
	var header [8]byte
	for {
		if _, err := io.ReadFull(br, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("read chunk header: %w", err)
		}
		length := int64(binary.BigEndian.Uint32(header[:4]))
		typ := string(header[4:8])

		if typ == "IEND" {
			return out, nil
		}
		if !isText(typ) || length > limit {
			if _, err := io.CopyN(io.Discard, br, length+4); err != nil {
				return out, fmt.Errorf("skip %s chunk: %w", typ, err)
			}
			continue
		}

		data := make([]byte, length)
		if _, err := io.ReadFull(br, data); err != nil {
			return out, fmt.Errorf("read %s chunk: %w", typ, err)
		}
		if _, err := io.CopyN(io.Discard, br, 4); err != nil {
			return out, fmt.Errorf("read %s crc: %w", typ, err)
		}
		if c, ok := decodeText(typ, data, limit); ok {
			out = append(out, c)
		}
	}
}

func isText(typ string) bool {
	return typ == "tEXt" || typ == "zTXt" || typ == "iTXt"
}

func decodeText(typ string, data []byte, limit int64) (Chunk, bool) {
	keyword, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(keyword) == 0 {
		return Chunk{}, false
	}
	c := Chunk{Type: typ, Keyword: latin1(keyword)}

	switch typ {
	case "tEXt":
		c.Text = []byte(latin1(rest))
	case "zTXt":
		if len(rest) < 1 || rest[0] != 0 {
			return Chunk{}, false
		}
		text, err := inflate(rest[1:], limit)
		if err != nil {
			return Chunk{}, false
		}
		c.Text = []byte(latin1(text))
	case "iTXt":
		if len(rest) < 2 {
			return Chunk{}, false
		}
		compressed, method := rest[0] == 1, rest[1]
		// Language tag, then translated keyword.
		_, rest, ok = bytes.Cut(rest[2:], []byte{0})
		if !ok {
			return Chunk{}, false
		}
		_, rest, ok = bytes.Cut(rest, []byte{0})
		if !ok {
			return Chunk{}, false
		}
		if compressed {
			if method != 0 {
				return Chunk{}, false
			}
			text, err := inflate(rest, limit)
			if err != nil {
				return Chunk{}, false
			}
			rest = text
		}
		c.Text = append([]byte(nil), rest...)
	}
	return c, true
}

func inflate(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("decompressed text exceeds %d bytes", limit)
	}
	return out, nil
}

// latin1 converts ISO 8859-1 bytes to UTF-8. Writers that put UTF-8 into
// tEXt anyway are passed through unchanged.
func latin1(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
