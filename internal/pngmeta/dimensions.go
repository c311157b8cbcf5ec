package pngmeta

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Dimensions reads the image header and returns its size and format name.
func Dimensions(r io.Reader) (genmeta.Dimensions, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return genmeta.Dimensions{}, "", fmt.Errorf("decode image header: %w", err)
	}
	return genmeta.Dimensions{Width: cfg.Width, Height: cfg.Height}, format, nil
}
