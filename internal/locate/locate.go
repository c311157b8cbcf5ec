package locate

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vvka-141/genmeta/internal/checksum"
	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/parse"
	"github.com/vvka-141/genmeta/internal/pngmeta"
	"github.com/vvka-141/genmeta/internal/reconcile"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// embeddedKeywords lists recognized chunk keywords, least authoritative
// first. The reconciler lets later blobs win within an origin.
var embeddedKeywords = []string{"Comment", "Description", "parameters", "workflow", "prompt"}

// Request selects the input of one extraction.
type Request struct {
	Mode genmeta.SourceMode

	// Path is the image for explicit_file.
	Path string

	// Dir is the output directory scanned by most_recent.
	Dir string

	// Payload is the image handed over for direct_input.
	Payload *genmeta.Payload

	// IncludeSidecar reads sidecars even when the embedded metadata is
	// complete.
	IncludeSidecar bool
}

// Image describes the resolved image. Fields are zero for direct input
// without dimensions.
type Image struct {
	Path       string
	Format     string
	Digest     string
	ModTime    time.Time
	Dimensions genmeta.Dimensions
}

// Locator captures raw metadata blobs.
// Locator is safe for concurrent use as long as the filesystem provider
// and calculator are.
type Locator struct {
	fs     filesystem.FileSystemProvider
	calc   checksum.Calculator
	logger genmeta.Logger
}

// New creates a Locator. Panics if any dependency is nil.
func New(fs filesystem.FileSystemProvider, calc checksum.Calculator, logger genmeta.Logger) *Locator {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if calc == nil {
		panic("calc cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Locator{fs: fs, calc: calc, logger: logger}
}

// Locate resolves the request and returns its blobs in reconciliation
// order. Finding an image without metadata is not an error.
func (l *Locator) Locate(req Request) ([]genmeta.Blob, Image, error) {
	switch req.Mode {
	case genmeta.ModeDirectInput:
		blobs, img := l.fromPayload(req.Payload)
		return blobs, img, nil
	case genmeta.ModeExplicitFile:
		path, err := l.explicit(req.Path)
		if err != nil {
			return nil, Image{}, err
		}
		return l.fromFile(path, req.IncludeSidecar)
	case genmeta.ModeMostRecent, "":
		path, err := l.MostRecent(req.Dir)
		if err != nil {
			return nil, Image{}, err
		}
		return l.fromFile(path, req.IncludeSidecar)
	default:
		return nil, Image{}, fmt.Errorf("source mode %q: %w", req.Mode, genmeta.ErrInvalidConfig)
	}
}

func (l *Locator) explicit(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &genmeta.SourceError{
			Message: "no image path given",
			Hint:    "Pass the image path as an argument, or use --mode most_recent.",
			Err:     genmeta.ErrNotFound,
		}
	}
	info, err := l.fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", &genmeta.SourceError{
			Path:    path,
			Message: "image file does not exist",
			Hint:    "Check the path; directories are scanned with --mode most_recent.",
			Err:     genmeta.ErrNotFound,
		}
	}
	if !IsSupportedImage(path) {
		return "", &genmeta.SourceError{
			Path:    path,
			Message: fmt.Sprintf("extension %q is not a supported image type", filepath.Ext(path)),
			Hint:    "Supported extensions: " + strings.Join(genmeta.SupportedImageExtensions, ", "),
			Err:     genmeta.ErrUnsupportedFormat,
		}
	}
	return path, nil
}

// IsSupportedImage reports whether path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range genmeta.SupportedImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// MostRecent walks dir recursively and returns the newest supported image
// by modification time. Ties go to the lexically greatest path.
func (l *Locator) MostRecent(dir string) (string, error) {
	images, err := l.Images(dir)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", &genmeta.SourceError{
			Path:    dir,
			Message: "no supported images found",
			Hint:    "Generate an image first, or point --output-dir at the directory your tool saves to.",
			Err:     genmeta.ErrNotFound,
		}
	}
	newest := images[len(images)-1]
	l.logger.Verbose("Most recent image: %s (%s)", newest.Path, newest.ModTime.Format(time.RFC3339))
	return newest.Path, nil
}

// Images lists supported images under dir, oldest first.
func (l *Locator) Images(dir string) ([]Image, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &genmeta.SourceError{
			Message: "no output directory configured",
			Hint:    "Set output_dir in genmeta.yaml, GENMETA_OUTPUT_DIR, or --output-dir.",
			Err:     genmeta.ErrNotFound,
		}
	}
	d, err := l.fs.Open(dir)
	if err != nil {
		return nil, &genmeta.SourceError{
			Path:    dir,
			Message: "output directory is not accessible",
			Hint:    "Check that the directory exists and is readable.",
			Err:     errors.Join(genmeta.ErrNotFound, err),
		}
	}

	var images []Image
	err = d.Walk(func(f filesystem.File, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped rather than failing the scan.
			l.logger.Verbose("Skipping unreadable path: %v", walkErr)
			return nil
		}
		if f.Info().IsDir() || !IsSupportedImage(f.Path()) {
			return nil
		}
		images = append(images, Image{Path: f.Path(), ModTime: f.Info().ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Slice(images, func(i, j int) bool {
		if !images[i].ModTime.Equal(images[j].ModTime) {
			return images[i].ModTime.Before(images[j].ModTime)
		}
		return images[i].Path < images[j].Path
	})
	return images, nil
}

func (l *Locator) fromFile(path string, includeSidecar bool) ([]genmeta.Blob, Image, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, Image{}, &genmeta.SourceError{
			Path:    path,
			Message: "image file could not be read",
			Err:     errors.Join(genmeta.ErrNotFound, err),
		}
	}

	img := Image{Path: path, Digest: l.calc.CalculateRaw(data)}
	if info, err := l.fs.Stat(path); err == nil {
		img.ModTime = info.ModTime()
	}
	if dims, format, err := pngmeta.Dimensions(bytes.NewReader(data)); err == nil {
		img.Dimensions, img.Format = dims, format
	} else {
		l.logger.Verbose("Image header unreadable for %s: %v", path, err)
	}

	blobs := l.embedded(path, data)
	if includeSidecar || !embeddedComplete(blobs) {
		blobs = append(blobs, l.sidecars(path, blobs)...)
	}
	return blobs, img, nil
}

// embeddedComplete reports whether the embedded blobs make sidecars
// unnecessary: at least one must parse as generation metadata, and
// together they must supply the prompt, seed and steps. Embedded values
// still outrank whatever a sidecar adds.
func embeddedComplete(blobs []genmeta.Blob) bool {
	partials := make([]reconcile.Partial, 0, len(blobs))
	for _, b := range blobs {
		rec, kind := parse.Parse(b)
		switch kind {
		case genmeta.EncodingWorkflowGraph, genmeta.EncodingFlatParameterText, genmeta.EncodingKeyValueText:
			partials = append(partials, reconcile.Partial{Origin: b.Origin(), Keyword: b.Keyword(), Record: rec})
		}
	}
	if len(partials) == 0 {
		return false
	}
	rec := reconcile.Reconcile(partials, genmeta.Dimensions{})
	return !rec.PositivePrompt.IsAbsent() && !rec.Seed.IsAbsent() && !rec.Steps.IsAbsent()
}

// embedded reads recognized PNG text chunks. Other formats carry no parsed
// text chunks.
func (l *Locator) embedded(path string, data []byte) []genmeta.Blob {
	chunks, err := pngmeta.ReadText(bytes.NewReader(data), genmeta.MaxMetadataSize)
	if errors.Is(err, pngmeta.ErrNotPNG) {
		return nil
	}
	if err != nil {
		l.logger.Verbose("PNG chunk stream of %s ended early: %v", path, err)
	}

	var blobs []genmeta.Blob
	for _, keyword := range embeddedKeywords {
		for _, c := range chunks {
			if !strings.EqualFold(c.Keyword, keyword) {
				continue
			}
			blobs = append(blobs, genmeta.NewBlob(genmeta.OriginEmbedded, keyword, path, c.Text))
			l.logger.Verbose("Found %s chunk %q (%d bytes)", c.Type, c.Keyword, len(c.Text))
		}
	}
	return blobs
}

// sidecars reads <base>.json and <base>.txt, dropping any whose normalized
// checksum matches an embedded blob.
func (l *Locator) sidecars(imagePath string, embedded []genmeta.Blob) []genmeta.Blob {
	seen := make(map[string]bool, len(embedded))
	for _, b := range embedded {
		seen[l.calc.CalculateNormalized(b.Bytes())] = true
	}

	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	var blobs []genmeta.Blob
	for _, ext := range genmeta.SidecarExtensions {
		path := base + ext
		info, err := l.fs.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > genmeta.MaxMetadataSize {
			l.logger.Verbose("Sidecar %s exceeds %d bytes, skipped", path, genmeta.MaxMetadataSize)
			continue
		}
		data, err := l.fs.ReadFile(path)
		if err != nil {
			l.logger.Verbose("Sidecar %s unreadable: %v", path, err)
			continue
		}
		sum := l.calc.CalculateNormalized(data)
		if seen[sum] {
			l.logger.Verbose("Sidecar %s repeats embedded metadata, skipped", path)
			continue
		}
		seen[sum] = true
		blobs = append(blobs, genmeta.NewBlob(genmeta.OriginSidecar, ext, path, data))
	}
	return blobs
}

// fromPayload converts a direct payload. Unrecognized keys come first in
// name order, then the recognized keywords in authority order.
func (l *Locator) fromPayload(p *genmeta.Payload) ([]genmeta.Blob, Image) {
	if p == nil {
		return nil, Image{}
	}
	img := Image{Dimensions: genmeta.Dimensions{Width: p.Width, Height: p.Height}}

	rank := func(key string) int {
		for i, k := range embeddedKeywords {
			if strings.EqualFold(k, key) {
				return i + 1
			}
		}
		return 0
	}
	keys := make([]string, 0, len(p.Metadata))
	for k := range p.Metadata {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	blobs := make([]genmeta.Blob, 0, len(keys))
	for _, k := range keys {
		blobs = append(blobs, genmeta.NewBlob(genmeta.OriginDirect, k, "", []byte(p.Metadata[k])))
	}
	return blobs, img
}
