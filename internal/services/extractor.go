package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vvka-141/genmeta/internal/checksum"
	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/locate"
	"github.com/vvka-141/genmeta/internal/logging"
	"github.com/vvka-141/genmeta/internal/parse"
	"github.com/vvka-141/genmeta/internal/reconcile"
	"github.com/vvka-141/genmeta/internal/report"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// Result is the outcome of one extraction.
type Result struct {
	// ID is stable for the same image bytes (or, without an image, the
	// same metadata).
	ID     uuid.UUID      `json:"id"`
	Source genmeta.Source `json:"source"`
	// Digest identifies the metadata that was read, independent of its
	// formatting.
	Digest    string                 `json:"digest"`
	Encodings []genmeta.EncodingKind `json:"encodings"`
	Record    genmeta.Record         `json:"record"`
	Report    string                 `json:"-"`
}

// ExtractionService runs locate, parse, reconcile and format for one image.
// Thread-Safety: safe for concurrent use when the filesystem provider is.
type ExtractionService struct {
	locator *locate.Locator
	calc    checksum.Calculator
	logger  genmeta.Logger
}

// NewExtractionService creates an ExtractionService with all dependencies
// injected. Panics on nil dependencies: they are wiring mistakes, not
// runtime conditions.
func NewExtractionService(fs filesystem.FileSystemProvider, calc checksum.Calculator, logger genmeta.Logger) *ExtractionService {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if calc == nil {
		panic("calc cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ExtractionService{
		locator: locate.New(fs, calc, logger),
		calc:    calc,
		logger:  logger,
	}
}

// Extract resolves the request and returns the reconciled record. An image
// without metadata is a successful extraction whose record is empty.
func (s *ExtractionService) Extract(ctx context.Context, req locate.Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blobs, img, err := s.locator.Locate(req)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = genmeta.ModeMostRecent
	}
	res := &Result{
		Source: genmeta.Source{
			Mode:       mode,
			ImagePath:  img.Path,
			Digest:     img.Digest,
			Dimensions: img.Dimensions,
		},
		Encodings: make([]genmeta.EncodingKind, 0, len(blobs)),
	}

	log := s.logger
	if img.Path != "" {
		log = logging.WithPrefix(s.logger, filepath.Base(img.Path))
	}

	partials := make([]reconcile.Partial, 0, len(blobs))
	var digests []string
	for _, b := range blobs {
		rec, kind := parse.Parse(b)
		res.Encodings = append(res.Encodings, kind)
		digests = append(digests, b.Keyword()+"="+s.calc.CalculateNormalized(b.Bytes()))

		switch kind {
		case genmeta.EncodingAbsent, genmeta.EncodingUnknown:
			log.Verbose("Skipping %s: %s metadata", b, kind)
			continue
		}
		log.Verbose("Parsed %s as %s", b, kind)
		logDegradations(log, b, rec)
		partials = append(partials, reconcile.Partial{Origin: b.Origin(), Keyword: b.Keyword(), Record: rec})
	}

	res.Record = reconcile.Reconcile(partials, img.Dimensions)
	if len(digests) > 0 {
		res.Digest = s.calc.CalculateRaw([]byte(strings.Join(digests, "\n")))
	}
	res.ID = checksum.ExtractionID(img.Digest, res.Digest)
	res.Report = report.Format(res.Record)

	if res.Record.IsEmpty() {
		log.Verbose("No metadata found in %d blob(s)", len(blobs))
	}
	return res, nil
}

// logDegradations reports fragments a parser could not read.
func logDegradations(log genmeta.Logger, b genmeta.Blob, rec genmeta.Record) {
	for _, k := range rec.OtherParams.Keys() {
		if !strings.HasSuffix(k, "_raw") {
			continue
		}
		v, _ := rec.OtherParams.Get(k)
		log.Verbose("Partial extraction from %s: unreadable %s %q", b, strings.TrimSuffix(k, "_raw"), v)
	}
}

// Summarize extracts every supported image under dir, oldest first. An
// image that cannot be read gets a row marked unreadable instead of
// failing the listing.
func (s *ExtractionService) Summarize(ctx context.Context, dir string, includeSidecar bool) ([]report.SummaryRow, error) {
	images, err := s.locator.Images(dir)
	if err != nil {
		return nil, err
	}

	rows := make([]report.SummaryRow, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return rows, fmt.Errorf("listing interrupted: %w", err)
		}

		file := img.Path
		if rel, err := filepath.Rel(dir, img.Path); err == nil {
			file = rel
		}

		res, err := s.Extract(ctx, locate.Request{
			Mode:           genmeta.ModeExplicitFile,
			Path:           img.Path,
			IncludeSidecar: includeSidecar,
		})
		if err != nil {
			s.logger.Verbose("Skipping %s: %v", img.Path, err)
			rows = append(rows, report.SummaryRow{File: file, Encoding: "unreadable"})
			continue
		}
		rows = append(rows, report.SummaryRow{File: file, Encoding: encodingSummary(res.Encodings), Record: res.Record})
	}
	return rows, nil
}

func encodingSummary(kinds []genmeta.EncodingKind) string {
	var names []string
	seen := make(map[genmeta.EncodingKind]bool)
	for _, k := range kinds {
		if k == genmeta.EncodingAbsent || seen[k] {
			continue
		}
		seen[k] = true
		names = append(names, k.String())
	}
	if len(names) == 0 {
		return genmeta.EncodingAbsent.String()
	}
	return strings.Join(names, ", ")
}
