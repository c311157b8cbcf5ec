package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/genmeta/internal/checksum"
	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/locate"
	"github.com/vvka-141/genmeta/internal/logging"
	"github.com/vvka-141/genmeta/internal/testing/fixtures"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

var t0 = time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

const loraGraph = `{
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "juggernaut.safetensors"}},
  "10": {"class_type": "LoraLoader", "inputs": {"lora_name": "more_details", "strength_model": 0.6, "strength_clip": 0.6, "model": ["4", 0], "clip": ["4", 1]}},
  "11": {"class_type": "LoraLoader", "inputs": {"lora_name": "realistic_lighting", "strength_model": 0.4, "strength_clip": 0.4, "model": ["10", 0], "clip": ["10", 1]}},
  "6": {"class_type": "CLIPTextEncode", "inputs": {"text": "a lighthouse at dusk", "clip": ["11", 1]}},
  "7": {"class_type": "CLIPTextEncode", "inputs": {"text": "blurry", "clip": ["11", 1]}},
  "3": {"class_type": "KSampler", "inputs": {"seed": 8675309, "steps": 30, "cfg": 7, "sampler_name": "euler", "scheduler": "normal", "denoise": 1,
    "model": ["11", 0], "positive": ["6", 0], "negative": ["7", 0]}}
}`

func newService(fs filesystem.FileSystemProvider) *ExtractionService {
	return NewExtractionService(fs, checksum.New(), logging.NewNullLogger())
}

func TestNewExtractionService_PanicsOnNil(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/")
	assert.Panics(t, func() { NewExtractionService(nil, checksum.New(), logging.NewNullLogger()) })
	assert.Panics(t, func() { NewExtractionService(fs, nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { NewExtractionService(fs, checksum.New(), nil) })
}

func TestExtract_EmbeddedGraphWithSidecar(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").
		AddPNG("ComfyUI_00001_.png", 832, 1216, t0, fixtures.TEXt("prompt", loraGraph)).
		AddFile("ComfyUI_00001_.txt", "a lighthouse\nSteps: 12, Seed: 1, Clip skip: 2", t0).
		Build()

	res, err := newService(fs).Extract(context.Background(), locate.Request{
		Mode: genmeta.ModeExplicitFile, Path: "/out/ComfyUI_00001_.png", IncludeSidecar: true,
	})
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, uint64(8675309), rec.Seed.Or(0), "embedded seed outranks sidecar")
	assert.Equal(t, 30, rec.Steps.Or(0))
	assert.Equal(t, "juggernaut.safetensors", rec.ModelName.Or(""))
	assert.Equal(t, 832, rec.Width.Or(0))
	assert.Equal(t, genmeta.OriginImage, rec.Provenance[genmeta.FieldWidth].Origin)
	clip, ok := rec.OtherParams.Get("Clip skip")
	require.True(t, ok)
	assert.Equal(t, "2", clip)

	require.Len(t, rec.Loras, 2)
	assert.Contains(t, res.Report, "  - more_details (Model: 0.6, CLIP: 0.6)\n  - realistic_lighting (Model: 0.4, CLIP: 0.4)")

	assert.Equal(t, []genmeta.EncodingKind{genmeta.EncodingWorkflowGraph, genmeta.EncodingFlatParameterText}, res.Encodings)
	assert.Equal(t, genmeta.ModeExplicitFile, res.Source.Mode)
	assert.Equal(t, "/out/ComfyUI_00001_.png", res.Source.ImagePath)
	assert.NotEmpty(t, res.Digest)
	assert.Equal(t, checksum.ExtractionID(res.Source.Digest, res.Digest), res.ID)
}

func TestExtract_IDFollowsImageBytes(t *testing.T) {
	png := string(fixtures.PNG(8, 8, fixtures.TEXt("parameters", "a cat\nSteps: 20, Seed: 1")))
	fs := fixtures.NewOutputDir("/out").
		AddFile("a.png", png, t0).
		AddFile("copy/b.png", png, t0.Add(time.Minute)).
		Build()
	svc := newService(fs)

	a, err := svc.Extract(context.Background(), locate.Request{Mode: genmeta.ModeExplicitFile, Path: "/out/a.png"})
	require.NoError(t, err)
	b, err := svc.Extract(context.Background(), locate.Request{Mode: genmeta.ModeMostRecent, Dir: "/out"})
	require.NoError(t, err)

	assert.Equal(t, "/out/copy/b.png", b.Source.ImagePath)
	assert.Equal(t, genmeta.ModeMostRecent, b.Source.Mode)
	assert.Equal(t, a.ID, b.ID)
}

func TestExtract_NoMetadata(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").AddJPEG("plain.jpg", 10, 20, t0).Build()

	res, err := newService(fs).Extract(context.Background(), locate.Request{Mode: genmeta.ModeExplicitFile, Path: "/out/plain.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "No metadata found", res.Report)
	assert.True(t, res.Record.IsEmpty())
	assert.Equal(t, 20, res.Record.Height.Or(0))
	assert.Empty(t, res.Encodings)
	assert.Empty(t, res.Digest)
}

func TestExtract_DirectInput(t *testing.T) {
	svc := newService(filesystem.NewMemoryFileSystem("/"))

	res, err := svc.Extract(context.Background(), locate.Request{
		Mode: genmeta.ModeDirectInput,
		Payload: &genmeta.Payload{
			Metadata: map[string]string{
				"parameters": "portrait\nNegative prompt: \nSteps: 25, Seed: 3, Size: 512x512",
				"Software":   "not metadata at all",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []genmeta.EncodingKind{genmeta.EncodingUnknown, genmeta.EncodingFlatParameterText}, res.Encodings)
	assert.True(t, res.Record.NegativePrompt.IsEmpty())
	assert.Contains(t, res.Report, "Negative Prompt:\n  (Empty)")
	assert.Equal(t, genmeta.OriginDirect, res.Record.Provenance[genmeta.FieldSeed].Origin)
	assert.Equal(t, checksum.ExtractionID("", res.Digest), res.ID)
}

func TestExtract_Errors(t *testing.T) {
	svc := newService(fixtures.NewOutputDir("/out").AddFile("x.bmp", "BM", t0).Build())

	_, err := svc.Extract(context.Background(), locate.Request{Mode: genmeta.ModeExplicitFile, Path: "/out/x.bmp"})
	assert.True(t, errors.Is(err, genmeta.ErrUnsupportedFormat))

	_, err = svc.Extract(context.Background(), locate.Request{Mode: genmeta.ModeMostRecent, Dir: "/out"})
	assert.True(t, errors.Is(err, genmeta.ErrNotFound))

	_, err = svc.Extract(context.Background(), locate.Request{Mode: "sideways"})
	assert.True(t, errors.Is(err, genmeta.ErrInvalidConfig))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Extract(ctx, locate.Request{Mode: genmeta.ModeDirectInput})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSummarize(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").
		AddPNG("day1/a.png", 8, 8, t0, fixtures.TEXt("prompt", loraGraph)).
		AddJPEG("b.jpg", 8, 8, t0.Add(time.Hour)).
		AddFile("b.txt", "seed: 5\nsteps: 9", t0).
		AddPNG("c.png", 8, 8, t0.Add(2*time.Hour), fixtures.TEXt("Comment", "just a comment")).
		AddFile("notes.md", "ignored", t0).
		Build()

	rows, err := newService(fs).Summarize(context.Background(), "/out", false)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "day1/a.png", rows[0].File)
	assert.Equal(t, "workflow-graph", rows[0].Encoding)
	assert.Len(t, rows[0].Record.Loras, 2)

	assert.Equal(t, "b.jpg", rows[1].File)
	assert.Equal(t, "key-value-text", rows[1].Encoding)
	assert.Equal(t, 9, rows[1].Record.Steps.Or(0))

	assert.Equal(t, "unknown", rows[2].Encoding)
	assert.True(t, rows[2].Record.IsEmpty())
}

func TestSummarize_Cancelled(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").AddJPEG("a.jpg", 8, 8, t0).Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(fs).Summarize(ctx, "/out", false)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEncodingSummary(t *testing.T) {
	assert.Equal(t, "absent", encodingSummary(nil))
	assert.Equal(t, "workflow-graph, flat-parameter-text", encodingSummary([]genmeta.EncodingKind{
		genmeta.EncodingWorkflowGraph, genmeta.EncodingFlatParameterText, genmeta.EncodingWorkflowGraph, genmeta.EncodingAbsent,
	}))
}

func TestExtract_LogsTaggedWithImageName(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").
		AddPNG("a.png", 8, 8, t0, fixtures.TEXt("parameters", "a cat\nSteps: 20")).
		Build()
	var buf bytes.Buffer
	svc := NewExtractionService(fs, checksum.New(), logging.NewConsoleLoggerTo(&buf, true))

	_, err := svc.Extract(context.Background(), locate.Request{Mode: genmeta.ModeExplicitFile, Path: "/out/a.png"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[VERBOSE] [a.png] Parsed ")
}

func TestExtract_SidecarFillsUnusableEmbeddedChunks(t *testing.T) {
	for name, chunk := range map[string]fixtures.TextChunk{
		"comment":          fixtures.TEXt("Comment", "Created with GIMP"),
		"empty parameters": fixtures.TEXt("parameters", ""),
	} {
		t.Run(name, func(t *testing.T) {
			fs := fixtures.NewOutputDir("/out").
				AddPNG("img.png", 8, 8, t0, chunk).
				AddFile("img.txt", "a lighthouse\nSteps: 30, Sampler: Euler a, Seed: 42", t0).
				Build()

			res, err := newService(fs).Extract(context.Background(), locate.Request{
				Mode: genmeta.ModeExplicitFile, Path: "/out/img.png",
			})
			require.NoError(t, err)
			assert.Equal(t, uint64(42), res.Record.Seed.Or(0))
			assert.Equal(t, 30, res.Record.Steps.Or(0))
			assert.Equal(t, genmeta.OriginSidecar, res.Record.Provenance[genmeta.FieldSeed].Origin)
			assert.NotContains(t, res.Report, genmeta.NoMetadataMessage)
		})
	}
}

func TestExtract_EmbeddedOutranksSidecarWhenIncomplete(t *testing.T) {
	fs := fixtures.NewOutputDir("/out").
		AddPNG("img.png", 8, 8, t0, fixtures.TEXt("parameters", "a harbour\nSteps: 20, Sampler: Euler")).
		AddFile("img.txt", "a lighthouse\nSteps: 30, Seed: 42", t0).
		Build()

	res, err := newService(fs).Extract(context.Background(), locate.Request{
		Mode: genmeta.ModeExplicitFile, Path: "/out/img.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "a harbour", res.Record.PositivePrompt.Or(""))
	assert.Equal(t, 20, res.Record.Steps.Or(0))
	assert.Equal(t, uint64(42), res.Record.Seed.Or(0), "seed missing from the image comes from the sidecar")
}
