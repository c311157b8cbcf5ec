package report_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/genmeta/internal/files/filesystem"
	"github.com/vvka-141/genmeta/internal/parse"
	"github.com/vvka-141/genmeta/internal/report"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

const scenario1 = "portrait of a woman\nNegative prompt: blurry\n" +
	"Steps: 30, Sampler: euler_a, CFG scale: 7.0, Seed: 1234567890, Size: 512x768, Model: dreamshaper_8.safetensors"

func parseFlat(t *testing.T, text string) genmeta.Record {
	t.Helper()
	rec, kind := parse.Parse(genmeta.NewBlob(genmeta.OriginEmbedded, "parameters", "", []byte(text)))
	require.Equal(t, genmeta.EncodingFlatParameterText, kind)
	return rec
}

func TestFormat_Scenario1(t *testing.T) {
	got := report.Format(parseFlat(t, scenario1))

	want := strings.Join([]string{
		"--- Generation Metadata Report ---",
		"Model: dreamshaper_8.safetensors",
		"Resolution: 512x768",
		"Sampler: euler_a",
		"Scheduler: N/A",
		"Seed: 1234567890",
		"Steps: 30",
		"CFG Scale: 7",
		"Denoise: N/A",
		"LoRAs: N/A",
		"",
		"Positive Prompt:",
		"  portrait of a woman",
		"",
		"Negative Prompt:",
		"  blurry",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormat_EmptyRecord(t *testing.T) {
	assert.Equal(t, "No metadata found", report.Format(genmeta.Record{}))

	rec, _ := parse.Parse(genmeta.NewBlob(genmeta.OriginEmbedded, "parameters", "", nil))
	assert.Equal(t, "No metadata found", report.Format(rec))
}

func TestFormat_PixelDimensionsAloneAreNoMetadata(t *testing.T) {
	rec := genmeta.Record{Width: genmeta.Present(64), Height: genmeta.Present(64)}
	rec.Note(genmeta.FieldWidth, genmeta.Provenance{Origin: genmeta.OriginImage})
	rec.Note(genmeta.FieldHeight, genmeta.Provenance{Origin: genmeta.OriginImage})

	assert.Equal(t, genmeta.NoMetadataMessage, report.Format(rec))
}

func TestFormat_EmptyAndAbsentDiffer(t *testing.T) {
	empty := genmeta.Record{PositivePrompt: genmeta.Present("x"), NegativePrompt: genmeta.Empty[string]()}
	absent := genmeta.Record{PositivePrompt: genmeta.Present("x")}

	emptyOut := report.Format(empty)
	absentOut := report.Format(absent)

	assert.Contains(t, emptyOut, "Negative Prompt:\n  (Empty)")
	assert.Contains(t, absentOut, "Negative Prompt:\n  N/A")
	assert.NotEqual(t, emptyOut, absentOut)
	assert.NotEqual(t, genmeta.PlaceholderAbsent, genmeta.PlaceholderEmpty)
}

func TestFormat_LorasAndOtherParams(t *testing.T) {
	rec := genmeta.Record{PositivePrompt: genmeta.Present("line one\nline two")}
	m1, m2 := 0.6, 0.4
	rec.Loras = []genmeta.Lora{
		genmeta.NewLora("more_details", &m1, nil),
		genmeta.NewLora("realistic_lighting", &m2, &m2),
	}
	rec.OtherParams.Set("Clip skip", "2")
	rec.OtherParams.Set("ENSD", "31337")

	got := report.Format(rec)

	assert.Contains(t, got, "LoRAs:\n  - more_details (Model: 0.6, CLIP: 0.6)\n  - realistic_lighting (Model: 0.4, CLIP: 0.4)\n")
	assert.Contains(t, got, "Positive Prompt:\n  line one\n  line two\n")
	assert.True(t, strings.HasSuffix(got, "--- Other Parameters ---\nClip skip: 2\nENSD: 31337"))
}

func TestFormat_PartialResolution(t *testing.T) {
	rec := genmeta.Record{Width: genmeta.Present(512), Steps: genmeta.Present(20)}
	assert.Contains(t, report.Format(rec), "Resolution: 512xN/A")
}

func TestStyled_SameContent(t *testing.T) {
	rec := parseFlat(t, scenario1)
	got := report.Styled(rec)

	for _, want := range []string{"Generation Metadata Report", "Seed:", "1234567890", "portrait of a woman", "N/A"} {
		assert.Contains(t, got, want)
	}
	assert.Contains(t, report.Styled(genmeta.Record{}), genmeta.NoMetadataMessage)
}

func TestFormatParameters_RoundTrip(t *testing.T) {
	inputs := []string{
		scenario1,
		"masterpiece <lora:more_details:0.6> castle\nNegative prompt:\n" +
			`Steps: 20, Sampler: DPM++ 2M, Schedule type: Karras, CFG scale: 5.5, Seed: 42, Size: 832x1216, ` +
			`Denoising strength: 0.35, Lora hashes: "more_details: 3b9f, other: 11aa", Clip skip: 2`,
		"Steps: 20, Seed: 7, Sampler: , Model: sdxl.safetensors",
	}
	for _, in := range inputs {
		first := parseFlat(t, in)
		text := report.FormatParameters(first)
		second := parseFlat(t, text)

		assert.Equal(t, first, second, "re-parsed from:\n%s", text)
	}
}

func TestFormatParameters_Scenario1(t *testing.T) {
	got := report.FormatParameters(parseFlat(t, scenario1))

	assert.Equal(t, "portrait of a woman\nNegative prompt: blurry\n"+
		"Steps: 30, Sampler: euler_a, CFG scale: 7, Seed: 1234567890, Size: 512x768, Model: dreamshaper_8.safetensors", got)
}

func TestFormatParameters_AppendsMissingLoraTags(t *testing.T) {
	m, c := 0.6, 0.3
	rec := genmeta.Record{
		PositivePrompt: genmeta.Present("a castle"),
		Steps:          genmeta.Present(20),
		Seed:           genmeta.Present(uint64(1)),
		Loras:          []genmeta.Lora{genmeta.NewLora("detail", &m, &c), genmeta.NewLora("light", nil, nil)},
	}

	got := report.FormatParameters(rec)
	assert.True(t, strings.HasPrefix(got, "a castle <lora:detail:0.6:0.3> <lora:light:1>\n"), got)

	again := parseFlat(t, got)
	assert.Equal(t, rec.Loras, again.Loras)
}

func TestTable(t *testing.T) {
	rows := []report.SummaryRow{
		{File: "a.png", Encoding: "WorkflowGraph", Record: parseFlat(t, scenario1)},
		{File: "b.jpg", Encoding: "Absent"},
	}

	got := report.Table(rows)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 6) // top, header, rule, two rows, bottom
	header := strings.ToUpper(lines[1])
	assert.Contains(t, header, "FILE")
	assert.Contains(t, header, "LORAS")
	assert.Contains(t, lines[3], "dreamshaper_8.safetensors")
	assert.Contains(t, lines[3], "1234567890")
	assert.Contains(t, lines[4], "N/A")
}

func TestSave(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/")

	path, err := report.Save(fs, "/reports/today", "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/reports/today/metadata_report.txt", path)

	got, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	_, err = fs.Stat(path + ".tmp")
	assert.Error(t, err, "temporary file is renamed away")
}

func TestSave_Overwrites(t *testing.T) {
	dir := t.TempDir()
	fs := filesystem.NewOSFileSystem()

	_, err := report.Save(fs, dir, "r.txt", "one")
	require.NoError(t, err)
	path, err := report.Save(fs, dir, "r.txt", "two")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "r.txt"), path)
	got, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestSave_Errors(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/")
	fs.AddFile("/blocked", "a file, not a directory")

	_, err := report.Save(fs, "/blocked", "r.txt", "x")
	assert.True(t, errors.Is(err, genmeta.ErrWrite), "got %v", err)

	_, err = report.Save(fs, "/out", "../r.txt", "x")
	assert.True(t, errors.Is(err, genmeta.ErrInvalidConfig), "got %v", err)
}
