package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/vvka-141/genmeta/pkg/genmeta"
)

func TestConsoleLogger_Verbose_WhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)
	logger.Verbose("test message: %s", "value")

	expected := "[VERBOSE] test message: value\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_Verbose_WhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)
	logger.Verbose("test message: %s", "value")

	if buf.String() != "" {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_InfoAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)
	logger.Info("info message: %s", "value")
	logger.Error("error message")

	expected := "info message: value\n[ERROR] error message\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestConsoleLogger_NoArgsKeepsPercentSigns(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, true).Info("denoise 100%")

	if buf.String() != "denoise 100%\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestConsoleLogger_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Verbose("line %d", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("Expected 20 lines, got %d", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "[VERBOSE] line ") {
			t.Errorf("malformed line %q", l)
		}
	}
}

func TestPrefixLogger(t *testing.T) {
	var buf bytes.Buffer
	var logger genmeta.Logger = WithPrefix(NewConsoleLoggerTo(&buf, true), "a.png")

	logger.Verbose("skipped %s", "sidecar")
	logger.Error("boom")

	expected := "[VERBOSE] [a.png] skipped sidecar\n[ERROR] [a.png] boom\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestNullLogger_Discards(t *testing.T) {
	var logger genmeta.Logger = NewNullLogger()
	logger.Verbose("x")
	logger.Info("y %d", 1)
	logger.Error("z")
}
