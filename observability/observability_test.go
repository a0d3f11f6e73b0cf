package observability_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"pdfmerge/observability"
)

func TestTextLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewTextLogger(&buf, observability.LevelInfo)

	log.Info("loaded file",
		observability.String("path", "a.pdf"),
		observability.Int("pages", 3),
		observability.Int64("objects", 12),
	)

	got := buf.String()
	want := "INFO loaded file path=a.pdf pages=3 objects=12\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextLoggerLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewTextLogger(&buf, observability.LevelWarn)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")
	log.Error("also shown", observability.Error("err", errors.New("boom")))

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Fatalf("below-threshold lines emitted: %q", got)
	}
	if !strings.Contains(got, "WARN shown\n") || !strings.Contains(got, "ERROR also shown err=boom\n") {
		t.Fatalf("missing lines: %q", got)
	}
}

func TestTextLoggerWithBindsFields(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewTextLogger(&buf, observability.LevelDebug).
		With(observability.String("file", "b.pdf"))

	log.Debug("renumbered", observability.Int("offset", 4))

	want := "DEBUG renumbered file=b.pdf offset=4\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]observability.Level{
		"debug":   observability.LevelDebug,
		"Info":    observability.LevelInfo,
		"WARNING": observability.LevelWarn,
		"error":   observability.LevelError,
		"bogus":   observability.LevelInfo,
	}
	for in, want := range cases {
		if got := observability.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
