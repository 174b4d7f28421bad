package ytdlp

import (
	"errors"
	"testing"
)

func TestExtractError(t *testing.T) {
	exitErr := errors.New("exit status 1")

	stderr := "WARNING: something minor\nERROR: Unsupported URL: https://example.com/v\n"
	if got := extractError(stderr, exitErr); got != "Unsupported URL: https://example.com/v" {
		t.Errorf("expected the ERROR line stripped, got %q", got)
	}

	if got := extractError("some raw noise\n", exitErr); got != "some raw noise" {
		t.Errorf("expected trimmed stderr fallback, got %q", got)
	}

	if got := extractError("", exitErr); got != "exit status 1" {
		t.Errorf("expected exit status fallback, got %q", got)
	}
}

func TestNonEmptyLines(t *testing.T) {
	lines := nonEmptyLines("My Video\n\n  \n/downloads/137abc123/My Video.mp4\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if lines[0] != "My Video" || lines[1] != "/downloads/137abc123/My Video.mp4" {
		t.Errorf("unexpected lines %v", lines)
	}
}
