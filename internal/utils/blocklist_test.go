package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBlocklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.txt")
	content := "# comment line\nbadsite.example\n\n  OtherHost.Test  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBlocklist(path)
	if err != nil {
		t.Fatal(err)
	}

	if blocked, term := b.IsBlocked("https://badsite.example/v"); !blocked || term != "badsite.example" {
		t.Errorf("expected badsite.example to match, got %v %q", blocked, term)
	}
	// Matching is case-insensitive on the URL side.
	if blocked, _ := b.IsBlocked("https://OTHERHOST.test/v"); !blocked {
		t.Error("expected case-insensitive match")
	}
	if blocked, _ := b.IsBlocked("https://goodsite.example/v"); blocked {
		t.Error("unexpected match for clean URL")
	}
}

func TestLoadBlocklistMissingFile(t *testing.T) {
	b, err := LoadBlocklist(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("missing file should yield an empty list, got %v", err)
	}
	if blocked, _ := b.IsBlocked("https://anything.example/v"); blocked {
		t.Error("empty list must not block")
	}
}
