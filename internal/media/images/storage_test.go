package images

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStorage(t *testing.T) {
	base := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStorage(base)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Errorf("expected uploads root to exist: %v", err)
	}
	if s.Path("cocktails/x.jpg") != filepath.Join(base, "cocktails", "x.jpg") {
		t.Errorf("Path: got %q", s.Path("cocktails/x.jpg"))
	}

	if _, err := NewStorage(""); err == nil {
		t.Error("expected error for empty base path")
	}
}

func TestRelocate(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "gin.JPG")
	if err := os.WriteFile(srcPath, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	s, err := NewStorage(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	// The bar's directory does not exist yet; Relocate creates it.
	rel, ext, err := s.Relocate(srcPath, "ingredients", "bar-1", "gin-bar-1")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if ext != "jpg" {
		t.Errorf("ext: got %q, want jpg", ext)
	}
	if !strings.HasPrefix(rel, "ingredients/bar-1/gin-bar-1_") {
		t.Errorf("rel: got %q, want ingredients/bar-1/gin-bar-1_* prefix", rel)
	}
	if !strings.HasSuffix(rel, ".jpg") {
		t.Errorf("rel: got %q, want .jpg suffix", rel)
	}
	if !s.Exists(rel) {
		t.Error("expected relocated file to exist")
	}

	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		t.Fatalf("read relocated file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("content mismatch: %q", data)
	}

	// The source is copied, not moved.
	if _, err := os.Stat(srcPath); err != nil {
		t.Errorf("expected source to remain: %v", err)
	}

	// A second relocation of the same source never collides.
	rel2, _, err := s.Relocate(srcPath, "ingredients", "bar-1", "gin-bar-1")
	if err != nil {
		t.Fatalf("Relocate (second): %v", err)
	}
	if rel2 == rel {
		t.Errorf("expected distinct target names, both %q", rel)
	}
}

func TestRelocate_CreatesBarDirectory(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "lime.png")
	if err := os.WriteFile(srcPath, []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	base := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStorage(base)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	barDir := filepath.Join(base, "ingredients", "bar-new")
	if _, err := os.Stat(barDir); !os.IsNotExist(err) {
		t.Fatalf("expected %s to start absent, stat err %v", barDir, err)
	}

	rel, _, err := s.Relocate(srcPath, "ingredients", "bar-new", "lime-bar-new")
	if err != nil {
		t.Fatalf("Relocate into fresh bar: %v", err)
	}
	if !s.Exists(rel) {
		t.Errorf("expected %q to exist after relocation", rel)
	}

	// A later relocation into the now-existing directory also succeeds.
	if _, _, err := s.Relocate(srcPath, "ingredients", "bar-new", "lime-bar-new"); err != nil {
		t.Errorf("Relocate into existing bar dir: %v", err)
	}
}

func TestRelocate_MissingSource(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	_, _, err = s.Relocate(filepath.Join(t.TempDir(), "nope.png"), "cocktails", "bar-1", "nope")
	if !errors.Is(err, ErrSourceMissing) {
		t.Errorf("expected ErrSourceMissing, got %v", err)
	}
}

func TestComputeBlurHash(t *testing.T) {
	// Write a real PNG so the decoder path runs end to end.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(t.TempDir(), "white.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	f.Close()

	hash, err := ComputeBlurHash(path)
	if err != nil {
		t.Fatalf("ComputeBlurHash: %v", err)
	}
	if hash == "" {
		t.Error("expected non-empty hash")
	}
}

func TestComputeBlurHash_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-image.png")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := ComputeBlurHash(path); err == nil {
		t.Error("expected decode error, got nil")
	}
}
