package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSetsInitialState(t *testing.T) {
	image := []byte{0x13, 0x00, 0x00, 0x00} // addi x0, x0, 0
	s, err := Load(image, 4096, 0x100, 0x800)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.PC != 0x100 {
		t.Errorf("PC = %#x, want 0x100", s.PC)
	}
	if s.X[2] != 0x800 {
		t.Errorf("sp (x2) = %#x, want 0x800", s.X[2])
	}
	if v, ok := s.Mem.Load32(0); !ok || v != 0x00000013 {
		t.Errorf("image not copied into memory: v=%#x ok=%v", v, ok)
	}
}

func TestLoadRejectsZeroMemory(t *testing.T) {
	if _, err := Load(nil, 0, 0, 0); err == nil {
		t.Error("expected error for zero memory size")
	}
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	image := make([]byte, 128)
	if _, err := Load(image, 64, 0, 0); err == nil {
		t.Error("expected error when image exceeds memory size")
	}
}

func TestLoadFileReadsDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	image := []byte{0x01, 0x02, 0x03, 0x04}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	s, err := LoadFile(path, 4096, 0, 0)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	v, ok := s.Mem.Load32(0)
	if !ok || v != 0x04030201 {
		t.Errorf("loaded image mismatch: v=%#x ok=%v", v, ok)
	}
}

func TestLoadFileMissingPath(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.bin"), 4096, 0, 0); err == nil {
		t.Error("expected error for missing file")
	}
}
