package chunk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// TestSplitFile tests that split part files reassemble to the original
// byte sequence.
func TestSplitFile(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("abcde"), 5) // 25 bytes
	src := filepath.Join(dir, "input.mp3")
	if err := os.WriteFile(src, data, 0o644); err != nil {
		t.Fatalf("write source failed: %v", err)
	}

	parts := Plan(int64(len(data)), 10, "Song", "Channel")
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}

	files, err := SplitFile(src, parts, dir)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}

	var joined []byte
	wantSizes := []int64{10, 10, 5}
	for i, name := range files {
		chunkData, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read part %d failed: %v", i+1, err)
		}
		if int64(len(chunkData)) != wantSizes[i] {
			t.Fatalf("part %d: %d bytes, want %d", i+1, len(chunkData), wantSizes[i])
		}
		joined = append(joined, chunkData...)
	}
	if !bytes.Equal(joined, data) {
		t.Fatal("reassembled parts differ from the original")
	}
}

// TestSplitFileSinglePart tests that a single-part plan returns the
// source file untouched.
func TestSplitFileSinglePart(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "input.mp3")
	if err := os.WriteFile(src, []byte("tiny"), 0o644); err != nil {
		t.Fatalf("write source failed: %v", err)
	}

	parts := Plan(4, 10, "Song", "Channel")
	files, err := SplitFile(src, parts, dir)
	if err != nil {
		t.Fatalf("SplitFile failed: %v", err)
	}
	if len(files) != 1 || files[0] != src {
		t.Fatalf("expected the source file back, got %v", files)
	}
}
