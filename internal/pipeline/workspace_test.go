package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWorkspacePaths(t *testing.T) {
	ws := newWorkspace("/scratch", "original/sample.mp4", "mp4")

	for name, path := range map[string]string{
		"video":     ws.Video,
		"thumbnail": ws.Thumbnail,
		"playlist":  ws.Playlist,
		"segments":  ws.SegmentsDir,
	} {
		if filepath.Dir(path) != "/scratch" {
			t.Errorf("Expected %s path under /scratch, got %s", name, path)
		}
		if !strings.Contains(filepath.Base(path), "sample_") {
			t.Errorf("Expected %s path to embed stem and token, got %s", name, path)
		}
	}

	if !strings.HasSuffix(ws.Video, ".mp4") {
		t.Errorf("Expected video path with .mp4 extension, got %s", ws.Video)
	}
	if !strings.HasSuffix(ws.Thumbnail, ".jpg") {
		t.Errorf("Expected .jpg thumbnail, got %s", ws.Thumbnail)
	}
	if !strings.HasSuffix(ws.Playlist, ".m3u8") {
		t.Errorf("Expected .m3u8 playlist, got %s", ws.Playlist)
	}
	if !strings.HasSuffix(ws.SegmentsDir, "_segments") {
		t.Errorf("Expected _segments dir, got %s", ws.SegmentsDir)
	}
}

func TestNewWorkspaceUnique(t *testing.T) {
	a := newWorkspace("/scratch", "original/sample.mp4", "mp4")
	b := newWorkspace("/scratch", "original/sample.mp4", "mp4")

	if a.Video == b.Video {
		t.Errorf("Expected distinct video paths for same key, got %s twice", a.Video)
	}
	if a.SegmentsDir == b.SegmentsDir {
		t.Errorf("Expected distinct segment dirs for same key, got %s twice", a.SegmentsDir)
	}
}

func TestCleanupRemovesEverything(t *testing.T) {
	dir := t.TempDir()
	ws := newWorkspace(dir, "original/sample.mp4", "mp4")

	for _, path := range []string{ws.Video, ws.Thumbnail, ws.Playlist} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
	}
	if err := os.MkdirAll(ws.SegmentsDir, 0o755); err != nil {
		t.Fatalf("Failed to create segments dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws.SegmentsDir, "seg.ts"), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create segment: %v", err)
	}

	ws.Cleanup()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty scratch dir after cleanup, found %d entries", len(entries))
	}
}

func TestCleanupToleratesMissingPaths(t *testing.T) {
	ws := newWorkspace(t.TempDir(), "original/sample.mp4", "mp4")

	// Nothing was ever created; cleanup must not panic or error.
	ws.Cleanup()
	ws.Cleanup()
}

func TestSegmentFilesSorted(t *testing.T) {
	dir := t.TempDir()
	ws := newWorkspace(dir, "original/sample.mp4", "mp4")
	if err := os.MkdirAll(ws.SegmentsDir, 0o755); err != nil {
		t.Fatalf("Failed to create segments dir: %v", err)
	}

	for _, name := range []string{"b_segment_001.ts", "b_segment_000.ts", "b_segment_002.ts"} {
		if err := os.WriteFile(filepath.Join(ws.SegmentsDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create segment: %v", err)
		}
	}

	files, err := ws.SegmentFiles()
	if err != nil {
		t.Fatalf("SegmentFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(files))
	}
	for i, want := range []string{"b_segment_000.ts", "b_segment_001.ts", "b_segment_002.ts"} {
		if filepath.Base(files[i]) != want {
			t.Errorf("Expected segment %d to be %s, got %s", i, want, filepath.Base(files[i]))
		}
	}
}

func TestStemOf(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"original/sample.mp4", "sample"},
		{"original/nested/dir/clip.mov", "clip"},
		{"original/no-extension", "no-extension"},
		{"original/two.dots.mkv", "two.dots"},
		{"original/with space.mp4", "with space"},
	}

	for _, tt := range tests {
		if got := stemOf(tt.key); got != tt.want {
			t.Errorf("stemOf(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
