package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// Workspace is the set of local scratch paths for one record. Every path
// embeds a random token so concurrent records for the same key never
// collide; the published object names inherit the same token.
type Workspace struct {
	// Video is where the source object is downloaded.
	Video string
	// Thumbnail is the extracted preview frame.
	Thumbnail string
	// Playlist is the HLS playlist the transcode writes.
	Playlist string
	// SegmentsDir holds the HLS media segments.
	SegmentsDir string
}

// newWorkspace allocates paths under scratchDir for the given source key
// and resolved extension. Nothing is created on disk except the segments
// directory, which the transcoder creates itself.
func newWorkspace(scratchDir, key, ext string) *Workspace {
	name := fmt.Sprintf("%s_%s", stemOf(key), uuid.NewString()[:8])

	return &Workspace{
		Video:       filepath.Join(scratchDir, name+"."+ext),
		Thumbnail:   filepath.Join(scratchDir, name+".jpg"),
		Playlist:    filepath.Join(scratchDir, name+".m3u8"),
		SegmentsDir: filepath.Join(scratchDir, name+"_segments"),
	}
}

// SegmentFiles lists the media segments in the segments directory, sorted
// by name so upload order matches playback order.
func (w *Workspace) SegmentFiles() ([]string, error) {
	entries, err := os.ReadDir(w.SegmentsDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(w.SegmentsDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Cleanup removes every workspace path. Each removal is attempted
// independently; a path that was never created is not an error, and a
// removal failure is logged and counted but never propagated.
func (w *Workspace) Cleanup() {
	for _, path := range []string{w.Video, w.Thumbnail, w.Playlist} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("Workspace: failed to remove %s: %v", path, err)
			metrics.CleanupFailuresTotal.Inc()
		}
	}

	if err := os.RemoveAll(w.SegmentsDir); err != nil {
		logging.Warn("Workspace: failed to remove %s: %v", w.SegmentsDir, err)
		metrics.CleanupFailuresTotal.Inc()
	}
}
