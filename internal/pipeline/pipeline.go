package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transcode-worker/internal/envelope"
	"transcode-worker/internal/logging"
	"transcode-worker/internal/mediatypes"
	"transcode-worker/internal/metrics"
)

// Object key prefixes. Only keys under originalPrefix trigger processing;
// everything the worker publishes lands under the other two, which also
// guards against reprocessing our own output.
const (
	originalPrefix  = "original/"
	thumbnailPrefix = "thumbnails/"
	playlistPrefix  = "m3u8/"
)

// ObjectStore is the blob-store surface the pipeline needs.
type ObjectStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	ContentType(ctx context.Context, bucket, key string) (string, error)
	Download(ctx context.Context, bucket, key, dest string) error
	Upload(ctx context.Context, bucket, key, localPath, contentType string) error
}

// Catalog marks a video row ready for playback.
type Catalog interface {
	MarkReady(ctx context.Context, stem, thumbnailKey, playlistKey string) error
}

// Transcoder is the external encoder surface the pipeline needs.
type Transcoder interface {
	Preflight() error
	ExtractFrame(ctx context.Context, input string, offset time.Duration, outputPath string) error
	TranscodeToWatermarkedHLS(ctx context.Context, input, outputDir, playlistPath string) error
}

// Controller drives delivery batches through the per-record pipeline. All
// collaborators are injected so tests can substitute fakes; there is no
// package-level state.
type Controller struct {
	store       ObjectStore
	catalog     Catalog
	trans       Transcoder
	scratchDir  string
	frameOffset time.Duration
}

// NewController wires a Controller. scratchDir is the local directory for
// per-record workspaces; frameOffset is where in the video the preview
// thumbnail is taken.
func NewController(store ObjectStore, catalog Catalog, trans Transcoder, scratchDir string, frameOffset time.Duration) *Controller {
	return &Controller{
		store:       store,
		catalog:     catalog,
		trans:       trans,
		scratchDir:  scratchDir,
		frameOffset: frameOffset,
	}
}

// runRecord executes one notification through the pipeline and converts
// every kind of failure, including a panic, into that record's Result.
// Sibling records are never affected.
func (c *Controller) runRecord(ctx context.Context, n envelope.Notification) (res Result) {
	res = Result{Key: n.Key}

	if !strings.HasPrefix(n.Key, originalPrefix) {
		logging.Debug("Pipeline: skipping non-original key: %s", n.Key)
		res.Skipped = true
		metrics.RecordsTotal.WithLabelValues("skipped").Inc()
		return res
	}

	metrics.RecordsInFlight.Inc()
	defer metrics.RecordsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic while processing %s: %v", n.Key, r)
		}
		if res.Err != nil {
			metrics.RecordsTotal.WithLabelValues("failure").Inc()
		} else {
			metrics.RecordsTotal.WithLabelValues("success").Inc()
		}
	}()

	res.Err = c.process(ctx, n)
	return res
}

// process runs the stage sequence for one notification. The workspace is
// destroyed on every exit path, including panics unwinding through here.
func (c *Controller) process(ctx context.Context, n envelope.Notification) error {
	ext, err := c.resolveExtension(ctx, n)
	if err != nil {
		return err
	}

	ws := newWorkspace(c.scratchDir, n.Key, ext)
	defer func() {
		start := time.Now()
		ws.Cleanup()
		metrics.StageDuration.WithLabelValues("cleanup").Observe(time.Since(start).Seconds())
	}()

	if err := timeStage("download", func() error { return c.download(ctx, n, ws) }); err != nil {
		return err
	}
	if err := timeStage("thumbnail", func() error { return c.thumbnail(ctx, ws) }); err != nil {
		return err
	}
	if err := timeStage("transcode", func() error { return c.transcode(ctx, ws) }); err != nil {
		return err
	}

	thumbnailKey := thumbnailPrefix + filepath.Base(ws.Thumbnail)
	if err := timeStage("upload_thumbnail", func() error {
		return c.upload(ctx, n.Bucket, thumbnailKey, ws.Thumbnail)
	}); err != nil {
		return err
	}

	playlistKey := playlistPrefix + filepath.Base(ws.Playlist)
	if err := timeStage("upload_playlist", func() error {
		return c.upload(ctx, n.Bucket, playlistKey, ws.Playlist)
	}); err != nil {
		return err
	}

	if err := timeStage("upload_segments", func() error {
		return c.uploadSegments(ctx, n.Bucket, ws)
	}); err != nil {
		return err
	}

	if err := timeStage("update_catalog", func() error {
		return c.catalog.MarkReady(ctx, stemOf(n.Key), thumbnailKey, playlistKey)
	}); err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}

	logging.Info("Pipeline: processed %s (thumbnail=%s, playlist=%s)", n.Key, thumbnailKey, playlistKey)
	return nil
}

// resolveExtension maps the object's declared content type to a file
// extension, falling back to the extension embedded in the key. A record
// with neither fails before anything is downloaded.
func (c *Controller) resolveExtension(ctx context.Context, n envelope.Notification) (string, error) {
	var ext string
	err := timeStage("resolve_extension", func() error {
		contentType, err := c.store.ContentType(ctx, n.Bucket, n.Key)
		if err != nil {
			return fmt.Errorf("query content type: %w", err)
		}

		ext = mediatypes.ExtensionForContentType(contentType)
		if ext == "" {
			ext = mediatypes.ExtensionFromKey(n.Key)
			if ext != "" {
				logging.Debug("Pipeline: content type %q unmapped for %s, using key extension %q", contentType, n.Key, ext)
			}
		}
		if ext == "" {
			return fmt.Errorf("cannot resolve file extension for %s (content type %q)", n.Key, contentType)
		}
		return nil
	})
	return ext, err
}

// download transfers the source object into the workspace, checking it
// exists first and streaming the body straight to disk.
func (c *Controller) download(ctx context.Context, n envelope.Notification, ws *Workspace) error {
	exists, err := c.store.Exists(ctx, n.Bucket, n.Key)
	if err != nil {
		return fmt.Errorf("check source exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("source object %s/%s does not exist", n.Bucket, n.Key)
	}

	if err := c.store.Download(ctx, n.Bucket, n.Key, ws.Video); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return nil
}

// thumbnail extracts the preview frame and verifies it landed on disk.
func (c *Controller) thumbnail(ctx context.Context, ws *Workspace) error {
	if err := c.trans.ExtractFrame(ctx, ws.Video, c.frameOffset, ws.Thumbnail); err != nil {
		return fmt.Errorf("extract frame: %w", err)
	}
	if _, err := os.Stat(ws.Thumbnail); err != nil {
		return fmt.Errorf("thumbnail missing after extraction: %w", err)
	}
	return nil
}

// transcode produces the watermarked HLS rendition and verifies both the
// playlist and at least one segment exist. Zero segments means the encode
// silently produced nothing and is a failure.
func (c *Controller) transcode(ctx context.Context, ws *Workspace) error {
	if err := c.trans.TranscodeToWatermarkedHLS(ctx, ws.Video, ws.SegmentsDir, ws.Playlist); err != nil {
		return fmt.Errorf("transcode: %w", err)
	}

	if _, err := os.Stat(ws.Playlist); err != nil {
		return fmt.Errorf("playlist missing after transcode: %w", err)
	}

	segments, err := ws.SegmentFiles()
	if err != nil {
		return fmt.Errorf("list segments: %w", err)
	}
	if len(segments) == 0 {
		return fmt.Errorf("transcode produced no segments in %s", ws.SegmentsDir)
	}
	return nil
}

// upload publishes one local file and lets the store verify visibility.
func (c *Controller) upload(ctx context.Context, bucket, key, localPath string) error {
	contentType := mediatypes.ContentTypeForUpload(localPath)
	if err := c.store.Upload(ctx, bucket, key, localPath, contentType); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// uploadSegments publishes every file in the segments directory under the
// playlist prefix.
func (c *Controller) uploadSegments(ctx context.Context, bucket string, ws *Workspace) error {
	segments, err := ws.SegmentFiles()
	if err != nil {
		return fmt.Errorf("list segments: %w", err)
	}

	for _, segment := range segments {
		key := playlistPrefix + filepath.Base(segment)
		if err := c.upload(ctx, bucket, key, segment); err != nil {
			return err
		}
	}
	return nil
}

// timeStage records the duration of one pipeline stage.
func timeStage(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}

// stemOf returns the base filename of a key without its extension. The stem
// of the original key is the catalog's natural key for the video row.
func stemOf(key string) string {
	base := filepath.Base(key)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
