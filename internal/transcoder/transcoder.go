package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// Fixed encoding parameters. The worker produces exactly one rendition, so
// these are constants rather than configuration.
const (
	// ThumbnailWidth is the width thumbnails are scaled to; height follows
	// the source aspect ratio.
	ThumbnailWidth = 320

	// Target HLS resolution. Sources are scaled to fit and letterboxed so
	// the aspect ratio is preserved.
	hlsWidth  = 854
	hlsHeight = 480

	// watermarkPadding is the distance in pixels between the watermark and
	// the bottom-right corner of the frame.
	watermarkPadding = 16

	audioCodec   = "aac"
	audioBitrate = "128k"
	videoCodec   = "libx264"
	videoCRF     = "23"
	videoPreset  = "fast"

	hlsSegmentSeconds = 10
)

// Sentinel errors returned by Preflight. All of them are systemic: the
// whole invocation must fail before any record is attempted.
var (
	ErrFFmpegNotFound    = errors.New("ffmpeg binary not found at configured path")
	ErrFFmpegSelfCheck   = errors.New("ffmpeg self-check invocation failed")
	ErrWatermarkNotFound = errors.New("watermark image not found at configured path")
	ErrWatermarkInvalid  = errors.New("watermark image exists but could not be decoded")
)

// Transcoder wraps the external ffmpeg binary. Both paths are fixed at
// construction; they point into the deployment artifact.
type Transcoder struct {
	ffmpegPath    string
	watermarkPath string

	preflightOnce sync.Once
	preflightErr  error
}

// New creates a Transcoder bound to an ffmpeg binary and a watermark image.
// No validation happens here; call Preflight before processing work.
func New(ffmpegPath, watermarkPath string) *Transcoder {
	return &Transcoder{
		ffmpegPath:    ffmpegPath,
		watermarkPath: watermarkPath,
	}
}

// WatermarkPath returns the configured watermark asset path.
func (t *Transcoder) WatermarkPath() string {
	return t.watermarkPath
}

// Preflight validates the external dependencies once per process: the
// ffmpeg binary must exist and answer a version query, and the watermark
// must exist and decode as an image. The result is cached; later calls
// return the same outcome without re-running the checks.
func (t *Transcoder) Preflight() error {
	t.preflightOnce.Do(func() {
		t.preflightErr = t.runPreflight()
	})
	return t.preflightErr
}

func (t *Transcoder) runPreflight() error {
	if _, err := os.Stat(t.ffmpegPath); err != nil {
		metrics.FFmpegInvocationsTotal.WithLabelValues("preflight", "error").Inc()
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, t.ffmpegPath)
	}

	cmd := exec.Command(t.ffmpegPath, "-version")
	out, err := cmd.Output()
	if err != nil {
		metrics.FFmpegInvocationsTotal.WithLabelValues("preflight", "error").Inc()
		return fmt.Errorf("%w: %v", ErrFFmpegSelfCheck, err)
	}
	logging.Debug("Transcoder: %s", firstLine(string(out)))

	if _, err := os.Stat(t.watermarkPath); err != nil {
		metrics.FFmpegInvocationsTotal.WithLabelValues("preflight", "error").Inc()
		return fmt.Errorf("%w: %s", ErrWatermarkNotFound, t.watermarkPath)
	}

	// Decode the watermark up front so a corrupt asset fails the batch
	// instead of every overlay filter.
	img, err := imaging.Open(t.watermarkPath)
	if err != nil {
		metrics.FFmpegInvocationsTotal.WithLabelValues("preflight", "error").Inc()
		return fmt.Errorf("%w: %v", ErrWatermarkInvalid, err)
	}
	bounds := img.Bounds()
	logging.Info("Transcoder: pre-flight passed (watermark %dx%d)", bounds.Dx(), bounds.Dy())

	metrics.FFmpegInvocationsTotal.WithLabelValues("preflight", "success").Inc()
	return nil
}

// ExtractFrame grabs a single frame at the given offset, scaled to
// ThumbnailWidth, overwriting outputPath if it exists. The call blocks until
// ffmpeg exits; it imposes no timeout of its own.
func (t *Transcoder) ExtractFrame(ctx context.Context, input string, offset time.Duration, outputPath string) error {
	args := extractFrameArgs(input, offset, outputPath)
	return t.run(ctx, "extract_frame", args)
}

// TranscodeToWatermarkedHLS encodes input into a single watermarked HLS
// rendition: a playlist at playlistPath and numbered segment files in
// outputDir. The segments directory is created if needed. The call blocks
// until ffmpeg exits; it imposes no timeout of its own.
func (t *Transcoder) TranscodeToWatermarkedHLS(ctx context.Context, input, outputDir, playlistPath string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create segments directory %s: %w", outputDir, err)
	}

	args := hlsArgs(input, t.watermarkPath, outputDir, playlistPath)
	return t.run(ctx, "transcode_hls", args)
}

// run executes ffmpeg with an explicit argument list, capturing stderr for
// diagnostics. Arguments are never concatenated into a shell string.
func (t *Transcoder) run(ctx context.Context, operation string, args []string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.FFmpegDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FFmpegInvocationsTotal.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("ffmpeg %s failed: %w (stderr: %s)", operation, err, stderrTail(stderr.String()))
	}

	metrics.FFmpegInvocationsTotal.WithLabelValues(operation, "success").Inc()
	logging.Debug("Transcoder: %s completed in %v", operation, time.Since(start).Round(time.Millisecond))
	return nil
}

// extractFrameArgs builds the argument list for a single-frame grab.
func extractFrameArgs(input string, offset time.Duration, outputPath string) []string {
	return []string{
		"-hide_banner", "-nostdin",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', -1, 64),
		"-i", input,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", ThumbnailWidth),
		"-y",
		outputPath,
	}
}

// hlsArgs builds the argument list for the watermarked HLS encode: scale and
// letterbox the main video to the target resolution, overlay the watermark
// at the bottom-right corner, then mux into a VOD-style playlist with
// numbered segments.
func hlsArgs(input, watermark, outputDir, playlistPath string) []string {
	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,"+
			"pad=%d:%d:(ow-iw)/2:(oh-ih)/2[scaled];"+
			"[scaled][1:v]overlay=main_w-overlay_w-%d:main_h-overlay_h-%d[outv]",
		hlsWidth, hlsHeight, hlsWidth, hlsHeight,
		watermarkPadding, watermarkPadding,
	)

	segmentPattern := filepath.Join(outputDir, filepath.Base(playlistPath)+"_segment_%03d.ts")

	return []string{
		"-hide_banner", "-nostdin",
		"-i", input,
		"-i", watermark,
		"-filter_complex", filter,
		"-map", "[outv]",
		"-map", "0:a?",
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-c:v", videoCodec,
		"-crf", videoCRF,
		"-preset", videoPreset,
		"-f", "hls",
		"-hls_time", strconv.Itoa(hlsSegmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", segmentPattern,
		"-y",
		playlistPath,
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

// stderrTail keeps the last chunk of ffmpeg's stderr so wrapped errors stay
// readable in logs.
func stderrTail(s string) string {
	const max = 512
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
