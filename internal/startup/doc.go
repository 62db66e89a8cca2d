// Package startup handles worker initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all worker configuration and provides consistent
// logging throughout the worker lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - SQS_QUEUE_URL: Queue to poll for bucket notifications (required)
//   - AWS_REGION: AWS region (default: us-east-1)
//   - AWS_ENDPOINT_URL: Custom endpoint for S3-compatible stores such as MinIO
//   - DATABASE_URL: Postgres connection URL for the video catalog (required)
//   - SCRATCH_DIR: Local directory for per-record workspaces (default: $TMPDIR/transcode)
//   - FFMPEG_PATH: FFmpeg binary; bare names are resolved via PATH (default: ffmpeg)
//   - WATERMARK_PATH: Watermark image overlaid on renditions (default: /opt/watermark.png)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - POLL_WAIT_SECONDS: SQS long-poll wait, 0-20 (default: 20)
//   - VISIBILITY_TIMEOUT_SECONDS: Message visibility while processing (default: 900)
//   - MAX_MESSAGES: Messages per receive, 1-10 (default: 10)
//   - THUMBNAIL_OFFSET: Where in the video to take the preview frame (default: 2s)
//   - POLLER_WORKERS: Number of concurrent poller loops (default: derived from CPUs)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// # Directory Setup
//
// The scratch directory is created if missing and must be writable; the
// worker refuses to start otherwise.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Worker version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
package startup
