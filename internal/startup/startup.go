package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"transcode-worker/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all worker configuration
type Config struct {
	QueueURL      string
	AWSRegion     string
	AWSEndpoint   string
	DatabaseURL   string
	ScratchDir    string
	FFmpegPath    string
	WatermarkPath string
	MetricsPort   string

	PollWait          time.Duration
	VisibilityTimeout time.Duration
	MaxMessages       int
	FrameOffset       time.Duration

	MetricsEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	queueURL := getEnv("SQS_QUEUE_URL", "")
	awsRegion := getEnv("AWS_REGION", "us-east-1")
	awsEndpoint := getEnv("AWS_ENDPOINT_URL", "")
	databaseURL := getEnv("DATABASE_URL", "")
	scratchDir := getEnv("SCRATCH_DIR", filepath.Join(os.TempDir(), "transcode"))
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	watermarkPath := getEnv("WATERMARK_PATH", "/opt/watermark.png")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	pollWaitSeconds := getEnvInt("POLL_WAIT_SECONDS", 20)
	visibilitySeconds := getEnvInt("VISIBILITY_TIMEOUT_SECONDS", 900)
	maxMessages := getEnvInt("MAX_MESSAGES", 10)
	frameOffset := getEnvDuration("THUMBNAIL_OFFSET", 2*time.Second)

	logging.Info("  SQS_QUEUE_URL:               %s", valueOrUnset(queueURL))
	logging.Info("  AWS_REGION:                  %s", awsRegion)
	logging.Info("  AWS_ENDPOINT_URL:            %s", valueOrUnset(awsEndpoint))
	logging.Info("  DATABASE_URL:                %s", redactDatabaseURL(databaseURL))
	logging.Info("  SCRATCH_DIR:                 %s", scratchDir)
	logging.Info("  FFMPEG_PATH:                 %s", ffmpegPath)
	logging.Info("  WATERMARK_PATH:              %s", watermarkPath)
	logging.Info("  METRICS_PORT:                %s", metricsPort)
	logging.Info("  METRICS_ENABLED:             %v", metricsEnabled)
	logging.Info("  POLL_WAIT_SECONDS:           %d", pollWaitSeconds)
	logging.Info("  VISIBILITY_TIMEOUT_SECONDS:  %d", visibilitySeconds)
	logging.Info("  MAX_MESSAGES:                %d", maxMessages)
	logging.Info("  THUMBNAIL_OFFSET:            %s", frameOffset)
	logging.Info("  LOG_LEVEL:                   %s", logging.GetLevel())

	if queueURL == "" {
		return nil, fmt.Errorf("SQS_QUEUE_URL is required")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// SQS caps long-poll wait at 20s and batch size at 10.
	if pollWaitSeconds < 0 || pollWaitSeconds > 20 {
		logging.Warn("  Invalid POLL_WAIT_SECONDS, using default: 20")
		pollWaitSeconds = 20
	}
	if maxMessages < 1 || maxMessages > 10 {
		logging.Warn("  Invalid MAX_MESSAGES, using default: 10")
		maxMessages = 10
	}
	if visibilitySeconds < 0 {
		logging.Warn("  Invalid VISIBILITY_TIMEOUT_SECONDS, using default: 900")
		visibilitySeconds = 900
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	scratchDir, err := filepath.Abs(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scratch directory path: %w", err)
	}
	logging.Info("  Scratch directory (absolute): %s", scratchDir)

	if err := ensureDirectory(scratchDir, "scratch"); err != nil {
		return nil, fmt.Errorf("scratch directory error: %w", err)
	}

	logging.Debug("  Testing scratch directory write access...")
	if err := testWriteAccess(scratchDir); err != nil {
		return nil, fmt.Errorf("scratch directory is not writable (required for downloads): %w", err)
	}
	logging.Info("  [OK] Scratch directory is writable")

	resolvedFFmpeg, err := resolveFFmpegPath(ffmpegPath)
	if err != nil {
		logging.Warn("  FFmpeg lookup failed: %v", err)
		logging.Warn("  The pre-flight check will fail until ffmpeg is available")
		resolvedFFmpeg = ffmpegPath
	}

	return &Config{
		QueueURL:          queueURL,
		AWSRegion:         awsRegion,
		AWSEndpoint:       awsEndpoint,
		DatabaseURL:       databaseURL,
		ScratchDir:        scratchDir,
		FFmpegPath:        resolvedFFmpeg,
		WatermarkPath:     watermarkPath,
		MetricsPort:       metricsPort,
		MetricsEnabled:    metricsEnabled,
		PollWait:          time.Duration(pollWaitSeconds) * time.Second,
		VisibilityTimeout: time.Duration(visibilitySeconds) * time.Second,
		MaxMessages:       maxMessages,
		FrameOffset:       frameOffset,
	}, nil
}

// resolveFFmpegPath turns a bare command name into an absolute path so the
// transcoder can stat it during pre-flight. Paths are used as-is.
func resolveFFmpegPath(path string) (string, error) {
	if strings.ContainsRune(path, os.PathSeparator) {
		return path, nil
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", path)
	}
	logging.Debug("  FFmpeg path: %s", resolved)
	return resolved, nil
}

// LogCatalogInit logs catalog connection setup
func LogCatalogInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOG INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Catalog connection established in %v", duration)
}

// LogPollerInit logs queue poller configuration
func LogPollerInit(workers int, pollWait time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("QUEUE POLLER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Poller loops:   %d", workers)
	logging.Info("  Long-poll wait: %v", pollWait)
	logging.Info("  Starting pollers...")
}

// WorkerConfig holds configuration for the worker startup log
type WorkerConfig struct {
	QueueURL        string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogWorkerStarted logs successful worker start
func LogWorkerStarted(config WorkerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("WORKER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time: %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Consuming:    %s", config.QueueURL)
	if config.MetricsEnabled {
		logging.Info("  Metrics:      http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:      DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the worker")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
  ______                                  __
 /_  __/________ _____  ______________  / /__  _____
  / / / ___/ __ '/ __ \/ ___/ ___/ __ \/ __  |/ _ \
 / / / /  / /_/ / / / (__  ) /__/ /_/ / /_/ /  __/
/_/ /_/   \__,_/_/ /_/____/\___/\____/\__,_/\___/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func valueOrUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}

// redactDatabaseURL hides credentials embedded in a connection URL.
func redactDatabaseURL(databaseURL string) string {
	if databaseURL == "" {
		return "(unset)"
	}
	at := strings.LastIndex(databaseURL, "@")
	scheme := strings.Index(databaseURL, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return databaseURL
	}
	return databaseURL[:scheme+3] + "***" + databaseURL[at:]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
