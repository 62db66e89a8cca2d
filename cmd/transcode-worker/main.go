package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"transcode-worker/internal/catalog"
	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
	"transcode-worker/internal/objectstore"
	"transcode-worker/internal/pipeline"
	"transcode-worker/internal/queue"
	"transcode-worker/internal/startup"
	"transcode-worker/internal/transcoder"
	"transcode-worker/internal/workers"
)

// maxPollerLoops caps the poller count; each loop can pull up to ten
// messages that all fan out into concurrent ffmpeg runs.
const maxPollerLoops = 8

func main() {
	startTime := time.Now()

	// A local .env is a development convenience; absence is normal.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment from .env")
	}

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the video catalog
	catalogStart := time.Now()
	cat, err := catalog.Open(ctx, config.DatabaseURL)
	if err != nil {
		startup.LogFatal("Failed to connect to catalog: %v", err)
	}
	defer cat.Close()
	startup.LogCatalogInit(time.Since(catalogStart))

	// Object store and queue clients
	store, err := objectstore.New(ctx, config.AWSRegion, config.AWSEndpoint)
	if err != nil {
		startup.LogFatal("Failed to create object store client: %v", err)
	}

	consumer, err := queue.New(ctx, config.AWSRegion, config.AWSEndpoint, config.QueueURL, queue.Options{
		PollWait:          config.PollWait,
		VisibilityTimeout: config.VisibilityTimeout,
		MaxMessages:       config.MaxMessages,
	})
	if err != nil {
		startup.LogFatal("Failed to create queue consumer: %v", err)
	}

	// Transcoder and pipeline
	trans := transcoder.New(config.FFmpegPath, config.WatermarkPath)
	controller := pipeline.NewController(store, cat, trans, config.ScratchDir, config.FrameOffset)

	// Metrics server
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metricsSrv = metrics.NewServer(config.MetricsPort, startup.Version)
		go func() {
			logging.Info("Metrics server listening on :%s", config.MetricsPort)
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Poller loops
	pollerCount := workers.ForIO(maxPollerLoops)
	startup.LogPollerInit(pollerCount, config.PollWait)

	var wg sync.WaitGroup
	for i := 0; i < pollerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logging.Debug("Poller %d started", id)
			consumer.Run(ctx, func(ctx context.Context, bodies []string) error {
				_, err := controller.HandleBatch(ctx, bodies)
				return err
			})
			logging.Debug("Poller %d stopped", id)
		}(i)
	}

	startup.LogWorkerStarted(startup.WorkerConfig{
		QueueURL:        config.QueueURL,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	waitForShutdown(cancel, &wg, metricsSrv)
}

func waitForShutdown(cancel context.CancelFunc, wg *sync.WaitGroup, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	startup.LogShutdownStep("Stopping pollers")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		startup.LogShutdownStepComplete("Pollers stopped")
	case <-shutdownCtx.Done():
		logging.Warn("Timed out waiting for pollers; in-flight work may be redelivered")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
