package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"transcode-worker/internal/envelope"
	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// ErrAllRecordsFailed reports a batch in which every processed record
// failed. The caller should leave the delivery on the queue for redelivery.
var ErrAllRecordsFailed = errors.New("all records in batch failed")

// Result is the outcome of one record in a batch.
type Result struct {
	Key     string
	Skipped bool
	Err     error
}

// BatchSummary aggregates the per-record results of one delivery batch.
// Skipped records count toward neither success nor failure.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Results   []Result
}

// HandleBatch processes one queue delivery. The pre-flight check runs once
// before any record; a systemic failure there fails the whole batch without
// touching any record. Records then fan out concurrently, each isolated in
// its own workspace. The batch succeeds unless every processed record
// failed, in which case ErrAllRecordsFailed is returned alongside the
// summary.
func (c *Controller) HandleBatch(ctx context.Context, bodies []string) (BatchSummary, error) {
	start := time.Now()
	defer func() {
		metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	if err := c.trans.Preflight(); err != nil {
		metrics.BatchesTotal.WithLabelValues("failure").Inc()
		return BatchSummary{}, fmt.Errorf("pre-flight check failed: %w", err)
	}

	notifications := envelope.Parse(bodies)
	if len(notifications) == 0 {
		logging.Warn("Batch: delivery contained no usable notifications")
		metrics.BatchesTotal.WithLabelValues("empty").Inc()
		return BatchSummary{}, nil
	}

	logging.Info("Batch: processing %d notification(s)", len(notifications))

	results := make([]Result, len(notifications))
	var wg sync.WaitGroup
	for i, n := range notifications {
		wg.Add(1)
		go func(i int, n envelope.Notification) {
			defer wg.Done()
			results[i] = c.runRecord(ctx, n)
		}(i, n)
	}
	wg.Wait()

	summary := BatchSummary{Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Err != nil:
			summary.Failed++
			logging.Error("Batch: record %s failed: %v", r.Key, r.Err)
		default:
			summary.Succeeded++
		}
	}

	logging.Info("Batch: done (succeeded=%d, failed=%d, skipped=%d)",
		summary.Succeeded, summary.Failed, summary.Skipped)

	if summary.Failed > 0 && summary.Succeeded == 0 {
		metrics.BatchesTotal.WithLabelValues("failure").Inc()
		return summary, ErrAllRecordsFailed
	}

	metrics.BatchesTotal.WithLabelValues("success").Inc()
	return summary, nil
}
