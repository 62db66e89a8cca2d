package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, result := range []string{"success", "failure", "empty"} {
		BatchesTotal.WithLabelValues(result)
	}

	for _, outcome := range []string{"success", "failure", "skipped"} {
		RecordsTotal.WithLabelValues(outcome)
	}

	stages := []string{
		"resolve_extension", "download", "thumbnail", "transcode",
		"upload_thumbnail", "upload_playlist", "upload_segments",
		"update_catalog", "cleanup",
	}
	for _, stage := range stages {
		StageDuration.WithLabelValues(stage)
	}

	for _, op := range []string{"extract_frame", "transcode_hls", "preflight"} {
		FFmpegInvocationsTotal.WithLabelValues(op, "success")
		FFmpegInvocationsTotal.WithLabelValues(op, "error")
		FFmpegDuration.WithLabelValues(op)
	}

	for _, op := range []string{"head", "download", "upload"} {
		StoreOperationsTotal.WithLabelValues(op, "success")
		StoreOperationsTotal.WithLabelValues(op, "error")
	}
	for _, dir := range []string{"download", "upload"} {
		StoreBytesTransferred.WithLabelValues(dir)
	}

	for _, status := range []string{"messages", "empty", "error"} {
		QueueReceivesTotal.WithLabelValues(status)
	}
	for _, disposition := range []string{"deleted", "retained"} {
		QueueMessagesTotal.WithLabelValues(disposition)
	}

	CatalogUpdatesTotal.WithLabelValues("success")
	CatalogUpdatesTotal.WithLabelValues("error")
}
