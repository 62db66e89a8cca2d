// Package transcoder wraps the bundled ffmpeg binary.
//
// It exposes exactly two operations: grabbing a preview frame and encoding
// a watermarked single-rendition HLS output. Both are synchronous,
// blocking subprocess calls with arguments passed as an explicit list,
// never as a concatenated shell string, so object keys containing shell
// metacharacters cannot change the command.
//
// Preflight validates the binary and the watermark asset once per process;
// its failure is systemic and aborts the whole batch before any record is
// attempted.
package transcoder
