// Command transcode-worker consumes bucket notification events from SQS and
// turns uploaded videos into published media: a preview thumbnail and a
// watermarked HLS rendition, with the video catalog updated once both are
// visible in the object store.
//
// Configuration is environment-driven; see the startup package for the full
// list of variables. A Prometheus metrics and health server runs alongside
// the pollers unless disabled.
package main
