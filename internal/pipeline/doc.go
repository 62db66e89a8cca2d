// Package pipeline turns object-created notifications into published media.
//
// A batch of queue message bodies is parsed into notifications, each of
// which runs the stage sequence: resolve the source's file extension,
// download it into a private workspace, extract a preview thumbnail,
// transcode to a watermarked HLS rendition, upload the results, and mark
// the catalog row ready. The workspace is destroyed on every exit path.
//
// Records in a batch are independent. One record's failure never blocks
// its siblings, and the batch as a whole fails only when every processed
// record failed or the shared pre-flight check did.
package pipeline
