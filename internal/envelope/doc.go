// Package envelope unwraps queue deliveries into object-created
// notifications.
//
// Each delivered message body is expected to contain an S3 event
// notification document ({"Records": [...]}). Malformed bodies are
// downgraded to warnings and dropped so a single bad message can never
// poison the rest of a batch.
package envelope
