// Package objectstore provides streaming download, upload, and existence
// primitives against the S3 bucket that holds original and published media.
//
// Every mutating operation is verified after the fact: downloads stat the
// local file, uploads issue a head request for the new key. Failures are
// returned to the caller; this package takes no retry decisions of its own.
package objectstore
