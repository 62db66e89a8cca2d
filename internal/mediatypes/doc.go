// Package mediatypes maps between declared content types, file extensions,
// and the content types attached to published outputs.
package mediatypes
