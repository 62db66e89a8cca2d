package mediatypes

import (
	"path/filepath"
	"strings"
)

// Extensions maps declared video content types to the file extension used
// for the local working copy. Parameters (e.g. "; codecs=...") are stripped
// before lookup.
var Extensions = map[string]string{
	"video/mp4":        "mp4",
	"video/quicktime":  "mov",
	"video/x-matroska": "mkv",
	"video/x-msvideo":  "avi",
	"video/x-ms-wmv":   "wmv",
	"video/x-flv":      "flv",
	"video/webm":       "webm",
	"video/x-m4v":      "m4v",
	"video/mpeg":       "mpg",
	"video/3gpp":       "3gp",
	"video/mp2t":       "ts",
}

// MimeTypes maps output file extensions to the content type attached on
// upload. Anything not listed is uploaded as application/octet-stream.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".m3u8": "application/vnd.apple.mpegurl",
	".ts":   "video/mp2t",
}

// ExtensionForContentType returns the file extension for a declared content
// type, or empty string if the type is not recognized.
func ExtensionForContentType(contentType string) string {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return Extensions[ct]
}

// ExtensionFromKey returns the extension embedded in an object key, without
// the leading dot, or empty string if the key has none.
func ExtensionFromKey(key string) string {
	ext := filepath.Ext(key)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ContentTypeForUpload returns the content type to attach when publishing a
// local file to the object store.
func ContentTypeForUpload(path string) string {
	if ct, ok := MimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}
