package mediatypes

import (
	"testing"
)

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{
			name:        "MP4",
			contentType: "video/mp4",
			want:        "mp4",
		},
		{
			name:        "QuickTime",
			contentType: "video/quicktime",
			want:        "mov",
		},
		{
			name:        "Matroska",
			contentType: "video/x-matroska",
			want:        "mkv",
		},
		{
			name:        "Uppercase type",
			contentType: "VIDEO/MP4",
			want:        "mp4",
		},
		{
			name:        "Type with parameters",
			contentType: "video/mp4; codecs=\"avc1.42E01E\"",
			want:        "mp4",
		},
		{
			name:        "Unknown type",
			contentType: "application/octet-stream",
			want:        "",
		},
		{
			name:        "Empty type",
			contentType: "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtensionForContentType(tt.contentType)
			if got != tt.want {
				t.Errorf("ExtensionForContentType(%q) = %q, want %q", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestExtensionFromKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "Simple extension",
			key:  "original/clip.mov",
			want: "mov",
		},
		{
			name: "Uppercase extension",
			key:  "original/CLIP.MP4",
			want: "mp4",
		},
		{
			name: "No extension",
			key:  "original/clip",
			want: "",
		},
		{
			name: "Trailing dot",
			key:  "original/clip.",
			want: "",
		},
		{
			name: "Dotted directory only",
			key:  "original.dir/clip",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtensionFromKey(tt.key)
			if got != tt.want {
				t.Errorf("ExtensionFromKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestContentTypeForUpload(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "Thumbnail",
			path: "/tmp/sample_abc123.jpg",
			want: "image/jpeg",
		},
		{
			name: "Playlist",
			path: "/tmp/sample_abc123.m3u8",
			want: "application/vnd.apple.mpegurl",
		},
		{
			name: "Segment",
			path: "/tmp/sample_abc123.m3u8_segment_000.ts",
			want: "video/mp2t",
		},
		{
			name: "Unknown extension falls back to octet-stream",
			path: "/tmp/sample.bin",
			want: "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentTypeForUpload(tt.path)
			if got != tt.want {
				t.Errorf("ContentTypeForUpload(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
