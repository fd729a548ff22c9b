package assetstore

import (
	"strings"
)

var extensions = map[string]string{
	"image/png":        ".png",
	"image/jpeg":       ".jpg",
	"image/jpg":        ".jpg",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/bmp":        ".bmp",
	"image/tiff":       ".tiff",
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/quicktime":  ".mov",
	"video/x-matroska": ".mkv",
	"audio/mpeg":       ".mp3",
	"audio/mp3":        ".mp3",
	"audio/wav":        ".wav",
	"audio/ogg":        ".ogg",
	"audio/webm":       ".webm",
	"audio/flac":       ".flac",
}

// ExtensionFor maps a media type to its file extension. Only the types in
// the allow-list are accepted.
func ExtensionFor(mediaType string) (string, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(mediaType))]
	if !ok {
		return "", ErrUnsupportedMediaType
	}
	return ext, nil
}

// SanitizeBroadcaster lower-cases name and keeps only [a-z0-9_-].
func SanitizeBroadcaster(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidBroadcaster
	}
	return b.String(), nil
}
