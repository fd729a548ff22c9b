package service

import (
	"bytes"
	"fmt"
	"image"
	"mime"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
)

// decodeImage validates data as an image in any registered format.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// renderPreview scales img down to fit the box and encodes it as PNG.
func renderPreview(img image.Image, maxWidth, maxHeight int) ([]byte, error) {
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeMediaType returns the stored and declared media types for an
// upload. The stored type is lower-cased with parameters removed.
func normalizeMediaType(declared string) (mediaType, original string) {
	original = strings.TrimSpace(declared)
	if original == "" {
		return domain.DefaultMediaType, domain.DefaultMediaType
	}
	if mt, _, err := mime.ParseMediaType(original); err == nil {
		return mt, original
	}
	base, _, _ := strings.Cut(original, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		base = domain.DefaultMediaType
	}
	return base, original
}
