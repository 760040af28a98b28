package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"path"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Gallery photos are rescaled so the public site never serves originals.
const maxGalleryDim = 1600

// ToJPEG decodes an uploaded image (JPEG, PNG, GIF or WebP), scales it down
// to maxGalleryDim on the longest side, and re-encodes it as JPEG.
func ToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxGalleryDim || height > maxGalleryDim {
		var newW, newH int
		if width > height {
			newW = maxGalleryDim
			newH = (height * maxGalleryDim) / width
		} else {
			newH = maxGalleryDim
			newW = (width * maxGalleryDim) / height
		}

		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode as jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension derives a cover file extension from the transport-side file
// path, defaulting to jpg.
func Extension(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	switch ext {
	case "jpg", "jpeg":
		return "jpg"
	case "png", "webp", "gif":
		return ext
	default:
		return "jpg"
	}
}
