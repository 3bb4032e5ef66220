package artworks

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailPrefix namespaces thumbnail objects next to the originals in the
// same storage backend.
const ThumbnailPrefix = "thumb_"

// thumbnailQuality is the JPEG quality used for generated thumbnails.
const thumbnailQuality = 82

// DecodeDimensions reads only the image header and returns its dimensions.
// Unknown formats yield zero dimensions, not an error.
func DecodeDimensions(r io.Reader) (width, height int) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// GenerateThumbnail decodes the image and scales it so that the longest
// edge is at most maxEdge pixels, preserving aspect ratio. The result is
// JPEG-encoded. Images already within bounds are still re-encoded so
// thumbnails have a uniform format.
func GenerateThumbnail(r io.Reader, maxEdge int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	dstW, dstH := width, height
	if width > maxEdge || height > maxEdge {
		if width >= height {
			dstW = maxEdge
			dstH = height * maxEdge / width
		} else {
			dstH = maxEdge
			dstW = width * maxEdge / height
		}
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
