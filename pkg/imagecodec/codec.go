// Package imagecodec turns uploaded bytes into a drawable pixel buffer and
// back into JPEG.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultQuality matches the JPEG quality the annotated output has always
// been written with.
const DefaultQuality = 95

var ErrDecode = errors.New("image could not be decoded")

// Decode reads any registered format (JPEG, PNG, GIF, BMP, TIFF), applies the
// EXIF orientation and returns an opaque RGBA buffer anchored at (0,0).
// Alpha is discarded: transparent pixels keep their straight RGB values.
func Decode(data []byte) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}

	return opaque(imaging.Clone(img)), nil
}

// opaque reuses the NRGBA pixels as RGBA; with alpha forced to 255 the
// straight and premultiplied encodings coincide.
func opaque(src *image.NRGBA) *image.RGBA {
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 0xff
	}
	return &image.RGBA{Pix: src.Pix, Stride: src.Stride, Rect: src.Rect}
}

func Encode(img image.Image) ([]byte, error) {
	return EncodeQuality(img, DefaultQuality)
}

func EncodeQuality(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
