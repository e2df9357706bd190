// Package texturepipeline implements the Texture Pipeline of spec.md §4.3:
// decode raster/DDS input, normalise to RGBA8, write the texture package.
package texturepipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
)

// RasterDecoder is the narrow reader interface the raw image decoders sit
// behind (spec.md §1: "The raw decoders for image/scene/compression
// formats — consumed through a narrow reader interface"). Decode must
// return top-to-bottom RGBA8 pixels; the pipeline itself performs the
// bottom-origin flip spec.md §4.3 requires.
type RasterDecoder interface {
	Decode(data []byte) (pixels []byte, width, height int, err error)
}

type stdlibRasterDecoder struct{}

func (stdlibRasterDecoder) Decode(data []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]byte, w*h*4)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(b >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out, w, h, nil
}

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	_ = png.Decode // keep stdlib decoders linked in explicitly
	_ = jpeg.Decode
}

// NewDefaultDecoder returns the decoder used when the caller doesn't supply
// one: PNG/JPEG (stdlib) and BMP (golang.org/x/image/bmp, the teacher's own
// image-decode dependency).
func NewDefaultDecoder() RasterDecoder { return stdlibRasterDecoder{} }

// flipVertical mirrors pixel rows so row 0 becomes the bottom row, matching
// spec.md §4.3 ("vertically flip to bottom-origin").
func flipVertical(pixels []byte, width, height int) []byte {
	stride := width * 4
	out := make([]byte, len(pixels))
	for row := 0; row < height; row++ {
		srcOff := row * stride
		dstOff := (height - 1 - row) * stride
		copy(out[dstOff:dstOff+stride], pixels[srcOff:srcOff+stride])
	}
	return out
}

// isRasterExt reports whether ext (with leading dot) names a raster format
// this pipeline delegates to the stdlib/x-image decoders.
func isRasterExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tga":
		return true
	default:
		return false
	}
}

// decodeTGA is a minimal, best-effort TGA reader for uncompressed 24/32-bit
// images behind the same RasterDecoder-shaped narrow interface; full TGA
// (RLE, colour-mapped) is out of scope per spec.md §1.
func decodeTGA(data []byte) (pixels []byte, width, height int, err error) {
	if len(data) < 18 {
		return nil, 0, 0, fmt.Errorf("tga: header too short")
	}
	imgType := data[2]
	width = int(data[12]) | int(data[13])<<8
	height = int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if imgType != 2 || (bpp != 24 && bpp != 32) {
		return nil, 0, 0, fmt.Errorf("tga: unsupported type=%d bpp=%d", imgType, bpp)
	}
	idLen := int(data[0])
	offset := 18 + idLen
	bytesPerPixel := bpp / 8
	need := width * height * bytesPerPixel
	if offset+need > len(data) {
		return nil, 0, 0, fmt.Errorf("tga: truncated pixel data")
	}
	src := data[offset : offset+need]
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		b := src[i*bytesPerPixel+0]
		g := src[i*bytesPerPixel+1]
		r := src[i*bytesPerPixel+2]
		a := byte(255)
		if bytesPerPixel == 4 {
			a = src[i*bytesPerPixel+3]
		}
		out[i*4+0] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	// TGA stores rows bottom-to-top already unless a header flag says
	// otherwise; treat as already bottom-origin, matching this pipeline's
	// target orientation without an extra flip.
	return out, width, height, nil
}
