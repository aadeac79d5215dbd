// Package render converts occupancy masks into images a downstream renderer
// or debugging tool can consume directly.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/instill-ai/segmask/pkg/segmenter"
)

// ToGray converts a mask to an 8-bit grayscale image, 255 where occupied.
func ToGray(m *segmenter.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Filled(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// ToOverlay converts a mask to an NRGBA image carrying the given color on
// occupied pixels and full transparency elsewhere, suitable for compositing
// over a camera frame.
func ToOverlay(m *segmenter.Mask, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Filled(x, y) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

// Scale resizes an image with nearest-neighbor interpolation. Masks are
// usually produced at network resolution and upscaled for display;
// nearest-neighbor keeps the result strictly binary.
func Scale(img image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// EncodePNG writes the image as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
