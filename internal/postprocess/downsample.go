// Package postprocess holds whole-frame operations applied after
// rasterization, outside the hot path.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// FrameImage wraps a framebuffer's raw RGB bytes as an opaque NRGBA image
// for encoding or scaling.
func FrameImage(rgb []uint8, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	si := 0
	for y := 0; y < height; y++ {
		di := y * img.Stride
		for x := 0; x < width; x++ {
			img.Pix[di] = rgb[si]
			img.Pix[di+1] = rgb[si+1]
			img.Pix[di+2] = rgb[si+2]
			img.Pix[di+3] = 0xFF
			si += 3
			di += 4
		}
	}
	return img
}

// Downsample reduces a supersampled frame to the target size with
// CatmullRom filtering. Frames are opaque, so no alpha handling is needed.
func Downsample(img *image.NRGBA, targetW, targetH int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= targetW && b.Dy() <= targetH {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
