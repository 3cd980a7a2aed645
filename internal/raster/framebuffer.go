package raster

import (
	"errors"
	"fmt"

	"softraster/internal/simd"
)

// ErrInvalidArgument marks construction and setter failures caused by
// out-of-range caller input.
var ErrInvalidArgument = errors.New("invalid argument")

// Framebuffer holds the rendering target as flat slices for cache locality.
// Color is interleaved RGB (3 bytes/pixel, row-major, top-left origin);
// depth is one float32 per pixel, smaller is nearer, cleared to 1.0.
type Framebuffer struct {
	width  int
	height int
	color  []uint8
	depth  []float32
}

// NewFramebuffer allocates a zeroed color buffer and a depth buffer cleared
// to the far plane.
func NewFramebuffer(w, h int) (*Framebuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: framebuffer dimensions must be positive, got %dx%d: %w", w, h, ErrInvalidArgument)
	}
	n := w * h
	fb := &Framebuffer{
		width:  w,
		height: h,
		color:  make([]uint8, n*3),
		depth:  make([]float32, n),
	}
	fb.ClearDepth()
	return fb, nil
}

func (fb *Framebuffer) Width() int  { return fb.width }
func (fb *Framebuffer) Height() int { return fb.height }

// ColorBuffer exposes the raw RGB bytes for presentation.
func (fb *Framebuffer) ColorBuffer() []uint8 { return fb.color }

// DepthBuffer exposes the raw depth floats.
func (fb *Framebuffer) DepthBuffer() []float32 { return fb.depth }

// Clear sets every color byte to 0.
func (fb *Framebuffer) Clear() {
	clear(fb.color)
}

// ClearDepth sets every depth value to 1.0.
func (fb *Framebuffer) ClearDepth() {
	for i := range fb.depth {
		fb.depth[i] = 1.0
	}
}

// SetPixel writes the low 3 bytes of each masked color lane (R low byte,
// then G, then B) to the pixel at (x[i], y[i]). The caller guarantees that
// every masked lane is in bounds.
func (fb *Framebuffer) SetPixel(x, y simd.Int4, color simd.Uint4, mask int) {
	if mask == 0 {
		return
	}
	for i := 0; i < 4; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		idx := (int(y[i])*fb.width + int(x[i])) * 3
		c := color[i]
		fb.color[idx] = uint8(c)         // r
		fb.color[idx+1] = uint8(c >> 8)  // g
		fb.color[idx+2] = uint8(c >> 16) // b
	}
}

// SetDepth writes masked depth lanes. When all four lanes are set the x
// lanes are contiguous by contract and a single 4-wide copy is used.
func (fb *Framebuffer) SetDepth(x, y simd.Int4, depth simd.Float4, mask int) {
	if mask == 0 {
		return
	}

	// fast path: all 4 pixels
	if mask == 0xF {
		base := int(y[0])*fb.width + int(x[0])
		copy(fb.depth[base:base+4], depth[:])
		return
	}

	for i := 0; i < 4; i++ {
		if mask&(1<<i) != 0 {
			fb.depth[int(y[i])*fb.width+int(x[i])] = depth[i]
		}
	}
}

// DepthTest reads 4 consecutive depth values starting at (x[0], y[0]) and
// returns a movemask with bit i set iff depth[i] < current[i]. The caller
// guarantees x lanes are contiguous (x[0]..x[0]+3) on one row; lanes that
// would run past the end of that row (and so past the end of the buffer)
// fail the test without reading the next row.
func (fb *Framebuffer) DepthTest(x, y simd.Int4, depth simd.Float4) int {
	rowStart := int(y[0]) * fb.width
	rowEnd := rowStart + fb.width
	base := rowStart + int(x[0])

	var curr simd.Float4
	if base+4 <= rowEnd {
		copy(curr[:], fb.depth[base:base+4])
	} else {
		for i := 0; i < 4; i++ {
			if base+i < rowEnd {
				curr[i] = fb.depth[base+i]
			} else {
				curr[i] = negInf
			}
		}
	}

	return depth.MaskLT(curr)
}

// negInf fails the strict less-than depth test for lanes past the row end.
const negInf = float32(-1e38)
