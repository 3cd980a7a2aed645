package raster

import (
	"errors"
	"testing"

	"softraster/internal/simd"
)

func TestNewFramebufferValidation(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		ok   bool
	}{
		{"valid", 640, 480, true},
		{"one pixel", 1, 1, true},
		{"zero width", 0, 480, false},
		{"zero height", 640, 0, false},
		{"negative width", -1, 480, false},
		{"negative height", 640, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, err := NewFramebuffer(tt.w, tt.h)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if fb.Width() != tt.w || fb.Height() != tt.h {
					t.Errorf("dimensions: got %dx%d", fb.Width(), fb.Height())
				}
				if len(fb.ColorBuffer()) != tt.w*tt.h*3 {
					t.Errorf("color buffer length: got %d, want %d", len(fb.ColorBuffer()), tt.w*tt.h*3)
				}
				if len(fb.DepthBuffer()) != tt.w*tt.h {
					t.Errorf("depth buffer length: got %d, want %d", len(fb.DepthBuffer()), tt.w*tt.h)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error kind: got %v", err)
			}
		})
	}
}

func TestClear(t *testing.T) {
	fb, err := NewFramebuffer(8, 8)
	if err != nil {
		t.Fatal(err)
	}

	fb.SetPixel(simd.SplatInt4(3), simd.SplatInt4(3), simd.SplatUint4(0xFFFFFF), 0x1)
	fb.SetDepth(simd.SplatInt4(3), simd.SplatInt4(3), simd.SplatFloat4(0.5), 0x1)

	fb.Clear()
	fb.ClearDepth()

	for i, b := range fb.ColorBuffer() {
		if b != 0 {
			t.Fatalf("color byte %d not cleared: %d", i, b)
		}
	}
	for i, d := range fb.DepthBuffer() {
		if d != 1.0 {
			t.Fatalf("depth %d not cleared: %g", i, d)
		}
	}
}

func TestSetPixelMask(t *testing.T) {
	fb, err := NewFramebuffer(8, 2)
	if err != nil {
		t.Fatal(err)
	}

	x := simd.Int4{0, 1, 2, 3}
	y := simd.SplatInt4(1)
	// R in low byte, G mid, B high
	colors := simd.Uint4{0x000011, 0x221100, 0x334455, 0xAABBCC}

	fb.SetPixel(x, y, colors, 0b0101)

	wantRow := [][3]uint8{
		{0x11, 0x00, 0x00}, // lane 0 written
		{0, 0, 0},          // lane 1 masked out
		{0x55, 0x44, 0x33}, // lane 2 written
		{0, 0, 0},          // lane 3 masked out
	}
	for px, want := range wantRow {
		idx := (8 + px) * 3
		got := [3]uint8{fb.ColorBuffer()[idx], fb.ColorBuffer()[idx+1], fb.ColorBuffer()[idx+2]}
		if got != want {
			t.Errorf("pixel %d: got %v, want %v", px, got, want)
		}
	}

	// row 0 untouched
	for i := 0; i < 8*3; i++ {
		if fb.ColorBuffer()[i] != 0 {
			t.Fatalf("row 0 byte %d written", i)
		}
	}
}

func TestSetDepthFastPath(t *testing.T) {
	fb, err := NewFramebuffer(8, 2)
	if err != nil {
		t.Fatal(err)
	}

	x := simd.Int4{4, 5, 6, 7}
	y := simd.SplatInt4(0)
	depth := simd.Float4{0.1, 0.2, 0.3, 0.4}

	fb.SetDepth(x, y, depth, 0xF)

	for i := 0; i < 4; i++ {
		if got := fb.DepthBuffer()[4+i]; got != depth[i] {
			t.Errorf("depth lane %d: got %g, want %g", i, got, depth[i])
		}
	}
}

func TestSetDepthPartialMask(t *testing.T) {
	fb, err := NewFramebuffer(8, 1)
	if err != nil {
		t.Fatal(err)
	}

	x := simd.Int4{0, 1, 2, 3}
	y := simd.SplatInt4(0)
	fb.SetDepth(x, y, simd.SplatFloat4(0.25), 0b1010)

	want := []float32{1, 0.25, 1, 0.25, 1, 1, 1, 1}
	for i, w := range want {
		if got := fb.DepthBuffer()[i]; got != w {
			t.Errorf("depth %d: got %g, want %g", i, got, w)
		}
	}
}

func TestDepthTest(t *testing.T) {
	fb, err := NewFramebuffer(8, 1)
	if err != nil {
		t.Fatal(err)
	}

	x := simd.Int4{2, 3, 4, 5}
	y := simd.SplatInt4(0)
	fb.SetDepth(x, y, simd.Float4{0.5, 0.5, 0.5, 0.5}, 0xF)

	tests := []struct {
		name  string
		depth simd.Float4
		want  int
	}{
		{"all nearer", simd.SplatFloat4(0.25), 0xF},
		{"all farther", simd.SplatFloat4(0.75), 0},
		{"equal fails strict test", simd.SplatFloat4(0.5), 0},
		{"mixed", simd.Float4{0.4, 0.6, 0.5, 0.1}, 0b1001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fb.DepthTest(x, y, tt.depth); got != tt.want {
				t.Errorf("got %04b, want %04b", got, tt.want)
			}
		})
	}
}

func TestDepthTestBufferEnd(t *testing.T) {
	fb, err := NewFramebuffer(6, 1)
	if err != nil {
		t.Fatal(err)
	}

	// lanes 2 and 3 run past the buffer and must fail the test
	x := simd.Int4{4, 5, 6, 7}
	y := simd.SplatInt4(0)
	if got := fb.DepthTest(x, y, simd.SplatFloat4(0.5)); got != 0b0011 {
		t.Errorf("got %04b, want 0011", got)
	}
}
