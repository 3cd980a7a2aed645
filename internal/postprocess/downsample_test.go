package postprocess

import "testing"

func TestFrameImage(t *testing.T) {
	rgb := []uint8{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	}
	img := FrameImage(rgb, 2, 2)

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds: got %v", img.Bounds())
	}

	// pixel (1,1) = bytes 10,11,12, opaque
	i := img.PixOffset(1, 1)
	got := [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
	if got != [4]uint8{10, 11, 12, 0xFF} {
		t.Errorf("pixel (1,1): got %v", got)
	}
}

func TestDownsample(t *testing.T) {
	rgb := make([]uint8, 8*8*3)
	for i := range rgb {
		rgb[i] = 0x80
	}
	img := FrameImage(rgb, 8, 8)

	small := Downsample(img, 4, 4)
	if small.Bounds().Dx() != 4 || small.Bounds().Dy() != 4 {
		t.Fatalf("bounds: got %v", small.Bounds())
	}

	// uniform input stays uniform through the filter
	i := small.PixOffset(2, 2)
	if small.Pix[i] != 0x80 {
		t.Errorf("center pixel: got %d, want 128", small.Pix[i])
	}
}

func TestDownsampleNoopWhenSmaller(t *testing.T) {
	img := FrameImage(make([]uint8, 4*4*3), 4, 4)
	if got := Downsample(img, 8, 8); got != img {
		t.Error("expected the original image back when already small enough")
	}
}
