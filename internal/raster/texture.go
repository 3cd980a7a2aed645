package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"

	"softraster/internal/simd"
)

// SentinelColor is emitted when a texture or material is missing, to make
// bugs visually obvious (R=FF, G=FF, B=00 packed as (B<<16)|(G<<8)|R).
const SentinelColor uint32 = 0x00FFFF

// Texture owns a decoded RGB image, immutable after load. Sampling is
// nearest-neighbor with UVs clamped to [0,1].
type Texture struct {
	width  int
	height int
	data   []uint8 // RGB interleaved, len = 3*W*H
	loaded bool
}

// LoadTexture decodes an image file (JPEG, PNG, TGA, or BMP) and forces it
// to 3-channel RGB. A failed load returns an unloaded texture alongside the
// error; sampling it yields the sentinel color.
func LoadTexture(path string) (*Texture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Texture{}, fmt.Errorf("raster: read texture %s: %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return &Texture{}, fmt.Errorf("raster: decode texture %s: %w", path, err)
	}

	return NewTextureFromImage(img)
}

// NewTextureFromImage converts any decoded image to an RGB texture.
func NewTextureFromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return &Texture{}, fmt.Errorf("raster: texture dimensions must be positive, got %dx%d: %w", w, h, ErrInvalidArgument)
	}

	data := make([]uint8, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			data[i] = uint8(r >> 8)
			data[i+1] = uint8(g >> 8)
			data[i+2] = uint8(bl >> 8)
			i += 3
		}
	}

	return &Texture{width: w, height: h, data: data, loaded: true}, nil
}

func (t *Texture) IsLoaded() bool { return t != nil && t.loaded }
func (t *Texture) Width() int     { return t.width }
func (t *Texture) Height() int    { return t.height }
func (t *Texture) Data() []uint8  { return t.data }

// Sample fetches 4 texels at once. Each lane clamps its UV to [0,1], maps to
// the nearest texel, and packs RGB as (B<<16)|(G<<8)|R. An unloaded texture
// returns the sentinel color in every lane.
func (t *Texture) Sample(u, v simd.Float4) simd.Uint4 {
	if !t.IsLoaded() {
		return simd.SplatUint4(SentinelColor)
	}

	u = u.Clamp01()
	v = v.Clamp01()

	wm1 := float32(t.width - 1)
	hm1 := float32(t.height - 1)

	var colors simd.Uint4
	for i := 0; i < 4; i++ {
		x := int(u[i] * wm1)
		y := int(v[i] * hm1)
		idx := (y*t.width + x) * 3
		r := uint32(t.data[idx])
		g := uint32(t.data[idx+1])
		b := uint32(t.data[idx+2])
		colors[i] = b<<16 | g<<8 | r
	}
	return colors
}
