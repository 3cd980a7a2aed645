// Package scene loads model files into renderable raster.Model values:
// Wavefront OBJ/MTL and glTF/GLB, with diffuse textures decoded through the
// raster texture loader.
package scene

import (
	"sync"

	"softraster/internal/raster"
)

// TextureCache is a concurrency-safe cache of decoded textures keyed by
// path, so materials referencing the same file share one texture.
type TextureCache struct {
	mu    sync.RWMutex
	items map[string]*raster.Texture
}

func NewTextureCache() *TextureCache {
	return &TextureCache{items: make(map[string]*raster.Texture)}
}

// Resolve loads and caches the texture at path. A failed load is cached as
// an unloaded texture, which samples to the sentinel color.
func (c *TextureCache) Resolve(path string) *raster.Texture {
	// fast path: read lock
	c.mu.RLock()
	if tex, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return tex
	}
	c.mu.RUnlock()

	tex, _ := raster.LoadTexture(path)

	// write lock with double-check
	c.mu.Lock()
	if prev, exists := c.items[path]; exists {
		c.mu.Unlock()
		return prev
	}
	c.items[path] = tex
	c.mu.Unlock()

	return tex
}
