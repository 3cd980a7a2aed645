package raster

// Material associates an optional diffuse texture with a draw. Materials
// are shared between meshes by pointer; a nil diffuse texture makes the
// fragment path shade plain white.
type Material struct {
	diffuse *Texture
}

func NewMaterial() *Material {
	return &Material{}
}

// SetDiffuseTexture attaches a texture. An unloaded texture is accepted;
// sampling it produces the sentinel color.
func (m *Material) SetDiffuseTexture(t *Texture) {
	m.diffuse = t
}

func (m *Material) DiffuseTexture() *Texture {
	if m == nil {
		return nil
	}
	return m.diffuse
}
