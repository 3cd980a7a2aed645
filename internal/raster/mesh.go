package raster

import (
	"fmt"

	"softraster/internal/mathutil"
)

// VertexArray stores vertex attributes as structure-of-arrays: eight
// parallel float32 slices of identical length. Every consecutive triple of
// vertices forms one triangle; a trailing remainder is ignored by the
// renderer.
type VertexArray struct {
	PositionsX []float32
	PositionsY []float32
	PositionsZ []float32

	UVsU []float32
	UVsV []float32

	NormalsX []float32
	NormalsY []float32
	NormalsZ []float32
}

// Resize grows or shrinks all eight streams to the same length.
func (va *VertexArray) Resize(n int) {
	va.PositionsX = resizeF32(va.PositionsX, n)
	va.PositionsY = resizeF32(va.PositionsY, n)
	va.PositionsZ = resizeF32(va.PositionsZ, n)

	va.UVsU = resizeF32(va.UVsU, n)
	va.UVsV = resizeF32(va.UVsV, n)

	va.NormalsX = resizeF32(va.NormalsX, n)
	va.NormalsY = resizeF32(va.NormalsY, n)
	va.NormalsZ = resizeF32(va.NormalsZ, n)
}

func resizeF32(s []float32, n int) []float32 {
	if n <= cap(s) {
		return s[:n]
	}
	out := make([]float32, n)
	copy(out, s)
	return out
}

// Len returns the vertex count.
func (va *VertexArray) Len() int {
	return len(va.PositionsX)
}

func (va *VertexArray) validate() error {
	n := len(va.PositionsX)
	if n == 0 {
		return fmt.Errorf("raster: vertex array is empty: %w", ErrInvalidArgument)
	}
	lengths := [...]int{
		len(va.PositionsY), len(va.PositionsZ),
		len(va.UVsU), len(va.UVsV),
		len(va.NormalsX), len(va.NormalsY), len(va.NormalsZ),
	}
	for _, l := range lengths {
		if l != n {
			return fmt.Errorf("raster: vertex streams have mismatched lengths: %w", ErrInvalidArgument)
		}
	}
	return nil
}

// Mesh owns a vertex stream, a local transform, and an optional shared
// material. A nil material makes the renderer emit the sentinel color.
type Mesh struct {
	vertices VertexArray
	local    mathutil.Mat4
	material *Material
}

// NewMesh validates the vertex streams and builds a mesh with an identity
// local transform.
func NewMesh(vertices VertexArray, material *Material) (Mesh, error) {
	if err := vertices.validate(); err != nil {
		return Mesh{}, err
	}
	return Mesh{
		vertices: vertices,
		local:    mathutil.Mat4Identity(),
		material: material,
	}, nil
}

func (m *Mesh) VertexArray() *VertexArray        { return &m.vertices }
func (m *Mesh) LocalMatrix() mathutil.Mat4       { return m.local }
func (m *Mesh) Material() *Material              { return m.material }
func (m *Mesh) SetLocalMatrix(mat mathutil.Mat4) { m.local = mat }
func (m *Mesh) SetMaterial(mat *Material)        { m.material = mat }
