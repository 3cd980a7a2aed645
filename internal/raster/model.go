package raster

import (
	"fmt"

	"softraster/internal/mathutil"
)

// Model owns an ordered list of meshes plus a world TRS transform. The
// world matrix is T · Rz · Ry · Rx · S, recomputed on every setter call;
// rotation angles are Euler degrees.
type Model struct {
	meshes      []Mesh
	modelMatrix mathutil.Mat4

	position mathutil.Vec3
	rotation mathutil.Vec3
	scale    mathutil.Vec3
}

// NewModel builds a model around a non-empty mesh list with identity TRS.
func NewModel(meshes []Mesh) (*Model, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("raster: model requires at least one mesh: %w", ErrInvalidArgument)
	}
	m := &Model{
		meshes: meshes,
		scale:  mathutil.Vec3{1, 1, 1},
	}
	m.updateModelMatrix()
	return m, nil
}

func (m *Model) Meshes() []Mesh             { return m.meshes }
func (m *Model) Position() mathutil.Vec3    { return m.position }
func (m *Model) Rotation() mathutil.Vec3    { return m.rotation }
func (m *Model) Scale() mathutil.Vec3       { return m.scale }
func (m *Model) ModelMatrix() mathutil.Mat4 { return m.modelMatrix }

func (m *Model) SetPosition(position mathutil.Vec3) {
	m.position = position
	m.updateModelMatrix()
}

func (m *Model) SetRotation(rotation mathutil.Vec3) {
	m.rotation = rotation
	m.updateModelMatrix()
}

// SetScale rejects non-positive components.
func (m *Model) SetScale(scale mathutil.Vec3) error {
	if scale[0] <= 0 || scale[1] <= 0 || scale[2] <= 0 {
		return fmt.Errorf("raster: scale components must be positive, got %v: %w", scale, ErrInvalidArgument)
	}
	m.scale = scale
	m.updateModelMatrix()
	return nil
}

// SetModelMatrix overrides the composed TRS matrix directly.
func (m *Model) SetModelMatrix(mat mathutil.Mat4) {
	m.modelMatrix = mat
}

func (m *Model) updateModelMatrix() {
	rot := mathutil.Mat3Mul(
		mathutil.Mat3Mul(
			mathutil.RotZ(mathutil.Deg2Rad(m.rotation[2])),
			mathutil.RotY(mathutil.Deg2Rad(m.rotation[1])),
		),
		mathutil.RotX(mathutil.Deg2Rad(m.rotation[0])),
	)

	m.modelMatrix = mathutil.Mat4Mul(
		mathutil.Translate(m.position),
		mathutil.Mat4Mul(mathutil.Mat4FromMat3(rot), mathutil.ScaleMat(m.scale)),
	)
}
