package raster

import (
	"fmt"
	"math"

	"softraster/internal/mathutil"
)

// Camera supplies the view-projection matrix for a render. Direction is
// yaw/pitch Euler degrees; pitch is clamped to ±89° to avoid gimbal lock.
type Camera struct {
	position mathutil.Vec3
	front    mathutil.Vec3
	up       mathutil.Vec3
	right    mathutil.Vec3
	worldUp  mathutil.Vec3

	yaw   float32
	pitch float32
	fov   float32

	aspectRatio float32
	nearPlane   float32
	farPlane    float32

	viewMatrix           mathutil.Mat4
	projectionMatrix     mathutil.Mat4
	viewProjectionMatrix mathutil.Mat4
}

// NewCamera validates the projection parameters and builds the matrices.
// fov is vertical field of view in degrees.
func NewCamera(position, up mathutil.Vec3, yaw, pitch, fov, aspectRatio, nearPlane, farPlane float32) (*Camera, error) {
	if !position.IsFinite() {
		return nil, fmt.Errorf("raster: camera position must be finite: %w", ErrInvalidArgument)
	}
	if fov <= 0 || fov >= 180 {
		return nil, fmt.Errorf("raster: camera fov must be in (0, 180), got %g: %w", fov, ErrInvalidArgument)
	}
	if aspectRatio <= 0 {
		return nil, fmt.Errorf("raster: camera aspect ratio must be positive, got %g: %w", aspectRatio, ErrInvalidArgument)
	}
	if nearPlane <= 0 {
		return nil, fmt.Errorf("raster: camera near plane must be positive, got %g: %w", nearPlane, ErrInvalidArgument)
	}
	if farPlane <= nearPlane {
		return nil, fmt.Errorf("raster: camera far plane must exceed near plane: %w", ErrInvalidArgument)
	}

	c := &Camera{
		position:    position,
		up:          up,
		worldUp:     mathutil.Vec3{0, 1, 0},
		yaw:         yaw,
		pitch:       pitch,
		fov:         fov,
		aspectRatio: aspectRatio,
		nearPlane:   nearPlane,
		farPlane:    farPlane,
	}
	c.updateProjectionMatrix()
	c.updateViewMatrix()
	return c, nil
}

func (c *Camera) Position() mathutil.Vec3 { return c.position }
func (c *Camera) Front() mathutil.Vec3    { return c.front }
func (c *Camera) Up() mathutil.Vec3       { return c.up }
func (c *Camera) Right() mathutil.Vec3    { return c.right }
func (c *Camera) Yaw() float32            { return c.yaw }
func (c *Camera) Pitch() float32          { return c.pitch }
func (c *Camera) Fov() float32            { return c.fov }

func (c *Camera) ViewMatrix() mathutil.Mat4           { return c.viewMatrix }
func (c *Camera) ProjectionMatrix() mathutil.Mat4     { return c.projectionMatrix }
func (c *Camera) ViewProjectionMatrix() mathutil.Mat4 { return c.viewProjectionMatrix }

func (c *Camera) SetPosition(position mathutil.Vec3) {
	c.position = position
	c.updateViewMatrix()
}

// SetDirection sets yaw and pitch in degrees. Pitch outside ±89° is clamped
// silently; yaw wraps naturally through the trig functions.
func (c *Camera) SetDirection(yaw, pitch float32) {
	c.yaw = yaw
	c.pitch = pitch
	c.updateViewMatrix()
}

func (c *Camera) SetFov(fov float32) error {
	if fov <= 0 || fov >= 180 {
		return fmt.Errorf("raster: camera fov must be in (0, 180), got %g: %w", fov, ErrInvalidArgument)
	}
	c.fov = fov
	c.updateProjectionMatrix()
	return nil
}

func (c *Camera) SetProjectionParams(aspectRatio, nearPlane, farPlane float32) error {
	if aspectRatio <= 0 {
		return fmt.Errorf("raster: camera aspect ratio must be positive, got %g: %w", aspectRatio, ErrInvalidArgument)
	}
	if nearPlane <= 0 {
		return fmt.Errorf("raster: camera near plane must be positive, got %g: %w", nearPlane, ErrInvalidArgument)
	}
	if farPlane <= nearPlane {
		return fmt.Errorf("raster: camera far plane must exceed near plane: %w", ErrInvalidArgument)
	}
	c.aspectRatio = aspectRatio
	c.nearPlane = nearPlane
	c.farPlane = farPlane
	c.updateProjectionMatrix()
	return nil
}

func (c *Camera) updateViewMatrix() {
	c.pitch = mathutil.Clamp(c.pitch, -89, 89)

	yawR := float64(mathutil.Deg2Rad(c.yaw))
	pitchR := float64(mathutil.Deg2Rad(c.pitch))
	front := mathutil.Vec3{
		float32(math.Cos(yawR) * math.Cos(pitchR)),
		float32(math.Sin(pitchR)),
		float32(math.Sin(yawR) * math.Cos(pitchR)),
	}
	c.front = front.Normalize()

	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()

	c.viewMatrix = mathutil.LookAt(c.position, c.position.Add(c.front), c.up)
	c.viewProjectionMatrix = mathutil.Mat4Mul(c.projectionMatrix, c.viewMatrix)
}

func (c *Camera) updateProjectionMatrix() {
	c.projectionMatrix = mathutil.Perspective(mathutil.Deg2Rad(c.fov), c.aspectRatio, c.nearPlane, c.farPlane)
	c.viewProjectionMatrix = mathutil.Mat4Mul(c.projectionMatrix, c.viewMatrix)
}
