package raster

import (
	"errors"
	"math"
	"testing"

	"softraster/internal/mathutil"
)

func testCamera(t *testing.T) *Camera {
	t.Helper()
	c, err := NewCamera(
		mathutil.Vec3{0, 0, 3}, mathutil.Vec3{0, 1, 0},
		-90, 0, 90, 1, 0.1, 100,
	)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return c
}

func TestNewCameraValidation(t *testing.T) {
	up := mathutil.Vec3{0, 1, 0}
	nan := float32(math.NaN())

	tests := []struct {
		name string
		pos  mathutil.Vec3
		fov  float32
		ar   float32
		near float32
		far  float32
	}{
		{"fov zero", mathutil.Vec3{}, 0, 1, 0.1, 100},
		{"fov 180", mathutil.Vec3{}, 180, 1, 0.1, 100},
		{"aspect zero", mathutil.Vec3{}, 90, 0, 0.1, 100},
		{"near zero", mathutil.Vec3{}, 90, 1, 0, 100},
		{"far below near", mathutil.Vec3{}, 90, 1, 1, 0.5},
		{"non-finite position", mathutil.Vec3{nan, 0, 0}, 90, 1, 0.1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCamera(tt.pos, up, -90, 0, tt.fov, tt.ar, tt.near, tt.far)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestCameraFrontVector(t *testing.T) {
	c := testCamera(t)

	// yaw -90, pitch 0 looks down -Z
	front := c.Front()
	if abs32(front[0]) > 1e-6 || abs32(front[1]) > 1e-6 || abs32(front[2]+1) > 1e-6 {
		t.Errorf("front: got %v, want (0,0,-1)", front)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := testCamera(t)

	c.SetDirection(-90, 120)
	if c.Pitch() != 89 {
		t.Errorf("pitch: got %g, want 89", c.Pitch())
	}
	c.SetDirection(-90, -120)
	if c.Pitch() != -89 {
		t.Errorf("pitch: got %g, want -89", c.Pitch())
	}
}

func TestCameraSetFov(t *testing.T) {
	c := testCamera(t)
	if err := c.SetFov(200); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v", err)
	}
	if err := c.SetFov(60); err != nil {
		t.Errorf("valid fov rejected: %v", err)
	}
}

func TestViewProjection(t *testing.T) {
	c := testCamera(t)

	// a point straight ahead projects to the NDC center with positive w
	clip := c.ViewProjectionMatrix().MulVec4(mathutil.Vec3{0, 0, 0})
	if clip[3] <= 0 {
		t.Fatalf("w: got %g, want > 0", clip[3])
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	if abs32(ndcX) > 1e-5 || abs32(ndcY) > 1e-5 {
		t.Errorf("ndc center: got (%g, %g)", ndcX, ndcY)
	}

	// a point behind the camera gets non-positive w
	behind := c.ViewProjectionMatrix().MulVec4(mathutil.Vec3{0, 0, 10})
	if behind[3] > 0 {
		t.Errorf("w behind camera: got %g, want <= 0", behind[3])
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
