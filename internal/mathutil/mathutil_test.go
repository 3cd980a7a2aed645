package mathutil

import (
	"math"
	"testing"
)

func approxVec3(t *testing.T, got, want Vec3, tol float32) {
	t.Helper()
	for i := 0; i < 3; i++ {
		d := got[i] - want[i]
		if d > tol || d < -tol {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %g", got)
	}
	if got := a.Cross(b); got != (Vec3{-3, 6, -3}) {
		t.Errorf("Cross: got %v", got)
	}
	if got := (Vec3{3, 4, 0}).Len(); got != 5 {
		t.Errorf("Len: got %g", got)
	}

	approxVec3(t, Vec3{0, 0, 9}.Normalize(), Vec3{0, 0, 1}, 1e-6)
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize zero: got %v", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{float32(math.NaN()), 0, 0}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vec3{0, float32(math.Inf(1)), 0}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestMat3InverseTranspose(t *testing.T) {
	// for a pure rotation, the inverse-transpose is the rotation itself
	r := RotY(Deg2Rad(30))
	it := r.InverseTranspose()
	for i := 0; i < 9; i++ {
		d := it[i] - r[i]
		if d > 1e-6 || d < -1e-6 {
			t.Fatalf("element %d: got %g, want %g", i, it[i], r[i])
		}
	}

	// for a non-uniform scale it differs: diag(2,1,1) -> diag(0.5,1,1)
	s := Mat3{2, 0, 0, 0, 1, 0, 0, 0, 1}
	got := s.InverseTranspose()
	if got[0] != 0.5 || got[4] != 1 || got[8] != 1 {
		t.Errorf("scale inverse-transpose: got %v", got)
	}
}

func TestMat3SingularInverse(t *testing.T) {
	var zero Mat3
	if got := zero.Inverse(); got != Mat3Identity() {
		t.Errorf("singular inverse: got %v, want identity", got)
	}
}

func TestMat4MulPoint(t *testing.T) {
	m := Mat4Mul(Translate(Vec3{1, 2, 3}), ScaleMat(Vec3{2, 2, 2}))
	got := m.MulPoint(Vec3{1, 1, 1})
	approxVec3(t, got, Vec3{3, 4, 5}, 1e-6)
}

func TestLookAt(t *testing.T) {
	view := LookAt(Vec3{0, 0, 3}, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	// the eye maps to the origin
	approxVec3(t, view.MulPoint(Vec3{0, 0, 3}), Vec3{}, 1e-6)

	// a point in front of the camera has negative view-space z
	p := view.MulPoint(Vec3{0, 0, 0})
	if p[2] >= 0 {
		t.Errorf("view z: got %g, want < 0", p[2])
	}
}

func TestPerspective(t *testing.T) {
	proj := Perspective(Deg2Rad(90), 1, 0.1, 100)

	// near plane maps to NDC z = -1, far plane to +1
	near := proj.MulVec4(Vec3{0, 0, -0.1})
	if d := near[2]/near[3] + 1; d > 1e-4 || d < -1e-4 {
		t.Errorf("near plane ndc z: got %g, want -1", near[2]/near[3])
	}
	far := proj.MulVec4(Vec3{0, 0, -100})
	if d := far[2]/far[3] - 1; d > 1e-4 || d < -1e-4 {
		t.Errorf("far plane ndc z: got %g, want 1", far[2]/far[3])
	}

	// w carries the negated view z
	if near[3] != 0.1 {
		t.Errorf("near w: got %g, want 0.1", near[3])
	}
}

func TestRotationMatrices(t *testing.T) {
	tests := []struct {
		name string
		m    Mat3
		in   Vec3
		want Vec3
	}{
		{"RotX 90 maps +Y to +Z", RotX(Deg2Rad(90)), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"RotY 90 maps +Z to +X", RotY(Deg2Rad(90)), Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{"RotZ 90 maps +X to +Y", RotZ(Deg2Rad(90)), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approxVec3(t, tt.m.MulVec3(tt.in), tt.want, 1e-6)
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("got %g", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("got %g", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Errorf("got %g", got)
	}
}
