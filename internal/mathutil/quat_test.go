package mathutil

import (
	"math"
	"testing"
)

func TestQuatIdentityRotate(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := QuatIdentity().Rotate(v)
	if got != v {
		t.Errorf("identity rotation changed vector: %v", got)
	}
}

func TestQuatAxisAngle(t *testing.T) {
	// 90 degrees about z maps x to y
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	got := q.Rotate(Vec3{1, 0, 0})
	want := Vec3{0, 1, 0}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("rotate x about z: got %v, want %v", got, want)
		}
	}
}

func TestQuatMulComposition(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.3)
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, 0.7)
	v := Vec3{0.2, -1.1, 0.5}

	composed := a.Mul(b).Rotate(v)
	sequential := a.Rotate(b.Rotate(v))
	for i := range composed {
		if math.Abs(composed[i]-sequential[i]) > 1e-12 {
			t.Fatalf("composition mismatch: %v vs %v", composed, sequential)
		}
	}
}

func TestQuatAxesOrthonormal(t *testing.T) {
	cases := []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(Vec3{1, 2, 3}, 1.234),
		QuatFromAxisAngle(Vec3{0, 1, 0}, -2.5),
	}
	for _, q := range cases {
		x, y, z := q.XAxis(), q.YAxis(), q.ZAxis()
		for _, v := range []Vec3{x, y, z} {
			if math.Abs(v.Len()-1) > 1e-12 {
				t.Errorf("axis not unit length: %v", v)
			}
		}
		if math.Abs(x.Dot(y)) > 1e-12 || math.Abs(y.Dot(z)) > 1e-12 || math.Abs(x.Dot(z)) > 1e-12 {
			t.Errorf("axes not orthogonal for %+v", q)
		}
		// right-handed
		cr := x.Cross(y)
		if math.Abs(cr[0]-z[0]) > 1e-12 || math.Abs(cr[1]-z[1]) > 1e-12 || math.Abs(cr[2]-z[2]) > 1e-12 {
			t.Errorf("x cross y != z for %+v", q)
		}
	}
}

func TestQuatIntegrate(t *testing.T) {
	// spinning about z at 1 rad/s for 1s in small steps approaches a 1 rad rotation
	q := QuatIdentity()
	dt := 1e-4
	for i := 0; i < 10000; i++ {
		q = q.Integrate(Vec3{0, 0, 1}, dt)
	}
	got := q.Rotate(Vec3{1, 0, 0})
	want := Vec3{math.Cos(1), math.Sin(1), 0}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-3 {
			t.Fatalf("integrated rotation: got %v, want %v", got, want)
		}
	}
	if math.Abs(q.Norm()-1) > 1e-12 {
		t.Errorf("quaternion drifted off unit length: %f", q.Norm())
	}
}

func TestVec3Normalize(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", got)
	}
	v := Vec3{3, 4, 0}.Normalize()
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("expected unit length, got %f", v.Len())
	}
}
