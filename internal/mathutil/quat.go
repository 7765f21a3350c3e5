package mathutil

import "math"

// Quat is a unit quaternion (w, x, y, z) representing a rotation.
type Quat struct {
	W, X, Y, Z float64
}

func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds the rotation of angle radians about axis.
// The axis need not be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	a := axis.Normalize()
	s, c := math.Sin(angle*0.5), math.Cos(angle*0.5)
	return Quat{W: c, X: a[0] * s, Y: a[1] * s, Z: a[2] * s}
}

// Mul returns the composed rotation a then b applied in b-then-a order,
// i.e. (q.Mul(p)).Rotate(v) == q.Rotate(p.Rotate(v)).
func (q Quat) Mul(p Quat) Quat {
	return Quat{
		W: q.W*p.W - q.X*p.X - q.Y*p.Y - q.Z*p.Z,
		X: q.W*p.X + q.X*p.W + q.Y*p.Z - q.Z*p.Y,
		Y: q.W*p.Y - q.X*p.Z + q.Y*p.W + q.Z*p.X,
		Z: q.W*p.Z + q.X*p.Y - q.Y*p.X + q.Z*p.W,
	}
}

func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n < 1e-12 {
		return QuatIdentity()
	}
	return Quat{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2q_v × (q_v × v + w v)
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Add(v.Scale(q.W))
	return v.Add(qv.Cross(t).Scale(2))
}

// RotateInv applies the inverse rotation to v.
func (q Quat) RotateInv(v Vec3) Vec3 {
	return q.Conjugate().Rotate(v)
}

// XAxis returns the rotated unit x axis (first column of the rotation matrix).
func (q Quat) XAxis() Vec3 {
	return Vec3{
		1 - 2*(q.Y*q.Y+q.Z*q.Z),
		2 * (q.X*q.Y + q.W*q.Z),
		2 * (q.X*q.Z - q.W*q.Y),
	}
}

func (q Quat) YAxis() Vec3 {
	return Vec3{
		2 * (q.X*q.Y - q.W*q.Z),
		1 - 2*(q.X*q.X+q.Z*q.Z),
		2 * (q.Y*q.Z + q.W*q.X),
	}
}

func (q Quat) ZAxis() Vec3 {
	return Vec3{
		2 * (q.X*q.Z + q.W*q.Y),
		2 * (q.Y*q.Z - q.W*q.X),
		1 - 2*(q.X*q.X+q.Y*q.Y),
	}
}

// Integrate advances the orientation by angular velocity w (world frame,
// rad/s) over dt and renormalizes.
func (q Quat) Integrate(w Vec3, dt float64) Quat {
	omega := Quat{W: 0, X: w[0], Y: w[1], Z: w[2]}
	dq := omega.Mul(q)
	return Quat{
		W: q.W + 0.5*dt*dq.W,
		X: q.X + 0.5*dt*dq.X,
		Y: q.Y + 0.5*dt*dq.Y,
		Z: q.Z + 0.5*dt*dq.Z,
	}.Normalize()
}
