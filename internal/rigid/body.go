package rigid

import "github.com/san-kum/roversim/internal/mathutil"

// Pose is a position and orientation in world coordinates.
type Pose struct {
	Pos mathutil.Vec3
	Rot mathutil.Quat
}

// Body is one rigid body: mass, body-frame diagonal inertia, pose, velocity
// and force/torque accumulators. Accumulated loads persist until cleared and
// are applied on every Advance.
type Body struct {
	mass    float64
	inertia mathutil.Vec3

	pose   Pose
	vel    mathutil.Vec3
	angVel mathutil.Vec3 // world frame

	force  mathutil.Vec3
	torque mathutil.Vec3

	fixed bool
}

func (b *Body) Mass() float64 { return b.mass }

func (b *Body) Pose() Pose { return b.pose }

func (b *Body) Position() mathutil.Vec3 { return b.pose.Pos }

func (b *Body) Orientation() mathutil.Quat { return b.pose.Rot }

func (b *Body) Velocity() mathutil.Vec3 { return b.vel }

// AngularVelocity returns the angular velocity in the world frame.
func (b *Body) AngularVelocity() mathutil.Vec3 { return b.angVel }

func (b *Body) Fixed() bool { return b.fixed }

// SetFixed excludes the body from integration when true. A fixed body keeps
// its pose but still accepts accumulated loads.
func (b *Body) SetFixed(fixed bool) { b.fixed = fixed }

// ClearAccumulators zeroes the force and torque accumulators.
func (b *Body) ClearAccumulators() {
	b.force = mathutil.Vec3{}
	b.torque = mathutil.Vec3{}
}

// AccumulateForce adds a world-frame force applied at a world point. The
// moment of the force about the body origin is added to the torque
// accumulator.
func (b *Body) AccumulateForce(f, at mathutil.Vec3) {
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(at.Sub(b.pose.Pos).Cross(f))
}

// AccumulateTorque adds a world-frame torque.
func (b *Body) AccumulateTorque(t mathutil.Vec3) {
	b.torque = b.torque.Add(t)
}

// AccumulatedForce returns the current force accumulator.
func (b *Body) AccumulatedForce() mathutil.Vec3 { return b.force }

// AccumulatedTorque returns the current torque accumulator.
func (b *Body) AccumulatedTorque() mathutil.Vec3 { return b.torque }
