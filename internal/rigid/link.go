package rigid

import "github.com/san-kum/roversim/internal/mathutil"

// RampFunc is a motor target-angle profile: angle (rad) as a function of
// simulated time.
type RampFunc func(t float64) float64

// Ramp returns the linear profile y0 + slope*t.
func Ramp(y0, slope float64) RampFunc {
	return func(t float64) float64 { return y0 + slope*t }
}

// link is a revolute connection between a parent and a child body. The child
// rotates about the z axis of the joint frame; with a motor attached the
// rotation angle follows the motor profile, otherwise the attachment angle is
// held.
type link struct {
	parent *Body
	child  *Body

	// joint frame expressed in the parent body frame
	localPos mathutil.Vec3
	localRot mathutil.Quat

	// child orientation relative to the joint frame at attach time
	childRotOffset mathutil.Quat

	motor RampFunc
}

func newLink(parent, child *Body, frame Pose) *link {
	return &link{
		parent:         parent,
		child:          child,
		localPos:       parent.pose.Rot.RotateInv(frame.Pos.Sub(parent.pose.Pos)),
		localRot:       parent.pose.Rot.Conjugate().Mul(frame.Rot).Normalize(),
		childRotOffset: frame.Rot.Conjugate().Mul(child.pose.Rot).Normalize(),
	}
}

// angle returns the current joint angle and angular rate at time t.
func (l *link) angle(t float64) (float64, float64) {
	if l.motor == nil {
		return 0, 0
	}
	const eps = 1e-6
	a := l.motor(t)
	rate := (l.motor(t+eps) - l.motor(t-eps)) / (2 * eps)
	return a, rate
}

// resolve snaps the child onto the joint frame for time t and assigns its
// velocity from the parent motion plus the motor spin.
func (l *link) resolve(t float64) {
	p := l.parent

	framePos := p.pose.Pos.Add(p.pose.Rot.Rotate(l.localPos))
	frameRot := p.pose.Rot.Mul(l.localRot)

	angle, rate := l.angle(t)
	spin := mathutil.QuatFromAxisAngle(mathutil.Vec3{0, 0, 1}, angle)

	l.child.pose.Pos = framePos
	l.child.pose.Rot = frameRot.Mul(spin).Mul(l.childRotOffset).Normalize()

	axis := frameRot.ZAxis()
	r := framePos.Sub(p.pose.Pos)
	l.child.vel = p.vel.Add(p.angVel.Cross(r))
	l.child.angVel = p.angVel.Add(axis.Scale(rate))
}

// transfer moves the child's accumulated contact loads onto the parent as an
// equivalent force plus moment. The child keeps its accumulators so callers
// can still inspect them; children are never integrated directly.
func (l *link) transfer() {
	p, c := l.parent, l.child
	p.force = p.force.Add(c.force)
	p.torque = p.torque.Add(c.torque).Add(c.pose.Pos.Sub(p.pose.Pos).Cross(c.force))
}
