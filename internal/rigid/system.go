package rigid

import "github.com/san-kum/roversim/internal/mathutil"

// System is a rigid multibody model: bodies connected by revolute links,
// integrated with a fixed step. Link children are kinematic (held on their
// parent frame); free root bodies integrate under gravity plus accumulated
// loads.
type System struct {
	gravity mathutil.Vec3
	bodies  []*Body
	links   []*link
	time    float64
}

func NewSystem(gravity mathutil.Vec3) *System {
	return &System{gravity: gravity}
}

// Time returns the simulated time advanced so far.
func (s *System) Time() float64 { return s.time }

// CreateBody adds a body with the given mass, body-frame diagonal inertia
// and initial pose.
func (s *System) CreateBody(mass float64, inertia mathutil.Vec3, pose Pose, fixed bool) *Body {
	if pose.Rot == (mathutil.Quat{}) {
		pose.Rot = mathutil.QuatIdentity()
	}
	b := &Body{mass: mass, inertia: inertia, pose: pose, fixed: fixed}
	s.bodies = append(s.bodies, b)
	return b
}

// AddRevoluteJoint connects child to parent with a revolute joint whose
// rotation axis is the z axis of frame (world coordinates at attach time).
func (s *System) AddRevoluteJoint(parent, child *Body, frame Pose) {
	if l := s.findLink(parent, child); l != nil {
		return
	}
	s.links = append(s.links, newLink(parent, child, frame))
}

// AddRotationMotor drives the revolute joint between parent and child with a
// target-angle profile. The joint is created if it does not exist yet.
func (s *System) AddRotationMotor(parent, child *Body, frame Pose, profile RampFunc) {
	l := s.findLink(parent, child)
	if l == nil {
		l = newLink(parent, child, frame)
		s.links = append(s.links, l)
	}
	l.motor = profile
}

func (s *System) findLink(parent, child *Body) *link {
	for _, l := range s.links {
		if l.parent == parent && l.child == child {
			return l
		}
	}
	return nil
}

// Advance integrates all non-fixed root bodies by one step of h and resolves
// link constraints. Accumulated child loads are transferred to parents before
// integration; accumulators are not cleared here.
func (s *System) Advance(h float64) {
	for _, l := range s.links {
		l.transfer()
	}

	children := make(map[*Body]bool, len(s.links))
	for _, l := range s.links {
		children[l.child] = true
	}

	for _, b := range s.bodies {
		if b.fixed || children[b] {
			continue
		}
		s.integrate(b, h)
	}

	s.time += h

	for _, l := range s.links {
		l.resolve(s.time)
	}
}

// integrate advances one free body with semi-implicit Euler. The angular
// update is done in the body frame against the diagonal inertia.
func (s *System) integrate(b *Body, h float64) {
	acc := s.gravity
	if b.mass > 0 {
		acc = acc.Add(b.force.Scale(1 / b.mass))
	}
	b.vel = b.vel.Add(acc.Scale(h))
	b.pose.Pos = b.pose.Pos.Add(b.vel.Scale(h))

	wb := b.pose.Rot.RotateInv(b.angVel)
	tb := b.pose.Rot.RotateInv(b.torque)
	iw := b.inertia.MulElem(wb)
	gyro := wb.Cross(iw)
	var alpha mathutil.Vec3
	for i := 0; i < 3; i++ {
		if b.inertia[i] > 0 {
			alpha[i] = (tb[i] - gyro[i]) / b.inertia[i]
		}
	}
	wb = wb.Add(alpha.Scale(h))
	b.angVel = b.pose.Rot.Rotate(wb)
	b.pose.Rot = b.pose.Rot.Integrate(b.angVel, h)
}
