package rigid

import (
	"math"
	"testing"

	"github.com/san-kum/roversim/internal/mathutil"
)

const g = 370.0 // cm/s^2

func TestFixedBodyDoesNotMove(t *testing.T) {
	s := NewSystem(mathutil.Vec3{0, 0, -g})
	b := s.CreateBody(100, mathutil.Vec3{1, 1, 1}, Pose{Pos: mathutil.Vec3{1, 2, 3}}, true)
	b.AccumulateForce(mathutil.Vec3{1e6, 0, 0}, b.Position())

	for i := 0; i < 100; i++ {
		s.Advance(0.001)
	}

	if b.Position() != (mathutil.Vec3{1, 2, 3}) {
		t.Errorf("fixed body moved to %v", b.Position())
	}
	if b.Velocity() != (mathutil.Vec3{}) {
		t.Errorf("fixed body gained velocity %v", b.Velocity())
	}
}

func TestFreeFall(t *testing.T) {
	s := NewSystem(mathutil.Vec3{0, 0, -g})
	b := s.CreateBody(10, mathutil.Vec3{1, 1, 1}, Pose{Pos: mathutil.Vec3{0, 0, 100}}, false)

	h := 0.0001
	steps := 10000 // 1 second
	for i := 0; i < steps; i++ {
		s.Advance(h)
	}

	// z = z0 - g t^2 / 2
	want := 100 - g/2
	if math.Abs(b.Position()[2]-want) > 0.5 {
		t.Errorf("expected z ~%f after 1s of free fall, got %f", want, b.Position()[2])
	}
	if math.Abs(b.Velocity()[2]+g) > 0.5 {
		t.Errorf("expected vz ~%f, got %f", -g, b.Velocity()[2])
	}
}

func TestAccumulatedForceBalancesGravity(t *testing.T) {
	s := NewSystem(mathutil.Vec3{0, 0, -g})
	b := s.CreateBody(10, mathutil.Vec3{1, 1, 1}, Pose{Pos: mathutil.Vec3{0, 0, 50}}, false)

	// push up with exactly the weight; body should hover
	b.AccumulateForce(mathutil.Vec3{0, 0, 10 * g}, b.Position())
	for i := 0; i < 1000; i++ {
		s.Advance(0.001)
	}

	if math.Abs(b.Position()[2]-50) > 1e-9 {
		t.Errorf("balanced body drifted to z=%f", b.Position()[2])
	}
}

func TestClearAccumulators(t *testing.T) {
	s := NewSystem(mathutil.Vec3{})
	b := s.CreateBody(1, mathutil.Vec3{1, 1, 1}, Pose{}, false)

	b.AccumulateForce(mathutil.Vec3{5, 0, 0}, mathutil.Vec3{0, 1, 0})
	if b.AccumulatedForce() == (mathutil.Vec3{}) {
		t.Fatal("force accumulator empty after accumulate")
	}
	if b.AccumulatedTorque() == (mathutil.Vec3{}) {
		t.Fatal("off-center force should produce torque")
	}

	b.ClearAccumulators()
	if b.AccumulatedForce() != (mathutil.Vec3{}) || b.AccumulatedTorque() != (mathutil.Vec3{}) {
		t.Error("accumulators not cleared")
	}
}

func TestMotorRampAngle(t *testing.T) {
	s := NewSystem(mathutil.Vec3{})
	chassis := s.CreateBody(1000, mathutil.Vec3{1, 1, 1}, Pose{}, true)
	wheelPos := mathutil.Vec3{1, 0, 0}
	wheel := s.CreateBody(10, mathutil.Vec3{1, 1, 1}, Pose{Pos: wheelPos}, false)

	// joint frame rotated so the spin axis (frame z) is world y
	frame := Pose{Pos: wheelPos, Rot: mathutil.QuatFromAxisAngle(mathutil.Vec3{1, 0, 0}, math.Pi/2)}
	s.AddRevoluteJoint(chassis, wheel, frame)
	s.AddRotationMotor(chassis, wheel, frame, Ramp(0, math.Pi))

	h := 0.001
	for i := 0; i < 500; i++ { // t = 0.5, angle = pi/2
		s.Advance(h)
	}

	if wheel.Position() != wheelPos {
		t.Errorf("jointed wheel translated to %v", wheel.Position())
	}

	// after pi/2 about the frame axis, the wheel x axis points along -z or +z
	// depending on axis sign; check it rotated by ~90 degrees in the x-z plane.
	x := wheel.Orientation().XAxis()
	if math.Abs(x[0]) > 1e-6 {
		t.Errorf("wheel x axis should have left world x after quarter turn, got %v", x)
	}
	if math.Abs(math.Abs(x[2])-1) > 1e-6 {
		t.Errorf("wheel x axis should be vertical after quarter turn, got %v", x)
	}

	// angular rate matches the ramp slope about the world y axis
	w := wheel.AngularVelocity()
	if math.Abs(math.Abs(w[1])-math.Pi) > 1e-6 {
		t.Errorf("expected |wy| = pi, got %v", w)
	}
}

func TestChildLoadTransfer(t *testing.T) {
	s := NewSystem(mathutil.Vec3{})
	chassis := s.CreateBody(1000, mathutil.Vec3{1, 1, 1}, Pose{}, false)
	wheelPos := mathutil.Vec3{0, 2, 0}
	wheel := s.CreateBody(10, mathutil.Vec3{1, 1, 1}, Pose{Pos: wheelPos}, false)
	s.AddRevoluteJoint(chassis, wheel, Pose{Pos: wheelPos, Rot: mathutil.QuatIdentity()})

	wheel.AccumulateForce(mathutil.Vec3{0, 0, 100}, wheelPos)
	s.Advance(0.01)

	// the wheel's upward load reaches the chassis: it gains upward velocity
	if chassis.Velocity()[2] <= 0 {
		t.Errorf("chassis should accelerate upward from wheel load, vz=%f", chassis.Velocity()[2])
	}
	// and the off-axis load spins it about x
	if chassis.AngularVelocity()[0] == 0 {
		t.Errorf("off-axis wheel load should torque the chassis")
	}
}

func TestSetFixedRelease(t *testing.T) {
	s := NewSystem(mathutil.Vec3{0, 0, -g})
	b := s.CreateBody(10, mathutil.Vec3{1, 1, 1}, Pose{Pos: mathutil.Vec3{0, 0, 10}}, true)

	s.Advance(0.01)
	if b.Position()[2] != 10 {
		t.Fatal("fixed body fell")
	}

	b.SetFixed(false)
	s.Advance(0.01)
	if b.Position()[2] >= 10 {
		t.Error("released body should fall")
	}
}
