package rover

import (
	"math"
	"testing"

	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/granular"
	"github.com/san-kum/roversim/internal/mathutil"
	"github.com/san-kum/roversim/internal/rigid"
)

func buildTestRover(t *testing.T) (*Rover, *rigid.System, *granular.System) {
	t.Helper()
	gravity := mathutil.Vec3{0, 0, -370}
	rs := rigid.NewSystem(gravity)
	ts := granular.New(config.DefaultParams(), gravity)
	r, err := Build(rs, ts, mathutil.Vec3{-25, 0, 0})
	if err != nil {
		t.Fatalf("build rover: %v", err)
	}
	return r, rs, ts
}

func TestBuildPairing(t *testing.T) {
	r, _, ts := buildTestRover(t)

	if len(r.Wheels) != 6 {
		t.Fatalf("expected 6 wheels, got %d", len(r.Wheels))
	}
	if len(r.Pairs) != 7 {
		t.Fatalf("expected 7 pairs (wheels + chassis), got %d", len(r.Pairs))
	}
	if ts.NumSoups() != 7 {
		t.Fatalf("expected 7 soups registered, got %d", ts.NumSoups())
	}

	for i, p := range r.Pairs[:6] {
		if p.Body != r.Wheels[i] {
			t.Errorf("pair %d body does not match wheel %d", i, i)
		}
		if p.Soup == nil {
			t.Errorf("pair %d has no soup", i)
		}
		if p.Mesh != WheelMesh {
			t.Errorf("pair %d mesh: %s", i, p.Mesh)
		}
	}
	last := r.Pairs[6]
	if last.Body != r.Chassis || last.Mesh != ChassisMesh {
		t.Error("chassis pair must come last")
	}
}

func TestChassisStartsFixed(t *testing.T) {
	r, rs, _ := buildTestRover(t)
	if !r.Chassis.Fixed() {
		t.Fatal("chassis should start fixed")
	}

	start := r.Chassis.Position()
	for i := 0; i < 100; i++ {
		rs.Advance(0.005)
	}
	if r.Chassis.Position() != start {
		t.Errorf("fixed chassis moved to %v", r.Chassis.Position())
	}
}

func TestWheelPlacement(t *testing.T) {
	chassisPos := mathutil.Vec3{-25, 0, 0}
	r, _, _ := buildTestRover(t)

	want := chassisPos.Add(mathutil.Vec3{FrontWheelOffsetX, FrontWheelOffsetY, WheelOffsetZ})
	if got := r.Wheels[0].Position(); got != want {
		t.Errorf("front left wheel at %v, want %v", got, want)
	}

	// left/right symmetry
	for i := 0; i < 6; i += 2 {
		l, rr := r.Wheels[i].Position(), r.Wheels[i+1].Position()
		if l[0] != rr[0] || l[2] != rr[2] || l[1] != -rr[1] {
			t.Errorf("wheel pair %d not symmetric: %v vs %v", i/2, l, rr)
		}
	}
}

func TestWheelsSpinWhileChassisFixed(t *testing.T) {
	r, rs, _ := buildTestRover(t)

	for i := 0; i < 100; i++ { // t = 0.5 => quarter turn at rate pi
		rs.Advance(0.005)
	}

	for i, w := range r.Wheels {
		av := w.AngularVelocity()
		if math.Abs(math.Abs(av[1])-WheelDriveRate) > 1e-6 {
			t.Errorf("wheel %d should spin about y at rate pi, got %v", i, av)
		}
		if w.Position() != r.Chassis.Position().Add(wheelOffsets[i]) {
			t.Errorf("wheel %d drifted off its mount: %v", i, w.Position())
		}
	}
}

func TestInertiaValues(t *testing.T) {
	wi := WheelInertia()
	if wi[0] != wi[2] {
		t.Error("wheel inertia should be symmetric about the spin axis")
	}
	if wi[1] != 0.5*WheelMass*WheelRadius*WheelRadius {
		t.Errorf("unexpected spin-axis inertia %f", wi[1])
	}

	ci := ChassisInertia()
	for i, v := range ci {
		if v <= 0 {
			t.Errorf("chassis inertia component %d not positive: %f", i, v)
		}
	}

	if TotalMass() != ChassisMass+6*WheelMass {
		t.Errorf("total mass: %f", TotalMass())
	}
}
