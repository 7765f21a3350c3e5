// Package rover builds the six-wheeled rover: chassis and wheel bodies in
// the rigid system, one mesh soup per body in the terrain system, and the
// explicit body-soup pairing table the coupling loop exchanges state through.
package rover

import (
	"fmt"
	"math"

	"github.com/san-kum/roversim/internal/granular"
	"github.com/san-kum/roversim/internal/mathutil"
	"github.com/san-kum/roversim/internal/rigid"
)

// All dimensions in CGS (cm, g, s). The rover is a simplified MER-class
// six-wheel platform.
const (
	MetersToCm = 100
	KgToGram   = 1000

	WheelRadius = 0.13 * MetersToCm
	WheelWidth  = 0.16 * MetersToCm

	WheelMass   = 4 * KgToGram
	ChassisMass = 161 * KgToGram

	// wheel positions relative to the chassis reference point
	FrontWheelOffsetX  = 0.7 * MetersToCm
	FrontWheelOffsetY  = 0.6 * MetersToCm
	MiddleWheelOffsetX = -0.01 * MetersToCm
	MiddleWheelOffsetY = 0.55 * MetersToCm
	RearWheelOffsetX   = -0.51 * MetersToCm
	RearWheelOffsetY   = 0.6 * MetersToCm
	WheelOffsetZ       = -0.164 * MetersToCm

	// chassis treated as a solid box inertially
	ChassisLengthX = 2 * MetersToCm
	ChassisLengthY = 2 * MetersToCm
	ChassisLengthZ = 1.5 * MetersToCm

	// target wheel drive rate (rad/s), applied as an angle ramp
	WheelDriveRate = math.Pi
)

// Mesh identities carried through the frame logs.
const (
	WheelMesh   = "meshes/wheel_scaled.obj"
	ChassisMesh = "meshes/MER_body.obj"
)

var wheelNames = []string{
	"wheel_front_left", "wheel_front_right",
	"wheel_middle_left", "wheel_middle_right",
	"wheel_rear_left", "wheel_rear_right",
}

var wheelOffsets = []mathutil.Vec3{
	{FrontWheelOffsetX, FrontWheelOffsetY, WheelOffsetZ},
	{FrontWheelOffsetX, -FrontWheelOffsetY, WheelOffsetZ},
	{MiddleWheelOffsetX, MiddleWheelOffsetY, WheelOffsetZ},
	{MiddleWheelOffsetX, -MiddleWheelOffsetY, WheelOffsetZ},
	{RearWheelOffsetX, RearWheelOffsetY, WheelOffsetZ},
	{RearWheelOffsetX, -RearWheelOffsetY, WheelOffsetZ},
}

// WheelScale is the render/contact scale of the unit wheel mesh
// (height 1, diameter 1; y is the width axis).
func WheelScale() mathutil.Vec3 {
	return mathutil.Vec3{2 * WheelRadius, WheelWidth, 2 * WheelRadius}
}

// ChassisScale is the render scale of the chassis mesh (modeled in meters).
func ChassisScale() mathutil.Vec3 {
	return mathutil.Vec3{MetersToCm, MetersToCm, MetersToCm}
}

// WheelInertia returns the body-frame diagonal inertia of one wheel,
// a solid cylinder spinning about y.
func WheelInertia() mathutil.Vec3 {
	ix := 0.25*WheelMass*WheelRadius*WheelRadius + WheelMass/12.0
	iy := 0.5 * WheelMass * WheelRadius * WheelRadius
	return mathutil.Vec3{ix, iy, ix}
}

// ChassisInertia returns the body-frame diagonal inertia of the chassis box.
func ChassisInertia() mathutil.Vec3 {
	m := ChassisMass / 12.0
	return mathutil.Vec3{
		(ChassisLengthY*ChassisLengthY + ChassisLengthZ*ChassisLengthZ) * m,
		(ChassisLengthX*ChassisLengthX + ChassisLengthZ*ChassisLengthZ) * m,
		(ChassisLengthX*ChassisLengthX + ChassisLengthY*ChassisLengthY) * m,
	}
}

// HeightChassisToBottom is the vertical distance from the chassis reference
// point down to the bottom of the wheels.
func HeightChassisToBottom() float64 {
	return math.Abs(WheelOffsetZ) + 2*WheelRadius
}

// Pair binds one rigid body to its terrain proxy.
type Pair struct {
	Name  string
	Body  *rigid.Body
	Soup  *granular.Soup
	Mesh  string
	Scale mathutil.Vec3
}

// Rover is the assembled model.
type Rover struct {
	Chassis *rigid.Body
	Wheels  []*rigid.Body

	// Pairs lists every coupled body in output order: wheels first, then
	// the chassis.
	Pairs []Pair
}

// TotalMass returns the full rover mass.
func TotalMass() float64 {
	return ChassisMass + float64(len(wheelOffsets))*WheelMass
}

// Build creates the chassis (fixed) and six wheels at chassisPos, attaches
// the wheel drive motors, and registers one soup per body with the terrain
// system. Registration happens through the returned pairing table, so no
// ordering assumption between body creation and soup registration is
// load-bearing.
func Build(rs *rigid.System, ts *granular.System, chassisPos mathutil.Vec3) (*Rover, error) {
	chassis := rs.CreateBody(ChassisMass, ChassisInertia(),
		rigid.Pose{Pos: chassisPos, Rot: mathutil.QuatIdentity()}, true)

	r := &Rover{Chassis: chassis}

	// revolute/motor frame: spin axis (frame z) rotated onto world y
	frameRot := mathutil.QuatFromAxisAngle(mathutil.Vec3{1, 0, 0}, math.Pi/2)

	for i, offset := range wheelOffsets {
		pos := chassisPos.Add(offset)
		wheel := rs.CreateBody(WheelMass, WheelInertia(),
			rigid.Pose{Pos: pos, Rot: mathutil.QuatIdentity()}, false)
		frame := rigid.Pose{Pos: pos, Rot: frameRot}
		rs.AddRevoluteJoint(chassis, wheel, frame)
		rs.AddRotationMotor(chassis, wheel, frame, rigid.Ramp(0, WheelDriveRate))

		soup, err := ts.RegisterMeshSoup(wheelNames[i], WheelScale(), WheelMass)
		if err != nil {
			return nil, fmt.Errorf("rover: register %s: %w", wheelNames[i], err)
		}

		r.Wheels = append(r.Wheels, wheel)
		r.Pairs = append(r.Pairs, Pair{
			Name:  wheelNames[i],
			Body:  wheel,
			Soup:  soup,
			Mesh:  WheelMesh,
			Scale: WheelScale(),
		})
	}

	chassisSoup, err := ts.RegisterMeshSoup("chassis", ChassisScale(), ChassisMass)
	if err != nil {
		return nil, fmt.Errorf("rover: register chassis: %w", err)
	}
	r.Pairs = append(r.Pairs, Pair{
		Name:  "chassis",
		Body:  chassis,
		Soup:  chassisSoup,
		Mesh:  ChassisMesh,
		Scale: ChassisScale(),
	})

	return r, nil
}
