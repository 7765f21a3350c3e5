package granular

import "github.com/san-kum/roversim/internal/mathutil"

// Soup is a kinematic rigid proxy shape registered with the terrain system,
// one per coupled body. The proxy is a solid cylinder: radius from the x/z
// extent of the scale, half-length from the y extent, axis along the body
// frame y.
type Soup struct {
	Name  string
	Scale mathutil.Vec3
	Mass  float64

	pos    mathutil.Vec3
	rot    mathutil.Quat
	vel    mathutil.Vec3
	angVel mathutil.Vec3

	// contact reaction accumulated during the last Advance
	force  mathutil.Vec3
	torque mathutil.Vec3

	radius  float64
	halfLen float64
}

func newSoup(name string, scale mathutil.Vec3, mass float64) *Soup {
	r := scale[0]
	if scale[2] > r {
		r = scale[2]
	}
	return &Soup{
		Name:    name,
		Scale:   scale,
		Mass:    mass,
		rot:     mathutil.QuatIdentity(),
		radius:  r / 2,
		halfLen: scale[1] / 2,
	}
}

// closestSurfacePoint returns the closest point on the proxy surface to a
// world point p and the outward surface normal there. Points inside the solid
// are pushed out radially.
func (s *Soup) closestSurfacePoint(p mathutil.Vec3) (point, normal mathutil.Vec3) {
	local := s.rot.RotateInv(p.Sub(s.pos))
	radial := mathutil.Vec3{local[0], 0, local[2]}
	rd := radial.Len()
	axial := local[1]

	radialDir := mathutil.Vec3{1, 0, 0}
	if rd > 1e-12 {
		radialDir = radial.Scale(1 / rd)
	}

	inside := rd <= s.radius && axial >= -s.halfLen && axial <= s.halfLen
	if inside {
		// nearest boundary: lateral surface or an end cap
		toSide := s.radius - rd
		toTop := s.halfLen - axial
		toBottom := axial + s.halfLen
		toCap, capY, ny := toTop, s.halfLen, 1.0
		if toBottom < toTop {
			toCap, capY, ny = toBottom, -s.halfLen, -1.0
		}
		if toSide <= toCap {
			cp := radialDir.Scale(s.radius)
			cp[1] = axial
			return s.toWorld(cp), s.rot.Rotate(radialDir)
		}
		cp := radialDir.Scale(rd)
		cp[1] = capY
		return s.toWorld(cp), s.rot.Rotate(mathutil.Vec3{0, ny, 0})
	}

	// clamp onto the solid, then to its surface
	cr := rd
	if cr > s.radius {
		cr = s.radius
	}
	ca := axial
	if ca > s.halfLen {
		ca = s.halfLen
	} else if ca < -s.halfLen {
		ca = -s.halfLen
	}
	cp := radialDir.Scale(cr)
	cp[1] = ca
	world := s.toWorld(cp)
	n := p.Sub(world)
	if n.Len() < 1e-12 {
		n = s.rot.Rotate(radialDir)
	}
	return world, n.Normalize()
}

func (s *Soup) toWorld(local mathutil.Vec3) mathutil.Vec3 {
	return s.pos.Add(s.rot.Rotate(local))
}

// velocityAt returns the proxy surface velocity at a world point.
func (s *Soup) velocityAt(p mathutil.Vec3) mathutil.Vec3 {
	return s.vel.Add(s.angVel.Cross(p.Sub(s.pos)))
}

func (s *Soup) Position() mathutil.Vec3    { return s.pos }
func (s *Soup) Orientation() mathutil.Quat { return s.rot }
