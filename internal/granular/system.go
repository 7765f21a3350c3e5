// Package granular is a discrete-element terrain model: spherical particles
// in a rectangular domain, interacting through linear spring-damper contacts
// with each other, the domain walls, and registered rigid proxy shapes
// ("mesh soups") driven kinematically by the coupling loop.
package granular

import (
	"errors"
	"math"

	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/mathutil"
)

var (
	// ErrInitialized is returned when a soup is registered after Initialize.
	ErrInitialized = errors.New("granular: system already initialized")

	// ErrNotInitialized is returned when Advance runs before Initialize.
	ErrNotInitialized = errors.New("granular: system not initialized")
)

// System holds the particle set and registered soups. The domain box is
// centered on the origin: x in [-BoxX/2, BoxX/2], likewise y and z.
type System struct {
	p       *config.Params
	gravity mathutil.Vec3
	mass    float64 // per particle

	pos []mathutil.Vec3
	vel []mathutil.Vec3

	soups         []*Soup
	meshCollision bool
	initialized   bool
	format        string

	cell    float64
	buckets map[[3]int][]int
}

func New(p *config.Params, gravity mathutil.Vec3) *System {
	return &System{
		p:             p,
		gravity:       gravity,
		mass:          p.SphereMass(),
		meshCollision: true,
		format:        p.WriteMode,
		cell:          2 * p.SphereRadius,
		buckets:       make(map[[3]int][]int),
	}
}

// InitFromSamples seeds the particle set from sampled positions, at rest.
func (s *System) InitFromSamples(points []mathutil.Vec3) {
	s.setParticles(points)
}

// InitFromCheckpoint seeds the particle set from checkpointed positions.
// Velocities and contact history restart from rest.
func (s *System) InitFromCheckpoint(points []mathutil.Vec3) {
	s.setParticles(points)
}

func (s *System) setParticles(points []mathutil.Vec3) {
	s.pos = make([]mathutil.Vec3, len(points))
	copy(s.pos, points)
	s.vel = make([]mathutil.Vec3, len(points))
}

// RegisterMeshSoup adds a rigid proxy shape. All soups must be registered
// before Initialize; registration order defines nothing, callers refer to
// soups by the returned handle.
func (s *System) RegisterMeshSoup(name string, scale mathutil.Vec3, mass float64) (*Soup, error) {
	if s.initialized {
		return nil, ErrInitialized
	}
	soup := newSoup(name, scale, mass)
	s.soups = append(s.soups, soup)
	return soup, nil
}

// Initialize finalizes the soup set. No soups may be added afterwards.
func (s *System) Initialize() error {
	if s.initialized {
		return ErrInitialized
	}
	s.initialized = true
	return nil
}

// SetSoupPose writes a coupled body's kinematic state into its proxy.
func (s *System) SetSoupPose(soup *Soup, pos mathutil.Vec3, rot mathutil.Quat, vel, angVel mathutil.Vec3) {
	soup.pos = pos
	soup.rot = rot
	soup.vel = vel
	soup.angVel = angVel
}

// CollectContactForce returns the contact force and torque (about the soup
// origin) accumulated by the proxy during the last Advance. Read-only; the
// accumulators reset at the start of the next Advance.
func (s *System) CollectContactForce(soup *Soup) (force, torque mathutil.Vec3) {
	return soup.force, soup.torque
}

// SetMeshCollisionEnabled toggles particle-soup contact. Disabled during the
// settling phase so the bed settles under gravity alone.
func (s *System) SetMeshCollisionEnabled(enabled bool) {
	s.meshCollision = enabled
}

// SetOutputFormat selects the snapshot format (config.OutputCSV or
// config.OutputBinary).
func (s *System) SetOutputFormat(format string) {
	s.format = format
}

// MaxParticleHeight returns the largest particle z coordinate.
func (s *System) MaxParticleHeight() float64 {
	max := math.Inf(-1)
	for _, p := range s.pos {
		if p[2] > max {
			max = p[2]
		}
	}
	return max
}

func (s *System) NumParticles() int { return len(s.pos) }

func (s *System) NumSoups() int { return len(s.soups) }

// Positions returns a copy of the particle positions.
func (s *System) Positions() []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(s.pos))
	copy(out, s.pos)
	return out
}

// Advance integrates the particle set by one step of h.
func (s *System) Advance(h float64) error {
	if !s.initialized {
		return ErrNotInitialized
	}

	for _, soup := range s.soups {
		soup.force = mathutil.Vec3{}
		soup.torque = mathutil.Vec3{}
	}

	s.rebuildGrid()

	n := len(s.pos)
	forces := make([]mathutil.Vec3, n)
	gw := s.gravity.Scale(s.mass)
	for i := range forces {
		forces[i] = gw
	}

	s.particleContacts(forces)
	s.wallContacts(forces)
	if s.meshCollision {
		s.soupContacts(forces)
	}

	invM := 1 / s.mass
	for i := 0; i < n; i++ {
		s.vel[i] = s.vel[i].Add(forces[i].Scale(h * invM))
		s.pos[i] = s.pos[i].Add(s.vel[i].Scale(h))
	}
	return nil
}

func (s *System) cellOf(p mathutil.Vec3) [3]int {
	return [3]int{
		int(math.Floor(p[0] / s.cell)),
		int(math.Floor(p[1] / s.cell)),
		int(math.Floor(p[2] / s.cell)),
	}
}

func (s *System) rebuildGrid() {
	for k := range s.buckets {
		delete(s.buckets, k)
	}
	for i, p := range s.pos {
		c := s.cellOf(p)
		s.buckets[c] = append(s.buckets[c], i)
	}
}

// contactForce evaluates the linear spring-damper model for one contact.
// overlap > 0, normal points from the other body toward the particle, vrel is
// the particle velocity relative to the other body.
func contactForce(overlap float64, normal, vrel mathutil.Vec3, kn, gn, gt, mu, adhesion float64) mathutil.Vec3 {
	vn := vrel.Dot(normal)
	fn := kn*overlap - gn*vn
	if fn < 0 {
		fn = 0
	}

	vt := vrel.Sub(normal.Scale(vn))
	ft := vt.Scale(-gt)
	if max := mu * fn; ft.Len() > max {
		ft = ft.Normalize().Scale(max)
	}

	f := normal.Scale(fn - adhesion).Add(ft)
	return f
}

func (s *System) particleContacts(forces []mathutil.Vec3) {
	r2 := 2 * s.p.SphereRadius
	cohesion := s.p.CohesionRatio * s.mass * s.gravity.Len()

	for i, pi := range s.pos {
		c := s.cellOf(pi)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range s.buckets[[3]int{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if j <= i {
							continue
						}
						d := pi.Sub(s.pos[j])
						dsq := d.LenSq()
						if dsq >= r2*r2 || dsq < 1e-24 {
							continue
						}
						dist := math.Sqrt(dsq)
						normal := d.Scale(1 / dist)
						vrel := s.vel[i].Sub(s.vel[j])
						f := contactForce(r2-dist, normal, vrel,
							s.p.NormalStiff.S2S, s.p.NormalDamp.S2S,
							s.p.TangentDamp.S2S, s.p.Friction.S2S, cohesion)
						forces[i] = forces[i].Add(f)
						forces[j] = forces[j].Sub(f)
					}
				}
			}
		}
	}
}

func (s *System) wallContacts(forces []mathutil.Vec3) {
	r := s.p.SphereRadius
	half := mathutil.Vec3{s.p.BoxX / 2, s.p.BoxY / 2, s.p.BoxZ / 2}
	adhesion := s.p.AdhesionS2W * s.mass * s.gravity.Len()

	for i, p := range s.pos {
		for axis := 0; axis < 3; axis++ {
			// low wall
			if overlap := r - (p[axis] + half[axis]); overlap > 0 {
				var normal mathutil.Vec3
				normal[axis] = 1
				f := contactForce(overlap, normal, s.vel[i],
					s.p.NormalStiff.S2W, s.p.NormalDamp.S2W,
					s.p.TangentDamp.S2W, s.p.Friction.S2W, adhesion)
				forces[i] = forces[i].Add(f)
			}
			// high wall
			if overlap := r - (half[axis] - p[axis]); overlap > 0 {
				var normal mathutil.Vec3
				normal[axis] = -1
				f := contactForce(overlap, normal, s.vel[i],
					s.p.NormalStiff.S2W, s.p.NormalDamp.S2W,
					s.p.TangentDamp.S2W, s.p.Friction.S2W, adhesion)
				forces[i] = forces[i].Add(f)
			}
		}
	}
}

func (s *System) soupContacts(forces []mathutil.Vec3) {
	r := s.p.SphereRadius
	adhesion := s.p.AdhesionS2M * s.mass * s.gravity.Len()

	for _, soup := range s.soups {
		// cheap reject by bounding sphere
		bound := math.Sqrt(soup.radius*soup.radius+soup.halfLen*soup.halfLen) + r

		for i, p := range s.pos {
			if p.Sub(soup.pos).LenSq() > bound*bound {
				continue
			}
			cp, normal := soup.closestSurfacePoint(p)
			overlap := r - p.Sub(cp).Dot(normal)
			if overlap <= 0 {
				continue
			}
			vrel := s.vel[i].Sub(soup.velocityAt(cp))
			f := contactForce(overlap, normal, vrel,
				s.p.NormalStiff.S2M, s.p.NormalDamp.S2M,
				s.p.TangentDamp.S2M, s.p.Friction.S2M, adhesion)
			forces[i] = forces[i].Add(f)

			// reaction on the proxy
			soup.force = soup.force.Sub(f)
			soup.torque = soup.torque.Sub(cp.Sub(soup.pos).Cross(f))
		}
	}
}
