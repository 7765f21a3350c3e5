// Package cosim runs the co-simulation coupling loop: per-step state
// exchange between the rigid multibody rover and the granular terrain,
// the staged fixed-to-free chassis transition, and periodic frame and
// checkpoint output.
package cosim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/frames"
	"github.com/san-kum/roversim/internal/granular"
	"github.com/san-kum/roversim/internal/output"
	"github.com/san-kum/roversim/internal/rigid"
	"github.com/san-kum/roversim/internal/rover"
)

// Config describes one coupling-loop run.
type Config struct {
	Phase    Phase
	StepSize float64
	Duration float64 // simulated seconds; <= 0 means the phase default
	OutFPS   int

	// SettleTime is the simulated-time threshold for the chassis release.
	SettleTime float64

	// HeightChassisToBottom is the vertical distance from the chassis
	// reference point to the wheel bottoms, used for the terrain output
	// offset correction at release.
	HeightChassisToBottom float64

	// InitialHeightOffset is the terrain output offset before release.
	InitialHeightOffset float64

	// CheckpointBase is the checkpoint path without extension; written at
	// the end of a settling run.
	CheckpointBase string

	GravityAngleDeg float64
	Verbose         bool
}

// Loop owns all loop-scoped mutable state: the body-soup pairing table, the
// chassis state machine and the terrain-height output offset.
type Loop struct {
	cfg     Config
	rigidBS *rigid.System
	terrain *granular.System
	pairs   []rover.Pair
	chassis *rigid.Body
	store   *output.Store

	state        chassisState
	heightOffset float64

	step  int
	steps int
	frame int
}

// New assembles a loop. The pairing table must list every coupled body in
// output order; chassis is the body the staged transition releases.
func New(cfg Config, rs *rigid.System, ts *granular.System, pairs []rover.Pair, chassis *rigid.Body, store *output.Store) (*Loop, error) {
	if cfg.StepSize <= 0 {
		return nil, fmt.Errorf("cosim: step size must be positive, got %f", cfg.StepSize)
	}
	if cfg.OutFPS <= 0 {
		return nil, fmt.Errorf("cosim: output fps must be positive, got %d", cfg.OutFPS)
	}
	if len(pairs) == 0 {
		return nil, errors.New("cosim: empty pairing table")
	}
	if cfg.Duration <= 0 {
		cfg.Duration = cfg.Phase.Duration()
	}

	l := &Loop{
		cfg:          cfg,
		rigidBS:      rs,
		terrain:      ts,
		pairs:        pairs,
		chassis:      chassis,
		store:        store,
		state:        chassisFixed,
		heightOffset: cfg.InitialHeightOffset,
		steps:        int(math.Round(cfg.Duration / cfg.StepSize)),
	}
	if !chassis.Fixed() {
		l.state = chassisFree
	}
	return l, nil
}

// StepSize returns the coupling step size in seconds.
func (l *Loop) StepSize() float64 { return l.cfg.StepSize }

// Steps returns the total number of coupling steps the run will take.
func (l *Loop) Steps() int { return l.steps }

// Time returns the simulated time of the next step.
func (l *Loop) Time() float64 { return float64(l.step) * l.cfg.StepSize }

// Done reports whether all steps have run.
func (l *Loop) Done() bool { return l.step >= l.steps }

// FramesWritten returns the number of frames emitted so far.
func (l *Loop) FramesWritten() int { return l.frame }

// HeightOffset returns the current terrain output offset.
func (l *Loop) HeightOffset() float64 { return l.heightOffset }

// ChassisFree reports whether the staged transition has happened.
func (l *Loop) ChassisFree() bool { return l.state == chassisFree }

// outSteps is the frame emission cadence in steps.
func (l *Loop) outSteps() int {
	n := int(math.Round(1 / (float64(l.cfg.OutFPS) * l.cfg.StepSize)))
	if n < 1 {
		n = 1
	}
	return n
}

// Step advances the co-simulation by one coupling step: push body kinematic
// state into the terrain proxies, advance both solvers, then pull proxy
// contact loads back into the bodies for the next integration. Pose push
// happens before either solver advances, so terrain contact for this step is
// evaluated against start-of-step body state; collected loads influence the
// next rigid step. Both lags are the explicit-coupling approximation.
func (l *Loop) Step() error {
	if l.Done() {
		return errors.New("cosim: run already complete")
	}
	t := l.Time()

	l.maybeRelease(t)

	for _, p := range l.pairs {
		l.terrain.SetSoupPose(p.Soup,
			p.Body.Position(), p.Body.Orientation(),
			p.Body.Velocity(), p.Body.AngularVelocity())
	}

	if err := l.terrain.Advance(l.cfg.StepSize); err != nil {
		return fmt.Errorf("cosim: terrain advance at t=%.4f: %w", t, err)
	}
	l.rigidBS.Advance(l.cfg.StepSize)

	for _, p := range l.pairs {
		force, torque := l.terrain.CollectContactForce(p.Soup)
		p.Body.ClearAccumulators()
		p.Body.AccumulateForce(force, p.Body.Position())
		p.Body.AccumulateTorque(torque)
	}

	if l.step%l.outSteps() == 0 {
		if err := l.writeFrame(); err != nil {
			return err
		}
	}

	l.step++
	return nil
}

// maybeRelease performs the one-shot fixed-to-free chassis transition once
// simulated time reaches the settle threshold. The terrain output offset is
// recomputed here, once, from the max particle height at this instant; it is
// a rendering correction with no effect on physics.
func (l *Loop) maybeRelease(t float64) {
	if l.state != chassisFixed || t < l.cfg.SettleTime {
		return
	}
	l.state = chassisFree
	l.chassis.SetFixed(false)

	maxZ := l.terrain.MaxParticleHeight()
	l.heightOffset = maxZ + l.cfg.HeightChassisToBottom
	fmt.Printf("Setting chassis free at t=%.4f (terrain max %.4f)\n", t, maxZ)
}

func (l *Loop) writeFrame() error {
	fmt.Printf("Rendering frame %d\n", l.frame)
	if l.cfg.Verbose && len(l.pairs) > 0 {
		f, tq := l.terrain.CollectContactForce(l.pairs[0].Soup)
		fmt.Printf("Wheel forces: %f, %f, %f\n", f.X(), f.Y(), f.Z())
		fmt.Printf("Wheel torques: %f, %f, %f\n", tq.X(), tq.Y(), tq.Z())
	}

	if err := l.terrain.WriteStateSnapshot(l.store.FramePath(l.frame)); err != nil {
		return fmt.Errorf("cosim: frame %d terrain snapshot: %w", l.frame, err)
	}

	records := make([]frames.Record, 0, len(l.pairs))
	for _, p := range l.pairs {
		rec, err := frames.NewRecord(p.Mesh, p.Body.Position(), p.Body.Orientation(), p.Scale, l.heightOffset)
		if err != nil {
			// degenerate basis axes are substituted in the record; log and keep going
			fmt.Printf("warning: %v\n", err)
		}
		records = append(records, rec)
	}
	if err := frames.WriteFrame(l.store.MeshFramePath(l.frame), records); err != nil {
		return fmt.Errorf("cosim: frame %d mesh frames: %w", l.frame, err)
	}

	l.frame++
	return nil
}

// Finish runs phase-end work: a settling run switches the terrain output to
// checkpoint format and persists the settled bed, then run metadata is
// written either way.
func (l *Loop) Finish() error {
	if l.cfg.Phase == PhaseSettling {
		l.terrain.SetOutputFormat(config.OutputCSV)
		if err := l.terrain.WriteStateSnapshot(l.cfg.CheckpointBase); err != nil {
			return fmt.Errorf("cosim: writing checkpoint: %w", err)
		}
	}

	meta := output.RunMetadata{
		Timestamp:    time.Now().UTC(),
		Phase:        l.cfg.Phase.String(),
		GravityAngle: l.cfg.GravityAngleDeg,
		StepSize:     l.cfg.StepSize,
		Duration:     l.cfg.Duration,
		Steps:        l.step,
		Frames:       l.frame,
		Particles:    l.terrain.NumParticles(),
	}
	if l.cfg.Phase == PhaseSettling {
		meta.Checkpoint = l.cfg.CheckpointBase + ".csv"
	}
	return l.store.WriteMetadata(meta)
}

// Run executes the whole phase. The context is checked between steps; there
// is no rollback on failure, a failed step aborts the run.
func (l *Loop) Run(ctx context.Context) error {
	for !l.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.Step(); err != nil {
			return err
		}
	}
	return l.Finish()
}
