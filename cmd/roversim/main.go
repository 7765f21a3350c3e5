package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/roversim/internal/checkpoint"
	"github.com/san-kum/roversim/internal/config"
	"github.com/san-kum/roversim/internal/cosim"
	"github.com/san-kum/roversim/internal/frames"
	"github.com/san-kum/roversim/internal/granular"
	"github.com/san-kum/roversim/internal/mathutil"
	"github.com/san-kum/roversim/internal/output"
	"github.com/san-kum/roversim/internal/rigid"
	"github.com/san-kum/roversim/internal/rover"
	"github.com/san-kum/roversim/internal/viz"
	"github.com/spf13/cobra"
)

// Mars surface gravity in CGS (cm/s^2).
const marsGravMag = 370.0

// sampling margin at the edges of the terrain fill region, cm
const fillMargin = 2.0

var argHelp = "<config> <run_mode: 0-settling, 1-testing> <checkpoint_file_base> <gravity_angle_deg>"

func main() {
	rootCmd := &cobra.Command{
		Use:   "roversim " + argHelp,
		Short: "rover on granular terrain co-simulation",
		Args:  cobra.ExactArgs(4),
		RunE:  runCosim,
	}

	liveCmd := &cobra.Command{
		Use:   "live " + argHelp,
		Short: "run the co-simulation with a live terminal view",
		Args:  cobra.ExactArgs(4),
		RunE:  runLive,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [output_dir]",
		Short: "plot chassis height over a finished run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(liveCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sim bundles everything a run needs after setup.
type sim struct {
	params  *config.Params
	rigidBS *rigid.System
	terrain *granular.System
	rov     *rover.Rover
	store   *output.Store
	loop    *cosim.Loop
}

// setup parses the positional arguments and assembles both solvers, the
// rover and the coupling loop. The testing phase loads its settled bed from
// the checkpoint; a missing or malformed checkpoint fails here, before any
// stepping or output.
func setup(args []string) (*sim, error) {
	p, err := config.Load(args[0])
	if err != nil {
		return nil, err
	}

	mode, err := strconv.Atoi(args[1])
	if err != nil || (mode != 0 && mode != 1) {
		return nil, fmt.Errorf("run_mode must be 0 (settling) or 1 (testing), got %q", args[1])
	}
	phase := cosim.PhaseSettling
	if mode == 1 {
		phase = cosim.PhaseTesting
	}

	checkpointBase := args[2]

	gravAngleDeg, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return nil, fmt.Errorf("gravity angle: %w", err)
	}

	// gravity rotated about +Y
	gravAngle := gravAngleDeg * math.Pi / 180.0
	gravity := mathutil.Vec3{
		-marsGravMag * math.Sin(gravAngle),
		0,
		-marsGravMag * math.Cos(gravAngle),
	}
	fmt.Printf("Gravity (%gdeg): %f %f %f\n", gravAngleDeg, gravity.X(), gravity.Y(), gravity.Z())

	rs := rigid.NewSystem(gravity)
	ts := granular.New(p, gravity)

	switch phase {
	case cosim.PhaseSettling:
		// fill the top half of the terrain region and let it settle
		fillBottom, fillTop := 0.0, p.BoxZ/2
		center := mathutil.Vec3{0, 0, (fillBottom + fillTop) / 2}
		hdims := mathutil.Vec3{
			p.BoxX/2 - fillMargin,
			p.BoxY/2 - fillMargin,
			(fillTop-fillBottom)/2 - fillMargin,
		}
		ts.InitFromSamples(granular.SampleLayeredBox(center, hdims, 2.02*p.SphereRadius))
	case cosim.PhaseTesting:
		points, err := checkpoint.Load(checkpointBase + ".csv")
		if err != nil {
			return nil, err
		}
		ts.InitFromCheckpoint(points)
	}

	rov, err := rover.Build(rs, ts, mathutil.Vec3{-p.BoxX / 4, 0, 0})
	if err != nil {
		return nil, err
	}
	if err := ts.Initialize(); err != nil {
		return nil, err
	}
	fmt.Printf("%d soup families\n", ts.NumSoups())

	ts.SetMeshCollisionEnabled(phase == cosim.PhaseTesting)
	ts.SetOutputFormat(p.WriteMode)

	store := output.New(p.OutputDir)
	if err := store.Init(); err != nil {
		return nil, err
	}

	fmt.Printf("Rendering at %dFPS\n", p.OutFPS)

	loop, err := cosim.New(cosim.Config{
		Phase:                 phase,
		StepSize:              p.StepSize,
		OutFPS:                p.OutFPS,
		SettleTime:            cosim.DefaultSettleTime,
		HeightChassisToBottom: rover.HeightChassisToBottom(),
		InitialHeightOffset:   p.BoxZ + rover.HeightChassisToBottom(),
		CheckpointBase:        checkpointBase,
		GravityAngleDeg:       gravAngleDeg,
		Verbose:               p.Verbose > 0,
	}, rs, ts, rov.Pairs, rov.Chassis, store)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Chassis mass: %f g, each wheel mass: %f g\n", float64(rover.ChassisMass), float64(rover.WheelMass))
	fmt.Printf("Total rover Mars weight in CGS: %f\n", rover.TotalMass()*marsGravMag)

	return &sim{params: p, rigidBS: rs, terrain: ts, rov: rov, store: store, loop: loop}, nil
}

func runCosim(cmd *cobra.Command, args []string) error {
	s, err := setup(args)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.loop.Run(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Time: %f seconds\n", time.Since(start).Seconds())

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := setup(args)
	if err != nil {
		return err
	}

	m := viz.NewModel(s.loop, s.terrain, s.rov, s.params)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if vm, ok := final.(interface{ Err() error }); ok && vm.Err() != nil {
		return vm.Err()
	}

	// the view steps the loop; phase-end output still has to happen
	if s.loop.Done() {
		return s.loop.Finish()
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := output.New(args[0])
	meta, err := store.LoadMetadata()
	if err != nil {
		return err
	}

	fmt.Printf("phase: %s\n", meta.Phase)
	fmt.Printf("frames: %d, steps: %d, particles: %d\n\n", meta.Frames, meta.Steps, meta.Particles)

	heights := make([]float64, 0, meta.Frames)
	for i := 0; i < meta.Frames; i++ {
		records, err := frames.ReadFrame(store.MeshFramePath(i))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		// chassis is the last record in every frame
		heights = append(heights, records[len(records)-1].Pos.Z())
	}
	if len(heights) < 2 {
		return fmt.Errorf("not enough frames to plot")
	}

	graph := asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("chassis height (cm) vs frame"),
	)
	fmt.Println(graph)

	return nil
}
