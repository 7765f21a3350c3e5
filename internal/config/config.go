package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRadius   = 1.0   // cm
	DefaultDensity  = 1.9   // g/cm^3
	DefaultStepSize = 0.005 // s
	DefaultOutFPS   = 50
)

// Snapshot output formats.
const (
	OutputCSV    = "csv"
	OutputBinary = "binary"
)

// PairParams holds one contact parameter for the three interaction pairs:
// sphere-sphere, sphere-wall and sphere-mesh.
type PairParams struct {
	S2S float64 `yaml:"s2s"`
	S2W float64 `yaml:"s2w"`
	S2M float64 `yaml:"s2m"`
}

// Params is the full simulation parameter record. All lengths are in cm,
// masses in g, times in s (CGS).
type Params struct {
	SphereRadius  float64 `yaml:"sphere_radius"`
	SphereDensity float64 `yaml:"sphere_density"`

	BoxX float64 `yaml:"box_x"`
	BoxY float64 `yaml:"box_y"`
	BoxZ float64 `yaml:"box_z"`

	StepSize float64 `yaml:"step_size"`
	TimeEnd  float64 `yaml:"time_end"`

	NormalStiff  PairParams `yaml:"normal_stiff"`
	NormalDamp   PairParams `yaml:"normal_damp"`
	TangentStiff PairParams `yaml:"tangent_stiff"`
	TangentDamp  PairParams `yaml:"tangent_damp"`
	Friction     PairParams `yaml:"static_friction"`

	CohesionRatio float64 `yaml:"cohesion_ratio"`
	AdhesionS2W   float64 `yaml:"adhesion_ratio_s2w"`
	AdhesionS2M   float64 `yaml:"adhesion_ratio_s2m"`

	OutputDir string `yaml:"output_dir"`
	WriteMode string `yaml:"write_mode"`
	Verbose   int    `yaml:"verbose"`
	OutFPS    int    `yaml:"out_fps"`
}

func DefaultParams() *Params {
	return &Params{
		SphereRadius:  DefaultRadius,
		SphereDensity: DefaultDensity,
		BoxX:          100,
		BoxY:          100,
		BoxZ:          50,
		StepSize:      DefaultStepSize,
		NormalStiff:   PairParams{S2S: 1e7, S2W: 1e7, S2M: 1e7},
		NormalDamp:    PairParams{S2S: 1e4, S2W: 1e4, S2M: 1e4},
		TangentStiff:  PairParams{S2S: 2e6, S2W: 2e6, S2M: 2e6},
		TangentDamp:   PairParams{S2S: 50, S2W: 50, S2M: 50},
		Friction:      PairParams{S2S: 0.5, S2W: 0.5, S2M: 0.5},
		OutputDir:     "out",
		WriteMode:     OutputBinary,
		OutFPS:        DefaultOutFPS,
	}
}

// chronoJSON is the flat key layout of Chrono GPU parameter files, where
// per-pair contact parameters are suffixed rather than nested.
type chronoJSON struct {
	SphereRadius  float64 `json:"sphere_radius"`
	SphereDensity float64 `json:"sphere_density"`

	BoxX float64 `json:"box_X"`
	BoxY float64 `json:"box_Y"`
	BoxZ float64 `json:"box_Z"`

	StepSize float64 `json:"step_size"`
	TimeEnd  float64 `json:"time_end"`

	NormalStiffS2S float64 `json:"normalStiffS2S"`
	NormalStiffS2W float64 `json:"normalStiffS2W"`
	NormalStiffS2M float64 `json:"normalStiffS2M"`
	NormalDampS2S  float64 `json:"normalDampS2S"`
	NormalDampS2W  float64 `json:"normalDampS2W"`
	NormalDampS2M  float64 `json:"normalDampS2M"`

	TangentStiffS2S float64 `json:"tangentStiffS2S"`
	TangentStiffS2W float64 `json:"tangentStiffS2W"`
	TangentStiffS2M float64 `json:"tangentStiffS2M"`
	TangentDampS2S  float64 `json:"tangentDampS2S"`
	TangentDampS2W  float64 `json:"tangentDampS2W"`
	TangentDampS2M  float64 `json:"tangentDampS2M"`

	FrictionS2S float64 `json:"static_friction_coeffS2S"`
	FrictionS2W float64 `json:"static_friction_coeffS2W"`
	FrictionS2M float64 `json:"static_friction_coeffS2M"`

	CohesionRatio float64 `json:"cohesion_ratio"`
	AdhesionS2W   float64 `json:"adhesion_ratio_s2w"`
	AdhesionS2M   float64 `json:"adhesion_ratio_s2m"`

	OutputDir string `json:"output_dir"`
	WriteMode string `json:"write_mode"`
	Verbose   int    `json:"verbose"`
	OutFPS    int    `json:"out_fps"`
}

func flatten(p *Params) chronoJSON {
	return chronoJSON{
		SphereRadius:  p.SphereRadius,
		SphereDensity: p.SphereDensity,
		BoxX:          p.BoxX, BoxY: p.BoxY, BoxZ: p.BoxZ,
		StepSize: p.StepSize,
		TimeEnd:  p.TimeEnd,

		NormalStiffS2S: p.NormalStiff.S2S, NormalStiffS2W: p.NormalStiff.S2W, NormalStiffS2M: p.NormalStiff.S2M,
		NormalDampS2S: p.NormalDamp.S2S, NormalDampS2W: p.NormalDamp.S2W, NormalDampS2M: p.NormalDamp.S2M,
		TangentStiffS2S: p.TangentStiff.S2S, TangentStiffS2W: p.TangentStiff.S2W, TangentStiffS2M: p.TangentStiff.S2M,
		TangentDampS2S: p.TangentDamp.S2S, TangentDampS2W: p.TangentDamp.S2W, TangentDampS2M: p.TangentDamp.S2M,
		FrictionS2S: p.Friction.S2S, FrictionS2W: p.Friction.S2W, FrictionS2M: p.Friction.S2M,

		CohesionRatio: p.CohesionRatio,
		AdhesionS2W:   p.AdhesionS2W,
		AdhesionS2M:   p.AdhesionS2M,

		OutputDir: p.OutputDir,
		WriteMode: p.WriteMode,
		Verbose:   p.Verbose,
		OutFPS:    p.OutFPS,
	}
}

func (c chronoJSON) apply(p *Params) {
	p.SphereRadius = c.SphereRadius
	p.SphereDensity = c.SphereDensity
	p.BoxX, p.BoxY, p.BoxZ = c.BoxX, c.BoxY, c.BoxZ
	p.StepSize = c.StepSize
	p.TimeEnd = c.TimeEnd

	p.NormalStiff = PairParams{S2S: c.NormalStiffS2S, S2W: c.NormalStiffS2W, S2M: c.NormalStiffS2M}
	p.NormalDamp = PairParams{S2S: c.NormalDampS2S, S2W: c.NormalDampS2W, S2M: c.NormalDampS2M}
	p.TangentStiff = PairParams{S2S: c.TangentStiffS2S, S2W: c.TangentStiffS2W, S2M: c.TangentStiffS2M}
	p.TangentDamp = PairParams{S2S: c.TangentDampS2S, S2W: c.TangentDampS2W, S2M: c.TangentDampS2M}
	p.Friction = PairParams{S2S: c.FrictionS2S, S2W: c.FrictionS2W, S2M: c.FrictionS2M}

	p.CohesionRatio = c.CohesionRatio
	p.AdhesionS2W = c.AdhesionS2W
	p.AdhesionS2M = c.AdhesionS2M

	p.OutputDir = c.OutputDir
	p.WriteMode = c.WriteMode
	p.Verbose = c.Verbose
	p.OutFPS = c.OutFPS
}

// Load reads a parameter file. YAML uses the nested layout above; .json
// files use the flat Chrono GPU key names, so existing Chrono parameter
// files load unchanged. Keys absent from the file keep their defaults.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultParams()
	switch filepath.Ext(path) {
	case ".json":
		flat := flatten(p)
		if err = json.Unmarshal(data, &flat); err == nil {
			flat.apply(p)
		}
	default:
		err = yaml.Unmarshal(data, p)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func Save(path string, p *Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (p *Params) Validate() error {
	if p.SphereRadius <= 0 {
		return fmt.Errorf("sphere_radius must be positive, got %f", p.SphereRadius)
	}
	if p.SphereDensity <= 0 {
		return fmt.Errorf("sphere_density must be positive, got %f", p.SphereDensity)
	}
	if p.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive, got %f", p.StepSize)
	}
	if p.BoxX <= 0 || p.BoxY <= 0 || p.BoxZ <= 0 {
		return fmt.Errorf("domain box must be positive, got (%f, %f, %f)", p.BoxX, p.BoxY, p.BoxZ)
	}
	if p.OutFPS <= 0 {
		return fmt.Errorf("out_fps must be positive, got %d", p.OutFPS)
	}
	switch p.WriteMode {
	case OutputCSV, OutputBinary:
	default:
		return fmt.Errorf("unknown write_mode %q", p.WriteMode)
	}
	return nil
}

// SphereMass returns the mass of one terrain particle.
func (p *Params) SphereMass() float64 {
	const fourThirdsPi = 4.0 / 3.0 * 3.141592653589793
	r := p.SphereRadius
	return p.SphereDensity * fourThirdsPi * r * r * r
}
