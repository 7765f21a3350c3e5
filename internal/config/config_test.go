package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.SphereRadius <= 0 {
		t.Error("sphere radius should be positive")
	}
	if p.StepSize <= 0 {
		t.Error("step size should be positive")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default params should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	data := `
sphere_radius: 0.5
box_x: 200
box_z: 80
step_size: 0.001
static_friction:
  s2s: 0.7
output_dir: terrain_out
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.SphereRadius != 0.5 {
		t.Errorf("expected radius 0.5, got %f", p.SphereRadius)
	}
	if p.BoxX != 200 || p.BoxZ != 80 {
		t.Errorf("box dims not applied: %f, %f", p.BoxX, p.BoxZ)
	}
	if p.Friction.S2S != 0.7 {
		t.Errorf("expected friction s2s 0.7, got %f", p.Friction.S2S)
	}
	// unset fields keep defaults
	if p.BoxY != 100 {
		t.Errorf("expected default box_y 100, got %f", p.BoxY)
	}
	if p.OutputDir != "terrain_out" {
		t.Errorf("expected output dir terrain_out, got %s", p.OutputDir)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")
	// flat Chrono GPU key names, per-pair suffixes instead of nesting
	data := `{
		"sphere_radius": 1.5,
		"box_X": 120,
		"normalStiffS2S": 5e6,
		"tangentDampS2W": 30,
		"static_friction_coeffS2M": 0.8,
		"write_mode": "csv"
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if p.SphereRadius != 1.5 {
		t.Errorf("expected radius 1.5, got %f", p.SphereRadius)
	}
	if p.BoxX != 120 {
		t.Errorf("expected box_X 120, got %f", p.BoxX)
	}
	if p.NormalStiff.S2S != 5e6 {
		t.Errorf("expected stiffness 5e6, got %f", p.NormalStiff.S2S)
	}
	if p.TangentDamp.S2W != 30 {
		t.Errorf("expected tangent damping 30, got %f", p.TangentDamp.S2W)
	}
	if p.Friction.S2M != 0.8 {
		t.Errorf("expected friction 0.8, got %f", p.Friction.S2M)
	}
	if p.WriteMode != OutputCSV {
		t.Errorf("expected csv write mode, got %q", p.WriteMode)
	}
	// unset keys keep defaults
	if p.NormalStiff.S2W != 1e7 {
		t.Errorf("expected default wall stiffness 1e7, got %f", p.NormalStiff.S2W)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/params.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("sphere_radius: [what"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed file")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("step_size: -1"), 0644)
	if _, err := Load(invalid); err == nil {
		t.Error("expected validation error for negative step size")
	}
}

func TestValidateWriteMode(t *testing.T) {
	p := DefaultParams()
	p.WriteMode = "hdf5"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown write mode")
	}
}

func TestSphereMass(t *testing.T) {
	p := DefaultParams()
	p.SphereRadius = 1.0
	p.SphereDensity = 1.0
	want := 4.0 / 3.0 * 3.141592653589793
	if got := p.SphereMass(); got < want*0.999 || got > want*1.001 {
		t.Errorf("expected mass ~%f, got %f", want, got)
	}
}
