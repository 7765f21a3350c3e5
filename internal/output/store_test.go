package output

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFramePaths(t *testing.T) {
	s := New("/tmp/run")
	if got := s.FramePath(0); got != filepath.Join("/tmp/run", "step000000") {
		t.Errorf("frame 0 path: %s", got)
	}
	if got := s.FramePath(123); got != filepath.Join("/tmp/run", "step000123") {
		t.Errorf("frame 123 path: %s", got)
	}
	if got := s.MeshFramePath(7); got != filepath.Join("/tmp/run", "step000007_meshframes.csv") {
		t.Errorf("mesh frame path: %s", got)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "out"))
	if err := s.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	meta := RunMetadata{
		Timestamp:    time.Now().UTC(),
		Phase:        "settling",
		GravityAngle: 15,
		StepSize:     0.005,
		Duration:     1.0,
		Steps:        200,
		Frames:       10,
		Particles:    5000,
		Checkpoint:   "terrain.csv",
	}
	if err := s.WriteMetadata(meta); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	got, err := s.LoadMetadata()
	if err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if got.Phase != meta.Phase || got.Steps != meta.Steps || got.GravityAngle != meta.GravityAngle {
		t.Errorf("metadata mismatch: %+v", got)
	}
}
