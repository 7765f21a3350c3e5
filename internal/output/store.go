// Package output manages the run output directory: frame file naming and
// run metadata.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.dir, 0755)
}

func (s *Store) Dir() string { return s.dir }

// FramePath returns the base path of frame i; the terrain snapshot writer
// appends its format extension and the mesh-frame log appends its suffix.
func (s *Store) FramePath(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("step%06d", i))
}

// MeshFramePath returns the mesh-frame log path of frame i.
func (s *Store) MeshFramePath(i int) string {
	return s.FramePath(i) + "_meshframes.csv"
}

// RunMetadata describes one co-simulation run.
type RunMetadata struct {
	Timestamp    time.Time `json:"timestamp"`
	Phase        string    `json:"phase"`
	GravityAngle float64   `json:"gravity_angle_deg"`
	StepSize     float64   `json:"step_size"`
	Duration     float64   `json:"duration"`
	Steps        int       `json:"steps"`
	Frames       int       `json:"frames"`
	Particles    int       `json:"particles"`
	Checkpoint   string    `json:"checkpoint,omitempty"`
}

func (s *Store) WriteMetadata(meta RunMetadata) error {
	f, err := os.Create(filepath.Join(s.dir, "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) LoadMetadata() (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
