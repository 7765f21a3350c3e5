// Package frames writes per-frame mesh pose logs: one CSV file per output
// frame, one row per coupled body, carrying position, an orthonormal basis
// and the mesh scale factors.
package frames

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/san-kum/roversim/internal/mathutil"
)

// header matches the renderer's expected schema; column order is fixed.
var header = []string{
	"mesh_name",
	"dx", "dy", "dz",
	"x1", "x2", "x3",
	"y1", "y2", "y3",
	"z1", "z2", "z3",
	"sx", "sy", "sz",
}

// DegenerateOrientationError reports a rotated axis with near-zero length.
// The offending axis is replaced with the corresponding identity axis rather
// than dividing by zero.
type DegenerateOrientationError struct {
	Mesh string
	Axis int
}

func (e *DegenerateOrientationError) Error() string {
	return fmt.Sprintf("frames: mesh %s: degenerate basis axis %d", e.Mesh, e.Axis)
}

// Record is one body row of a mesh-frame log.
type Record struct {
	MeshName string
	Pos      mathutil.Vec3
	Basis    [3]mathutil.Vec3 // rotated x, y, z axes, unit length
	Scale    mathutil.Vec3
}

// NewRecord builds a record from a body pose. The vertical output offset is
// added to the z position only. Each basis axis is renormalized to guard
// against drift in the orientation representation; a degenerate axis yields
// a DegenerateOrientationError alongside a usable record.
func NewRecord(name string, pos mathutil.Vec3, rot mathutil.Quat, scale mathutil.Vec3, heightOffset float64) (Record, error) {
	rec := Record{
		MeshName: name,
		Pos:      mathutil.Vec3{pos[0], pos[1], pos[2] + heightOffset},
		Scale:    scale,
	}

	axes := [3]mathutil.Vec3{rot.XAxis(), rot.YAxis(), rot.ZAxis()}
	var firstErr error
	for i, a := range axes {
		if a.Len() < 1e-9 {
			if firstErr == nil {
				firstErr = &DegenerateOrientationError{Mesh: name, Axis: i}
			}
			var def mathutil.Vec3
			def[i] = 1
			rec.Basis[i] = def
			continue
		}
		rec.Basis[i] = a.Normalize()
	}
	return rec, firstErr
}

func (r Record) row() []string {
	row := make([]string, 0, len(header))
	row = append(row, r.MeshName)
	appendVec := func(v mathutil.Vec3) {
		for _, x := range v {
			row = append(row, strconv.FormatFloat(x, 'f', 6, 64))
		}
	}
	appendVec(r.Pos)
	appendVec(r.Basis[0])
	appendVec(r.Basis[1])
	appendVec(r.Basis[2])
	appendVec(r.Scale)
	return row
}

// WriteFrame writes one independently readable frame log containing the
// records in order.
func WriteFrame(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec.row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadFrame parses a frame log back into records (used by the plot command).
func ReadFrame(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("frames: %s: empty frame log", path)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("frames: %s: want %d columns, got %d", path, len(header), len(row))
		}
		vals := make([]float64, len(row)-1)
		for i, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("frames: %s: column %s: %w", path, header[i+1], err)
			}
			vals[i] = v
		}
		rec := Record{
			MeshName: row[0],
			Pos:      mathutil.Vec3{vals[0], vals[1], vals[2]},
			Scale:    mathutil.Vec3{vals[12], vals[13], vals[14]},
		}
		for b := 0; b < 3; b++ {
			rec.Basis[b] = mathutil.Vec3{vals[3+b*3], vals[4+b*3], vals[5+b*3]}
		}
		records = append(records, rec)
	}
	return records, nil
}
