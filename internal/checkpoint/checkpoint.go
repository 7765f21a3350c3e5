// Package checkpoint reads and writes settled-terrain particle checkpoints:
// a header line followed by one "x,y,z" row per particle.
package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/roversim/internal/mathutil"
)

// Header written at the top of every checkpoint file. The header of a loaded
// file is discarded without inspection.
const Header = "x,y,z"

// ReadError reports a checkpoint file that could not be opened or parsed.
// It is fatal at startup: a testing-phase run has no fallback terrain.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("checkpoint: reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Load reads the ordered particle positions from path.
func Load(path string) ([]mathutil.Vec3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("empty file")}
	}

	var points []mathutil.Vec3
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) < 3 {
			return nil, &ReadError{Path: path, Err: fmt.Errorf("line %d: want 3 fields, got %d", line, len(fields))}
		}
		var p mathutil.Vec3
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
			if err != nil {
				return nil, &ReadError{Path: path, Err: fmt.Errorf("line %d: %w", line, err)}
			}
			p[i] = v
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return points, nil
}

// Save writes the particle positions to path in checkpoint format.
func Save(points []mathutil.Vec3, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, Header)
	for _, p := range points {
		fmt.Fprintf(w, "%.6f,%.6f,%.6f\n", p[0], p[1], p[2])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}
