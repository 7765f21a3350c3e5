package granular

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/san-kum/roversim/internal/checkpoint"
	"github.com/san-kum/roversim/internal/config"
)

// WriteStateSnapshot serializes the current particle positions to path in
// the selected output format. CSV snapshots use the checkpoint schema, so a
// CSV snapshot written at the end of settling is directly loadable as a
// checkpoint.
func (s *System) WriteStateSnapshot(path string) error {
	switch s.format {
	case config.OutputCSV:
		return checkpoint.Save(s.pos, path+".csv")
	case config.OutputBinary:
		return s.writeBinary(path + ".raw")
	default:
		return fmt.Errorf("granular: unknown output format %q", s.format)
	}
}

// writeBinary writes a little-endian particle count followed by float32
// position triples.
func (s *System) writeBinary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(s.pos))); err != nil {
		return err
	}
	for _, p := range s.pos {
		rec := [3]float32{float32(p[0]), float32(p[1]), float32(p[2])}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
