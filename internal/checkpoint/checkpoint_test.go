package checkpoint

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/roversim/internal/mathutil"
)

func roundTrip(t *testing.T, points []mathutil.Vec3) []mathutil.Vec3 {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.csv")
	if err := Save(points, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return loaded
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		points []mathutil.Vec3
	}{
		{"single point", []mathutil.Vec3{{1.5, -2.25, 3.125}}},
		{"negative coordinates", []mathutil.Vec3{{-10, -20, -30}, {-0.000001, 0, 0.000001}}},
		{"settled bed", []mathutil.Vec3{{0, 0, 1}, {2, 0, 1}, {1, 1.7, 1}, {1, 0.57, 2.63}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := roundTrip(t, tc.points)
			if len(got) != len(tc.points) {
				t.Fatalf("expected %d points, got %d", len(tc.points), len(got))
			}
			for i := range got {
				for k := 0; k < 3; k++ {
					if math.Abs(got[i][k]-tc.points[i][k]) > 5e-7 {
						t.Errorf("point %d axis %d: got %v, want %v", i, k, got[i][k], tc.points[i][k])
					}
				}
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/checkpoint.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var re *ReadError
	if !errors.As(err, &re) {
		t.Errorf("expected ReadError, got %T", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"short row", "x,y,z\n1.0,2.0\n"},
		{"non-numeric", "x,y,z\n1.0,two,3.0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".csv")
			os.WriteFile(path, []byte(tc.data), 0644)
			if _, err := Load(path); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestLoadSkipsHeaderAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.csv")
	os.WriteFile(path, []byte("anything goes here\n1,2,3\n\n4,5,6\n"), 0644)

	points, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[1] != (mathutil.Vec3{4, 5, 6}) {
		t.Errorf("unexpected second point: %v", points[1])
	}
}
