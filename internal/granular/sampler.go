package granular

import "github.com/san-kum/roversim/internal/mathutil"

// SampleLayeredBox fills a box with points on a layered hexagonal lattice:
// rows within a layer are offset by half the spacing, alternate layers are
// shifted so spheres nest into the layer below. center and halfDims describe
// the fill region; spacing is the center-to-center distance (typically
// slightly more than one particle diameter).
func SampleLayeredBox(center, halfDims mathutil.Vec3, spacing float64) []mathutil.Vec3 {
	if spacing <= 0 {
		return nil
	}

	rowStep := spacing * 0.8660254037844386  // sqrt(3)/2
	layerStep := spacing * 0.816496580927726 // sqrt(6)/3

	// odd layers shift into the hollows of the layer below; with this offset
	// the cross-layer nearest-neighbor distance is exactly the spacing
	layerOffX := spacing / 2
	layerOffY := spacing * 0.28867513459481287 // sqrt(3)/6

	var points []mathutil.Vec3
	layer := 0
	for z := -halfDims[2]; z <= halfDims[2]+1e-9; z += layerStep {
		row := 0
		xBase, yOff := 0.0, 0.0
		if layer%2 == 1 {
			xBase, yOff = layerOffX, layerOffY
		}
		for y := -halfDims[1] + yOff; y <= halfDims[1]+1e-9; y += rowStep {
			xOff := xBase
			if row%2 == 1 {
				xOff += spacing / 2
			}
			for x := -halfDims[0] + xOff; x <= halfDims[0]+1e-9; x += spacing {
				points = append(points, center.Add(mathutil.Vec3{x, y, z}))
			}
			row++
		}
		layer++
	}
	return points
}
