package assembly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// VolumeGeometry places the assembled volume in patient space.
type VolumeGeometry struct {
	// RowSpacing and ColumnSpacing are the physical distances between
	// adjacent rows and adjacent columns of one slice.
	RowSpacing    float64
	ColumnSpacing float64
	// SliceSpacing is the distance between consecutive slices, the mean of
	// the projected-position deltas when they vary.
	SliceSpacing float64
	// Patient is the 4x4 affine transform from voxel indices (column, row,
	// slice, 1) to patient coordinates, already adjusted for the memory
	// row order.
	Patient *mat.Dense
	// RowOrder records which row convention the transform matches.
	RowOrder RowOrder
}

// buildGeometry derives the volume geometry from the sorted plan. Pixel
// spacing comes from the first slice, inter-slice spacing from consecutive
// projected positions. Bottom-up row order negates the column-direction
// basis and moves the origin to the last row so the transform stays
// consistent with the flipped pixel data.
func buildGeometry(view MetadataView, keys []SliceKey, grid *timeGrid, rows int, order RowOrder) (VolumeGeometry, []string, error) {
	geo := VolumeGeometry{RowOrder: order, RowSpacing: 1, ColumnSpacing: 1, SliceSpacing: 1}
	var warnings []string
	if grid.positions == 0 {
		return geo, nil, fmt.Errorf("no slices to derive geometry from")
	}

	first := keys[grid.cells[0][0]]
	if sp, ok := view.Floats(first.File, first.Frame, AttrPixelSpacing); ok && len(sp) >= 2 {
		// Pixel Spacing is (row spacing, column spacing) in that order.
		geo.RowSpacing, geo.ColumnSpacing = sp[0], sp[1]
	}

	rowDir, colDir := [3]float64{1, 0, 0}, [3]float64{0, 1, 0}
	normal := [3]float64{0, 0, 1}
	origin := first.Position
	if first.HasGeometry {
		rowDir, colDir = first.RowDir, first.ColDir
		normal = first.Normal()
	}

	geo.SliceSpacing, warnings = sliceSpacing(view, keys, grid, normal)

	if order == RowOrderBottomUp && rows > 1 {
		// The pixel rows were flipped in memory: row index 0 now holds the
		// image's last row. Walk the origin to that row and invert the
		// column direction so index math still lands on the same voxels.
		for i := range origin {
			origin[i] += colDir[i] * geo.RowSpacing * float64(rows-1)
		}
		for i := range colDir {
			colDir[i] = -colDir[i]
		}
	}

	geo.Patient = mat.NewDense(4, 4, []float64{
		rowDir[0] * geo.ColumnSpacing, colDir[0] * geo.RowSpacing, normal[0] * geo.SliceSpacing, origin[0],
		rowDir[1] * geo.ColumnSpacing, colDir[1] * geo.RowSpacing, normal[1] * geo.SliceSpacing, origin[1],
		rowDir[2] * geo.ColumnSpacing, colDir[2] * geo.RowSpacing, normal[2] * geo.SliceSpacing, origin[2],
		0, 0, 0, 1,
	})
	return geo, warnings, nil
}

// sliceSpacing measures the spacing between consecutive spatial positions
// along the slice normal. Non-uniform gaps beyond tolerance are averaged and
// reported as a warning. Falls back to the declared SpacingBetweenSlices or
// SliceThickness when positions cannot provide a spacing.
func sliceSpacing(view MetadataView, keys []SliceKey, grid *timeGrid, normal [3]float64) (float64, []string) {
	var deltas []float64
	for p := 1; p < grid.positions; p++ {
		prev, cur := keys[grid.cells[p-1][0]], keys[grid.cells[p][0]]
		if prev.HasGeometry && cur.HasGeometry {
			deltas = append(deltas, cur.project(normal)-prev.project(normal))
		}
	}
	if len(deltas) == 0 {
		first := keys[grid.cells[0][0]]
		if v, ok := view.Floats(first.File, first.Frame, AttrSpacingBetweenSlices); ok && len(v) > 0 && v[0] != 0 {
			return v[0], nil
		}
		if v, ok := view.Floats(first.File, first.Frame, AttrSliceThickness); ok && len(v) > 0 && v[0] != 0 {
			return v[0], nil
		}
		return 1, nil
	}

	mean := stat.Mean(deltas, nil)
	var warnings []string
	if len(deltas) > 1 && mean != 0 {
		sd := math.Sqrt(stat.Variance(deltas, nil))
		if sd/math.Abs(mean) > spacingTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"non-uniform slice spacing: mean %.6g, standard deviation %.6g", mean, sd))
		}
	}
	if mean == 0 {
		return 1, warnings
	}
	return mean, warnings
}
