package assembly

import (
	"fmt"
	"math"
)

// timeGrid is the result of folding the sorted slice sequence into a
// (spatial position) x (time point) grid. With no temporal dimension the
// grid is positions x 1.
type timeGrid struct {
	positions  int
	timePoints int
	// spacing is the nominal distance between consecutive time points in
	// the unit of the source's temporal key, 0 when unknown or absent.
	spacing float64
	// cells[p][t] is the key index of spatial position p at time point t.
	cells [][]int
}

// organizeTime detects a temporal dimension in an already sorted key
// sequence: the same projected position recurring at multiple times. The
// sorter has already ordered equal positions by time, so each run of
// position-equal slices is one spatial position with its time points in
// order. Every position must have the same number of time points, otherwise
// the stack cannot form a rectangular grid.
func organizeTime(keys []SliceKey, order []int) (*timeGrid, error) {
	grid := &timeGrid{}
	if len(order) == 0 {
		return grid, nil
	}

	proj, _, spatial := projections(keys)

	// Split the sorted sequence into runs of equal position.
	var runs [][]int
	for _, idx := range order {
		n := len(runs)
		if n > 0 && sameCell(keys, proj, spatial, runs[n-1][0], idx) {
			runs[n-1] = append(runs[n-1], idx)
			continue
		}
		runs = append(runs, []int{idx})
	}

	grid.positions = len(runs)
	grid.timePoints = len(runs[0])
	for p, run := range runs {
		if len(run) != grid.timePoints {
			return nil, fmt.Errorf(
				"position %d has %d time points, position 0 has %d: %w",
				p, len(run), grid.timePoints, ErrInconsistentTimeGrid)
		}
	}
	grid.cells = runs
	grid.spacing = timeSpacing(keys, runs[0])
	return grid, nil
}

// sameCell reports whether two keys occupy the same spatial position. When
// the stack has no spatial information at all, recurring instance numbers
// play the position role so that purely instance-ordered time series still
// fold correctly.
func sameCell(keys []SliceKey, proj []float64, spatial bool, a, b int) bool {
	if spatial && keys[a].HasGeometry && keys[b].HasGeometry {
		return math.Abs(proj[a]-proj[b]) <= positionTolerance
	}
	if keys[a].HasInstance && keys[b].HasInstance {
		return keys[a].Instance == keys[b].Instance
	}
	return false
}

// timeSpacing derives the nominal time-point spacing from the first
// position's run: the mean delta between consecutive temporal keys. Zero
// when fewer than two time points carry a temporal key.
func timeSpacing(keys []SliceKey, run []int) float64 {
	var deltas []float64
	for i := 1; i < len(run); i++ {
		prev, cur := keys[run[i-1]], keys[run[i]]
		if prev.HasTime && cur.HasTime {
			deltas = append(deltas, cur.Time-prev.Time)
		}
	}
	if len(deltas) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range deltas {
		sum += d
	}
	return sum / float64(len(deltas))
}

// plans materializes the slice plans of the grid: one (file,frame) pair list
// per time point, each of length positions.
func (g *timeGrid) plans(keys []SliceKey) [][]pair {
	out := make([][]pair, g.timePoints)
	for t := range out {
		plan := make([]pair, g.positions)
		for p := 0; p < g.positions; p++ {
			k := keys[g.cells[p][t]]
			plan[p] = pair{file: k.File, frame: k.Frame}
		}
		out[t] = plan
	}
	return out
}
