package assembly

import (
	"fmt"
	"math"
	"sort"
)

// Numerical tolerances. Positions are in the source's physical units
// (millimeters for DICOM); direction cosines are unitless.
const (
	// positionTolerance is the projected-position distance below which two
	// slices count as occupying the same spatial position.
	positionTolerance = 1e-3
	// orientationTolerance is the per-component direction-cosine deviation
	// above which a frame's orientation counts as divergent.
	orientationTolerance = 1e-4
	// spacingTolerance is the relative deviation of per-gap slice spacing
	// above which spacing counts as non-uniform.
	spacingTolerance = 1e-3
)

// SortResult is a permutation of the input keys into canonical slice order,
// plus any non-fatal divergences observed while sorting.
type SortResult struct {
	Order    []int
	Warnings []string
}

// Sorter orders the keys of one stack into a canonical slice sequence.
// Implementations must be deterministic: the same keys always produce the
// same permutation.
type Sorter interface {
	Sort(keys []SliceKey) (SortResult, error)
}

// SpatialSorter is the default Sorter. It projects slice positions onto the
// slice-normal axis of the first frame with a valid orientation and sorts
// ascending, breaking ties by acquisition/trigger time, then instance
// number, then encounter order. Stacks without any spatial information sort
// by instance number first, then time, then encounter order.
type SpatialSorter struct{}

// Sort implements Sorter.
func (SpatialSorter) Sort(keys []SliceKey) (SortResult, error) {
	res := SortResult{Order: make([]int, len(keys))}
	for i := range res.Order {
		res.Order[i] = i
	}
	if len(keys) < 2 {
		return res, nil
	}

	proj, normal, spatial := projections(keys)
	if spatial {
		res.Warnings = orientationWarnings(keys, normal)
	}

	sort.SliceStable(res.Order, func(a, b int) bool {
		ka, kb := keys[res.Order[a]], keys[res.Order[b]]
		if spatial {
			if ka.HasGeometry != kb.HasGeometry {
				// Frames that cannot be projected sort after all spatial ones.
				return ka.HasGeometry
			}
			if ka.HasGeometry && kb.HasGeometry {
				da, db := proj[res.Order[a]], proj[res.Order[b]]
				if math.Abs(da-db) > positionTolerance {
					return da < db
				}
			}
			if ka.HasTime && kb.HasTime && ka.Time != kb.Time {
				return ka.Time < kb.Time
			}
			if ka.HasInstance && kb.HasInstance && ka.Instance != kb.Instance {
				return ka.Instance < kb.Instance
			}
			return false // stable sort keeps encounter order
		}
		// No spatial information anywhere in the stack: instance number
		// takes the position role and time orders the phases within each
		// instance. Comparing time first here would interleave the
		// instances into time-major order.
		if ka.HasInstance && kb.HasInstance && ka.Instance != kb.Instance {
			return ka.Instance < kb.Instance
		}
		if ka.HasTime && kb.HasTime && ka.Time != kb.Time {
			return ka.Time < kb.Time
		}
		return false
	})
	return res, nil
}

// projections computes the scalar projection of every key's position onto
// the stack's slice-normal axis, taken from the first key with a valid
// orientation. The third return is false when no key carries geometry, in
// which case the projections are meaningless.
func projections(keys []SliceKey) ([]float64, [3]float64, bool) {
	var normal [3]float64
	spatial := false
	for _, k := range keys {
		if k.HasGeometry {
			normal = k.Normal()
			spatial = true
			break
		}
	}
	proj := make([]float64, len(keys))
	if !spatial {
		return proj, normal, false
	}
	for i, k := range keys {
		if k.HasGeometry {
			proj[i] = k.project(normal)
		}
	}
	return proj, normal, true
}

// orientationWarnings flags frames whose orientation basis deviates from the
// first valid basis beyond tolerance. Divergence is structural inconsistency
// but not fatal: the sorter proceeds with the first basis.
func orientationWarnings(keys []SliceKey, normal [3]float64) []string {
	var ref *SliceKey
	for i := range keys {
		if keys[i].HasGeometry {
			ref = &keys[i]
			break
		}
	}
	if ref == nil {
		return nil
	}
	var warnings []string
	for i := range keys {
		k := &keys[i]
		if !k.HasGeometry || k == ref {
			continue
		}
		if cosinesDiverge(ref.RowDir, k.RowDir) || cosinesDiverge(ref.ColDir, k.ColDir) {
			warnings = append(warnings,
				fmt.Sprintf("file %d frame %d: orientation diverges from first slice",
					k.File, k.Frame))
		}
	}
	return warnings
}

func cosinesDiverge(a, b [3]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > orientationTolerance {
			return true
		}
	}
	return false
}

// encounterOrder builds the identity permutation used when sorting is
// disabled and the input is taken as pre-sorted.
func encounterOrder(n int) SortResult {
	res := SortResult{Order: make([]int, n)}
	for i := range res.Order {
		res.Order[i] = i
	}
	return res
}
