package assembly

import (
	"testing"
)

func geomKey(z float64, encounter int) SliceKey {
	return SliceKey{
		Position:    [3]float64{0, 0, z},
		RowDir:      [3]float64{1, 0, 0},
		ColDir:      [3]float64{0, 1, 0},
		HasGeometry: true,
		encounter:   encounter,
	}
}

func TestSpatialSorterProjectionOrder(t *testing.T) {
	keys := []SliceKey{geomKey(30, 0), geomKey(10, 1), geomKey(20, 2)}
	res, err := SpatialSorter{}.Sort(keys)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	want := []int{1, 2, 0}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}
}

func TestSpatialSorterTimeTieBreak(t *testing.T) {
	a := geomKey(0, 0)
	a.Time, a.HasTime = 200, true
	b := geomKey(0, 1)
	b.Time, b.HasTime = 100, true
	res, err := SpatialSorter{}.Sort([]SliceKey{a, b})
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if res.Order[0] != 1 {
		t.Errorf("Order = %v, want later trigger time second", res.Order)
	}
}

func TestSpatialSorterInstanceTieBreak(t *testing.T) {
	a := geomKey(0, 0)
	a.Instance, a.HasInstance = 5, true
	b := geomKey(0, 1)
	b.Instance, b.HasInstance = 2, true
	res, err := SpatialSorter{}.Sort([]SliceKey{a, b})
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if res.Order[0] != 1 {
		t.Errorf("Order = %v, want lower instance first", res.Order)
	}
}

func TestSpatialSorterStableOnEqualKeys(t *testing.T) {
	keys := []SliceKey{geomKey(0, 0), geomKey(0, 1), geomKey(0, 2)}
	res, err := SpatialSorter{}.Sort(keys)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	for i := range keys {
		if res.Order[i] != i {
			t.Errorf("Order = %v, want encounter order for ties", res.Order)
			break
		}
	}
}

func TestSpatialSorterNonSpatialSortsAfter(t *testing.T) {
	spatial := geomKey(10, 0)
	bare := SliceKey{Instance: 1, HasInstance: true, encounter: 1}
	res, err := SpatialSorter{}.Sort([]SliceKey{bare, spatial})
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if res.Order[0] != 1 || res.Order[1] != 0 {
		t.Errorf("Order = %v, want spatial frames before unplaceable ones", res.Order)
	}
}

func TestSpatialSorterNonSpatialInstanceBeforeTime(t *testing.T) {
	// A series with no geometry at all: instances are the positions and
	// trigger times are the phases. Instance must order the sequence so
	// that each instance keeps its phases contiguous.
	mk := func(inst int, tm float64, enc int) SliceKey {
		return SliceKey{
			Instance:    inst,
			HasInstance: true,
			Time:        tm,
			HasTime:     true,
			encounter:   enc,
		}
	}
	keys := []SliceKey{mk(1, 0, 0), mk(1, 40, 1), mk(2, 0, 2), mk(2, 40, 3)}
	res, err := SpatialSorter{}.Sort(keys)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	want := []int{0, 1, 2, 3}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}

	// Shuffled input still lands instance-major with phases time-ordered.
	keys = []SliceKey{mk(2, 40, 0), mk(1, 40, 1), mk(2, 0, 2), mk(1, 0, 3)}
	res, err = SpatialSorter{}.Sort(keys)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	want = []int{3, 1, 2, 0}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}

	grid, err := organizeTime(keys, res.Order)
	if err != nil {
		t.Fatalf("organizeTime failed: %v", err)
	}
	if grid.positions != 2 || grid.timePoints != 2 {
		t.Errorf("grid = %dx%d, want 2x2", grid.positions, grid.timePoints)
	}
	if grid.spacing != 40 {
		t.Errorf("spacing = %v, want 40", grid.spacing)
	}
}

func TestSpatialSorterOrientationWarning(t *testing.T) {
	a := geomKey(0, 0)
	b := geomKey(10, 1)
	b.RowDir = [3]float64{0.999, 0.045, 0} // clearly divergent
	res, err := SpatialSorter{}.Sort([]SliceKey{a, b})
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one orientation warning", res.Warnings)
	}

	// Deviation within tolerance stays quiet.
	b.RowDir = [3]float64{1 - 5e-5, 0, 0}
	res, err = SpatialSorter{}.Sort([]SliceKey{a, b})
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none within tolerance", res.Warnings)
	}
}

func TestSpatialSorterObliqueNormal(t *testing.T) {
	// Sagittal orientation: rows run along patient Y, columns along Z.
	// The normal is then the X axis and X positions decide the order.
	mk := func(x float64, enc int) SliceKey {
		return SliceKey{
			Position:    [3]float64{x, 5, 5},
			RowDir:      [3]float64{0, 1, 0},
			ColDir:      [3]float64{0, 0, 1},
			HasGeometry: true,
			encounter:   enc,
		}
	}
	keys := []SliceKey{mk(7, 0), mk(-3, 1), mk(2, 2)}
	res, err := SpatialSorter{}.Sort(keys)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	want := []int{1, 2, 0}
	for i := range want {
		if res.Order[i] != want[i] {
			t.Fatalf("Order = %v, want %v", res.Order, want)
		}
	}
}

func TestOrganizeTimeSingleTimePoint(t *testing.T) {
	keys := []SliceKey{geomKey(0, 0), geomKey(10, 1), geomKey(20, 2)}
	grid, err := organizeTime(keys, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("organizeTime failed: %v", err)
	}
	if grid.positions != 3 || grid.timePoints != 1 {
		t.Errorf("grid = %dx%d, want 3x1", grid.positions, grid.timePoints)
	}
	if grid.spacing != 0 {
		t.Errorf("spacing = %v, want 0 without temporal keys", grid.spacing)
	}
}

func TestOrganizeTimeDetectsGrid(t *testing.T) {
	mk := func(z, tm float64, enc int) SliceKey {
		k := geomKey(z, enc)
		k.File = enc
		k.Time, k.HasTime = tm, true
		return k
	}
	keys := []SliceKey{
		mk(0, 0, 0), mk(0, 40, 1), mk(0, 80, 2),
		mk(10, 0, 3), mk(10, 40, 4), mk(10, 80, 5),
	}
	grid, err := organizeTime(keys, []int{0, 1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("organizeTime failed: %v", err)
	}
	if grid.positions != 2 || grid.timePoints != 3 {
		t.Fatalf("grid = %dx%d, want 2x3", grid.positions, grid.timePoints)
	}
	if grid.spacing != 40 {
		t.Errorf("spacing = %v, want 40", grid.spacing)
	}

	plans := grid.plans(keys)
	if len(plans) != 3 || len(plans[0]) != 2 {
		t.Fatalf("plans shape = %dx%d, want 3x2", len(plans), len(plans[0]))
	}
	if plans[1][1] != (pair{file: 4}) {
		t.Errorf("plans[1][1] = %+v, want file 4", plans[1][1])
	}
}

func TestOrganizeTimeRaggedGrid(t *testing.T) {
	keys := []SliceKey{geomKey(0, 0), geomKey(0, 1), geomKey(10, 2)}
	for i := range keys {
		keys[i].File = i
	}
	_, err := organizeTime(keys, []int{0, 1, 2})
	if err == nil {
		t.Fatal("expected error for ragged time grid")
	}
}
