package assembly

import "fmt"

// SliceKey is the sortable spatial/temporal key of one (file,frame) pair.
// Keys are computed once per pair and never change afterwards.
type SliceKey struct {
	File  int
	Frame int

	// Position and the row/column direction cosines, valid when
	// HasGeometry is set.
	Position    [3]float64
	RowDir      [3]float64
	ColDir      [3]float64
	HasGeometry bool

	// StackID is the declared stack identifier, empty when absent.
	StackID string

	// Time is the temporal key in an arbitrary but consistent unit,
	// valid when HasTime is set.
	Time    float64
	HasTime bool

	// Instance is the in-stack position or instance number fallback,
	// valid when HasInstance is set.
	Instance    int
	HasInstance bool

	// encounter is the pair's index in input order, the final tie-break.
	encounter int
}

// ExtractKey reads the slice key of one (file,frame) pair from the metadata
// view. Orientation and position must both be present for the key to carry
// geometry; otherwise the key degrades to instance-number ordering. A pair
// with neither yields ErrMissingGeometry: it cannot be placed in space or in
// sequence.
func ExtractKey(view MetadataView, file, frame int) (SliceKey, error) {
	key := SliceKey{File: file, Frame: frame}

	if ids, ok := view.Strings(file, frame, AttrStackID); ok && len(ids) > 0 {
		key.StackID = ids[0]
	}

	orient, okO := view.Floats(file, frame, AttrOrientation)
	pos, okP := view.Floats(file, frame, AttrPosition)
	if okO && okP && len(orient) >= 6 && len(pos) >= 3 {
		key.HasGeometry = true
		copy(key.Position[:], pos[:3])
		copy(key.RowDir[:], orient[:3])
		copy(key.ColDir[:], orient[3:6])
	}

	if v, ok := view.Ints(file, frame, AttrInStackPosition); ok && len(v) > 0 {
		key.Instance = v[0]
		key.HasInstance = true
	} else if v, ok := view.Ints(file, frame, AttrInstanceNumber); ok && len(v) > 0 {
		key.Instance = v[0]
		key.HasInstance = true
	}

	// Trigger time is preferred for cardiac-style series, acquisition time
	// and the temporal position index are fallbacks. Units differ between
	// the three but each is consistent within one series.
	if v, ok := view.Floats(file, frame, AttrTriggerTime); ok && len(v) > 0 {
		key.Time = v[0]
		key.HasTime = true
	} else if v, ok := view.Floats(file, frame, AttrAcquisitionTime); ok && len(v) > 0 {
		key.Time = v[0]
		key.HasTime = true
	} else if v, ok := view.Ints(file, frame, AttrTemporalPosition); ok && len(v) > 0 {
		key.Time = float64(v[0])
		key.HasTime = true
	}

	if !key.HasGeometry && !key.HasInstance {
		return key, fmt.Errorf("file %d frame %d: %w", file, frame, ErrMissingGeometry)
	}
	return key, nil
}

// Normal returns the slice-normal axis of the key's orientation basis, the
// cross product of the row and column direction cosines.
func (k SliceKey) Normal() [3]float64 {
	return [3]float64{
		k.RowDir[1]*k.ColDir[2] - k.RowDir[2]*k.ColDir[1],
		k.RowDir[2]*k.ColDir[0] - k.RowDir[0]*k.ColDir[2],
		k.RowDir[0]*k.ColDir[1] - k.RowDir[1]*k.ColDir[0],
	}
}

// project returns the scalar projection of the key's position onto axis.
func (k SliceKey) project(axis [3]float64) float64 {
	return k.Position[0]*axis[0] + k.Position[1]*axis[1] + k.Position[2]*axis[2]
}
