package assembly

import (
	"fmt"

	"github.com/mrsinham/dicomvolume/internal/pixel"
)

// sliceLayout reads the pixel layout of one (file,frame) pair. Missing
// attributes fall back to the most common DICOM defaults (one sample per
// pixel, packed, grayscale).
func sliceLayout(view MetadataView, p pair) pixel.Layout {
	l := pixel.Layout{SamplesPerPixel: 1, Photometric: "MONOCHROME2"}
	if v, ok := view.Ints(p.file, p.frame, AttrRows); ok && len(v) > 0 {
		l.Rows = v[0]
	}
	if v, ok := view.Ints(p.file, p.frame, AttrColumns); ok && len(v) > 0 {
		l.Columns = v[0]
	}
	if v, ok := view.Ints(p.file, p.frame, AttrBitsAllocated); ok && len(v) > 0 {
		l.BitsAllocated = v[0]
	}
	if v, ok := view.Ints(p.file, p.frame, AttrBitsStored); ok && len(v) > 0 {
		l.BitsStored = v[0]
	} else {
		l.BitsStored = l.BitsAllocated
	}
	if v, ok := view.Ints(p.file, p.frame, AttrPixelRepresentation); ok && len(v) > 0 {
		l.PixelRep = v[0]
	}
	if v, ok := view.Ints(p.file, p.frame, AttrSamplesPerPixel); ok && len(v) > 0 {
		l.SamplesPerPixel = v[0]
	}
	if v, ok := view.Ints(p.file, p.frame, AttrPlanarConfiguration); ok && len(v) > 0 {
		l.Planar = v[0]
	}
	if v, ok := view.Strings(p.file, p.frame, AttrPhotometric); ok && len(v) > 0 {
		l.Photometric = v[0]
	}
	return l
}

// validateStructure verifies that every slice of the plan can land in one
// rectangular buffer: identical rows, columns, samples per pixel and bits
// allocated throughout. Divergent photometric interpretation is recorded as
// a warning for the pixel normalizer to reconcile; dimension or bit-depth
// divergence is fatal.
func validateStructure(view MetadataView, plan []pair) (pixel.Layout, []string, error) {
	if len(plan) == 0 {
		return pixel.Layout{}, nil, fmt.Errorf("empty slice plan: %w", ErrIrregularVolume)
	}
	ref := sliceLayout(view, plan[0])
	var warnings []string
	for i, p := range plan[1:] {
		l := sliceLayout(view, p)
		if l.Rows != ref.Rows || l.Columns != ref.Columns {
			return ref, warnings, fmt.Errorf(
				"slice %d (file %d frame %d) is %dx%d, slice 0 is %dx%d: %w",
				i+1, p.file, p.frame, l.Columns, l.Rows, ref.Columns, ref.Rows,
				ErrIrregularVolume)
		}
		if l.SamplesPerPixel != ref.SamplesPerPixel {
			return ref, warnings, fmt.Errorf(
				"slice %d (file %d frame %d) has %d samples per pixel, slice 0 has %d: %w",
				i+1, p.file, p.frame, l.SamplesPerPixel, ref.SamplesPerPixel,
				ErrIrregularVolume)
		}
		if l.BitsAllocated != ref.BitsAllocated {
			return ref, warnings, fmt.Errorf(
				"slice %d (file %d frame %d) has %d bits allocated, slice 0 has %d: %w",
				i+1, p.file, p.frame, l.BitsAllocated, ref.BitsAllocated,
				ErrIrregularVolume)
		}
		if l.Photometric != ref.Photometric {
			warnings = append(warnings, fmt.Sprintf(
				"file %d frame %d: photometric interpretation %q differs from first slice %q",
				p.file, p.frame, l.Photometric, ref.Photometric))
		}
	}
	return ref, warnings, nil
}
