// Package assembly turns an unordered collection of 2D image frames into one
// internally consistent volume: it partitions frames into stacks, sorts the
// slices of the selected stack spatially, detects a time dimension, validates
// that the result is rectangular, derives the patient-space geometry and the
// common intensity rescale, and streams normalized slice buffers into a
// volume sink.
//
// The package never touches files or wire formats itself. Metadata and pixel
// bytes come in through the MetadataView and PixelSource interfaces; the
// assembled voxels leave through the Sink interface. Concrete adapters for
// DICOM datasets live in internal/dicomio.
package assembly

// Attribute identifies one of the per-frame metadata values the assembly
// core consumes. Adapters map these onto their format's native tags.
type Attribute int

const (
	// AttrPosition is the 3D position of the frame's first transmitted
	// pixel (ImagePositionPatient).
	AttrPosition Attribute = iota
	// AttrOrientation is the six direction cosines of the frame's rows and
	// columns (ImageOrientationPatient).
	AttrOrientation
	// AttrPixelSpacing is the physical distance between rows and between
	// columns.
	AttrPixelSpacing
	// AttrSpacingBetweenSlices is the declared inter-slice distance.
	AttrSpacingBetweenSlices
	// AttrSliceThickness is the declared slice thickness.
	AttrSliceThickness
	// AttrRows is the frame height in pixels.
	AttrRows
	// AttrColumns is the frame width in pixels.
	AttrColumns
	// AttrBitsAllocated is the storage size of one sample in bits.
	AttrBitsAllocated
	// AttrBitsStored is the number of significant bits per sample.
	AttrBitsStored
	// AttrPixelRepresentation is 0 for unsigned, 1 for two's complement.
	AttrPixelRepresentation
	// AttrSamplesPerPixel is the number of color components per pixel.
	AttrSamplesPerPixel
	// AttrPlanarConfiguration is 0 for packed, 1 for planar components.
	AttrPlanarConfiguration
	// AttrPhotometric is the declared photometric interpretation.
	AttrPhotometric
	// AttrRescaleSlope is the linear calibration slope.
	AttrRescaleSlope
	// AttrRescaleIntercept is the linear calibration intercept.
	AttrRescaleIntercept
	// AttrStackID is the identifier of the stack the frame belongs to.
	AttrStackID
	// AttrInStackPosition is the frame's declared position within its stack.
	AttrInStackPosition
	// AttrInstanceNumber is the declared instance number of the file.
	AttrInstanceNumber
	// AttrAcquisitionTime is the acquisition time of day, in seconds.
	AttrAcquisitionTime
	// AttrTriggerTime is the trigger delay time, in milliseconds.
	AttrTriggerTime
	// AttrTemporalPosition is the declared temporal position index.
	AttrTemporalPosition
)

// MetadataView provides read-only access to per-(file,frame) attribute
// values. Lookups never mutate the underlying catalog. A false second return
// means the attribute is absent or not representable in the requested type;
// absence is not an error at this level.
type MetadataView interface {
	// FileCount returns the number of input files.
	FileCount() int
	// FrameCount returns the number of frames in the given file, at
	// least 1 for any readable file.
	FrameCount(file int) int

	Strings(file, frame int, attr Attribute) ([]string, bool)
	Ints(file, frame int, attr Attribute) ([]int, bool)
	Floats(file, frame int, attr Attribute) ([]float64, bool)
}

// PixelSource returns the raw, still possibly bit-packed pixel bytes of one
// frame. The returned slice is owned by the caller; implementations must not
// hand out memory they will reuse. Read failures are returned verbatim.
type PixelSource interface {
	FrameBytes(file, frame int) ([]byte, error)
}

// Dimensions describes the shape of the assembled output volume.
type Dimensions struct {
	Columns int
	Rows    int
	Slices  int
	// Components is the number of samples per voxel in the output,
	// samples-per-pixel multiplied by the time-point count when time is
	// read as vector components.
	Components int
	// BytesPerSample is the storage size of one normalized sample.
	BytesPerSample int
}

// SliceBytes returns the byte length of one output slice.
func (d Dimensions) SliceBytes() int {
	return d.Columns * d.Rows * d.Components * d.BytesPerSample
}

// Sink receives the assembled volume. Prepare is called once with the final
// dimensions before any slice is written; WriteSlice is then called exactly
// once per slice index, possibly concurrently from multiple workers, each
// call touching a distinct slice.
type Sink interface {
	Prepare(dims Dimensions) error
	WriteSlice(index int, buf []byte) error
}

// pair identifies one frame of one input file.
type pair struct {
	file  int
	frame int
}
