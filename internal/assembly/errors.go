package assembly

import "errors"

// Fatal structural errors. Any of these aborts the whole assembly; the
// wrapped message identifies the first offending file, frame or stack.
// Non-fatal divergences (rescale differences, mildly non-uniform spacing,
// orientation drift) are reported on Result.Warnings instead.
var (
	// ErrMissingGeometry marks a frame that carries neither spatial
	// information nor an instance number, leaving no way to place it in
	// the slice sequence.
	ErrMissingGeometry = errors.New("no geometry or instance number to order frame by")

	// ErrStackNotFound is returned when a desired stack identifier was
	// requested but no frame declares it.
	ErrStackNotFound = errors.New("desired stack not present in input")

	// ErrInconsistentTimeGrid is returned when the number of detected time
	// points differs between spatial positions within one stack.
	ErrInconsistentTimeGrid = errors.New("time points differ across slice positions")

	// ErrIrregularVolume is returned when slices of one plan disagree on
	// rows, columns, samples per pixel or bits allocated, so no
	// rectangular buffer can be formed.
	ErrIrregularVolume = errors.New("slices do not form a rectangular volume")
)
