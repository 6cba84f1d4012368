package assembly

// RowOrder selects how pixel rows are laid out in the sink relative to the
// file's native top-to-bottom order.
type RowOrder int

const (
	// RowOrderBottomUp flips each slice so the first row in memory is the
	// bottom row of the image. This is the default.
	RowOrderBottomUp RowOrder = iota
	// RowOrderTopDown keeps the file's top-to-bottom order.
	RowOrderTopDown
	// RowOrderFileNative never flips, whatever the file declares.
	RowOrderFileNative
)

// String returns the row order name.
func (r RowOrder) String() string {
	switch r {
	case RowOrderBottomUp:
		return "BottomUp"
	case RowOrderTopDown:
		return "TopDown"
	case RowOrderFileNative:
		return "FileNative"
	default:
		return "Unknown"
	}
}

// Options configures one assembly pass.
type Options struct {
	// DesiredStackID selects the stack to assemble. Empty selects the
	// first stack encountered.
	DesiredStackID string

	// MemoryRowOrder controls the row flip (see RowOrder).
	MemoryRowOrder RowOrder

	// TimeAsVector folds detected time points into extra voxel components
	// instead of selecting a single time point.
	TimeAsVector bool

	// DesiredTimeIndex selects the time point to materialize when time is
	// not read as vector. -1 keeps the default (the first time point) and
	// reports all detected time points on the result.
	DesiredTimeIndex int

	// AutoRescale rewrites slice buffers so all slices share one rescale
	// slope and intercept when the inputs disagree. Lossy: values are
	// rounded to the nearest representable sample. On by default.
	AutoRescale bool

	// AutoYBRToRGB converts YBR-coded color frames to RGB. On by default.
	AutoYBRToRGB bool

	// Sorting enables spatial slice sorting. When false the input is
	// assumed pre-sorted and frames are taken in encounter order.
	Sorting bool

	// Sorter overrides the default spatial sorter. Nil uses SpatialSorter.
	Sorter Sorter

	// Workers is the number of parallel slice-normalization workers.
	// 0 uses the number of CPU cores.
	Workers int

	// Quiet suppresses progress output.
	Quiet bool

	// Progress, if set, is called after each completed output slice.
	Progress func(done, total int)
}

// DefaultOptions returns the options matching the original reader defaults:
// bottom-up rows, automatic rescale and YBR conversion, sorting on, first
// stack and first time point.
func DefaultOptions() Options {
	return Options{
		MemoryRowOrder:   RowOrderBottomUp,
		DesiredTimeIndex: -1,
		AutoRescale:      true,
		AutoYBRToRGB:     true,
		Sorting:          true,
	}
}
