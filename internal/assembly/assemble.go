package assembly

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/mrsinham/dicomvolume/internal/pixel"
)

// RescalePair is one slice's linear calibration as found in the metadata.
type RescalePair struct {
	Slope     float64
	Intercept float64
}

// Result is everything one assembly pass derives besides the voxel data
// written to the sink. All fields are plain values owned by the caller.
type Result struct {
	// FileIndex and FrameIndex convert an output slice index to the input
	// file and frame that produced it. The second dimension enumerates the
	// time points folded into vector components (length 1 otherwise).
	FileIndex  [][]int
	FrameIndex [][]int

	// StackIDs lists every stack identifier seen in the input, in order of
	// first appearance, whether or not it was selected.
	StackIDs []string

	// Geometry places the volume in patient space.
	Geometry VolumeGeometry

	// RescaleSlope and RescaleIntercept are the common calibration of the
	// output buffers: real = stored*slope + intercept.
	RescaleSlope     float64
	RescaleIntercept float64

	// SliceRescales are the source calibration pairs found per output
	// slice, for consumers that want to apply rescale themselves when
	// automatic rescaling is off.
	SliceRescales [][]RescalePair

	// TimeDimension is the number of detected time points (1 when no
	// temporal dimension exists); TimeSpacing is their nominal spacing in
	// the source's temporal unit, 0 when unknown.
	TimeDimension int
	TimeSpacing   float64

	// Dimensions and Layout describe the output buffer shape and the
	// shared input pixel layout.
	Dimensions Dimensions
	Layout     pixel.Layout

	// Warnings collects the non-fatal divergences observed during
	// assembly.
	Warnings []string
}

// Assemble runs the full pipeline: key extraction, stack selection, slice
// sorting, time organization, structural validation, geometry and rescale
// derivation, then per-slice pixel normalization into the sink. The first
// fatal error aborts the pass; nothing partial is committed beyond slices
// already handed to the sink.
func Assemble(view MetadataView, pixels PixelSource, sink Sink, opts Options) (*Result, error) {
	keys, keyWarnings, err := extractKeys(view)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no input frames")
	}

	set := partitionStacks(keys)
	members, err := set.Select(opts.DesiredStackID)
	if err != nil {
		return nil, err
	}
	stackKeys := make([]SliceKey, len(members))
	for i, m := range members {
		stackKeys[i] = keys[m]
	}

	res := &Result{StackIDs: set.IDs}
	res.Warnings = append(res.Warnings, keyWarnings...)

	var sorted SortResult
	if !opts.Sorting {
		sorted = encounterOrder(len(stackKeys))
	} else {
		sorter := opts.Sorter
		if sorter == nil {
			sorter = SpatialSorter{}
		}
		sorted, err = sorter.Sort(stackKeys)
		if err != nil {
			return nil, fmt.Errorf("sort slices: %w", err)
		}
		if len(sorted.Order) != len(stackKeys) {
			return nil, fmt.Errorf("sorter returned %d of %d slices", len(sorted.Order), len(stackKeys))
		}
	}
	res.Warnings = append(res.Warnings, sorted.Warnings...)

	grid, err := organizeTime(stackKeys, sorted.Order)
	if err != nil {
		return nil, err
	}
	res.TimeDimension = grid.timePoints
	res.TimeSpacing = grid.spacing

	slicePairs, err := materialize(grid.plans(stackKeys), opts)
	if err != nil {
		return nil, err
	}
	flat := flatten(slicePairs)

	layout, warnings, err := validateStructure(view, flat)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	res.Layout = layout
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	geo, warnings, err := buildGeometry(view, stackKeys, grid, layout.Rows, opts.MemoryRowOrder)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	res.Geometry = geo

	plan := collectRescale(view, flat)
	res.RescaleSlope = plan.Target.Slope
	res.RescaleIntercept = plan.Target.Intercept
	if plan.Needed && !opts.AutoRescale {
		res.Warnings = append(res.Warnings,
			"slices declare divergent rescale values and automatic rescale is off")
	}
	fillIndexArrays(res, slicePairs, plan)

	res.Dimensions = Dimensions{
		Columns:        layout.Columns,
		Rows:           layout.Rows,
		Slices:         len(slicePairs),
		Components:     layout.SamplesPerPixel * len(slicePairs[0]),
		BytesPerSample: layout.BytesPerSample(),
	}
	if err := sink.Prepare(res.Dimensions); err != nil {
		return nil, fmt.Errorf("prepare sink: %w", err)
	}

	if !opts.Quiet {
		fmt.Printf("Assembling %d slices (%dx%d, %d components, %d stacks, %d time points)\n",
			res.Dimensions.Slices, res.Dimensions.Columns, res.Dimensions.Rows,
			res.Dimensions.Components, len(res.StackIDs), res.TimeDimension)
	}

	if err := writeSlices(pixels, sink, res, slicePairs, plan, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// extractKeys enumerates every (file,frame) pair of the view and computes
// its slice key. A pair with no ordering key at all is dropped with a
// warning; the error turns fatal only when no pair can be ordered.
func extractKeys(view MetadataView) ([]SliceKey, []string, error) {
	var keys []SliceKey
	var warnings []string
	var firstErr error
	for f := 0; f < view.FileCount(); f++ {
		for fr := 0; fr < view.FrameCount(f); fr++ {
			key, err := ExtractKey(view, f, fr)
			if err != nil {
				if !errors.Is(err, ErrMissingGeometry) {
					return nil, nil, err
				}
				if firstErr == nil {
					firstErr = err
				}
				warnings = append(warnings, fmt.Sprintf("dropped unorderable frame: %v", err))
				continue
			}
			key.encounter = len(keys)
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 && firstErr != nil {
		return nil, nil, firstErr
	}
	return keys, warnings, nil
}

// materialize selects which time points become output. With TimeAsVector
// each output slice carries all time points as component blocks; otherwise a
// single time point is selected.
func materialize(plans [][]pair, opts Options) ([][]pair, error) {
	if len(plans) == 0 || len(plans[0]) == 0 {
		return nil, fmt.Errorf("no slices selected")
	}
	if opts.TimeAsVector {
		out := make([][]pair, len(plans[0]))
		for p := range out {
			blocks := make([]pair, len(plans))
			for t := range plans {
				blocks[t] = plans[t][p]
			}
			out[p] = blocks
		}
		return out, nil
	}

	t := opts.DesiredTimeIndex
	if t < 0 {
		t = 0
	}
	if t >= len(plans) {
		return nil, fmt.Errorf("desired time index %d out of range, %d time points detected",
			opts.DesiredTimeIndex, len(plans))
	}
	out := make([][]pair, len(plans[t]))
	for p, pr := range plans[t] {
		out[p] = []pair{pr}
	}
	return out, nil
}

func flatten(slicePairs [][]pair) []pair {
	var flat []pair
	for _, blocks := range slicePairs {
		flat = append(flat, blocks...)
	}
	return flat
}

// fillIndexArrays builds the slice-to-source index maps and the per-slice
// rescale pairs, in the same slice x component-block shape.
func fillIndexArrays(res *Result, slicePairs [][]pair, plan rescalePlan) {
	res.FileIndex = make([][]int, len(slicePairs))
	res.FrameIndex = make([][]int, len(slicePairs))
	res.SliceRescales = make([][]RescalePair, len(slicePairs))
	flatIdx := 0
	for i, blocks := range slicePairs {
		res.FileIndex[i] = make([]int, len(blocks))
		res.FrameIndex[i] = make([]int, len(blocks))
		res.SliceRescales[i] = make([]RescalePair, len(blocks))
		for j, p := range blocks {
			res.FileIndex[i][j] = p.file
			res.FrameIndex[i][j] = p.frame
			src := plan.PerSlice[flatIdx]
			res.SliceRescales[i][j] = RescalePair(src)
			flatIdx++
		}
	}
}

// writeSlices normalizes every output slice on a worker pool and hands it to
// the sink. Slices are independent once the plan is final: each worker reads
// its own frames and writes a distinct sink region. The first error wins and
// is returned after all workers drain.
func writeSlices(pixels PixelSource, sink Sink, res *Result, slicePairs [][]pair, plan rescalePlan, opts Options) error {
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(slicePairs) {
		numWorkers = len(slicePairs)
	}

	norm := pixel.NormalizeOptions{
		FlipRows: opts.MemoryRowOrder == RowOrderBottomUp,
		YBRToRGB: opts.AutoYBRToRGB,
	}

	sliceChan := make(chan int, len(slicePairs))
	resultChan := make(chan error, len(slicePairs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range sliceChan {
				resultChan <- assembleSlice(pixels, sink, res, slicePairs, plan, norm, opts, i)
			}
		}()
	}
	for i := range slicePairs {
		sliceChan <- i
	}
	close(sliceChan)
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	var firstErr error
	for err := range resultChan {
		if err != nil && firstErr == nil {
			firstErr = err
		}
		completed++
		if opts.Progress != nil {
			opts.Progress(completed, len(slicePairs))
		}
	}
	return firstErr
}

// assembleSlice builds one output slice: fetch, normalize and rescale each
// component block, interleave time blocks per voxel, write to the sink.
func assembleSlice(pixels PixelSource, sink Sink, res *Result, slicePairs [][]pair, plan rescalePlan, norm pixel.NormalizeOptions, opts Options, i int) error {
	blocks := slicePairs[i]
	layout := res.Layout
	out := make([]byte, res.Dimensions.SliceBytes())

	flatBase := 0
	for j := 0; j < i; j++ {
		flatBase += len(slicePairs[j])
	}

	for t, p := range blocks {
		raw, err := pixels.FrameBytes(p.file, p.frame)
		if err != nil {
			return fmt.Errorf("read pixels of file %d frame %d: %w", p.file, p.frame, err)
		}
		buf, err := pixel.Normalize(raw, layout, norm)
		if err != nil {
			return fmt.Errorf("normalize file %d frame %d: %w", p.file, p.frame, err)
		}
		if plan.Needed && opts.AutoRescale {
			if err := rewriteSamples(buf, layout, plan.PerSlice[flatBase+t], plan.Target); err != nil {
				return fmt.Errorf("rescale file %d frame %d: %w", p.file, p.frame, err)
			}
		}
		if len(blocks) == 1 {
			copy(out, buf)
			continue
		}
		interleaveBlock(out, buf, layout, len(blocks), t)
	}
	if err := sink.WriteSlice(i, out); err != nil {
		return fmt.Errorf("write slice %d: %w", i, err)
	}
	return nil
}

// interleaveBlock copies one time block into the per-voxel component layout:
// all samples of time 0, then time 1, within each voxel.
func interleaveBlock(out, frame []byte, l pixel.Layout, timePoints, t int) {
	bps := l.BytesPerSample()
	comp := l.SamplesPerPixel
	stride := comp * timePoints * bps
	block := comp * bps
	voxels := l.Rows * l.Columns
	for v := 0; v < voxels; v++ {
		copy(out[v*stride+t*block:v*stride+(t+1)*block], frame[v*block:(v+1)*block])
	}
}
