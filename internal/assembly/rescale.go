package assembly

import (
	"fmt"
	"math"

	"github.com/mrsinham/dicomvolume/internal/pixel"
)

// rescalePair is one slice's linear calibration: real = stored*Slope + Intercept.
type rescalePair struct {
	Slope     float64
	Intercept float64
}

// rescalePlan reconciles the rescale pairs of all plan slices into one
// target. PerSlice holds the pair found on each slice; when every slice
// already shares one pair the plan is an identity no-op.
type rescalePlan struct {
	Target   rescalePair
	PerSlice []rescalePair
	// Needed is set when at least one slice's pair differs from the target
	// and buffers must be rewritten.
	Needed bool
}

// collectRescale reads the per-slice rescale pairs and picks the target: the
// pair yielding the widest representable real-value range among those
// observed, which for a shared stored-sample range is the pair with the
// largest slope magnitude. Slices without rescale metadata count as the
// identity pair.
func collectRescale(view MetadataView, plan []pair) rescalePlan {
	rp := rescalePlan{
		Target:   rescalePair{Slope: 1},
		PerSlice: make([]rescalePair, len(plan)),
	}
	for i, p := range plan {
		src := rescalePair{Slope: 1}
		if v, ok := view.Floats(p.file, p.frame, AttrRescaleSlope); ok && len(v) > 0 && v[0] != 0 {
			src.Slope = v[0]
		}
		if v, ok := view.Floats(p.file, p.frame, AttrRescaleIntercept); ok && len(v) > 0 {
			src.Intercept = v[0]
		}
		rp.PerSlice[i] = src
	}

	rp.Target = rp.PerSlice[0]
	for _, src := range rp.PerSlice[1:] {
		if math.Abs(src.Slope) > math.Abs(rp.Target.Slope) {
			rp.Target = src
		}
	}
	for _, src := range rp.PerSlice {
		if src != rp.Target {
			rp.Needed = true
			break
		}
	}
	return rp
}

// rewriteSamples rewrites a normalized slice buffer from its source rescale
// pair to the target pair:
//
//	out = (in*slope_src + intercept_src - intercept_target) / slope_target
//
// rounded to the nearest representable sample and clamped to the sample
// type's range. Lossy when the pairs are not integer-compatible.
func rewriteSamples(buf []byte, l pixel.Layout, src, dst rescalePair) error {
	if src == dst {
		return nil
	}
	if dst.Slope == 0 {
		return fmt.Errorf("target rescale slope is zero")
	}
	scale := src.Slope / dst.Slope
	offset := (src.Intercept - dst.Intercept) / dst.Slope

	signed := l.PixelRep == 1
	switch l.BytesPerSample() {
	case 1:
		for i := range buf {
			var in float64
			if signed {
				in = float64(int8(buf[i]))
			} else {
				in = float64(buf[i])
			}
			out := math.Round(in*scale + offset)
			if signed {
				buf[i] = byte(int8(clampF(out, math.MinInt8, math.MaxInt8)))
			} else {
				buf[i] = byte(clampF(out, 0, math.MaxUint8))
			}
		}
	case 2:
		for i := 0; i+1 < len(buf); i += 2 {
			raw := uint16(buf[i]) | uint16(buf[i+1])<<8
			var in float64
			if signed {
				in = float64(int16(raw))
			} else {
				in = float64(raw)
			}
			out := math.Round(in*scale + offset)
			var v uint16
			if signed {
				v = uint16(int16(clampF(out, math.MinInt16, math.MaxInt16)))
			} else {
				v = uint16(clampF(out, 0, math.MaxUint16))
			}
			buf[i] = byte(v)
			buf[i+1] = byte(v >> 8)
		}
	default:
		return fmt.Errorf("cannot rescale %d-byte samples", l.BytesPerSample())
	}
	return nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
