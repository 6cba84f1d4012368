package pixel

import "fmt"

// NormalizeOptions selects the optional transforms applied by Normalize.
type NormalizeOptions struct {
	// FlipRows reverses the row order (bottom-up memory layout). The native
	// row order of DICOM frames is top-to-bottom.
	FlipRows bool
	// YBRToRGB converts YBR-coded color samples to RGB.
	YBRToRGB bool
}

// Normalize turns one raw frame buffer into the byte-aligned, packed,
// optionally RGB-converted and row-flipped form the sink stores. The input
// slice is not retained; the returned slice may alias src when no
// reallocation was needed.
func Normalize(src []byte, l Layout, opts NormalizeOptions) ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if len(src) < l.FrameBytes() {
		return nil, fmt.Errorf("frame buffer too short: got %d bytes, layout needs %d",
			len(src), l.FrameBytes())
	}
	buf := Unpack(src[:l.FrameBytes()], l)
	buf = PackComponents(buf, l)
	if opts.YBRToRGB && l.IsYBR() && l.SamplesPerPixel == 3 {
		YBRToRGB(buf)
	}
	if opts.FlipRows {
		rowBytes := l.Columns * l.SamplesPerPixel * l.BytesPerSample()
		FlipRows(buf, l.Rows, rowBytes)
	}
	return buf, nil
}
