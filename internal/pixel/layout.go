// Package pixel implements the per-slice buffer transforms applied before
// voxel data reaches the volume sink: bit unpacking, planar-to-packed
// component reconciliation, YBR to RGB color conversion, and row reordering.
package pixel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLayout reports a samples-per-pixel / bits-allocated /
// planar-configuration combination that cannot be normalized. It is fatal
// for the read: a partial volume is never emitted.
var ErrUnsupportedLayout = errors.New("unsupported pixel layout")

// Layout describes how the samples of one slice are stored.
type Layout struct {
	Rows            int
	Columns         int
	SamplesPerPixel int
	BitsAllocated   int
	BitsStored      int
	PixelRep        int // 0 = unsigned, 1 = two's complement
	Planar          int // 0 = packed, 1 = planar
	Photometric     string
}

// BytesPerSample returns the storage size of one sample after unpacking.
// Sub-byte and 12-bit packed data are byte-aligned by Unpack.
func (l Layout) BytesPerSample() int {
	if l.BitsAllocated > 8 {
		return 2
	}
	return 1
}

// FrameBytes returns the packed byte length of one frame as stored in the
// file, before any unpacking.
func (l Layout) FrameBytes() int {
	bits := l.Rows * l.Columns * l.SamplesPerPixel * l.BitsAllocated
	return (bits + 7) / 8
}

// NormalizedFrameBytes returns the byte length of one frame after Unpack has
// byte-aligned the samples.
func (l Layout) NormalizedFrameBytes() int {
	return l.Rows * l.Columns * l.SamplesPerPixel * l.BytesPerSample()
}

// IsYBR reports whether the photometric interpretation declares a YBR
// color space.
func (l Layout) IsYBR() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(l.Photometric)), "YBR")
}

// Validate checks that the layout is one of the supported combinations:
// grayscale or palette data at 1, 8, 12 or 16 bits with one sample per pixel,
// or color data at 8 bits with three samples per pixel (packed or planar).
// Chroma-subsampled YBR variants store fewer than Rows*Columns chroma samples
// and are rejected rather than misread as full-resolution components.
func (l Layout) Validate() error {
	if l.Rows <= 0 || l.Columns <= 0 {
		return fmt.Errorf("%w: %dx%d frame", ErrUnsupportedLayout, l.Columns, l.Rows)
	}
	photo := strings.ToUpper(strings.TrimSpace(l.Photometric))
	if strings.HasSuffix(photo, "_422") || strings.HasSuffix(photo, "_420") {
		return fmt.Errorf("%w: subsampled photometric interpretation %s",
			ErrUnsupportedLayout, photo)
	}
	switch l.SamplesPerPixel {
	case 1:
		switch l.BitsAllocated {
		case 1, 8, 12, 16:
		default:
			return fmt.Errorf("%w: %d bits allocated with 1 sample per pixel",
				ErrUnsupportedLayout, l.BitsAllocated)
		}
	case 3:
		if l.BitsAllocated != 8 {
			return fmt.Errorf("%w: %d bits allocated with 3 samples per pixel",
				ErrUnsupportedLayout, l.BitsAllocated)
		}
		if l.Planar != 0 && l.Planar != 1 {
			return fmt.Errorf("%w: planar configuration %d", ErrUnsupportedLayout, l.Planar)
		}
	default:
		return fmt.Errorf("%w: %d samples per pixel", ErrUnsupportedLayout, l.SamplesPerPixel)
	}
	return nil
}
