package volume

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// PreviewPNG renders one slice of the buffer as a grayscale PNG, windowed to
// the slice's own sample range and scaled so the longest edge is maxEdge
// pixels. The first component is rendered; color volumes preview as the
// intensity of that component.
func PreviewPNG(b *Buffer, slice, maxEdge int, w io.Writer) error {
	d := b.Dimensions()
	if slice < 0 || slice >= d.Slices {
		return fmt.Errorf("preview slice %d out of range 0..%d", slice, d.Slices-1)
	}
	if maxEdge <= 0 {
		return fmt.Errorf("preview edge %d must be positive", maxEdge)
	}

	lo, hi := sampleRange(b, slice)
	span := float64(hi - lo)
	if span == 0 {
		span = 1
	}
	img := image.NewGray(image.Rect(0, 0, d.Columns, d.Rows))
	for y := 0; y < d.Rows; y++ {
		for x := 0; x < d.Columns; x++ {
			v := float64(b.Sample(x, y, slice, 0)-lo) / span
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(v * 255))})
		}
	}
	return png.Encode(w, scalePreview(img, maxEdge))
}

func sampleRange(b *Buffer, slice int) (uint16, uint16) {
	d := b.Dimensions()
	lo, hi := uint16(0xffff), uint16(0)
	for y := 0; y < d.Rows; y++ {
		for x := 0; x < d.Columns; x++ {
			v := b.Sample(x, y, slice, 0)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func scalePreview(img *image.Gray, maxEdge int) image.Image {
	bounds := img.Bounds()
	wpx, hpx := bounds.Dx(), bounds.Dy()
	if wpx <= maxEdge && hpx <= maxEdge {
		return img
	}
	scale := float64(maxEdge) / float64(wpx)
	if hpx > wpx {
		scale = float64(maxEdge) / float64(hpx)
	}
	dst := image.NewGray(image.Rect(0, 0, int(float64(wpx)*scale), int(float64(hpx)*scale)))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
