package pixel

// PackComponents converts a planar frame (RRR...GGG...BBB) into the packed
// sample order (RGBRGB...) the sink expects. Packed input is returned
// unchanged. Only byte-aligned 8-bit color data reaches this transform.
func PackComponents(src []byte, l Layout) []byte {
	if l.Planar == 0 || l.SamplesPerPixel == 1 {
		return src
	}
	n := l.Rows * l.Columns
	c := l.SamplesPerPixel
	dst := make([]byte, n*c)
	for comp := 0; comp < c; comp++ {
		plane := src[comp*n : (comp+1)*n]
		for i, v := range plane {
			dst[i*c+comp] = v
		}
	}
	return dst
}
