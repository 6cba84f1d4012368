package pixel

// Unpack byte-aligns sub-byte and 12-bit packed sample data. 1-bit samples
// expand to one byte per sample (0 or 255), 12-bit packed samples expand to
// little-endian 16-bit samples with the value scale preserved. Any other
// declared bit depth is returned unchanged.
func Unpack(src []byte, l Layout) []byte {
	switch l.BitsAllocated {
	case 1:
		return unpack1(src, l.Rows*l.Columns*l.SamplesPerPixel)
	case 12:
		return unpack12(src, l.Rows*l.Columns*l.SamplesPerPixel)
	default:
		return src
	}
}

// unpack1 expands bit-packed samples, least significant bit first, which is
// the DICOM packing order for 1-bit data.
func unpack1(src []byte, n int) []byte {
	dst := make([]byte, n)
	for i := 0; i < n; i++ {
		if src[i>>3]&(1<<(uint(i)&7)) != 0 {
			dst[i] = 255
		}
	}
	return dst
}

// unpack12 expands pairs of 12-bit samples stored in three bytes into two
// little-endian 16-bit samples.
//
// Packed layout per triplet: b0 = low 8 bits of sample A, b1 = high 4 bits
// of A (low nibble) and low 4 bits of B (high nibble), b2 = high 8 bits of B.
func unpack12(src []byte, n int) []byte {
	dst := make([]byte, 2*n)
	si := 0
	for i := 0; i+1 < n; i += 2 {
		b0, b1, b2 := src[si], src[si+1], src[si+2]
		si += 3
		a := uint16(b0) | uint16(b1&0x0f)<<8
		b := uint16(b1>>4) | uint16(b2)<<4
		dst[2*i] = byte(a)
		dst[2*i+1] = byte(a >> 8)
		dst[2*i+2] = byte(b)
		dst[2*i+3] = byte(b >> 8)
	}
	if n%2 != 0 {
		// Trailing lone sample occupies a byte and a half.
		b0, b1 := src[si], src[si+1]
		a := uint16(b0) | uint16(b1&0x0f)<<8
		dst[2*(n-1)] = byte(a)
		dst[2*(n-1)+1] = byte(a >> 8)
	}
	return dst
}
