package pixel

// YBRToRGB converts packed 8-bit YCbCr triples to RGB in place using the
// full-range integer transform (ITU-R BT.601 with Cb/Cr centered at 128):
//
//	R = Y + 1.402   (Cr-128)
//	G = Y - 0.34414 (Cb-128) - 0.71414 (Cr-128)
//	B = Y + 1.772   (Cb-128)
//
// computed in 16.16 fixed point and clamped to [0,255]. The declared
// photometric interpretation is not touched: it still documents the encoding
// found in the file even though the samples are now RGB.
func YBRToRGB(buf []byte) {
	const (
		c142 = 91881  // 1.402   * 65536
		c034 = 22554  // 0.34414 * 65536
		c071 = 46802  // 0.71414 * 65536
		c177 = 116130 // 1.772   * 65536
	)
	for i := 0; i+2 < len(buf); i += 3 {
		y := int32(buf[i]) << 16
		cb := int32(buf[i+1]) - 128
		cr := int32(buf[i+2]) - 128
		buf[i] = clamp8((y + c142*cr) >> 16)
		buf[i+1] = clamp8((y - c034*cb - c071*cr) >> 16)
		buf[i+2] = clamp8((y + c177*cb) >> 16)
	}
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
