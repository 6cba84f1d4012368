package pixel

// FlipRows reverses the row order of a byte-aligned frame buffer in place.
// rowBytes is the stride of one row; the buffer must hold rows*rowBytes
// bytes. Applying the flip twice restores the original order.
func FlipRows(buf []byte, rows, rowBytes int) {
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := buf[top*rowBytes : (top+1)*rowBytes]
		b := buf[bottom*rowBytes : (bottom+1)*rowBytes]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
