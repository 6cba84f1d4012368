// Package volume provides sinks for assembled voxel data: an in-memory
// buffer, raw file export with a YAML sidecar, and PNG slice previews.
package volume

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

// Buffer is an in-memory assembly.Sink: one contiguous little-endian voxel
// array, slices in ascending index order. WriteSlice calls touch disjoint
// regions, so concurrent writers need no locking.
type Buffer struct {
	dims assembly.Dimensions
	data []byte
}

// Prepare implements assembly.Sink.
func (b *Buffer) Prepare(dims assembly.Dimensions) error {
	if dims.Slices <= 0 || dims.SliceBytes() <= 0 {
		return fmt.Errorf("cannot allocate %d slices of %d bytes", dims.Slices, dims.SliceBytes())
	}
	b.dims = dims
	b.data = make([]byte, dims.Slices*dims.SliceBytes())
	return nil
}

// WriteSlice implements assembly.Sink.
func (b *Buffer) WriteSlice(index int, buf []byte) error {
	if index < 0 || index >= b.dims.Slices {
		return fmt.Errorf("slice index %d out of range 0..%d", index, b.dims.Slices-1)
	}
	if len(buf) != b.dims.SliceBytes() {
		return fmt.Errorf("slice %d has %d bytes, want %d", index, len(buf), b.dims.SliceBytes())
	}
	copy(b.data[index*b.dims.SliceBytes():], buf)
	return nil
}

// Dimensions returns the shape set by Prepare.
func (b *Buffer) Dimensions() assembly.Dimensions { return b.dims }

// Bytes returns the backing voxel array. The buffer retains ownership.
func (b *Buffer) Bytes() []byte { return b.data }

// Slice returns the bytes of one slice, a view into the backing array.
func (b *Buffer) Slice(index int) []byte {
	n := b.dims.SliceBytes()
	return b.data[index*n : (index+1)*n]
}

// Sample returns one sample as an unsigned 16-bit value, widening 8-bit
// data. Component indexes run over the interleaved per-voxel samples.
func (b *Buffer) Sample(x, y, z, component int) uint16 {
	d := b.dims
	idx := ((z*d.Rows+y)*d.Columns+x)*d.Components + component
	if d.BytesPerSample == 2 {
		return binary.LittleEndian.Uint16(b.data[idx*2:])
	}
	return uint16(b.data[idx])
}

// WriteRaw streams the voxel array to w.
func (b *Buffer) WriteRaw(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}
