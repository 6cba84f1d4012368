package dicomio

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomvolume/internal/assembly"
	"github.com/mrsinham/dicomvolume/internal/pixel"
)

// FrameBytes implements assembly.PixelSource: the raw, still bit-packed
// bytes of one frame, sliced out of the file's unprocessed pixel data. The
// returned slice is a copy; callers may rewrite it in place.
func (s *Series) FrameBytes(file, frame int) ([]byte, error) {
	entry := &s.files[file]
	elem, err := entry.ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%s: no pixel data: %w", entry.path, err)
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected pixel data value type %T",
			entry.path, elem.Value.GetValue())
	}
	if info.IsEncapsulated {
		return nil, fmt.Errorf("%s: encapsulated transfer syntax: %w",
			entry.path, pixel.ErrUnsupportedLayout)
	}
	if !info.IntentionallyUnprocessed {
		return nil, fmt.Errorf("%s: pixel data was processed at parse time", entry.path)
	}

	size := s.frameSize(file)
	if size <= 0 {
		return nil, fmt.Errorf("%s: cannot derive frame size from metadata", entry.path)
	}
	off := frame * size
	if off+size > len(info.UnprocessedValueData) {
		return nil, fmt.Errorf("%s: frame %d exceeds pixel data of %d bytes",
			entry.path, frame, len(info.UnprocessedValueData))
	}
	out := make([]byte, size)
	copy(out, info.UnprocessedValueData[off:off+size])
	return out, nil
}

// frameSize computes the packed byte length of one frame from the file's
// layout attributes.
func (s *Series) frameSize(file int) int {
	l := pixel.Layout{SamplesPerPixel: 1}
	if v, ok := s.Ints(file, 0, assembly.AttrRows); ok {
		l.Rows = v[0]
	}
	if v, ok := s.Ints(file, 0, assembly.AttrColumns); ok {
		l.Columns = v[0]
	}
	if v, ok := s.Ints(file, 0, assembly.AttrBitsAllocated); ok {
		l.BitsAllocated = v[0]
	}
	if v, ok := s.Ints(file, 0, assembly.AttrSamplesPerPixel); ok {
		l.SamplesPerPixel = v[0]
	}
	return l.FrameBytes()
}
