package dicomio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomvolume/internal/assembly"
	"github.com/mrsinham/dicomvolume/internal/pixel"
)

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// testSeries wraps an in-memory dataset in a single-file series.
func testSeries(t *testing.T, elements ...*dicom.Element) *Series {
	t.Helper()
	ds := dicom.Dataset{Elements: elements}
	return &Series{files: []fileEntry{{
		path:   "in-memory.dcm",
		ds:     ds,
		frames: frameCount(ds),
	}}}
}

func grayElements(pixels []byte) []*dicom.Element {
	return []*dicom.Element{
		mustNewElement(tag.Rows, []int{2}),
		mustNewElement(tag.Columns, []int{2}),
		mustNewElement(tag.BitsAllocated, []int{8}),
		mustNewElement(tag.BitsStored, []int{8}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			IntentionallyUnprocessed: true,
			UnprocessedValueData:     pixels,
		}),
	}
}

func TestSeriesIntAttributes(t *testing.T) {
	s := testSeries(t, grayElements([]byte{1, 2, 3, 4})...)
	if v, ok := s.Ints(0, 0, assembly.AttrRows); !ok || v[0] != 2 {
		t.Errorf("Rows = %v,%v, want [2],true", v, ok)
	}
	if v, ok := s.Ints(0, 0, assembly.AttrBitsAllocated); !ok || v[0] != 8 {
		t.Errorf("BitsAllocated = %v,%v", v, ok)
	}
	if _, ok := s.Ints(0, 0, assembly.AttrInstanceNumber); ok {
		t.Error("absent attribute must report !ok")
	}
}

func TestSeriesDecimalStrings(t *testing.T) {
	elems := append(grayElements([]byte{0, 0, 0, 0}),
		mustNewElement(tag.ImagePositionPatient, []string{"-12.5", "0", "3.25"}),
		mustNewElement(tag.RescaleSlope, []string{"2.0"}),
		mustNewElement(tag.InstanceNumber, []string{"17"}),
	)
	s := testSeries(t, elems...)

	pos, ok := s.Floats(0, 0, assembly.AttrPosition)
	if !ok || len(pos) != 3 || pos[0] != -12.5 || pos[2] != 3.25 {
		t.Errorf("Position = %v,%v, want [-12.5 0 3.25]", pos, ok)
	}
	if v, ok := s.Floats(0, 0, assembly.AttrRescaleSlope); !ok || v[0] != 2 {
		t.Errorf("RescaleSlope = %v,%v, want [2]", v, ok)
	}
	// Integer strings coerce through Ints as well.
	if v, ok := s.Ints(0, 0, assembly.AttrInstanceNumber); !ok || v[0] != 17 {
		t.Errorf("InstanceNumber = %v,%v, want [17]", v, ok)
	}
}

func TestSeriesAcquisitionTime(t *testing.T) {
	elems := append(grayElements([]byte{0, 0, 0, 0}),
		mustNewElement(tag.AcquisitionTime, []string{"120530.25"}),
	)
	s := testSeries(t, elems...)
	v, ok := s.Floats(0, 0, assembly.AttrAcquisitionTime)
	if !ok {
		t.Fatal("AcquisitionTime not found")
	}
	want := 12*3600 + 5*60 + 30.25
	if v[0] != want {
		t.Errorf("AcquisitionTime = %v, want %v seconds", v[0], want)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"000000", 0, false},
		{"23", 23 * 3600, false},
		{"2359", 23*3600 + 59*60, false},
		{"235959.999", 23*3600 + 59*60 + 59.999, false},
		{" 0915 ", 9*3600 + 15*60, false},
		{"9", 0, true},
		{"abcdef", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTimeOfDay(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSeriesFrameBytes(t *testing.T) {
	// Two 4-byte frames back to back.
	elems := []*dicom.Element{
		mustNewElement(tag.Rows, []int{2}),
		mustNewElement(tag.Columns, []int{2}),
		mustNewElement(tag.BitsAllocated, []int{8}),
		mustNewElement(tag.BitsStored, []int{8}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.NumberOfFrames, []string{"2"}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			IntentionallyUnprocessed: true,
			UnprocessedValueData:     []byte{1, 2, 3, 4, 5, 6, 7, 8},
		}),
	}
	s := testSeries(t, elems...)
	if s.FrameCount(0) != 2 {
		t.Fatalf("FrameCount = %d, want 2", s.FrameCount(0))
	}

	buf, err := s.FrameBytes(0, 1)
	if err != nil {
		t.Fatalf("FrameBytes failed: %v", err)
	}
	want := []byte{5, 6, 7, 8}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("frame 1 = %v, want %v", buf, want)
		}
	}

	// The returned buffer is a copy: mutating it must not corrupt a
	// second read of the same frame.
	buf[0] = 99
	again, err := s.FrameBytes(0, 1)
	if err != nil {
		t.Fatalf("second FrameBytes failed: %v", err)
	}
	if again[0] != 5 {
		t.Error("FrameBytes returned shared memory")
	}

	if _, err := s.FrameBytes(0, 2); err == nil {
		t.Error("expected error for frame index past pixel data")
	}
}

func TestSeriesEncapsulatedRejected(t *testing.T) {
	elems := []*dicom.Element{
		mustNewElement(tag.Rows, []int{2}),
		mustNewElement(tag.Columns, []int{2}),
		mustNewElement(tag.BitsAllocated, []int{8}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{
			IsEncapsulated: true,
		}),
	}
	s := testSeries(t, elems...)
	_, err := s.FrameBytes(0, 0)
	if !errors.Is(err, pixel.ErrUnsupportedLayout) {
		t.Errorf("FrameBytes = %v, want ErrUnsupportedLayout", err)
	}
}

func TestFrameCountDefault(t *testing.T) {
	s := testSeries(t, grayElements([]byte{0, 0, 0, 0})...)
	if s.FrameCount(0) != 1 {
		t.Errorf("FrameCount = %d, want 1", s.FrameCount(0))
	}
}

func TestHasDICMPreamble(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "frame0001")
	buf := make([]byte, 132)
	copy(buf[128:], "DICM")
	if err := os.WriteFile(good, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	if !hasDICMPreamble(good) {
		t.Error("file with DICM magic not recognized")
	}

	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("not a dicom file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if hasDICMPreamble(bad) {
		t.Error("short non-DICOM file recognized as DICOM")
	}
}
