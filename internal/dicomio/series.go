// Package dicomio adapts parsed DICOM datasets to the assembly package's
// MetadataView and PixelSource interfaces. Files are parsed once up front
// with pixel data left unprocessed, so the raw, still bit-packed bytes reach
// the pixel normalizer untouched.
package dicomio

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

// Series is a read-only catalog over the parsed datasets of one input set.
// It implements assembly.MetadataView and assembly.PixelSource. All lookups
// are safe for concurrent use once the series is open.
type Series struct {
	files []fileEntry
}

type fileEntry struct {
	path   string
	ds     dicom.Dataset
	frames int
}

// Open parses the given files into a series. Paths are parsed in the order
// given; that order is the catalog's file index space.
func Open(paths []string) (*Series, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	s := &Series{files: make([]fileEntry, 0, len(paths))}
	for _, path := range paths {
		ds, err := dicom.ParseFile(path, nil, dicom.SkipProcessingPixelDataValue())
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		s.files = append(s.files, fileEntry{
			path:   path,
			ds:     ds,
			frames: frameCount(ds),
		})
	}
	return s, nil
}

// OpenDir scans a directory tree for DICOM files and opens them as a series
// in lexical path order. Files are matched by the .dcm extension or, for
// extensionless files, by the DICM magic after the 128-byte preamble.
func OpenDir(dir string) (*Series, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if strings.EqualFold(ext, ".dcm") || (ext == "" && hasDICMPreamble(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no DICOM files under %s", dir)
	}
	sort.Strings(paths)
	return Open(paths)
}

func hasDICMPreamble(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var magic [4]byte
	if _, err := f.ReadAt(magic[:], 128); err != nil {
		return false
	}
	return string(magic[:]) == "DICM"
}

// Path returns the source path of the given file index.
func (s *Series) Path(file int) string { return s.files[file].path }

// FileCount implements assembly.MetadataView.
func (s *Series) FileCount() int { return len(s.files) }

// FrameCount implements assembly.MetadataView.
func (s *Series) FrameCount(file int) int { return s.files[file].frames }

// frameCount reads NumberOfFrames, defaulting to 1 for classic single-frame
// files.
func frameCount(ds dicom.Dataset) int {
	elem, err := ds.FindElementByTag(tag.NumberOfFrames)
	if err != nil || elem == nil || elem.Value == nil {
		return 1
	}
	if n, ok := toInts(elem.Value.GetValue()); ok && len(n) > 0 && n[0] > 0 {
		return n[0]
	}
	return 1
}

// Strings implements assembly.MetadataView. Frame-level lookups resolve at
// file level: classic series carry one frame per file, and multi-frame files
// supported here share their attributes across frames.
func (s *Series) Strings(file, frame int, attr assembly.Attribute) ([]string, bool) {
	v, ok := s.value(file, attr)
	if !ok {
		return nil, false
	}
	return toStrings(v)
}

// Ints implements assembly.MetadataView.
func (s *Series) Ints(file, frame int, attr assembly.Attribute) ([]int, bool) {
	v, ok := s.value(file, attr)
	if !ok {
		return nil, false
	}
	return toInts(v)
}

// Floats implements assembly.MetadataView. Acquisition time is stored as a
// DICOM time-of-day string and is converted to seconds since midnight so it
// can serve as a monotonic temporal key.
func (s *Series) Floats(file, frame int, attr assembly.Attribute) ([]float64, bool) {
	v, ok := s.value(file, attr)
	if !ok {
		return nil, false
	}
	if attr == assembly.AttrAcquisitionTime {
		strs, ok := toStrings(v)
		if !ok || len(strs) == 0 {
			return nil, false
		}
		sec, err := parseTimeOfDay(strs[0])
		if err != nil {
			return nil, false
		}
		return []float64{sec}, true
	}
	return toFloats(v)
}

func (s *Series) value(file int, attr assembly.Attribute) (interface{}, bool) {
	t, ok := attrTags[attr]
	if !ok {
		return nil, false
	}
	elem, err := s.files[file].ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return nil, false
	}
	v := elem.Value.GetValue()
	if v == nil {
		return nil, false
	}
	return v, true
}

// toStrings coerces a parsed element value to its string form.
func toStrings(v interface{}) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, len(val) > 0
	case string:
		return []string{val}, true
	}
	return nil, false
}

// toInts coerces a parsed element value to ints. Integer-string values (the
// IS value representation) are parsed.
func toInts(v interface{}) ([]int, bool) {
	switch val := v.(type) {
	case []int:
		return val, len(val) > 0
	case int:
		return []int{val}, true
	case []string:
		out := make([]int, 0, len(val))
		for _, s := range val {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, false
			}
			out = append(out, n)
		}
		return out, len(out) > 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, false
		}
		return []int{n}, true
	}
	return nil, false
}

// toFloats coerces a parsed element value to floats. Decimal-string values
// (the DS value representation) are parsed.
func toFloats(v interface{}) ([]float64, bool) {
	switch val := v.(type) {
	case []float64:
		return val, len(val) > 0
	case float64:
		return []float64{val}, true
	case []int:
		out := make([]float64, len(val))
		for i, n := range val {
			out[i] = float64(n)
		}
		return out, len(out) > 0
	case int:
		return []float64{float64(val)}, true
	case []string:
		out := make([]float64, 0, len(val))
		for _, s := range val {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, len(out) > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, false
		}
		return []float64{f}, true
	}
	return nil, false
}

// parseTimeOfDay converts a DICOM TM string (HHMMSS.FFFFFF, with the
// trailing components optional) to seconds since midnight.
func parseTimeOfDay(s string) (float64, error) {
	s = strings.TrimSpace(s)
	frac := 0.0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		f, err := strconv.ParseFloat("0"+s[i:], 64)
		if err != nil {
			return 0, fmt.Errorf("time fraction %q: %w", s, err)
		}
		frac = f
		s = s[:i]
	}
	if len(s) < 2 || len(s)%2 != 0 || len(s) > 6 {
		return 0, fmt.Errorf("malformed time value %q", s)
	}
	var parts [3]int
	for i := 0; i*2 < len(s); i++ {
		n, err := strconv.Atoi(s[i*2 : i*2+2])
		if err != nil {
			return 0, fmt.Errorf("malformed time value %q: %w", s, err)
		}
		parts[i] = n
	}
	return float64(parts[0]*3600+parts[1]*60+parts[2]) + frac, nil
}
