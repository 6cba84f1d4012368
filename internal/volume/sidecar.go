package volume

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

// Sidecar is the YAML description written next to a raw volume export.
// Everything a consumer needs to interpret the voxel array: shape, sample
// format, patient-space transform, calibration and provenance.
type Sidecar struct {
	Columns        int `yaml:"columns"`
	Rows           int `yaml:"rows"`
	Slices         int `yaml:"slices"`
	Components     int `yaml:"components"`
	BytesPerSample int `yaml:"bytes_per_sample"`

	// PatientMatrix is the row-major 4x4 voxel-to-patient transform.
	PatientMatrix []float64 `yaml:"patient_matrix,flow"`
	RowOrder      string    `yaml:"row_order"`

	RowSpacing    float64 `yaml:"row_spacing"`
	ColumnSpacing float64 `yaml:"column_spacing"`
	SliceSpacing  float64 `yaml:"slice_spacing"`

	RescaleSlope     float64 `yaml:"rescale_slope"`
	RescaleIntercept float64 `yaml:"rescale_intercept"`

	TimeDimension int     `yaml:"time_dimension"`
	TimeSpacing   float64 `yaml:"time_spacing,omitempty"`

	StackIDs []string `yaml:"stack_ids,omitempty"`

	// SliceFiles maps each output slice to the source files that produced
	// it, one path per folded time point.
	SliceFiles [][]string `yaml:"slice_files,omitempty"`

	Warnings []string `yaml:"warnings,omitempty"`
}

// NewSidecar builds the sidecar for one assembly result. pathOf resolves a
// file index to a display path and may be nil to omit provenance.
func NewSidecar(res *assembly.Result, pathOf func(file int) string) Sidecar {
	sc := Sidecar{
		Columns:        res.Dimensions.Columns,
		Rows:           res.Dimensions.Rows,
		Slices:         res.Dimensions.Slices,
		Components:     res.Dimensions.Components,
		BytesPerSample: res.Dimensions.BytesPerSample,

		RowOrder:      res.Geometry.RowOrder.String(),
		RowSpacing:    res.Geometry.RowSpacing,
		ColumnSpacing: res.Geometry.ColumnSpacing,
		SliceSpacing:  res.Geometry.SliceSpacing,

		RescaleSlope:     res.RescaleSlope,
		RescaleIntercept: res.RescaleIntercept,

		TimeDimension: res.TimeDimension,
		TimeSpacing:   res.TimeSpacing,
		StackIDs:      res.StackIDs,
		Warnings:      res.Warnings,
	}
	if res.Geometry.Patient != nil {
		sc.PatientMatrix = make([]float64, 0, 16)
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				sc.PatientMatrix = append(sc.PatientMatrix, res.Geometry.Patient.At(r, c))
			}
		}
	}
	if pathOf != nil {
		sc.SliceFiles = make([][]string, len(res.FileIndex))
		for i, files := range res.FileIndex {
			sc.SliceFiles[i] = make([]string, len(files))
			for j, f := range files {
				sc.SliceFiles[i][j] = pathOf(f)
			}
		}
	}
	return sc
}

// Write encodes the sidecar as YAML.
func (sc Sidecar) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(sc); err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	return enc.Close()
}
