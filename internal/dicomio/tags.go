package dicomio

import (
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

// attrTags maps the assembly attributes onto the DICOM tags that carry them.
var attrTags = map[assembly.Attribute]tag.Tag{
	assembly.AttrPosition:             tag.ImagePositionPatient,
	assembly.AttrOrientation:          tag.ImageOrientationPatient,
	assembly.AttrPixelSpacing:         tag.PixelSpacing,
	assembly.AttrSpacingBetweenSlices: tag.SpacingBetweenSlices,
	assembly.AttrSliceThickness:       tag.SliceThickness,
	assembly.AttrRows:                 tag.Rows,
	assembly.AttrColumns:              tag.Columns,
	assembly.AttrBitsAllocated:        tag.BitsAllocated,
	assembly.AttrBitsStored:           tag.BitsStored,
	assembly.AttrPixelRepresentation:  tag.PixelRepresentation,
	assembly.AttrSamplesPerPixel:      tag.SamplesPerPixel,
	assembly.AttrPlanarConfiguration:  tag.PlanarConfiguration,
	assembly.AttrPhotometric:          tag.PhotometricInterpretation,
	assembly.AttrRescaleSlope:         tag.RescaleSlope,
	assembly.AttrRescaleIntercept:     tag.RescaleIntercept,
	assembly.AttrStackID:              tag.StackID,
	assembly.AttrInStackPosition:      tag.InStackPositionNumber,
	assembly.AttrInstanceNumber:       tag.InstanceNumber,
	assembly.AttrAcquisitionTime:      tag.AcquisitionTime,
	assembly.AttrTriggerTime:          tag.TriggerTime,
	assembly.AttrTemporalPosition:     tag.TemporalPositionIdentifier,
}
