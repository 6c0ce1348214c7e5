package landmark

import (
	"testing"

	"LandmarkGolang/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionsDetection() entity.Detection {
	return entity.Detection{
		Box: &entity.BoundingBox{X1: 10, Y1: 10, X2: 90, Y2: 90},
		Regions: map[entity.RegionName]entity.Region{
			entity.RegionLeftEye:  {Name: entity.RegionLeftEye, Points: []entity.Point2D{{X: 30, Y: 30}}},
			entity.RegionRightEye: {Name: entity.RegionRightEye, Points: []entity.Point2D{{X: 60, Y: 30}}},
			entity.RegionNose:     {Name: entity.RegionNose, Points: []entity.Point2D{{X: 45, Y: 50}, {X: 46, Y: 52}}},
			entity.RegionMouth:    {Name: entity.RegionMouth, Points: []entity.Point2D{{X: 45, Y: 70}}},
		},
	}
}

func meshDetection(t *testing.T) entity.Detection {
	t.Helper()
	result, err := Normalize(RawOutput{Schema: SchemaMesh, Coordinates: Relative, Body: meshBody(1, MeshPointCount)}, 100, 100)
	require.NoError(t, err)
	return result.Detections[0]
}

func TestParsePreset(t *testing.T) {
	for _, name := range []string{"nose_only", "full_face", "nose_extended"} {
		p, err := ParsePreset(name)
		require.NoError(t, err)
		assert.Equal(t, Preset(name), p)
	}

	_, err := ParsePreset("eyes_only")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestSelectFullFace(t *testing.T) {
	result := entity.DetectionResult{Detections: []entity.Detection{regionsDetection()}}

	selections := Select(result, PresetFullFace, RenderConfig{})
	require.Len(t, selections, 1)

	sel := selections[0]
	assert.NotNil(t, sel.Box)
	assert.Len(t, sel.Regions, 4)
	assert.Equal(t, DefaultMarkerRadius, sel.Radius)
	assert.Equal(t, 5, PointCount(selections))
}

func TestSelectNoseOnlyRegions(t *testing.T) {
	result := entity.DetectionResult{Detections: []entity.Detection{regionsDetection()}}

	selections := Select(result, PresetNoseOnly, RenderConfig{})
	require.Len(t, selections, 1)

	sel := selections[0]
	assert.Nil(t, sel.Box)
	assert.Len(t, sel.Regions, 1)
	assert.Len(t, sel.Regions[entity.RegionNose].Points, 2)
	assert.Equal(t, DefaultMarkerRadius, sel.Radius)
}

func TestSelectNoseOnlyMesh(t *testing.T) {
	det := meshDetection(t)
	result := entity.DetectionResult{Detections: []entity.Detection{det}}

	selections := Select(result, PresetNoseOnly, RenderConfig{})
	require.Len(t, selections, 1)

	nose := selections[0].Regions[entity.RegionNose]
	require.Len(t, nose.Points, 5)
	for i, idx := range NoseMeshIndices {
		assert.Equal(t, det.Mesh[idx], nose.Points[i])
	}
	assert.Equal(t, NoseMarkerRadius, selections[0].Radius)
	assert.Equal(t, 5, PointCount(selections))
}

func TestSelectNoseExtendedMesh(t *testing.T) {
	result := entity.DetectionResult{Detections: []entity.Detection{meshDetection(t)}}

	selections := Select(result, PresetNoseExtended, RenderConfig{})
	assert.Equal(t, 11, PointCount(selections))
	assert.Equal(t, DefaultMarkerRadius, selections[0].Radius)
}

func TestSelectFullFaceMesh(t *testing.T) {
	result := entity.DetectionResult{Detections: []entity.Detection{meshDetection(t)}}

	selections := Select(result, PresetFullFace, RenderConfig{})

	want := 0
	for _, name := range entity.RegionOrder {
		want += len(MeshRegionIndices(name))
	}
	assert.Equal(t, want, PointCount(selections))
}

func TestSelectAbsentRegion(t *testing.T) {
	det := regionsDetection()
	delete(det.Regions, entity.RegionNose)
	result := entity.DetectionResult{Detections: []entity.Detection{det}}

	selections := Select(result, PresetNoseOnly, RenderConfig{})
	require.Len(t, selections, 1)
	assert.Empty(t, selections[0].Regions)

	selections = Select(result, PresetFullFace, RenderConfig{Regions: []entity.RegionName{entity.RegionNose, entity.RegionMouth}})
	assert.Len(t, selections[0].Regions, 1)
	assert.Contains(t, selections[0].Regions, entity.RegionMouth)
}

func TestSelectOverrides(t *testing.T) {
	result := entity.DetectionResult{Detections: []entity.Detection{regionsDetection(), meshDetection(t)}}

	selections := Select(result, PresetNoseOnly, RenderConfig{MarkerRadius: 7})
	require.Len(t, selections, 2)
	for _, sel := range selections {
		assert.Equal(t, 7, sel.Radius)
	}

	assert.Equal(t, DefaultBoxWidth, RenderConfig{}.LineWidth())
	assert.Equal(t, 5, RenderConfig{BoxWidth: 5}.LineWidth())
}

func TestSelectEmptyResult(t *testing.T) {
	assert.Empty(t, Select(entity.DetectionResult{}, PresetFullFace, RenderConfig{}))
}
