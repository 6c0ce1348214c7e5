package entity

type RegionName string

const (
	RegionLeftEye     RegionName = "left_eye"
	RegionRightEye    RegionName = "right_eye"
	RegionNose        RegionName = "nose"
	RegionMouth       RegionName = "mouth"
	RegionEyebrows    RegionName = "eyebrows"
	RegionFaceOutline RegionName = "face_outline"
)

// RegionOrder is the fixed enumeration order used for drawing.
var RegionOrder = []RegionName{
	RegionLeftEye,
	RegionRightEye,
	RegionNose,
	RegionMouth,
	RegionEyebrows,
	RegionFaceOutline,
}

// Point2D is always stored in absolute pixel coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Region struct {
	Name   RegionName `json:"name"`
	Points []Point2D  `json:"points"`
}

type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Detection struct {
	Box     *BoundingBox          `json:"box,omitempty"`
	Regions map[RegionName]Region `json:"regions"`
	Mesh    []Point2D             `json:"mesh,omitempty"`
}

// IsDenseMesh reports whether the detection came from an indexed face mesh
// rather than pre-grouped regions.
func (d Detection) IsDenseMesh() bool {
	return d.Mesh != nil
}

type DetectionResult struct {
	Detections []Detection `json:"detections"`
}

func (r DetectionResult) Empty() bool {
	return len(r.Detections) == 0
}
