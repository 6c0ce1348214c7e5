package landmark

import (
	"fmt"

	"LandmarkGolang/internal/entity"
)

// frame carries what every parser needs to bring numbers into pixel space.
type frame struct {
	width  float64
	height float64
	coords CoordinateSystem
}

// Normalize converts a raw detector payload into the canonical model. Faces
// keep their input order and every point is stored in absolute pixels of a
// width×height image.
func Normalize(raw RawOutput, width, height int) (entity.DetectionResult, error) {
	if width <= 0 || height <= 0 {
		return entity.DetectionResult{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	parse, ok := parsers[raw.Schema]
	if !ok {
		return entity.DetectionResult{}, malformed("unknown schema %q", raw.Schema)
	}

	coords := raw.Coordinates
	if coords == "" {
		coords = Infer
	}
	if _, err := ParseCoordinateSystem(string(coords)); err != nil {
		return entity.DetectionResult{}, malformed("%v", err)
	}

	detections, err := parse(raw.Body, frame{
		width:  float64(width),
		height: float64(height),
		coords: coords,
	})
	if err != nil {
		return entity.DetectionResult{}, err
	}
	if detections == nil {
		detections = []entity.Detection{}
	}

	return entity.DetectionResult{Detections: detections}, nil
}

// resolve decides, for one face, whether its box and point values are
// relative. Under Infer a group counts as relative when every value lies in
// [0,1]; box and points disagreeing is a mixed interpretation.
func (f frame) resolve(boxVals, pointVals []float64) (bool, error) {
	switch f.coords {
	case Absolute:
		return false, nil
	case Relative:
		return true, nil
	}

	switch {
	case len(boxVals) == 0:
		return allUnit(pointVals), nil
	case len(pointVals) == 0:
		return allUnit(boxVals), nil
	}

	boxRel, pointRel := allUnit(boxVals), allUnit(pointVals)
	if boxRel != pointRel {
		return false, malformed("mixed relative and absolute coordinates within one face")
	}
	return boxRel, nil
}

func (f frame) point(x, y float64, relative bool) entity.Point2D {
	if relative {
		return entity.Point2D{X: x * f.width, Y: y * f.height}
	}
	return entity.Point2D{X: x, Y: y}
}

func (f frame) box(x1, y1, x2, y2 float64, relative bool) (*entity.BoundingBox, error) {
	p1 := f.point(x1, y1, relative)
	p2 := f.point(x2, y2, relative)
	if p1.X >= p2.X || p1.Y >= p2.Y {
		return nil, malformed("degenerate bounding box [%g %g %g %g]", x1, y1, x2, y2)
	}
	return &entity.BoundingBox{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}, nil
}

func allUnit(vals []float64) bool {
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
