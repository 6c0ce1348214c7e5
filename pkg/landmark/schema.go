// Package landmark turns raw detector payloads into the canonical landmark
// model and selects the subset of landmarks a preset renders.
//
// Every supported detector output shape is a Schema variant with exactly one
// parser. Supporting a new detector means adding a variant and its parser to
// the parsers table, never branching inside an existing parser.
package landmark

import (
	"errors"
	"fmt"

	"LandmarkGolang/internal/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrMalformedDetectionData = errors.New("malformed detection data")

type Schema string

const (
	// SchemaRegions: {"faces":[{"bbox":[x1,y1,x2,y2],"landmarks":{"left_eye":[[x,y],...]}}]}
	SchemaRegions Schema = "regions"
	// SchemaMesh: {"faces":[{"landmarks":[{"x":..,"y":..,"z":..}, ...]}]}
	SchemaMesh Schema = "mesh"
	// SchemaKeypoints: {"faces":[{"box":{"left","top","width","height"},"keypoints":[{"type","x","y"}]}]}
	SchemaKeypoints Schema = "keypoints"
)

type CoordinateSystem string

const (
	Absolute CoordinateSystem = "absolute"
	Relative CoordinateSystem = "relative"
	// Infer guesses per face from value ranges. Deprecated: detectors should
	// declare Absolute or Relative.
	Infer CoordinateSystem = "infer"
)

func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	switch CoordinateSystem(s) {
	case Absolute, Relative, Infer:
		return CoordinateSystem(s), nil
	case "":
		return Infer, nil
	}
	return "", fmt.Errorf("unknown coordinate system %q", s)
}

// RawOutput is a detector response tagged with the shape it arrives in and
// the coordinate system its numbers are expressed in.
type RawOutput struct {
	Schema      Schema
	Coordinates CoordinateSystem
	Body        []byte
}

type parserFunc func(body []byte, fr frame) ([]entity.Detection, error)

var parsers = map[Schema]parserFunc{
	SchemaRegions:   parseRegions,
	SchemaMesh:      parseMesh,
	SchemaKeypoints: parseKeypoints,
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDetectionData, fmt.Sprintf(format, args...))
}
