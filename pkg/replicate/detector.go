package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/overlay"
)

const IDPrefix = "replicate/"

// Detector runs a hosted Replicate model whose output follows the regions
// schema.
type Detector struct {
	client *Client
	model  string
	coords landmark.CoordinateSystem
}

func NewDetector(client *Client, model string, coords landmark.CoordinateSystem) *Detector {
	return &Detector{
		client: client,
		model:  model,
		coords: coords,
	}
}

func (d *Detector) ID() string {
	return IDPrefix + d.model
}

func (d *Detector) Detect(ctx context.Context, image []byte) (landmark.RawOutput, error) {
	uri, err := DataURI(image)
	if err != nil {
		return landmark.RawOutput{}, err
	}

	pred, err := d.client.Predict(ctx, d.model, map[string]any{
		"image": uri,
	})
	if err != nil {
		return landmark.RawOutput{}, err
	}

	return landmark.RawOutput{
		Schema:      landmark.SchemaRegions,
		Coordinates: d.coords,
		Body:        unwrapOutput(pred.Output),
	}, nil
}

// DataURI re-encodes image as JPEG and inlines it as a base64 data URI, the
// form Replicate accepts for file inputs up to a few megabytes.
func DataURI(image []byte) (string, error) {
	jpeg, err := overlay.Reencode(image)
	if err != nil {
		return "", fmt.Errorf("prepare image for replicate: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg), nil
}

// unwrapOutput returns the JSON document a model emitted. Some models return
// their JSON serialized inside a string.
func unwrapOutput(output []byte) []byte {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed
	}

	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return trimmed
	}
	if json.Valid([]byte(inner)) {
		return []byte(inner)
	}
	return trimmed
}
