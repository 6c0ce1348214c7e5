package gemini

import (
	"context"
	"fmt"
	"strings"

	"LandmarkGolang/pkg/landmark"

	"github.com/gabriel-vasile/mimetype"
)

const DetectorID = "google/gemini"

const landmarkPrompt = `Locate every human face in this image.
Answer with JSON only, in exactly this shape:
{"faces":[{"box":{"left":0,"top":0,"width":0,"height":0},
"keypoints":[{"type":"eyeLeft","x":0,"y":0}]}]}
All numbers are fractions of the image width (left, width, x) or height (top, height, y), between 0 and 1.
Use these keypoint types when visible: eyeLeft, eyeRight, nose, noseLeft, noseRight,
mouthLeft, mouthRight, mouthUp, mouthDown, leftEyeBrowLeft, leftEyeBrowRight,
rightEyeBrowLeft, rightEyeBrowRight, upperJawlineLeft, chinBottom, upperJawlineRight.
eyeLeft is the eye on the left side of the image.
If there is no face, answer {"faces":[]}.`

type Detector struct {
	client IGemini
}

func NewDetector(client IGemini) *Detector {
	return &Detector{client: client}
}

func (d *Detector) ID() string {
	return DetectorID
}

func (d *Detector) Detect(ctx context.Context, image []byte) (landmark.RawOutput, error) {
	answer, err := d.client.AnalyzeImage(ctx, mimetype.Detect(image).String(), image, landmarkPrompt)
	if err != nil {
		return landmark.RawOutput{}, fmt.Errorf("gemini analyze image: %w", err)
	}

	return landmark.RawOutput{
		Schema:      landmark.SchemaKeypoints,
		Coordinates: landmark.Relative,
		Body:        []byte(stripCodeFence(answer)),
	}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds
// despite the JSON response type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
