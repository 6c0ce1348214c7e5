package rekognition

import (
	"context"
	"fmt"

	"LandmarkGolang/pkg/landmark"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
	jsoniter "github.com/json-iterator/go"
)

const DetectorID = "aws/rekognition"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// FaceAPI is the slice of the Rekognition client the detector calls.
type FaceAPI interface {
	DetectFacesWithContext(ctx aws.Context, input *rekognition.DetectFacesInput, opts ...request.Option) (*rekognition.DetectFacesOutput, error)
}

type Detector struct {
	api FaceAPI
}

func New(cfg Config) (*Detector, error) {
	sess, err := newSession(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithAPI(rekognition.New(sess)), nil
}

func NewWithAPI(api FaceAPI) *Detector {
	return &Detector{api: api}
}

func newSession(cfg Config) (*session.Session, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return sess, nil
}

func (d *Detector) ID() string {
	return DetectorID
}

func (d *Detector) Detect(ctx context.Context, image []byte) (landmark.RawOutput, error) {
	out, err := d.api.DetectFacesWithContext(ctx, &rekognition.DetectFacesInput{
		Image:      &rekognition.Image{Bytes: image},
		Attributes: aws.StringSlice([]string{rekognition.AttributeDefault}),
	})
	if err != nil {
		return landmark.RawOutput{}, fmt.Errorf("rekognition detect faces: %w", err)
	}

	body, err := json.Marshal(toKeypoints(out))
	if err != nil {
		return landmark.RawOutput{}, fmt.Errorf("rekognition encode faces: %w", err)
	}

	return landmark.RawOutput{
		Schema:      landmark.SchemaKeypoints,
		Coordinates: landmark.Relative,
		Body:        body,
	}, nil
}

type keypointsPayload struct {
	Faces []keypointsFace `json:"faces"`
}

type keypointsFace struct {
	Box       *keypointsBox `json:"box,omitempty"`
	Keypoints []keypoint    `json:"keypoints"`
}

type keypointsBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type keypoint struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// toKeypoints re-shapes FaceDetails into the keypoints schema. Rekognition
// reports both boxes and landmarks as ratios of the image size.
func toKeypoints(out *rekognition.DetectFacesOutput) keypointsPayload {
	payload := keypointsPayload{Faces: []keypointsFace{}}
	if out == nil {
		return payload
	}

	for _, detail := range out.FaceDetails {
		if detail == nil {
			continue
		}

		face := keypointsFace{Keypoints: make([]keypoint, 0, len(detail.Landmarks))}
		if bb := detail.BoundingBox; bb != nil {
			face.Box = &keypointsBox{
				Left:   aws.Float64Value(bb.Left),
				Top:    aws.Float64Value(bb.Top),
				Width:  aws.Float64Value(bb.Width),
				Height: aws.Float64Value(bb.Height),
			}
		}
		for _, lm := range detail.Landmarks {
			if lm == nil || lm.X == nil || lm.Y == nil {
				continue
			}
			face.Keypoints = append(face.Keypoints, keypoint{
				Type: aws.StringValue(lm.Type),
				X:    aws.Float64Value(lm.X),
				Y:    aws.Float64Value(lm.Y),
			})
		}
		payload.Faces = append(payload.Faces, face)
	}
	return payload
}
