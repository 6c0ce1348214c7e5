package landmark

import "context"

// Detector is an external face/landmark model. Detect is the only blocking
// step of the pipeline; implementations must honor ctx cancellation and be
// safe for concurrent use.
type Detector interface {
	ID() string
	Detect(ctx context.Context, image []byte) (RawOutput, error)
}
