package landmarkService

import (
	"context"
	"fmt"
	"strings"
	"time"

	"LandmarkGolang/internal/api/landmark"
	contextPkg "LandmarkGolang/pkg/context"
	landmarkPkg "LandmarkGolang/pkg/landmark"
	"LandmarkGolang/pkg/log"
	"LandmarkGolang/pkg/overlay"
	"LandmarkGolang/pkg/replicate"

	"github.com/sirupsen/logrus"
)

var filenameReplacer = strings.NewReplacer("/", "_", ":", "_")

const (
	// Metric labels for detectors that have no fixed identity of their own.
	labelUnresolved = "unresolved"
	labelAdHocModel = replicate.IDPrefix + "other"
)

// run tracks one request through the pipeline states.
type run struct {
	log      *logrus.Entry
	state    landmark.State
	detector string
	label    string
}

// metricsLabel is the detector label for metrics. It only ever holds a
// registered detector, a catalogue model or one of the fixed labels above.
func (r *run) metricsLabel() string {
	if r.label == "" {
		return labelUnresolved
	}
	return r.label
}

func (s *landmarkService) newRun(ctx context.Context, detector string) *run {
	r := &run{
		log: s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
		}),
		detector: detector,
	}
	r.enter(landmark.StateReceived)
	return r
}

func (r *run) enter(state landmark.State) {
	r.state = state
	r.log.WithFields(log.Fields{
		"state":    state,
		"detector": r.detector,
	}).Debug("Annotation state changed")
}

func (r *run) fail(err error) error {
	r.log.WithFields(log.Fields{
		"state":       landmark.StateFailed,
		"failed_from": r.state,
		"detector":    r.detector,
		"error":       err.Error(),
	}).Warn("Annotation failed")
	r.state = landmark.StateFailed
	return err
}

func (s *landmarkService) Annotate(ctx context.Context, req landmark.AnnotateRequest) (*landmark.AnnotateResult, error) {
	detectorID := req.DetectorID
	if detectorID == "" {
		detectorID = s.defaultDetector
	}

	r := s.newRun(ctx, detectorID)
	done := s.metrics.Begin()

	result, err := s.annotate(ctx, r, detectorID, req)
	done(r.metricsLabel(), landmark.Outcome(err))
	if err != nil {
		return nil, r.fail(err)
	}
	return result, nil
}

func (s *landmarkService) annotate(ctx context.Context, r *run, detectorID string, req landmark.AnnotateRequest) (*landmark.AnnotateResult, error) {
	preset := req.Preset
	if preset == "" {
		preset = landmarkPkg.PresetFullFace
	}
	if _, err := landmarkPkg.ParsePreset(string(preset)); err != nil {
		return nil, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err)
	}

	src, err := overlay.Decode(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", landmark.ErrInvalidInput, err)
	}

	detector, label, err := s.resolve(ctx, detectorID)
	if err != nil {
		return nil, err
	}
	r.detector = detector.ID()
	r.label = label

	r.enter(landmark.StateDetecting)
	raw, err := s.detect(ctx, detector, label, req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", landmark.ErrDetectorUnavailable, detector.ID(), err)
	}

	r.enter(landmark.StateNormalizing)
	bounds := src.Bounds()
	normalized, err := landmarkPkg.Normalize(raw, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", landmark.ErrMalformedDetectionData, detector.ID(), err)
	}
	if normalized.Empty() {
		return nil, fmt.Errorf("%w: %s found no faces", landmark.ErrNoFaceDetected, detector.ID())
	}

	r.enter(landmark.StateSelecting)
	selections := landmarkPkg.Select(normalized, preset, req.Config)
	points := landmarkPkg.PointCount(selections)

	r.enter(landmark.StateRendering)
	annotated := overlay.Render(src, selections, s.colors, req.Config)
	encoded, err := overlay.Encode(annotated)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", landmark.ErrRenderFailure, err)
	}

	r.enter(landmark.StateDone)
	r.log.WithFields(log.Fields{
		"detector": detector.ID(),
		"preset":   preset,
		"faces":    len(normalized.Detections),
		"points":   points,
		"bytes":    len(encoded),
	}).Info("Annotation completed")

	return &landmark.AnnotateResult{
		Image:    encoded,
		Filename: Filename(detector.ID(), req.Purpose),
		Detector: detector.ID(),
		Faces:    len(normalized.Detections),
		Points:   points,
	}, nil
}

// detect makes exactly one detector call, bounded by the service timeout.
func (s *landmarkService) detect(ctx context.Context, detector landmarkPkg.Detector, label string, image []byte) (landmarkPkg.RawOutput, error) {
	c, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := detector.Detect(c, image)
	s.metrics.ObserveDetector(label, time.Since(start), err)
	return raw, err
}

// resolve finds a registered detector, falling back to running id as a
// hosted Replicate model. The second return value is its metrics label.
func (s *landmarkService) resolve(ctx context.Context, id string) (landmarkPkg.Detector, string, error) {
	if d, ok := s.registry.Get(id); ok {
		return d, d.ID(), nil
	}
	if d, ok := s.registry.Get(replicate.IDPrefix + id); ok {
		return d, d.ID(), nil
	}

	ref := strings.TrimPrefix(id, replicate.IDPrefix)
	if !validModelRef(ref) {
		return nil, "", fmt.Errorf("%w: unknown detector %q", landmark.ErrInvalidInput, id)
	}
	if s.replicate == nil {
		return nil, "", fmt.Errorf("%w: hosted models are not configured", landmark.ErrDetectorUnavailable)
	}

	entry, known := s.catalog.Lookup(ref)
	if !known {
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"model":      ref,
		}).Warn("Model is not in the catalogue, inferring its coordinate system; this is deprecated")
		return replicate.NewDetector(s.replicate, ref, landmarkPkg.Infer), labelAdHocModel, nil
	}

	if !strings.Contains(ref, ":") {
		ref = entry.Ref()
	}
	return replicate.NewDetector(s.replicate, ref, entry.Coordinates), replicate.IDPrefix + entry.Model, nil
}

func validModelRef(ref string) bool {
	name, version, pinned := strings.Cut(ref, ":")
	owner, repo, ok := strings.Cut(name, "/")
	if !ok || owner == "" || repo == "" || strings.ContainsAny(repo, "/ ") || strings.Contains(owner, " ") {
		return false
	}
	return !pinned || version != ""
}

// Filename is the suggested download name for an annotated image.
func Filename(detectorID string, purpose landmark.Purpose) string {
	if purpose == "" {
		purpose = landmark.PurposeLandmarks
	}
	return fmt.Sprintf("%s_%s.jpg", filenameReplacer.Replace(detectorID), purpose)
}
