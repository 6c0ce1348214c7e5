package landmark

import (
	"strings"

	"LandmarkGolang/internal/entity"
)

// regionAliases maps the folded form of every region or keypoint name a
// supported detector emits to its canonical region. Names are folded with
// foldName before lookup, so "left_eye", "Left-Eye" and "leftEye" collide.
var regionAliases = map[string]entity.RegionName{
	// regions schema
	"lefteye":      entity.RegionLeftEye,
	"eyesleft":     entity.RegionLeftEye,
	"righteye":     entity.RegionRightEye,
	"eyesright":    entity.RegionRightEye,
	"nose":         entity.RegionNose,
	"nosetip":      entity.RegionNose,
	"mouth":        entity.RegionMouth,
	"lips":         entity.RegionMouth,
	"eyebrows":     entity.RegionEyebrows,
	"eyebrow":      entity.RegionEyebrows,
	"lefteyebrow":  entity.RegionEyebrows,
	"righteyebrow": entity.RegionEyebrows,
	"faceoutline":  entity.RegionFaceOutline,
	"outline":      entity.RegionFaceOutline,
	"faceoval":     entity.RegionFaceOutline,
	"jawline":      entity.RegionFaceOutline,

	// keypoints schema (Rekognition landmark types, five-point detectors)
	"eyeleft":           entity.RegionLeftEye,
	"lefteyeleft":       entity.RegionLeftEye,
	"lefteyeright":      entity.RegionLeftEye,
	"lefteyeup":         entity.RegionLeftEye,
	"lefteyedown":       entity.RegionLeftEye,
	"leftpupil":         entity.RegionLeftEye,
	"eyeright":          entity.RegionRightEye,
	"righteyeleft":      entity.RegionRightEye,
	"righteyeright":     entity.RegionRightEye,
	"righteyeup":        entity.RegionRightEye,
	"righteyedown":      entity.RegionRightEye,
	"rightpupil":        entity.RegionRightEye,
	"noseleft":          entity.RegionNose,
	"noseright":         entity.RegionNose,
	"mouthleft":         entity.RegionMouth,
	"mouthright":        entity.RegionMouth,
	"mouthup":           entity.RegionMouth,
	"mouthdown":         entity.RegionMouth,
	"lefteyebrowleft":   entity.RegionEyebrows,
	"lefteyebrowright":  entity.RegionEyebrows,
	"lefteyebrowup":     entity.RegionEyebrows,
	"righteyebrowleft":  entity.RegionEyebrows,
	"righteyebrowright": entity.RegionEyebrows,
	"righteyebrowup":    entity.RegionEyebrows,
	"upperjawlineleft":  entity.RegionFaceOutline,
	"midjawlineleft":    entity.RegionFaceOutline,
	"chinbottom":        entity.RegionFaceOutline,
	"midjawlineright":   entity.RegionFaceOutline,
	"upperjawlineright": entity.RegionFaceOutline,
}

var nameFolder = strings.NewReplacer("_", "", "-", "", " ", "")

func foldName(name string) string {
	return nameFolder.Replace(strings.ToLower(name))
}

// ResolveRegion returns the canonical region for a detector-specific name.
// Unknown names report false and are expected to be dropped by the caller.
func ResolveRegion(name string) (entity.RegionName, bool) {
	region, ok := regionAliases[foldName(name)]
	return region, ok
}
