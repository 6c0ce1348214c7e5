package landmark

import "LandmarkGolang/internal/entity"

// MeshPointCount is the size of a MediaPipe FaceMesh landmark set. Refined
// meshes carry 478 points; the first 468 share the same indices.
const MeshPointCount = 468

// Nose tip, both nostrils, upper and lower bridge.
var NoseMeshIndices = []int{1, 2, 98, 327, 168}

var NoseExtendedMeshIndices = []int{1, 2, 98, 327, 168, 197, 195, 5, 4, 19, 94}

// meshRegionIndices groups FaceMesh indices by region, following the
// FACEMESH_* connection sets. face_outline is listed in contour order.
var meshRegionIndices = map[entity.RegionName][]int{
	entity.RegionLeftEye: {
		263, 249, 390, 373, 374, 380, 381, 382, 362,
		466, 388, 387, 386, 385, 384, 398,
	},
	entity.RegionRightEye: {
		33, 7, 163, 144, 145, 153, 154, 155, 133,
		246, 161, 160, 159, 158, 157, 173,
	},
	entity.RegionNose: {
		168, 6, 197, 195, 5, 4, 1, 19, 94, 2, 98, 97,
		326, 327, 294, 278, 344, 440, 275, 45, 220, 115, 48, 64,
	},
	entity.RegionMouth: {
		61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291,
		185, 40, 39, 37, 0, 267, 269, 270, 409,
		78, 95, 88, 178, 87, 14, 317, 402, 318, 324, 308,
		191, 80, 81, 82, 13, 312, 311, 310, 415,
	},
	entity.RegionEyebrows: {
		276, 283, 282, 295, 285, 300, 293, 334, 296, 336,
		46, 53, 52, 65, 55, 70, 63, 105, 66, 107,
	},
	entity.RegionFaceOutline: {
		10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
		397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
		172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
	},
}

// MeshRegionIndices returns a copy of the index group for region.
func MeshRegionIndices(region entity.RegionName) []int {
	return append([]int(nil), meshRegionIndices[region]...)
}

func pickMesh(mesh []entity.Point2D, indices []int) []entity.Point2D {
	points := make([]entity.Point2D, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(mesh) {
			points = append(points, mesh[idx])
		}
	}
	return points
}

func groupMesh(mesh []entity.Point2D) map[entity.RegionName]entity.Region {
	regions := make(map[entity.RegionName]entity.Region, len(meshRegionIndices))
	for name, indices := range meshRegionIndices {
		regions[name] = entity.Region{Name: name, Points: pickMesh(mesh, indices)}
	}
	return regions
}
