package landmark

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region names a facial area with a fixed landmark index set.
type Region int

const (
	RegionFaceOval Region = iota
	RegionEyeLeft
	RegionEyeRight
	RegionLips
	RegionEyebrowLeft
	RegionEyebrowRight
	RegionJawline
	RegionHairline
	RegionCheekLeft
	RegionCheekRight
)

// String returns the region's configuration key.
func (r Region) String() string {
	switch r {
	case RegionFaceOval:
		return "face_oval"
	case RegionEyeLeft:
		return "eye_left"
	case RegionEyeRight:
		return "eye_right"
	case RegionLips:
		return "lips"
	case RegionEyebrowLeft:
		return "eyebrow_left"
	case RegionEyebrowRight:
		return "eyebrow_right"
	case RegionJawline:
		return "jawline"
	case RegionHairline:
		return "hairline"
	case RegionCheekLeft:
		return "cheek_left"
	case RegionCheekRight:
		return "cheek_right"
	default:
		return "unknown"
	}
}

// Definitions maps each region to its landmark index set. The defaults
// follow the MediaPipe face mesh contour convention; an overlay file can
// replace individual sets for non-canonical meshes.
type Definitions map[Region][]int

// Mesh contour index sets. These are external contract, not derived.
var (
	faceOvalIndices = []int{
		10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
		397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
		172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
	}
	eyeLeftIndices = []int{
		33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246,
	}
	eyeRightIndices = []int{
		263, 249, 390, 373, 374, 380, 381, 382, 362, 398, 384, 385, 386, 387, 388, 466,
	}
	lipsIndices = []int{
		61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291, 409, 270, 269, 267, 0, 37, 39, 40, 185,
	}
	eyebrowLeftIndices  = []int{70, 63, 105, 66, 107, 55, 65, 52, 53, 46}
	eyebrowRightIndices = []int{300, 293, 334, 296, 336, 285, 295, 282, 283, 276}
	jawlineIndices      = []int{
		234, 93, 132, 58, 172, 136, 150, 149, 176, 148, 152,
		377, 400, 378, 379, 365, 397, 288, 361, 323, 454,
	}
	hairlineIndices  = []int{21, 54, 103, 67, 109, 10, 338, 297, 332, 284, 251}
	cheekLeftIndices = []int{50, 101, 118, 117, 123, 147, 187, 205, 36}
	cheekRightIndices = []int{
		280, 330, 347, 346, 352, 376, 411, 425, 266,
	}
)

// DefaultDefinitions returns the canonical region index sets.
func DefaultDefinitions() Definitions {
	return Definitions{
		RegionFaceOval:     faceOvalIndices,
		RegionEyeLeft:      eyeLeftIndices,
		RegionEyeRight:     eyeRightIndices,
		RegionLips:         lipsIndices,
		RegionEyebrowLeft:  eyebrowLeftIndices,
		RegionEyebrowRight: eyebrowRightIndices,
		RegionJawline:      jawlineIndices,
		RegionHairline:     hairlineIndices,
		RegionCheekLeft:    cheekLeftIndices,
		RegionCheekRight:   cheekRightIndices,
	}
}

// overlayFile is the YAML shape of a region overlay: region name to index
// list. Unknown region names are rejected so typos do not silently leave
// defaults in place.
type overlayFile map[string][]int

var regionsByName = map[string]Region{
	"face_oval":     RegionFaceOval,
	"eye_left":      RegionEyeLeft,
	"eye_right":     RegionEyeRight,
	"lips":          RegionLips,
	"eyebrow_left":  RegionEyebrowLeft,
	"eyebrow_right": RegionEyebrowRight,
	"jawline":       RegionJawline,
	"hairline":      RegionHairline,
	"cheek_left":    RegionCheekLeft,
	"cheek_right":   RegionCheekRight,
}

// LoadDefinitions reads a YAML overlay file and merges it over the
// defaults. Regions absent from the file keep their default index sets.
func LoadDefinitions(path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regions: read overlay %s: %w", path, err)
	}
	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("regions: parse overlay %s: %w", path, err)
	}
	defs := DefaultDefinitions()
	for name, indices := range overlay {
		region, ok := regionsByName[name]
		if !ok {
			return nil, fmt.Errorf("regions: unknown region %q in %s", name, path)
		}
		for _, idx := range indices {
			if idx < 0 {
				return nil, fmt.Errorf("regions: negative index %d for %q in %s", idx, name, path)
			}
		}
		defs[region] = append([]int(nil), indices...)
	}
	return defs, nil
}
