package entity

import "image"

type DetectionMode string

const (
	ModeLandmark DetectionMode = "landmark"
	ModeFallback DetectionMode = "fallback"
	ModeNone     DetectionMode = "none"
)

// DetectionResult is either Landmarked or FallbackCount.
type DetectionResult interface {
	Mode() DetectionMode
	detectionResult()
}

type Landmarked struct {
	EAR           float64
	MAR           float64
	MouthMeasured bool
	LeftEye       []Point
	RightEye      []Point
	Mouth         []Point
	Landmarks     []Point
}

func (Landmarked) Mode() DetectionMode { return ModeLandmark }
func (Landmarked) detectionResult()    {}

type FallbackCount struct {
	EyeRegionCount int
	EyeRegions     []image.Rectangle
}

func (FallbackCount) Mode() DetectionMode { return ModeFallback }
func (FallbackCount) detectionResult()    {}

// FaceObservation is the per-frame judgment for one detected face. A nil
// Result means neither path could evaluate the face.
type FaceObservation struct {
	Bounds     image.Rectangle
	Result     DetectionResult
	EyesClosed bool
	MouthOpen  bool
}

func (o FaceObservation) Mode() DetectionMode {
	if o.Result == nil {
		return ModeNone
	}
	return o.Result.Mode()
}
