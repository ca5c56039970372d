package haar

import (
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/camera"
	"WakeGuard/pkg/vision"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

var errNotMatFrame = errors.New("frame is not backed by an OpenCV matrix")

type cascade struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	params     vision.CascadeParams
}

func loadCascade(path string, params vision.CascadeParams) (*cascade, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade %s", path)
	}
	return &cascade{classifier: classifier, params: params}, nil
}

func (c *cascade) detect(gray gocv.Mat) []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.DetectMultiScaleWithParams(gray, c.params.ScaleFactor, c.params.MinNeighbors, 0, c.params.MinSize, image.Point{})
}

func (c *cascade) Close() error {
	return c.classifier.Close()
}

// FaceDetector finds frontal faces on the grey copy of a frame.
type FaceDetector struct {
	*cascade
}

func NewFaceDetector(path string) (*FaceDetector, error) {
	c, err := loadCascade(path, vision.FaceCascade)
	if err != nil {
		return nil, err
	}
	return &FaceDetector{cascade: c}, nil
}

func (d *FaceDetector) Locate(frame entity.VideoFrame) ([]image.Rectangle, error) {
	mf, ok := frame.(camera.MatFrame)
	if !ok {
		return nil, errNotMatFrame
	}
	return vision.ClampFaces(d.detect(mf.Gray()), frame.Size()), nil
}

// EyeCounter looks for open eyes inside a face. Closed eyes rarely match
// the cascade, which is what makes the count usable.
type EyeCounter struct {
	*cascade
}

func NewEyeCounter(path string) (*EyeCounter, error) {
	c, err := loadCascade(path, vision.EyeCascade)
	if err != nil {
		return nil, err
	}
	return &EyeCounter{cascade: c}, nil
}

// CountEyes returns the detected eye rectangles in frame coordinates.
func (e *EyeCounter) CountEyes(frame entity.VideoFrame, face image.Rectangle) ([]image.Rectangle, error) {
	mf, ok := frame.(camera.MatFrame)
	if !ok {
		return nil, errNotMatFrame
	}

	region, ok := vision.ClampRegion(face, frame.Size())
	if !ok {
		return nil, fmt.Errorf("face %v lies outside the frame", face)
	}

	gray := mf.Gray()
	crop := gray.Region(region)
	defer crop.Close()

	return vision.Offset(e.detect(crop), region.Min), nil
}
