// Package dlib locates faces with dlib's detector through go-face.
package dlib

import (
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/vision"
	"fmt"
	"image"
	"sync"

	face "github.com/Kagami/go-face"
)

type FaceDetector struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// NewFaceDetector loads the go-face models from modelDir.
func NewFaceDetector(modelDir string) (*FaceDetector, error) {
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models from %s: %w", modelDir, err)
	}
	return &FaceDetector{rec: rec}, nil
}

func (d *FaceDetector) Locate(frame entity.VideoFrame) ([]image.Rectangle, error) {
	jpeg, err := frame.EncodeJPEG()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	faces, err := d.rec.Recognize(jpeg)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib detection failed: %w", err)
	}

	rects := make([]image.Rectangle, 0, len(faces))
	for _, f := range faces {
		rects = append(rects, f.Rectangle)
	}
	return vision.ClampFaces(rects, frame.Size()), nil
}

func (d *FaceDetector) Close() {
	d.rec.Close()
}
