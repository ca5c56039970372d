package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/log"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
)

// Estimator judges one face per call: landmarks first, eye-region count
// when landmarks cannot be had.
type Estimator struct {
	log        *logrus.Logger
	thresholds drowsiness.Thresholds
	landmarker Landmarker
	eyes       EyeCounter

	fallbackOnce sync.Once
}

func NewEstimator(log *logrus.Logger, thresholds drowsiness.Thresholds, landmarker Landmarker, eyes EyeCounter) *Estimator {
	return &Estimator{
		log:        log,
		thresholds: thresholds,
		landmarker: landmarker,
		eyes:       eyes,
	}
}

func (e *Estimator) Estimate(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) entity.FaceObservation {
	obs := entity.FaceObservation{Bounds: face}

	landmarked, err := e.fromLandmarks(ctx, frame, face)
	if err == nil {
		obs.Result = landmarked
		obs.EyesClosed = landmarked.EAR < e.thresholds.EARThreshold
		obs.MouthOpen = landmarked.MouthMeasured && landmarked.MAR >= e.thresholds.MARThreshold
		return obs
	}
	e.noteFallback(face, err)

	if e.eyes == nil {
		return obs
	}

	regions, err := e.eyes.CountEyes(frame, face)
	if err != nil {
		e.log.WithFields(log.Fields{
			"face":  face.String(),
			"error": err.Error(),
		}).Debug("Eye counter could not evaluate face")
		return obs
	}

	obs.Result = entity.FallbackCount{
		EyeRegionCount: len(regions),
		EyeRegions:     regions,
	}
	obs.EyesClosed = len(regions) < 1
	return obs
}

func (e *Estimator) fromLandmarks(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) (entity.Landmarked, error) {
	if e.landmarker == nil {
		return entity.Landmarked{}, fmt.Errorf("landmarker not configured: %w", drowsiness.ErrUnevaluableFace)
	}

	landmarks, err := e.landmarker.Landmarks(ctx, frame, face)
	if err != nil {
		return entity.Landmarked{}, err
	}

	leftEAR, err := EyeAspectRatio(landmarks.LeftEye())
	if err != nil {
		return entity.Landmarked{}, fmt.Errorf("left eye: %w", err)
	}
	rightEAR, err := EyeAspectRatio(landmarks.RightEye())
	if err != nil {
		return entity.Landmarked{}, fmt.Errorf("right eye: %w", err)
	}

	result := entity.Landmarked{
		EAR:       (leftEAR + rightEAR) / 2,
		LeftEye:   landmarks.LeftEye(),
		RightEye:  landmarks.RightEye(),
		Mouth:     landmarks.Mouth(),
		Landmarks: landmarks.Points(),
	}

	// A mouth that cannot be measured counts as closed.
	if mar, err := MouthAspectRatio(landmarks.Mouth()); err == nil {
		result.MAR = mar
		result.MouthMeasured = true
	}

	return result, nil
}

func (e *Estimator) noteFallback(face image.Rectangle, err error) {
	fields := log.Fields{
		"face":  face.String(),
		"error": err.Error(),
	}

	warned := false
	e.fallbackOnce.Do(func() {
		warned = true
		e.log.WithFields(fields).Warn("Landmarks unavailable, using eye-region fallback")
	})
	if !warned {
		e.log.WithFields(fields).Debug("Falling back to eye-region count")
	}
}
