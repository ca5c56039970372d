package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/log"
	"context"
	"errors"
	"fmt"
)

// Run pulls frames until ctx is cancelled, the renderer asks to quit, or
// the camera fails more than maxReadFailures times in a row.
func (s *drowsinessService) Run(ctx context.Context) error {
	if s.deps.Camera == nil || s.deps.Faces == nil {
		return fmt.Errorf("camera and face locator are required: %w", drowsiness.ErrInternalServerError)
	}
	defer s.silenceAlarm()

	s.log.WithFields(log.Fields{
		"landmarks": s.deps.Landmarker != nil,
		"audio":     s.deps.Audio != nil,
		"notifier":  s.deps.Notifier != nil,
		"renderer":  s.deps.Renderer != nil,
	}).Info("Drowsiness monitor started")

	failures := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Drowsiness monitor stopping")
			return nil
		default:
		}

		frame, err := s.deps.Camera.Read()
		if err != nil {
			failures++
			fields := log.Fields{
				"consecutive_failures": failures,
				"error":                err.Error(),
			}
			if errors.Is(err, drowsiness.ErrEmptyFrame) {
				s.log.WithFields(fields).Debug("Skipping empty frame")
			} else {
				s.log.WithFields(fields).Warn("Failed to read frame")
			}

			if failures > s.maxReadFailures {
				return fmt.Errorf("after %d failed reads: %w", failures, drowsiness.ErrCameraExhausted)
			}
			continue
		}
		failures = 0

		quit := s.process(ctx, frame)
		if err := frame.Close(); err != nil {
			s.log.WithFields(log.Fields{
				"error": err.Error(),
			}).Debug("Failed to release frame")
		}
		if quit {
			s.log.Info("Quit requested from display")
			return nil
		}
	}
}

func (s *drowsinessService) process(ctx context.Context, frame entity.VideoFrame) bool {
	faces, err := s.deps.Faces.Locate(frame)
	if err != nil {
		s.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Debug("Face localisation failed, treating frame as empty")
		faces = nil
	}

	status := s.Tick(ctx, frame, faces)

	if s.deps.Renderer == nil {
		return false
	}
	return s.deps.Renderer.Render(frame, status)
}

func (s *drowsinessService) silenceAlarm() {
	if s.state.Alarm == entity.AlarmActive && s.deps.Audio != nil {
		s.deps.Audio.Stop()
	}
}
