package drowsinessService

import (
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/log"
	"context"
	"image"
)

// Tick runs one frame through estimation, debouncing and dispatch and
// returns the snapshot handed to the renderer. It must be called from a
// single goroutine.
func (s *drowsinessService) Tick(ctx context.Context, frame entity.VideoFrame, faces []image.Rectangle) entity.FrameStatus {
	s.sequence++

	observations := make([]entity.FaceObservation, 0, len(faces))
	for _, face := range faces {
		observations = append(observations, s.estimator.Estimate(ctx, frame, face))
	}

	transitions := s.debouncer.Step(&s.state, observations)

	status := entity.FrameStatus{
		Sequence:        s.sequence,
		CapturedAt:      s.clock.Now(),
		FrameSize:       frame.Size(),
		Faces:           make([]entity.FaceStatus, 0, len(observations)),
		NoFace:          len(faces) == 0,
		Alarm:           s.state.Alarm,
		YawnAlarm:       s.state.YawnAlarm,
		ClosedEyeFrames: s.state.MaxClosedEyeFrames(),
		YawnFrames:      s.state.MaxYawnFrames(),
		FPS:             s.fps.Frame(),
	}

	var primaryEAR *float64
	for _, obs := range observations {
		face := faceStatus(obs)
		if face.EAR != nil {
			s.fps.ObserveEAR(*face.EAR)
			if primaryEAR == nil {
				primaryEAR = face.EAR
			}
		}
		status.Faces = append(status.Faces, face)
	}
	status.EARMean, status.EARStdDev = s.fps.EARStats()

	if len(transitions) > 0 {
		s.dispatcher.Handle(transitions, AlertContext{
			Frame:           frame,
			ClosedEyeFrames: status.ClosedEyeFrames,
			YawnFrames:      status.YawnFrames,
			EAR:             primaryEAR,
		})
	}

	if err := s.repo.SaveStatus(ctx, status); err != nil {
		s.log.WithFields(log.Fields{
			"sequence": status.Sequence,
			"error":    err.Error(),
		}).Warn("Failed to store frame status")
	}

	return status
}

func faceStatus(obs entity.FaceObservation) entity.FaceStatus {
	face := entity.FaceStatus{
		Bounds:     obs.Bounds,
		Mode:       obs.Mode(),
		EyesClosed: obs.EyesClosed,
		MouthOpen:  obs.MouthOpen,
	}

	switch r := obs.Result.(type) {
	case entity.Landmarked:
		ear := r.EAR
		face.EAR = &ear
		if r.MouthMeasured {
			mar := r.MAR
			face.MAR = &mar
		}
		face.LeftEye = r.LeftEye
		face.RightEye = r.RightEye
		face.Mouth = r.Mouth
		face.Landmarks = r.Landmarks
	case entity.FallbackCount:
		count := r.EyeRegionCount
		face.EyeCount = &count
		face.EyeRegions = r.EyeRegions
	}

	return face
}
