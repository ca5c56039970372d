package entity

import (
	"image"
	"time"
)

// VideoFrame is one acquired camera frame. Implementations own native
// buffers and must be closed by the consumer.
type VideoFrame interface {
	Size() image.Point
	EncodeJPEG() ([]byte, error)
	CropJPEG(r image.Rectangle) ([]byte, error)
	Close() error
}

type FaceStatus struct {
	Bounds     image.Rectangle   `json:"bounds"`
	Mode       DetectionMode     `json:"mode"`
	EAR        *float64          `json:"ear,omitempty"`
	MAR        *float64          `json:"mar,omitempty"`
	EyeCount   *int              `json:"eye_count,omitempty"`
	EyesClosed bool              `json:"eyes_closed"`
	MouthOpen  bool              `json:"mouth_open"`
	LeftEye    []Point           `json:"left_eye,omitempty"`
	RightEye   []Point           `json:"right_eye,omitempty"`
	Mouth      []Point           `json:"mouth,omitempty"`
	Landmarks  []Point           `json:"-"`
	EyeRegions []image.Rectangle `json:"eye_regions,omitempty"`
}

// FrameStatus is the per-frame snapshot handed to the renderer and the
// status API.
type FrameStatus struct {
	Sequence        uint64       `json:"sequence"`
	CapturedAt      time.Time    `json:"captured_at"`
	FrameSize       image.Point  `json:"frame_size"`
	Faces           []FaceStatus `json:"faces"`
	NoFace          bool         `json:"no_face"`
	Alarm           AlarmState   `json:"alarm"`
	YawnAlarm       AlarmState   `json:"yawn_alarm"`
	ClosedEyeFrames int          `json:"closed_eye_frames"`
	YawnFrames      int          `json:"yawn_frames"`
	FPS             float64      `json:"fps"`
	EARMean         float64      `json:"ear_mean"`
	EARStdDev       float64      `json:"ear_std_dev"`
}

func (s FrameStatus) AlarmActive() bool {
	return s.Alarm == AlarmActive
}

func (s FrameStatus) YawnActive() bool {
	return s.YawnAlarm == AlarmActive
}

// Primary returns the first face, which drives the headline readout.
func (s FrameStatus) Primary() (FaceStatus, bool) {
	if len(s.Faces) == 0 {
		return FaceStatus{}, false
	}
	return s.Faces[0], true
}
