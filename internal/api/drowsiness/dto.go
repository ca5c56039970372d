package drowsiness

import (
	"WakeGuard/internal/entity"
	"time"
)

type Thresholds struct {
	EARThreshold     float64       `validate:"gt=0"`
	EARConsecFrames  int           `validate:"gt=0"`
	MARThreshold     float64       `validate:"gt=0"`
	YawnConsecFrames int           `validate:"gt=0"`
	SMSCooldown      time.Duration `validate:"gt=0"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		EARThreshold:     0.25,
		EARConsecFrames:  48,
		MARThreshold:     0.6,
		YawnConsecFrames: 20,
		SMSCooldown:      60 * time.Second,
	}
}

type AlertSettings struct {
	From           string
	To             string
	Message        string        `validate:"required"`
	NotifyTimeout  time.Duration `validate:"gt=0"`
	UploadSnapshot bool
}

type SensitivityProfile struct {
	EARThreshold    float64
	EARConsecFrames int
}

var SensitivityProfiles = map[string]SensitivityProfile{
	"default":   {EARThreshold: 0.25, EARConsecFrames: 48},
	"sensitive": {EARThreshold: 0.28, EARConsecFrames: 30},
	"relaxed":   {EARThreshold: 0.22, EARConsecFrames: 60},
}

type AlertsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

type StatusResponse struct {
	Data entity.FrameStatus `json:"data"`
}

type AlertsResponse struct {
	Data  []entity.AlertEvent `json:"data"`
	Count int                 `json:"count"`
}

type StreamMessage struct {
	Type   string              `json:"type"`
	Status *entity.FrameStatus `json:"status,omitempty"`
	Error  string              `json:"error,omitempty"`
}
