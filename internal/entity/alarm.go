package entity

import "time"

type AlarmState string

const (
	AlarmIdle   AlarmState = "idle"
	AlarmActive AlarmState = "active"
)

type AlertKind string

const (
	AlertDrowsiness AlertKind = "drowsiness"
	AlertYawn       AlertKind = "yawn"
)

type Transition struct {
	Kind AlertKind
	From AlarmState
	To   AlarmState
}

func (t Transition) Entered() bool {
	return t.From == AlarmIdle && t.To == AlarmActive
}

func (t Transition) Exited() bool {
	return t.From == AlarmActive && t.To == AlarmIdle
}

type AlertEvent struct {
	ID              string     `json:"id"`
	Kind            AlertKind  `json:"kind"`
	From            AlarmState `json:"from"`
	To              AlarmState `json:"to"`
	ClosedEyeFrames int        `json:"closed_eye_frames"`
	YawnFrames      int        `json:"yawn_frames"`
	EAR             *float64   `json:"ear,omitempty"`
	SnapshotURL     string     `json:"snapshot_url,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

type Notification struct {
	From string
	To   string
	Text string
}

type DeliveryReceipt struct {
	Accepted bool
	Code     int
	Detail   string
}
