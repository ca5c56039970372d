package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
)

// SlotCounters belong to a face slot, which is the position of a face in
// the frame's detection list. Faces are not tracked across frames.
type SlotCounters struct {
	ClosedEyeFrames int
	YawnFrames      int
}

// MonitorState is owned by the frame loop and handed to the debouncer on
// every frame.
type MonitorState struct {
	Slots     []SlotCounters
	Alarm     entity.AlarmState
	YawnAlarm entity.AlarmState
}

func NewMonitorState() MonitorState {
	return MonitorState{
		Alarm:     entity.AlarmIdle,
		YawnAlarm: entity.AlarmIdle,
	}
}

func (s *MonitorState) MaxClosedEyeFrames() int {
	peak := 0
	for _, slot := range s.Slots {
		peak = max(peak, slot.ClosedEyeFrames)
	}
	return peak
}

func (s *MonitorState) MaxYawnFrames() int {
	peak := 0
	for _, slot := range s.Slots {
		peak = max(peak, slot.YawnFrames)
	}
	return peak
}

type Debouncer struct {
	eyeFrames  int
	yawnFrames int
}

func NewDebouncer(thresholds drowsiness.Thresholds) Debouncer {
	return Debouncer{
		eyeFrames:  thresholds.EARConsecFrames,
		yawnFrames: thresholds.YawnConsecFrames,
	}
}

// Step folds one frame of observations into state and returns the alarm
// transitions it caused, drowsiness first. Slots without an observation this
// frame, and faces neither path could evaluate, start again from zero.
func (d Debouncer) Step(state *MonitorState, observations []entity.FaceObservation) []entity.Transition {
	slots := make([]SlotCounters, len(observations))
	for i, obs := range observations {
		if obs.Result == nil {
			continue
		}

		var counters SlotCounters
		if i < len(state.Slots) {
			counters = state.Slots[i]
		}

		if obs.EyesClosed {
			counters.ClosedEyeFrames++
		} else {
			counters.ClosedEyeFrames = 0
		}

		if obs.MouthOpen {
			counters.YawnFrames++
		} else {
			counters.YawnFrames = 0
		}

		slots[i] = counters
	}
	state.Slots = slots

	var transitions []entity.Transition
	if t, changed := advance(&state.Alarm, entity.AlertDrowsiness, state.MaxClosedEyeFrames() >= d.eyeFrames); changed {
		transitions = append(transitions, t)
	}
	if t, changed := advance(&state.YawnAlarm, entity.AlertYawn, state.MaxYawnFrames() >= d.yawnFrames); changed {
		transitions = append(transitions, t)
	}

	return transitions
}

func advance(current *entity.AlarmState, kind entity.AlertKind, holds bool) (entity.Transition, bool) {
	next := entity.AlarmIdle
	if holds {
		next = entity.AlarmActive
	}
	if next == *current {
		return entity.Transition{}, false
	}

	t := entity.Transition{Kind: kind, From: *current, To: next}
	*current = next
	return t, true
}
