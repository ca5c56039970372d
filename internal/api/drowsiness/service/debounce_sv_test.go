package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedFace() entity.FaceObservation {
	return entity.FaceObservation{
		Bounds:     image.Rect(0, 0, 100, 100),
		Result:     entity.Landmarked{EAR: 0.15},
		EyesClosed: true,
	}
}

func openFace() entity.FaceObservation {
	return entity.FaceObservation{
		Bounds: image.Rect(0, 0, 100, 100),
		Result: entity.Landmarked{EAR: 0.35},
	}
}

func yawningFace() entity.FaceObservation {
	obs := openFace()
	obs.MouthOpen = true
	return obs
}

func stepN(d Debouncer, state *MonitorState, n int, obs ...entity.FaceObservation) []entity.Transition {
	var all []entity.Transition
	for i := 0; i < n; i++ {
		all = append(all, d.Step(state, obs)...)
	}
	return all
}

func TestDebouncer_AlarmBoundary(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()

	transitions := stepN(d, &state, 47, closedFace())
	assert.Empty(t, transitions)
	assert.Equal(t, entity.AlarmIdle, state.Alarm)
	assert.Equal(t, 47, state.MaxClosedEyeFrames())

	transitions = d.Step(&state, []entity.FaceObservation{closedFace()})
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Entered())
	assert.Equal(t, entity.AlertDrowsiness, transitions[0].Kind)
	assert.Equal(t, entity.AlarmActive, state.Alarm)

	transitions = d.Step(&state, []entity.FaceObservation{closedFace()})
	assert.Empty(t, transitions)
	assert.Equal(t, entity.AlarmActive, state.Alarm)
	assert.Equal(t, 49, state.MaxClosedEyeFrames())
}

func TestDebouncer_ExitsOnFirstOpenFrame(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()
	stepN(d, &state, 60, closedFace())
	require.Equal(t, entity.AlarmActive, state.Alarm)

	transitions := d.Step(&state, []entity.FaceObservation{openFace()})
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Exited())
	assert.Equal(t, 0, state.MaxClosedEyeFrames())
}

func TestDebouncer_DropoutResetsCounters(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()

	stepN(d, &state, 47, closedFace())
	assert.Empty(t, d.Step(&state, nil))
	assert.Equal(t, 0, state.MaxClosedEyeFrames())
	assert.Empty(t, state.Slots)

	assert.Empty(t, stepN(d, &state, 47, closedFace()))
	assert.Equal(t, entity.AlarmIdle, state.Alarm)
}

func TestDebouncer_DropoutEndsActiveAlarm(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()
	stepN(d, &state, 48, closedFace())
	require.Equal(t, entity.AlarmActive, state.Alarm)

	transitions := d.Step(&state, nil)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Exited())
}

func TestDebouncer_UnevaluableFaceResetsSlot(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()
	stepN(d, &state, 30, closedFace())

	d.Step(&state, []entity.FaceObservation{{Bounds: image.Rect(0, 0, 50, 50)}})
	assert.Equal(t, 0, state.MaxClosedEyeFrames())
}

func TestDebouncer_SlotsArePositional(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()

	stepN(d, &state, 10, openFace(), closedFace())
	require.Len(t, state.Slots, 2)
	assert.Equal(t, 0, state.Slots[0].ClosedEyeFrames)
	assert.Equal(t, 10, state.Slots[1].ClosedEyeFrames)

	// Second face disappears: its slot is dropped.
	d.Step(&state, []entity.FaceObservation{openFace()})
	require.Len(t, state.Slots, 1)
	assert.Equal(t, 0, state.MaxClosedEyeFrames())
}

func TestDebouncer_AnyFaceCanRaiseAlarm(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()

	transitions := stepN(d, &state, 48, openFace(), closedFace())
	require.Len(t, transitions, 1)
	assert.Equal(t, entity.AlarmActive, state.Alarm)
}

func TestDebouncer_YawnAlarmIsIndependent(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()

	transitions := stepN(d, &state, 19, yawningFace())
	assert.Empty(t, transitions)

	transitions = d.Step(&state, []entity.FaceObservation{yawningFace()})
	require.Len(t, transitions, 1)
	assert.Equal(t, entity.AlertYawn, transitions[0].Kind)
	assert.True(t, transitions[0].Entered())
	assert.Equal(t, entity.AlarmIdle, state.Alarm)

	transitions = d.Step(&state, []entity.FaceObservation{openFace()})
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Exited())
	assert.Equal(t, entity.AlertYawn, transitions[0].Kind)
}

func TestDebouncer_FallbackObservationsCount(t *testing.T) {
	d := NewDebouncer(drowsiness.DefaultThresholds())
	state := NewMonitorState()
	noEyes := entity.FaceObservation{
		Result:     entity.FallbackCount{EyeRegionCount: 0},
		EyesClosed: true,
	}

	transitions := stepN(d, &state, 48, noEyes)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Entered())
}
