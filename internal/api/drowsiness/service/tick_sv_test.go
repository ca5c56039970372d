package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var driverFace = []image.Rectangle{image.Rect(180, 150, 340, 330)}

func TestTick_ClosedEyesRaiseAndClearAlarm(t *testing.T) {
	ears := make([]float64, 0, 51)
	for i := 0; i < 50; i++ {
		ears = append(ears, 0.15)
	}
	ears = append(ears, 0.35)

	audio := &fakeAudio{}
	notifier := &fakeNotifier{accepted: true}
	svc, _ := newTestService(Dependencies{
		Landmarker: &fakeLandmarker{ears: ears, mar: 0.2},
		Eyes:       &fakeEyeCounter{count: 2},
		Audio:      audio,
		Notifier:   notifier,
	})
	ctx := context.Background()

	var statuses []entity.FrameStatus
	for frame := 1; frame <= 51; frame++ {
		statuses = append(statuses, svc.Tick(ctx, &fakeFrame{}, driverFace))
	}
	svc.Wait()

	assert.Equal(t, entity.AlarmIdle, statuses[46].Alarm, "frame 47")
	assert.Equal(t, entity.AlarmActive, statuses[47].Alarm, "frame 48")
	assert.Equal(t, 48, statuses[47].ClosedEyeFrames)
	assert.Equal(t, entity.AlarmActive, statuses[49].Alarm, "frame 50")
	assert.Equal(t, entity.AlarmIdle, statuses[50].Alarm, "frame 51")

	plays, stops, playing := audio.counts()
	assert.Equal(t, 1, plays)
	assert.Equal(t, 1, stops)
	assert.False(t, playing)
	assert.Equal(t, 1, notifier.calls())

	face, ok := statuses[47].Primary()
	require.True(t, ok)
	assert.Equal(t, entity.ModeLandmark, face.Mode)
	require.NotNil(t, face.EAR)
	assert.InDelta(t, 0.15, *face.EAR, 1e-9)
	require.NotNil(t, face.MAR)
	assert.InDelta(t, 0.2, *face.MAR, 1e-9)
	assert.Len(t, face.LeftEye, 6)
	assert.Len(t, face.Mouth, 12)
}

func TestTick_FallbackRaisesAlarmAtSameThreshold(t *testing.T) {
	audio := &fakeAudio{}
	notifier := &fakeNotifier{accepted: true}
	eyes := &fakeEyeCounter{count: 0}
	svc, _ := newTestService(Dependencies{
		Landmarker: &fakeLandmarker{err: drowsiness.ErrLandmarksOffline},
		Eyes:       eyes,
		Audio:      audio,
		Notifier:   notifier,
	})
	ctx := context.Background()

	var status entity.FrameStatus
	for frame := 1; frame <= 47; frame++ {
		status = svc.Tick(ctx, &fakeFrame{}, driverFace)
	}
	assert.Equal(t, entity.AlarmIdle, status.Alarm)

	status = svc.Tick(ctx, &fakeFrame{}, driverFace)
	svc.Wait()

	assert.Equal(t, entity.AlarmActive, status.Alarm)
	assert.Equal(t, 48, eyes.calls)
	face, _ := status.Primary()
	assert.Equal(t, entity.ModeFallback, face.Mode)
	require.NotNil(t, face.EyeCount)
	assert.Equal(t, 0, *face.EyeCount)
	assert.Nil(t, face.EAR)

	plays, _, _ := audio.counts()
	assert.Equal(t, 1, plays)
	assert.Equal(t, 1, notifier.calls())
}

func TestTick_FallbackSeesOpenEyes(t *testing.T) {
	svc, _ := newTestService(Dependencies{
		Eyes: &fakeEyeCounter{count: 2},
	})

	var status entity.FrameStatus
	for frame := 1; frame <= 60; frame++ {
		status = svc.Tick(context.Background(), &fakeFrame{}, driverFace)
	}

	assert.Equal(t, entity.AlarmIdle, status.Alarm)
	face, _ := status.Primary()
	assert.Equal(t, entity.ModeFallback, face.Mode)
	assert.False(t, face.EyesClosed)
}

func TestTick_NoFaceFrameResetsCounters(t *testing.T) {
	svc, _ := newTestService(Dependencies{
		Landmarker: &fakeLandmarker{ears: []float64{0.1}},
		Eyes:       &fakeEyeCounter{count: 2},
	})
	ctx := context.Background()

	for frame := 1; frame <= 47; frame++ {
		svc.Tick(ctx, &fakeFrame{}, driverFace)
	}
	status := svc.Tick(ctx, &fakeFrame{}, nil)
	assert.True(t, status.NoFace)
	assert.Equal(t, 0, status.ClosedEyeFrames)

	status = svc.Tick(ctx, &fakeFrame{}, driverFace)
	assert.Equal(t, 1, status.ClosedEyeFrames)
	assert.Equal(t, entity.AlarmIdle, status.Alarm)
}

func TestTick_UnevaluableFaceIsReportedWithoutMode(t *testing.T) {
	svc, _ := newTestService(Dependencies{
		Landmarker: &fakeLandmarker{err: errors.New("socket closed")},
		Eyes:       &fakeEyeCounter{err: errors.New("empty crop")},
	})

	status := svc.Tick(context.Background(), &fakeFrame{}, driverFace)

	face, ok := status.Primary()
	require.True(t, ok)
	assert.Equal(t, entity.ModeNone, face.Mode)
	assert.False(t, status.NoFace)
	assert.Equal(t, 0, status.ClosedEyeFrames)
}

func TestTick_YawnIsVisualOnly(t *testing.T) {
	audio := &fakeAudio{}
	notifier := &fakeNotifier{accepted: true}
	publisher := &fakePublisher{}
	svc, repo := newTestService(Dependencies{
		Landmarker: &fakeLandmarker{ears: []float64{0.35}, mar: 0.75},
		Eyes:       &fakeEyeCounter{count: 2},
		Audio:      audio,
		Notifier:   notifier,
		Publisher:  publisher,
	})

	var status entity.FrameStatus
	for frame := 1; frame <= 20; frame++ {
		status = svc.Tick(context.Background(), &fakeFrame{}, driverFace)
	}
	svc.Wait()

	assert.Equal(t, entity.AlarmActive, status.YawnAlarm)
	assert.Equal(t, entity.AlarmIdle, status.Alarm)

	plays, _, _ := audio.counts()
	assert.Zero(t, plays)
	assert.Zero(t, notifier.calls())

	events, err := repo.RecentAlerts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AlertYawn, events[0].Kind)
	assert.Len(t, publisher.events, 1)
}

func TestTick_DegenerateLandmarksFallBack(t *testing.T) {
	eyes := &fakeEyeCounter{count: 1}
	svc, _ := newTestService(Dependencies{
		Landmarker: degenerateLandmarker{},
		Eyes:       eyes,
	})

	status := svc.Tick(context.Background(), &fakeFrame{}, driverFace)

	face, _ := status.Primary()
	assert.Equal(t, entity.ModeFallback, face.Mode)
	assert.Equal(t, 1, eyes.calls)
}

type degenerateLandmarker struct{}

func (degenerateLandmarker) Landmarks(context.Context, entity.VideoFrame, image.Rectangle) (entity.LandmarkSet, error) {
	return entity.LandmarkSet{}, nil
}

func TestTick_StoresLatestStatus(t *testing.T) {
	svc, repo := newTestService(Dependencies{
		Eyes: &fakeEyeCounter{count: 2},
	})
	ctx := context.Background()

	svc.Tick(ctx, &fakeFrame{}, driverFace)
	svc.Tick(ctx, &fakeFrame{}, driverFace)

	status, err := repo.LatestStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), status.Sequence)
	assert.Equal(t, image.Pt(640, 480), status.FrameSize)
}
