package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	drowsinessRepository "WakeGuard/internal/api/drowsiness/repository"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/clock"
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type fakeFrame struct {
	closed bool
}

func (f *fakeFrame) Size() image.Point                        { return image.Pt(640, 480) }
func (f *fakeFrame) EncodeJPEG() ([]byte, error)              { return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil }
func (f *fakeFrame) CropJPEG(image.Rectangle) ([]byte, error) { return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil }
func (f *fakeFrame) Close() error                             { f.closed = true; return nil }

// landmarksWithEAR places two identical eyes whose EAR is exactly ear and a
// mouth whose MAR is exactly mar.
func landmarksWithEAR(ear, mar float64) entity.LandmarkSet {
	var set entity.LandmarkSet
	eye := syntheticEye(ear * 30)
	for i, p := range eye {
		set[36+i] = entity.Point{X: p.X + 200, Y: p.Y + 200}
		set[42+i] = entity.Point{X: p.X + 260, Y: p.Y + 200}
	}
	for i, p := range syntheticMouth(mar * 40) {
		set[48+i] = entity.Point{X: p.X + 215, Y: p.Y + 280}
	}
	return set
}

type fakeLandmarker struct {
	mu    sync.Mutex
	ears  []float64
	mar   float64
	err   error
	calls int
}

func (f *fakeLandmarker) Landmarks(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) (entity.LandmarkSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++
	if f.err != nil {
		return entity.LandmarkSet{}, f.err
	}
	ear := f.ears[len(f.ears)-1]
	if idx < len(f.ears) {
		ear = f.ears[idx]
	}
	return landmarksWithEAR(ear, f.mar), nil
}

type fakeEyeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeEyeCounter) CountEyes(frame entity.VideoFrame, face image.Rectangle) ([]image.Rectangle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	regions := make([]image.Rectangle, f.count)
	for i := range regions {
		regions[i] = image.Rect(10*i, 10, 10*i+20, 30)
	}
	return regions, nil
}

type fakeAudio struct {
	mu      sync.Mutex
	plays   int
	stops   int
	playing bool
}

func (f *fakeAudio) PlayLooping() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	f.playing = true
}

func (f *fakeAudio) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.playing = false
}

func (f *fakeAudio) counts() (plays, stops int, playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays, f.stops, f.playing
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []entity.Notification
	accepted bool
	err      error
	delay    time.Duration
}

func (f *fakeNotifier) Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return entity.DeliveryReceipt{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	if f.err != nil {
		return entity.DeliveryReceipt{}, f.err
	}
	if !f.accepted {
		return entity.DeliveryReceipt{Accepted: false, Code: 401, Detail: "invalid api key"}, nil
	}
	return entity.DeliveryReceipt{Accepted: true, Code: 200}, nil
}

func (f *fakeNotifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entity.AlertEvent
}

func (f *fakePublisher) PublishAlert(ctx context.Context, event entity.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type fakeSnapshots struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeSnapshots) UploadSnapshot(ctx context.Context, key string, jpeg []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://snapshots.example/" + key, nil
}

var errReadFailed = errors.New("device busy")

type fakeCamera struct {
	frames   int
	failFrom int
	reads    int
}

func (f *fakeCamera) Read() (entity.VideoFrame, error) {
	f.reads++
	if f.failFrom > 0 && f.reads >= f.failFrom {
		return nil, errReadFailed
	}
	if f.frames > 0 && f.reads > f.frames {
		return nil, drowsiness.ErrEmptyFrame
	}
	return &fakeFrame{}, nil
}

type fakeFaceLocator struct {
	faces []image.Rectangle
}

func (f *fakeFaceLocator) Locate(entity.VideoFrame) ([]image.Rectangle, error) {
	return f.faces, nil
}

type fakeRenderer struct {
	quitAfter int
	statuses  []entity.FrameStatus
}

func (f *fakeRenderer) Render(frame entity.VideoFrame, status entity.FrameStatus) bool {
	f.statuses = append(f.statuses, status)
	return f.quitAfter > 0 && len(f.statuses) >= f.quitAfter
}

func testAlertSettings() drowsiness.AlertSettings {
	return drowsiness.AlertSettings{
		From:           "+15550001111",
		To:             "+15550002222",
		Message:        "Driver drowsiness detected",
		NotifyTimeout:  5 * time.Second,
		UploadSnapshot: true,
	}
}

func newTestService(deps Dependencies) (*drowsinessService, drowsinessRepository.Repository) {
	if deps.Clock == nil {
		deps.Clock = clock.NewMockClock(time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC))
	}
	repo := drowsinessRepository.New(newTestLogger(), 16)
	svc := NewDrowsinessService(newTestLogger(), repo, drowsiness.DefaultThresholds(), testAlertSettings(), 3, deps)
	return svc.(*drowsinessService), repo
}
