package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	drowsinessRepository "WakeGuard/internal/api/drowsiness/repository"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/clock"
	"context"
	"image"

	"github.com/sirupsen/logrus"
)

type FaceLocator interface {
	Locate(frame entity.VideoFrame) ([]image.Rectangle, error)
}

type Landmarker interface {
	Landmarks(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) (entity.LandmarkSet, error)
}

type EyeCounter interface {
	CountEyes(frame entity.VideoFrame, face image.Rectangle) ([]image.Rectangle, error)
}

type AlarmPlayer interface {
	PlayLooping()
	Stop()
}

type Notifier interface {
	Send(ctx context.Context, n entity.Notification) (entity.DeliveryReceipt, error)
}

type EventPublisher interface {
	PublishAlert(ctx context.Context, event entity.AlertEvent) error
}

type SnapshotStore interface {
	UploadSnapshot(ctx context.Context, key string, jpeg []byte) (string, error)
}

type Camera interface {
	Read() (entity.VideoFrame, error)
}

type Renderer interface {
	Render(frame entity.VideoFrame, status entity.FrameStatus) (quit bool)
}

type IDrowsinessService interface {
	Run(ctx context.Context) error
	Tick(ctx context.Context, frame entity.VideoFrame, faces []image.Rectangle) entity.FrameStatus
	LatestStatus(ctx context.Context) (entity.FrameStatus, error)
	RecentAlerts(ctx context.Context, limit int) ([]entity.AlertEvent, error)
	Wait()
}

// Dependencies groups the collaborators of the monitor. Landmarker, Audio,
// Notifier, Publisher and Snapshots are optional.
type Dependencies struct {
	Camera     Camera
	Faces      FaceLocator
	Landmarker Landmarker
	Eyes       EyeCounter
	Audio      AlarmPlayer
	Notifier   Notifier
	Publisher  EventPublisher
	Snapshots  SnapshotStore
	Renderer   Renderer
	Clock      clock.Clock
}

type drowsinessService struct {
	log             *logrus.Logger
	repo            drowsinessRepository.Repository
	deps            Dependencies
	clock           clock.Clock
	estimator       *Estimator
	debouncer       Debouncer
	dispatcher      *Dispatcher
	fps             *FPSMeter
	state           MonitorState
	sequence        uint64
	maxReadFailures int
}

func NewDrowsinessService(
	log *logrus.Logger,
	repo drowsinessRepository.Repository,
	thresholds drowsiness.Thresholds,
	alerts drowsiness.AlertSettings,
	maxReadFailures int,
	deps Dependencies,
) IDrowsinessService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &drowsinessService{
		log:             log,
		repo:            repo,
		deps:            deps,
		clock:           clk,
		estimator:       NewEstimator(log, thresholds, deps.Landmarker, deps.Eyes),
		debouncer:       NewDebouncer(thresholds),
		dispatcher:      NewDispatcher(log, clk, repo, thresholds, alerts, deps.Audio, deps.Notifier, deps.Publisher, deps.Snapshots),
		fps:             NewFPSMeter(clk, earWindowSize),
		state:           NewMonitorState(),
		maxReadFailures: maxReadFailures,
	}
}

func (s *drowsinessService) LatestStatus(ctx context.Context) (entity.FrameStatus, error) {
	return s.repo.LatestStatus(ctx)
}

func (s *drowsinessService) RecentAlerts(ctx context.Context, limit int) ([]entity.AlertEvent, error) {
	return s.repo.RecentAlerts(ctx, limit)
}

func (s *drowsinessService) Wait() {
	s.dispatcher.Wait()
}
