package drowsinessRepository

import (
	"WakeGuard/internal/entity"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const DefaultAlertCapacity = 256

// Repository keeps the latest frame status and a bounded alert log in
// memory for the life of the process.
type Repository interface {
	SaveStatus(ctx context.Context, status entity.FrameStatus) error
	LatestStatus(ctx context.Context) (entity.FrameStatus, error)
	AppendAlert(ctx context.Context, event entity.AlertEvent) error
	AttachSnapshot(ctx context.Context, eventID, location string) error
	RecentAlerts(ctx context.Context, limit int) ([]entity.AlertEvent, error)
}

type repository struct {
	log *logrus.Logger

	mu       sync.RWMutex
	status   entity.FrameStatus
	hasFrame bool

	alerts   []entity.AlertEvent
	next     int
	filled   bool
	capacity int
}

func New(log *logrus.Logger, capacity int) Repository {
	if capacity <= 0 {
		capacity = DefaultAlertCapacity
	}

	return &repository{
		log:      log,
		alerts:   make([]entity.AlertEvent, capacity),
		capacity: capacity,
	}
}
