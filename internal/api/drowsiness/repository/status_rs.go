package drowsinessRepository

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"

	"golang.org/x/net/context"
)

func (r *repository) SaveStatus(ctx context.Context, status entity.FrameStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = status
	r.hasFrame = true
	return nil
}

func (r *repository) LatestStatus(ctx context.Context) (entity.FrameStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.hasFrame {
		return entity.FrameStatus{}, drowsiness.ErrStatusNotReady
	}
	return r.status, nil
}
