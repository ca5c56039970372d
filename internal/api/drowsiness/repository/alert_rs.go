package drowsinessRepository

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/log"

	"golang.org/x/net/context"
)

func (r *repository) AppendAlert(ctx context.Context, event entity.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.filled {
		r.log.WithFields(log.Fields{
			"dropped_id": r.alerts[r.next].ID,
		}).Debug("Alert log full, dropping oldest event")
	}

	r.alerts[r.next] = event
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.filled = true
	}
	return nil
}

func (r *repository) AttachSnapshot(ctx context.Context, eventID, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.alerts {
		if r.alerts[i].ID == eventID && eventID != "" {
			r.alerts[i].SnapshotURL = location
			return nil
		}
	}
	return drowsiness.ErrAlertNotFound
}

// RecentAlerts returns up to limit events, newest first. A limit of zero
// or less returns everything retained.
func (r *repository) RecentAlerts(ctx context.Context, limit int) ([]entity.AlertEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.filled {
		size = r.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	events := make([]entity.AlertEvent, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + r.capacity) % r.capacity
		events = append(events, r.alerts[idx])
	}
	return events, nil
}
