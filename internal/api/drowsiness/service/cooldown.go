package drowsinessService

import (
	"sync"
	"time"
)

// SmsCooldown spaces successful notifications at least interval apart and
// allows one attempt in flight at a time.
type SmsCooldown struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	inflight bool
}

func NewSmsCooldown(interval time.Duration) *SmsCooldown {
	return &SmsCooldown{interval: interval}
}

// TryAcquire reserves the right to send at now. A successful caller must
// call Release exactly once.
func (c *SmsCooldown) TryAcquire(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight {
		return false
	}
	if !c.last.IsZero() && now.Sub(c.last) < c.interval {
		return false
	}

	c.inflight = true
	return true
}

// Release ends the attempt. Only a delivered notification moves the window.
func (c *SmsCooldown) Release(delivered bool, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight = false
	if delivered {
		c.last = at
	}
}

func (c *SmsCooldown) LastDelivered() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
