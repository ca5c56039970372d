package drowsinessService

import (
	"WakeGuard/pkg/clock"
	"time"

	"gonum.org/v1/gonum/stat"
)

const earWindowSize = 30

// FPSMeter recomputes the frame rate once more than a second has passed
// and keeps a short window of EAR readings for the status readout.
type FPSMeter struct {
	clock   clock.Clock
	started time.Time
	frames  int
	fps     float64

	window []float64
	size   int
}

func NewFPSMeter(clk clock.Clock, windowSize int) *FPSMeter {
	return &FPSMeter{
		clock:   clk,
		started: clk.Now(),
		window:  make([]float64, 0, windowSize),
		size:    windowSize,
	}
}

func (m *FPSMeter) Frame() float64 {
	m.frames++
	if elapsed := m.clock.Since(m.started); elapsed > time.Second {
		m.fps = float64(m.frames) / elapsed.Seconds()
		m.frames = 0
		m.started = m.clock.Now()
	}
	return m.fps
}

func (m *FPSMeter) ObserveEAR(ear float64) {
	if len(m.window) == m.size {
		copy(m.window, m.window[1:])
		m.window = m.window[:m.size-1]
	}
	m.window = append(m.window, ear)
}

func (m *FPSMeter) EARStats() (mean, stdDev float64) {
	switch len(m.window) {
	case 0:
		return 0, 0
	case 1:
		return m.window[0], 0
	}
	return stat.MeanStdDev(m.window, nil)
}
