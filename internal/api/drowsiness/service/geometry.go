package drowsinessService

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	eyePointCount   = 6
	mouthPointCount = 12
)

// EyeAspectRatio returns (|p1-p5| + |p2-p4|) / (2|p0-p3|) for the six
// ordered points of one eye.
func EyeAspectRatio(eye []entity.Point) (float64, error) {
	if len(eye) != eyePointCount {
		return 0, fmt.Errorf("eye has %d points: %w", len(eye), drowsiness.ErrInvalidPointCount)
	}
	return aspectRatio(eye[1], eye[5], eye[2], eye[4], eye[0], eye[3])
}

// MouthAspectRatio applies the same shape to the outer lip, with vertical
// pairs (2,10) and (4,8) and the horizontal pair (0,6).
func MouthAspectRatio(mouth []entity.Point) (float64, error) {
	if len(mouth) != mouthPointCount {
		return 0, fmt.Errorf("mouth has %d points: %w", len(mouth), drowsiness.ErrInvalidPointCount)
	}
	return aspectRatio(mouth[2], mouth[10], mouth[4], mouth[8], mouth[0], mouth[6])
}

func aspectRatio(a1, a2, b1, b2, c1, c2 entity.Point) (float64, error) {
	c := distance(c1, c2)
	if c == 0 {
		return 0, drowsiness.ErrDegenerateGeometry
	}
	return (distance(a1, a2) + distance(b1, b2)) / (2 * c), nil
}

func distance(p, q entity.Point) float64 {
	return floats.Distance([]float64{p.X, p.Y}, []float64{q.X, q.Y}, 2)
}
