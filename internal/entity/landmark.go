package entity

import "image"

const LandmarkCount = 68

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet holds the 68-point facial layout in frame coordinates.
type LandmarkSet [LandmarkCount]Point

func (l *LandmarkSet) RightEye() []Point {
	return l[36:42]
}

func (l *LandmarkSet) LeftEye() []Point {
	return l[42:48]
}

// Mouth returns the 12-point outer lip contour.
func (l *LandmarkSet) Mouth() []Point {
	return l[48:60]
}

// Translate shifts every point by the origin of a crop, turning crop
// coordinates into frame coordinates.
func (l LandmarkSet) Translate(origin image.Point) LandmarkSet {
	for i := range l {
		l[i].X += float64(origin.X)
		l[i].Y += float64(origin.Y)
	}
	return l
}

func (l *LandmarkSet) Points() []Point {
	return l[:]
}

func LandmarkSetFromPairs(pairs [][2]float64) (LandmarkSet, bool) {
	var set LandmarkSet
	if len(pairs) != LandmarkCount {
		return set, false
	}
	for i, p := range pairs {
		set[i] = Point{X: p[0], Y: p[1]}
	}
	return set, true
}
