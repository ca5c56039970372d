// Package vision holds the detector parameters and the geometry shared by
// the face and eye detectors.
package vision

import "image"

// MinFaceSide drops detections too small to carry usable eye detail.
const MinFaceSide = 20

type CascadeParams struct {
	ScaleFactor  float64
	MinNeighbors int
	MinSize      image.Point
}

var (
	FaceCascade = CascadeParams{ScaleFactor: 1.1, MinNeighbors: 5, MinSize: image.Pt(30, 30)}
	EyeCascade  = CascadeParams{ScaleFactor: 1.1, MinNeighbors: 10, MinSize: image.Pt(15, 15)}
)

// ClampFaces intersects every rectangle with the frame and keeps those at
// least MinFaceSide on both sides, preserving detector order.
func ClampFaces(rects []image.Rectangle, frame image.Point) []image.Rectangle {
	bounds := image.Rectangle{Max: frame}
	faces := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		r = r.Canon().Intersect(bounds)
		if r.Dx() < MinFaceSide || r.Dy() < MinFaceSide {
			continue
		}
		faces = append(faces, r)
	}
	return faces
}

// ClampRegion intersects r with the frame. ok is false when nothing is left.
func ClampRegion(r image.Rectangle, frame image.Point) (image.Rectangle, bool) {
	r = r.Canon().Intersect(image.Rectangle{Max: frame})
	return r, !r.Empty()
}

// ScaleToWidth keeps the aspect ratio of size at the given width. A
// non-positive width leaves size unchanged.
func ScaleToWidth(size image.Point, width int) image.Point {
	if width <= 0 || size.X <= 0 || size.X == width {
		return size
	}
	return image.Pt(width, size.Y*width/size.X)
}

// Offset moves rects found inside a crop back into frame coordinates.
func Offset(rects []image.Rectangle, origin image.Point) []image.Rectangle {
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = r.Add(origin)
	}
	return out
}
