package render

import (
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/camera"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

type Options struct {
	ShowFPS           bool
	ShowAllLandmarks  bool
	ShowEyeContours   bool
	ShowMouthContours bool
	VisualAlerts      bool
}

var (
	green  = color.RGBA{G: 255, A: 255}
	red    = color.RGBA{R: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	blue   = color.RGBA{B: 255, A: 255}
	orange = color.RGBA{R: 255, G: 165, A: 255}
)

const font = gocv.FontHersheySimplex

// Window draws the status overlay and shows it in a desktop window.
type Window struct {
	window *gocv.Window
	opts   Options
}

func NewWindow(title string, opts Options) *Window {
	return &Window{window: gocv.NewWindow(title), opts: opts}
}

// Render returns true once the user presses q or closes the window.
func (w *Window) Render(frame entity.VideoFrame, status entity.FrameStatus) bool {
	mf, ok := frame.(camera.MatFrame)
	if !ok {
		return false
	}

	img := mf.Mat()
	w.draw(img, status)

	w.window.IMShow(*img)
	key := w.window.WaitKey(1)
	return key == 'q' || key == 'Q'
}

func (w *Window) Close() error {
	return w.window.Close()
}

func (w *Window) draw(img *gocv.Mat, status entity.FrameStatus) {
	size := image.Pt(img.Cols(), img.Rows())

	for _, face := range status.Faces {
		w.drawFace(img, face, status.AlarmActive())
	}

	if status.AlarmActive() && w.opts.VisualAlerts {
		drawAlarmOverlay(img, size)
	}

	y := 30
	line := func(text string, c color.RGBA) {
		gocv.PutText(img, text, image.Pt(10, y), font, 0.6, c, 2)
		y += 25
	}

	if w.opts.ShowFPS {
		line(fmt.Sprintf("FPS: %.1f", status.FPS), white)
	}

	primary, ok := status.Primary()
	switch {
	case !ok:
		line("No face detected", orange)
	case primary.Mode == entity.ModeFallback:
		line(fmt.Sprintf("Eyes detected: %d (fallback)", derefInt(primary.EyeCount)), yellow)
	case primary.EAR != nil:
		c := green
		if primary.EyesClosed {
			c = red
		}
		line(fmt.Sprintf("EAR: %.2f", *primary.EAR), c)
		if primary.MAR != nil {
			line(fmt.Sprintf("MAR: %.2f", *primary.MAR), white)
		}
	}

	line(fmt.Sprintf("Closed frames: %d", status.ClosedEyeFrames), white)

	if status.YawnActive() {
		gocv.PutText(img, "YAWNING", image.Pt(size.X-150, 30), font, 0.7, orange, 2)
	}
	if status.AlarmActive() {
		text := "DROWSINESS ALERT!"
		ts := gocv.GetTextSize(text, font, 1.2, 3)
		gocv.PutText(img, text, image.Pt((size.X-ts.X)/2, size.Y/2), font, 1.2, red, 3)
	}
}

func (w *Window) drawFace(img *gocv.Mat, face entity.FaceStatus, alarm bool) {
	c := green
	if alarm {
		c = red
	}
	gocv.Rectangle(img, face.Bounds, c, 2)

	if face.Mode == entity.ModeFallback {
		for _, eye := range face.EyeRegions {
			gocv.Rectangle(img, eye, yellow, 1)
		}
		return
	}

	if w.opts.ShowAllLandmarks {
		for _, p := range face.Landmarks {
			gocv.Circle(img, toPoint(p), 1, blue, -1)
		}
	}
	if w.opts.ShowEyeContours {
		drawContour(img, face.LeftEye, green)
		drawContour(img, face.RightEye, green)
	}
	if w.opts.ShowMouthContours {
		mouth := green
		if face.MouthOpen {
			mouth = orange
		}
		drawContour(img, face.Mouth, mouth)
	}
}

func drawAlarmOverlay(img *gocv.Mat, size image.Point) {
	overlay := img.Clone()
	defer overlay.Close()

	gocv.Rectangle(&overlay, image.Rectangle{Max: size}, red, -1)
	gocv.AddWeighted(overlay, 0.3, *img, 0.7, 0, img)
	gocv.Rectangle(img, image.Rectangle{Max: size}, red, 10)
}

func drawContour(img *gocv.Mat, points []entity.Point, c color.RGBA) {
	if len(points) < 2 {
		return
	}
	for i := range points {
		next := points[(i+1)%len(points)]
		gocv.Line(img, toPoint(points[i]), toPoint(next), c, 1)
	}
}

func toPoint(p entity.Point) image.Point {
	return image.Pt(int(p.X+0.5), int(p.Y+0.5))
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
