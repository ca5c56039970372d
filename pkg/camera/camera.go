package camera

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"WakeGuard/pkg/vision"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

const warmup = time.Second

type ICamera interface {
	Read() (entity.VideoFrame, error)
	Close() error
}

type camera struct {
	log     *logrus.Logger
	capture *gocv.VideoCapture
	width   int
}

// Open starts capture from a device index ("0") or a stream URL and resizes
// every frame to width.
func Open(log *logrus.Logger, source string, width int) (ICamera, error) {
	var device interface{} = source
	if id, err := strconv.Atoi(source); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %q: %w", source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %q did not open", source)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, 640)
	capture.Set(gocv.VideoCaptureFrameHeight, 480)
	capture.Set(gocv.VideoCaptureFPS, 30)

	log.WithFields(logrus.Fields{
		"source": source,
		"width":  capture.Get(gocv.VideoCaptureFrameWidth),
		"height": capture.Get(gocv.VideoCaptureFrameHeight),
	}).Info("Camera opened, warming up")
	time.Sleep(warmup)

	return &camera{log: log, capture: capture, width: width}, nil
}

func (c *camera) Read() (entity.VideoFrame, error) {
	raw := gocv.NewMat()
	if ok := c.capture.Read(&raw); !ok {
		raw.Close()
		return nil, drowsiness.ErrFrameUnavailable
	}
	if raw.Empty() {
		raw.Close()
		return nil, drowsiness.ErrEmptyFrame
	}

	bgr, err := toBGR(raw)
	if err != nil {
		return nil, err
	}

	size := image.Pt(bgr.Cols(), bgr.Rows())
	target := vision.ScaleToWidth(size, c.width)
	if target != size {
		resized := gocv.NewMat()
		gocv.Resize(bgr, &resized, target, 0, 0, gocv.InterpolationLinear)
		bgr.Close()
		bgr = resized
	}

	return NewFrame(bgr), nil
}

func (c *camera) Close() error {
	return c.capture.Close()
}

// toBGR normalises grey and BGRA captures. It takes ownership of raw.
func toBGR(raw gocv.Mat) (gocv.Mat, error) {
	var code gocv.ColorConversionCode
	switch raw.Channels() {
	case 3:
		return raw, nil
	case 1:
		code = gocv.ColorGrayToBGR
	case 4:
		code = gocv.ColorBGRAToBGR
	default:
		channels := raw.Channels()
		raw.Close()
		return gocv.Mat{}, fmt.Errorf("%w: unsupported %d-channel frame", drowsiness.ErrFrameUnavailable, channels)
	}

	bgr := gocv.NewMat()
	gocv.CvtColor(raw, &bgr, code)
	raw.Close()
	return bgr, nil
}
