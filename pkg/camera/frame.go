package camera

import (
	"WakeGuard/pkg/vision"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MatFrame is implemented by frames backed by OpenCV matrices. Detectors and
// the renderer type-assert to it.
type MatFrame interface {
	Mat() *gocv.Mat
	Gray() gocv.Mat
}

// Frame is one BGR frame plus its greyscale copy.
type Frame struct {
	color gocv.Mat
	gray  gocv.Mat
}

// NewFrame takes ownership of color and derives the grey copy.
func NewFrame(color gocv.Mat) *Frame {
	gray := gocv.NewMat()
	gocv.CvtColor(color, &gray, gocv.ColorBGRToGray)
	return &Frame{color: color, gray: gray}
}

func (f *Frame) Mat() *gocv.Mat {
	return &f.color
}

func (f *Frame) Gray() gocv.Mat {
	return f.gray
}

func (f *Frame) Size() image.Point {
	return image.Pt(f.color.Cols(), f.color.Rows())
}

func (f *Frame) EncodeJPEG() ([]byte, error) {
	return encodeJPEG(f.color)
}

func (f *Frame) CropJPEG(r image.Rectangle) ([]byte, error) {
	region, ok := vision.ClampRegion(r, f.Size())
	if !ok {
		return nil, fmt.Errorf("crop %v lies outside the frame", r)
	}

	crop := f.color.Region(region)
	defer crop.Close()
	return encodeJPEG(crop)
}

func (f *Frame) Close() error {
	if err := f.gray.Close(); err != nil {
		return err
	}
	return f.color.Close()
}

func encodeJPEG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
