package websocketPkg

import (
	"WakeGuard/internal/api/drowsiness"
	"WakeGuard/internal/entity"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type ILandmarkClient interface {
	Landmarks(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) (entity.LandmarkSet, error)
	IsConnected() bool
	Close()
}

type landmarkResponse struct {
	Landmarks [][2]float64 `json:"landmarks"`
	Error     string       `json:"error"`
}

type landmarkClient struct {
	log           *logrus.Logger
	url           string
	retryInterval time.Duration
	timeout       time.Duration

	mu       sync.Mutex
	conn     *websocket.Conn
	lastDial time.Time
	failures int
}

// NewLandmarkClient returns a client for the remote 68-point landmark model
// at url. The first connection is made lazily on the first face.
func NewLandmarkClient(log *logrus.Logger, url string, retryInterval, timeout time.Duration) ILandmarkClient {
	return &landmarkClient{
		log:           log,
		url:           url,
		retryInterval: retryInterval,
		timeout:       timeout,
	}
}

func (c *landmarkClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *landmarkClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
		c.conn = nil
	}
}

// Landmarks sends the JPEG crop of face and returns the points in frame
// coordinates. Every failure wraps ErrLandmarksOffline or comes from the
// remote model, so callers can fall back.
func (c *landmarkClient) Landmarks(ctx context.Context, frame entity.VideoFrame, face image.Rectangle) (entity.LandmarkSet, error) {
	if c.url == "" {
		return entity.LandmarkSet{}, drowsiness.ErrLandmarksOffline
	}

	crop, err := frame.CropJPEG(face)
	if err != nil {
		return entity.LandmarkSet{}, fmt.Errorf("failed to encode face crop: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connection()
	if err != nil {
		return entity.LandmarkSet{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.BinaryMessage, crop); err != nil {
		c.drop(err)
		return entity.LandmarkSet{}, fmt.Errorf("%w: send: %v", drowsiness.ErrLandmarksOffline, err)
	}

	_ = conn.SetReadDeadline(deadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.drop(err)
		return entity.LandmarkSet{}, fmt.Errorf("%w: receive: %v", drowsiness.ErrLandmarksOffline, err)
	}

	var resp landmarkResponse
	if err := jsoniter.Unmarshal(message, &resp); err != nil {
		return entity.LandmarkSet{}, fmt.Errorf("failed to decode landmark response: %w", err)
	}
	if resp.Error != "" {
		return entity.LandmarkSet{}, fmt.Errorf("%w: %s", drowsiness.ErrUnevaluableFace, resp.Error)
	}

	set, ok := entity.LandmarkSetFromPairs(resp.Landmarks)
	if !ok {
		return entity.LandmarkSet{}, fmt.Errorf("%w: got %d points", drowsiness.ErrInvalidPointCount, len(resp.Landmarks))
	}

	return set.Translate(face.Min), nil
}

// connection dials at most once per retry interval. Callers hold mu.
func (c *landmarkClient) connection() (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	if !c.lastDial.IsZero() && time.Since(c.lastDial) < c.retryInterval {
		return nil, drowsiness.ErrLandmarksOffline
	}
	c.lastDial = time.Now()

	dialer := websocket.Dialer{HandshakeTimeout: c.timeout}
	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		c.failures++
		fields := logrus.Fields{
			"url":      c.url,
			"attempts": c.failures,
			"error":    err.Error(),
		}
		if c.failures == 1 {
			c.log.WithFields(fields).Warn("Landmark service unreachable, retrying in the background")
		} else {
			c.log.WithFields(fields).Debug("Landmark service still unreachable")
		}
		return nil, fmt.Errorf("%w: %v", drowsiness.ErrLandmarksOffline, err)
	}

	c.log.WithField("url", c.url).Info("Connected to landmark service")
	c.failures = 0
	c.conn = conn
	return conn, nil
}

// drop forgets a broken connection. Callers hold mu.
func (c *landmarkClient) drop(err error) {
	if c.conn == nil {
		return
	}
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		c.log.WithField("error", err.Error()).Warn("Landmark connection lost")
	}
	c.conn.Close()
	c.conn = nil
	c.lastDial = time.Now()
}
