// Package capture reads frames from a camera device and gates hand tracking on
// frame-to-frame motion.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/pkg/logger"
)

// Default capture settings.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the device yields no image.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera is a source of video frames. The caller closes every returned Mat.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// CameraOption configures a device camera.
type CameraOption func(*deviceCamera)

// WithResolution requests a capture resolution. Non-positive values are ignored.
func WithResolution(width, height int) CameraOption {
	return func(c *deviceCamera) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

type deviceCamera struct {
	deviceID int
	width    int
	height   int
	fps      int

	mu      sync.Mutex
	capture *gocv.VideoCapture
	log     logger.Logger
}

// NewCamera returns a Camera for the given device. It starts closed at DefaultFPS.
func NewCamera(deviceID int, opts ...CameraOption) Camera {
	c := &deviceCamera{
		deviceID: deviceID,
		width:    DefaultWidth,
		height:   DefaultHeight,
		fps:      DefaultFPS,
		log:      logger.Named("camera"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.deviceID, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))
	c.capture = vc

	c.log.Info(context.Background(), "camera opened",
		logger.Int("device", c.deviceID),
		logger.Int("width", c.width),
		logger.Int("height", c.height))
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &mat, nil
}

// SetFPS ignores non-positive values.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
