package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrames is returned by a ReplayCamera with nothing left to play.
var ErrNoFrames = errors.New("no frames available")

// ReplayCamera plays back a fixed frame sequence. It is used by tests and by
// the pipeline when no device is configured.
type ReplayCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	index  int
	loop   bool
	open   bool
	fps    int
}

// NewReplayCamera returns a closed ReplayCamera over frames. The frames stay
// owned by the caller; ReadFrame returns clones.
func NewReplayCamera(frames []*gocv.Mat, loop bool) *ReplayCamera {
	return &ReplayCamera{frames: frames, loop: loop, fps: DefaultFPS}
}

func (c *ReplayCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.index = 0
	return nil
}

func (c *ReplayCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *ReplayCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.index >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrNoFrames
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *ReplayCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *ReplayCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *ReplayCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Rewind restarts playback from the first frame.
func (c *ReplayCamera) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}
