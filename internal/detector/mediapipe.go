package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/pkg/logger"
)

const serviceScript = "mediapipe_service.py"

// ErrServiceNotFound is returned when the hand service script is not installed.
var ErrServiceNotFound = errors.New("detector: " + serviceScript + " not found")

// MediaPipeDetector sends JPEG frames to a MediaPipe Hands process and reads
// back one JSON line of hands per frame. The process starts on the first frame
// and stops after Config.IdleShutdown without frames.
type MediaPipeDetector struct {
	config Config
	script string
	python string
	log    logger.Logger

	mu   sync.Mutex
	proc *handService
	idle *time.Timer
}

// handService is a running service process.
type handService struct {
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Reader
}

// NewMediaPipeDetector locates the service and returns a detector for it.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	defaults := DefaultConfig()
	if config.MaxHands <= 0 {
		config.MaxHands = defaults.MaxHands
	}
	if config.IdleShutdown <= 0 {
		config.IdleShutdown = defaults.IdleShutdown
	}

	script := config.Script
	if script == "" {
		script = locate(installPaths(filepath.Join("scripts", serviceScript))...)
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}

	python := config.Python
	if python == "" {
		python = locate(installPaths(filepath.Join("venv", "bin", "python"))...)
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
		log:    logger.Named("detector"),
	}, nil
}

// Detect implements Detector.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.proc == nil {
		if d.proc, err = d.spawn(); err != nil {
			return nil, err
		}
	}
	if err := writeFrame(d.proc.in, buf.GetBytes()); err != nil {
		d.stopLocked()
		return nil, err
	}
	hands, err := readHands(d.proc.out)
	if err != nil {
		d.stopLocked()
		return nil, err
	}
	d.armIdle()

	return selectHands(hands, d.config.MinScore, d.config.MaxHands), nil
}

// Close stops the service process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) spawn() (*handService, error) {
	cmd := exec.Command(d.python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection", strconv.FormatFloat(d.config.MinScore, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTracking, 'f', 2, 64),
	)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("service stdin: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("service stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start hand service: %w", err)
	}

	d.log.Info(context.Background(), "hand service started",
		logger.String("python", d.python),
		logger.String("script", d.script),
		logger.Int("pid", cmd.Process.Pid))

	return &handService{cmd: cmd, in: in, out: bufio.NewReader(out)}, nil
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.proc == nil {
		return nil
	}
	proc := d.proc
	d.proc = nil

	_ = proc.in.Close()
	err := proc.cmd.Wait()
	d.log.Info(context.Background(), "hand service stopped", logger.Error(err))
	return err
}

func (d *MediaPipeDetector) armIdle() {
	if d.idle != nil {
		d.idle.Reset(d.config.IdleShutdown)
		return
	}
	d.idle = time.AfterFunc(d.config.IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.stopLocked(); err != nil {
			d.log.Warn(context.Background(), "idle shutdown", logger.Error(err))
		}
	})
}

// writeFrame sends one length-prefixed (uint32 big-endian) JPEG.
func writeFrame(w io.Writer, jpeg []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(jpeg)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if _, err := w.Write(jpeg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readHands reads one reply line.
func readHands(r *bufio.Reader) ([]wireHand, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read hands: %w", err)
	}
	var reply struct {
		Hands []wireHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		return nil, fmt.Errorf("parse hands: %w", err)
	}
	return reply.Hands, nil
}

// selectHands keeps the limit best-scoring hands at or above minScore.
func selectHands(hands []wireHand, minScore float64, limit int) []HandLandmarks {
	kept := make([]wireHand, 0, len(hands))
	for _, h := range hands {
		if h.Score >= minScore {
			kept = append(kept, h)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	out := make([]HandLandmarks, len(kept))
	for i, h := range kept {
		out[i] = h.landmarks()
	}
	return out
}

// installPaths lists where rel may live: the working directory and its
// parents, next to the binary, then ~/.mudra.
func installPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel), filepath.Join("..", "..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mudra", rel))
	}
	return paths
}

// locate returns the absolute form of the first existing path.
func locate(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

type wireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h wireHand) landmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	copy(lm.Points[:], h.Points)
	return lm
}
