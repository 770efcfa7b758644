package server

import (
	"fmt"
	"image"
	"image/color"
	"net/http"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/session"
)

const (
	streamInterval = time.Second / 15
	streamBoundary = "frame"
)

var overlayColor = color.RGBA{R: 255, G: 215, B: 0, A: 255}

// StreamHandler serves the camera as MJPEG, with an optional status line
// drawn in the top-left corner.
type StreamHandler struct {
	camera  capture.Camera
	overlay func() string
}

// NewStreamHandler returns a handler for camera. overlay may be nil.
func NewStreamHandler(camera capture.Camera, overlay func() string) *StreamHandler {
	return &StreamHandler{camera: camera, overlay: overlay}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.camera.IsOpen() {
		http.Error(w, "Camera not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, ok := h.nextJPEG()
		if !ok {
			continue
		}
		if err := writePart(w, jpeg); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// nextJPEG reads, annotates and encodes one frame.
func (h *StreamHandler) nextJPEG() ([]byte, bool) {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return nil, false
	}
	defer frame.Close()

	if h.overlay != nil {
		if text := h.overlay(); text != "" {
			gocv.PutText(frame, text, image.Pt(10, 28), gocv.FontHersheySimplex, 0.7, overlayColor, 2)
		}
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, false
	}
	defer buf.Close()

	// The native buffer is released on return.
	return append([]byte(nil), buf.GetBytes()...), true
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	header := fmt.Sprintf("--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", streamBoundary, len(jpeg))
	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}

// StatusLine renders the part of a session worth showing on the preview:
// score, streak multiplier and the combo being tracked.
func StatusLine(st session.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d pts", st.Score)
	if st.Streak.Count > 0 {
		fmt.Fprintf(&b, "  streak %d x%.1f", st.Streak.Count, st.Streak.Multiplier)
	}
	if st.Active != nil {
		fmt.Fprintf(&b, "  %s %d/%d", st.Active.Name, st.Active.Matched, len(st.Active.Sequence))
	}
	return b.String()
}
