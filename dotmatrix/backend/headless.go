package backend

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

// Progress is logged once a second of emulated time.
const progressLogInterval = 60

// HeadlessBackend runs without a display, for automated testing and
// batch processing. It counts frames, optionally saves PNG snapshots,
// and signals quit once the frame budget is spent.
type HeadlessBackend struct {
	callbacks      Callbacks
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
}

// SnapshotConfig controls periodic frame snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // save a snapshot every N frames
	Directory string // where snapshots land
	ROMName   string // filename prefix
}

// NewHeadlessBackend returns a backend that quits after maxFrames
// frames. A non-positive maxFrames runs until something else stops the
// loop.
func NewHeadlessBackend(maxFrames int, snapshotConfig SnapshotConfig) *HeadlessBackend {
	return &HeadlessBackend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *HeadlessBackend) Init(config Config) error {
	h.callbacks = config.Callbacks

	slog.Info("running headless",
		"title", config.Title,
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update counts the frame, saves snapshots on the configured interval
// and signals quit when the budget is reached.
func (h *HeadlessBackend) Update(frame *video.FrameBuffer) error {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.frameCount%progressLogInterval == 0 {
		slog.Debug("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		// Save a final snapshot unless the interval just produced one.
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		slog.Info("headless run completed",
			"frames", h.frameCount,
			"fingerprint", fmt.Sprintf("%016x", Fingerprint(frame)))

		if h.callbacks.OnQuit != nil {
			h.callbacks.OnQuit()
		}
	}

	return nil
}

func (h *HeadlessBackend) Cleanup() error {
	return nil
}

// FrameCount returns the number of frames presented so far.
func (h *HeadlessBackend) FrameCount() int {
	return h.frameCount
}

// Fingerprint hashes a frame's pixels into a stable 64-bit value, for
// comparing rendered output across runs without storing images.
func Fingerprint(frame *video.FrameBuffer) uint64 {
	pixels := frame.ToSlice()
	raw := make([]byte, len(pixels)*4)
	for i, pixel := range pixels {
		binary.LittleEndian.PutUint32(raw[i*4:], pixel)
	}
	return xxhash.Sum64(raw)
}

// CreateSnapshotConfig builds a snapshot configuration from CLI
// parameters. An interval of zero disables snapshots entirely.
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "dotmatrix-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("creating snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return config, fmt.Errorf("creating snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	name := filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(name, filepath.Ext(name))

	return config, nil
}

func (h *HeadlessBackend) saveSnapshot(frame *video.FrameBuffer) {
	name := fmt.Sprintf("%s_frame_%d.png", h.snapshotConfig.ROMName, h.frameCount)
	path := filepath.Join(h.snapshotConfig.Directory, name)

	if err := SaveFramePNG(frame, path); err != nil {
		slog.Error("saving snapshot failed", "frame", h.frameCount, "error", err)
		return
	}
	slog.Debug("snapshot saved",
		"path", path,
		"fingerprint", fmt.Sprintf("%016x", Fingerprint(frame)))
}

// SaveFramePNG writes a frame to disk as a PNG image.
func SaveFramePNG(frame *video.FrameBuffer, path string) error {
	img := image.NewNRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for i, pixel := range frame.ToSlice() {
		// Frame pixels are packed ARGB.
		img.Pix[i*4+0] = uint8(pixel >> 16)
		img.Pix[i*4+1] = uint8(pixel >> 8)
		img.Pix[i*4+2] = uint8(pixel)
		img.Pix[i*4+3] = uint8(pixel >> 24)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
