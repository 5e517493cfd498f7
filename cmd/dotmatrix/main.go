package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/beeks/go-dotmatrix/dotmatrix"
	"github.com/beeks/go-dotmatrix/dotmatrix/backend"
	"github.com/beeks/go-dotmatrix/dotmatrix/backend/terminal"
	"github.com/beeks/go-dotmatrix/dotmatrix/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Description = "A Game Boy (DMG) emulator"
	app.Usage = "dotmatrix [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display, for testing and batch runs",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save a PNG snapshot every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory for frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "serial",
			Usage: "Print everything sent to the serial port on exit",
		},
		cli.BoolFlag{
			Name:  "turbo",
			Usage: "Run as fast as possible instead of pacing to 59.7 fps",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("emulator exited with error", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	if err := setupLogging(c); err != nil {
		return err
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := dotmatrix.NewWithFile(romPath)
	if err != nil {
		return err
	}

	var b backend.Backend
	limiter := timing.NewNoOpLimiter()

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}
		snapshots, err := backend.CreateSnapshotConfig(
			c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return err
		}
		b = backend.NewHeadlessBackend(frames, snapshots)
	} else {
		b = terminal.New()
		if !c.Bool("turbo") {
			ticker := timing.NewTickerLimiter()
			defer ticker.Stop()
			limiter = ticker
		}
	}

	running := true
	err = b.Init(backend.Config{
		Title: fmt.Sprintf("dotmatrix - %s", emu.Title()),
		Callbacks: backend.Callbacks{
			OnQuit: func() { running = false },
			OnKey:  emu.HandleKey,
		},
	})
	if err != nil {
		return err
	}

	for running {
		emu.RunUntilFrame()
		if err := b.Update(emu.CurrentFrame()); err != nil {
			b.Cleanup()
			return err
		}
		limiter.WaitForNextFrame()
	}

	if err := b.Cleanup(); err != nil {
		return err
	}

	if c.Bool("serial") {
		fmt.Print(string(emu.SerialOutput()))
	}
	if emu.Faulted() {
		return errors.New("CPU locked up during execution")
	}
	return nil
}

// setupLogging picks the log destination for the run mode. The
// terminal backend owns the tty, so logs cannot go to stderr there.
func setupLogging(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}

	out := io.Writer(os.Stderr)
	if !c.Bool("headless") {
		if c.Bool("debug") {
			file, err := os.OpenFile("dotmatrix.log",
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			out = file
		} else {
			out = io.Discard
		}
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
