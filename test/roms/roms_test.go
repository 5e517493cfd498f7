// Package roms runs hardware test ROMs against the emulator core and
// checks the verdict they report over the serial port. The ROMs are not
// part of the repository: unpack a game-boy-test-roms release under
// test-roms/, or the tests skip.
package roms

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/beeks/go-dotmatrix/dotmatrix"
	"github.com/beeks/go-dotmatrix/dotmatrix/backend"
)

const baseDir = "../../test-roms/game-boy-test-roms"

type verdict int

const (
	verdictRunning verdict = iota
	verdictPass
	verdictFail
)

// blarggVerdict scans the serial text for the pass or fail line the
// blargg ROMs print when they finish.
func blarggVerdict(output []byte) verdict {
	switch {
	case bytes.Contains(output, []byte("Passed")):
		return verdictPass
	case bytes.Contains(output, []byte("Failed")):
		return verdictFail
	}
	return verdictRunning
}

// mooneyeVerdict checks for the mooneye completion signature: the
// Fibonacci bytes 3 5 8 13 21 34 on success, 0x42 six times on failure.
func mooneyeVerdict(output []byte) verdict {
	switch {
	case bytes.Contains(output, []byte{3, 5, 8, 13, 21, 34}):
		return verdictPass
	case bytes.Contains(output, []byte{0x42, 0x42, 0x42, 0x42, 0x42, 0x42}):
		return verdictFail
	}
	return verdictRunning
}

type romTestCase struct {
	name      string
	romPath   string
	maxFrames uint64
	verdict   func([]byte) verdict
}

func blarggCPUTests() []romTestCase {
	individual := filepath.Join(baseDir, "blargg/cpu_instrs/individual")

	tests := []romTestCase{
		{name: "01-special", maxFrames: 500},
		{name: "02-interrupts", maxFrames: 500},
		{name: "03-op sp,hl", maxFrames: 500},
		{name: "04-op r,imm", maxFrames: 500},
		{name: "05-op rp", maxFrames: 500},
		{name: "06-ld r,r", maxFrames: 500},
		{name: "07-jr,jp,call,ret,rst", maxFrames: 500},
		{name: "08-misc instrs", maxFrames: 500},
		{name: "09-op r,r", maxFrames: 1000},
		{name: "10-bit ops", maxFrames: 1000},
		{name: "11-op a,(hl)", maxFrames: 1500},
	}
	for i := range tests {
		tests[i].romPath = filepath.Join(individual, tests[i].name+".gb")
		tests[i].verdict = blarggVerdict
	}
	return tests
}

func mooneyeTests() []romTestCase {
	acceptance := filepath.Join(baseDir, "mooneye-test-suite/acceptance")

	names := []string{
		"timer/tim00",
		"timer/tim01",
		"timer/tim10",
		"timer/tim11",
		"timer/tim00_div_trigger",
		"timer/tim01_div_trigger",
		"timer/tim10_div_trigger",
		"timer/tim11_div_trigger",
		"timer/div_write",
		"ei_timing",
	}

	tests := make([]romTestCase, 0, len(names))
	for _, name := range names {
		tests = append(tests, romTestCase{
			name:      filepath.Base(name),
			romPath:   filepath.Join(acceptance, name+".gb"),
			maxFrames: 120,
			verdict:   mooneyeVerdict,
		})
	}
	return tests
}

func runROMTest(t *testing.T, tc romTestCase) {
	if _, err := os.Stat(tc.romPath); os.IsNotExist(err) {
		t.Skipf("ROM file not found: %s", tc.romPath)
	}

	emu, err := dotmatrix.NewWithFile(tc.romPath)
	if err != nil {
		t.Fatalf("Failed to create emulator: %v", err)
	}

	for emu.FrameCount() < tc.maxFrames {
		emu.RunUntilFrame()

		if emu.Faulted() {
			saveFinalScreen(t, emu)
			t.Fatalf("CPU locked up after %d frames; serial output: %q",
				emu.FrameCount(), emu.SerialOutput())
		}

		switch tc.verdict(emu.SerialOutput()) {
		case verdictPass:
			t.Logf("passed after %d frames, screen %016x",
				emu.FrameCount(), backend.Fingerprint(emu.CurrentFrame()))
			return
		case verdictFail:
			saveFinalScreen(t, emu)
			t.Fatalf("ROM reported failure after %d frames; serial output:\n%s",
				emu.FrameCount(), emu.SerialOutput())
		}
	}

	saveFinalScreen(t, emu)
	t.Fatalf("no verdict after %d frames; serial output: %q",
		tc.maxFrames, emu.SerialOutput())
}

func saveFinalScreen(t *testing.T, emu *dotmatrix.DMG) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "final_screen.png")
	if err := backend.SaveFramePNG(emu.CurrentFrame(), path); err != nil {
		t.Logf("could not save the final screen: %v", err)
		return
	}
	t.Logf("final screen saved to %s", path)
}

func TestBlarggCPUInstrs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ROM tests in short mode")
	}
	for _, tc := range blarggCPUTests() {
		t.Run(tc.name, func(t *testing.T) {
			runROMTest(t, tc)
		})
	}
}

func TestBlarggInstrTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ROM tests in short mode")
	}
	runROMTest(t, romTestCase{
		name:      "instr_timing",
		romPath:   filepath.Join(baseDir, "blargg/instr_timing/instr_timing.gb"),
		maxFrames: 1200,
		verdict:   blarggVerdict,
	})
}

func TestMooneyeAcceptance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ROM tests in short mode")
	}
	for _, tc := range mooneyeTests() {
		t.Run(tc.name, func(t *testing.T) {
			runROMTest(t, tc)
		})
	}
}
