// Package terminal renders the emulator into a tcell screen, packing
// two pixels into every cell with half-block characters.
package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/beeks/go-dotmatrix/dotmatrix/backend"
	"github.com/beeks/go-dotmatrix/dotmatrix/memory"
	"github.com/beeks/go-dotmatrix/dotmatrix/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	// Terminals report key repeats, never releases. A key counts as
	// held until this long after its last event, slightly longer than
	// a typical repeat interval.
	keyTimeout = 100 * time.Millisecond

	minTermWidth  = width
	minTermHeight = height/2 + 2
)

// Backend draws frames with tcell and synthesizes joypad press and
// release edges from terminal key repeats.
type Backend struct {
	screen    tcell.Screen
	callbacks backend.Callbacks
	title     string
	running   bool
	signals   chan os.Signal

	keyStates map[memory.JoypadKey]time.Time // last event per key
	held      map[memory.JoypadKey]bool      // keys down in the previous frame
}

func New() *Backend {
	return &Backend{}
}

func (t *Backend) Init(config backend.Config) error {
	t.callbacks = config.Callbacks
	t.title = config.Title
	t.keyStates = make(map[memory.JoypadKey]time.Time)
	t.held = make(map[memory.JoypadKey]bool)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	t.screen = screen
	t.running = true

	t.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	return nil
}

// Update polls terminal events, reports key edges through the
// callbacks and draws the frame.
func (t *Backend) Update(frame *video.FrameBuffer) error {
	now := time.Now()

	select {
	case <-t.signals:
		t.requestQuit()
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.handleKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	t.emitKeyEdges(now)

	if !t.running {
		return nil
	}

	t.render(frame)
	t.screen.Show()
	return nil
}

func (t *Backend) Cleanup() error {
	signal.Stop(t.signals)
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) requestQuit() {
	t.running = false
	if t.callbacks.OnQuit != nil {
		t.callbacks.OnQuit()
	}
}

var specialKeys = map[tcell.Key]memory.JoypadKey{
	tcell.KeyUp:         memory.JoypadUp,
	tcell.KeyDown:       memory.JoypadDown,
	tcell.KeyLeft:       memory.JoypadLeft,
	tcell.KeyRight:      memory.JoypadRight,
	tcell.KeyEnter:      memory.JoypadStart,
	tcell.KeyBackspace:  memory.JoypadSelect,
	tcell.KeyBackspace2: memory.JoypadSelect,
}

var runeKeys = map[rune]memory.JoypadKey{
	'z': memory.JoypadA,
	'x': memory.JoypadB,
	'w': memory.JoypadUp,
	's': memory.JoypadDown,
	'a': memory.JoypadLeft,
	'd': memory.JoypadRight,
}

func (t *Backend) handleKeyEvent(ev *tcell.EventKey, now time.Time) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.requestQuit()
		return
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			t.requestQuit()
			return
		}
		if key, ok := runeKeys[ev.Rune()]; ok {
			t.pressKey(key, now)
		}
		return
	}

	if key, ok := specialKeys[ev.Key()]; ok {
		t.pressKey(key, now)
	}
}

func (t *Backend) pressKey(key memory.JoypadKey, now time.Time) {
	// The d-pad has exclusive directions; a new one displaces the rest.
	if key <= memory.JoypadDown {
		for held := range t.keyStates {
			if held <= memory.JoypadDown && held != key {
				delete(t.keyStates, held)
			}
		}
	}
	t.keyStates[key] = now
}

// emitKeyEdges compares held keys against the previous frame and
// reports the press and release transitions.
func (t *Backend) emitKeyEdges(now time.Time) {
	active := make(map[memory.JoypadKey]bool)
	for key, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) >= keyTimeout {
			delete(t.keyStates, key)
			continue
		}
		active[key] = true
		if !t.held[key] && t.callbacks.OnKey != nil {
			t.callbacks.OnKey(key, true)
		}
	}

	for key := range t.held {
		if !active[key] && t.callbacks.OnKey != nil {
			t.callbacks.OnKey(key, false)
		}
	}

	t.held = active
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small, need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		return
	}

	t.screen.Clear()
	t.drawTitle(termWidth)
	t.drawFrame(frame)
	t.drawHelp(termWidth, termHeight)
}

func (t *Backend) drawTitle(termWidth int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	title := fmt.Sprintf(" %s ", t.title)
	for i, ch := range title {
		if i >= termWidth {
			break
		}
		t.screen.SetContent(i, 0, ch, nil, style)
	}
}

func (t *Backend) drawHelp(termWidth, termHeight int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	help := " arrows/wasd=d-pad z=A x=B enter=start backspace=select q=quit "
	for i, ch := range help {
		if i >= termWidth {
			break
		}
		t.screen.SetContent(i, termHeight-1, ch, nil, style)
	}
}

func (t *Backend) drawFrame(frame *video.FrameBuffer) {
	pixels := frame.ToSlice()
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := pixelShade(pixels[y*width+x])
			bottom := 3
			if y+1 < height {
				bottom = pixelShade(pixels[(y+1)*width+x])
			}

			char, fg, bg := halfBlockCell(top, bottom)
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x, y/2+1, char, nil, style)
		}
	}
}

// pixelShade maps an ARGB frame pixel to a shade level, 0 black
// through 3 white.
func pixelShade(pixel uint32) int {
	switch video.GBColor(pixel) {
	case video.BlackColor:
		return 0
	case video.DarkGreyColor:
		return 1
	case video.LightGreyColor:
		return 2
	default:
		return 3
	}
}

var shadeColors = [4]tcell.Color{
	tcell.ColorBlack,
	tcell.ColorGray,
	tcell.ColorSilver,
	tcell.ColorWhite,
}

// halfBlockCell picks the character and colors showing two vertically
// stacked shades in one terminal cell.
func halfBlockCell(top, bottom int) (rune, tcell.Color, tcell.Color) {
	topColor := shadeColors[top]
	bottomColor := shadeColors[bottom]

	switch {
	case top == bottom:
		return '█', topColor, tcell.ColorDefault
	case top == 3 && bottom != 3:
		return '▄', bottomColor, topColor
	default:
		return '▀', topColor, bottomColor
	}
}
