// Package serial provides a one-sided serial port: bytes the program shifts
// out are logged and captured, nothing is ever connected on the far end.
// Hardware-accuracy test ROMs report their verdict this way.
package serial

import (
	"log/slog"

	"github.com/beeks/go-dotmatrix/dotmatrix/addr"
	"github.com/beeks/go-dotmatrix/dotmatrix/bit"
)

// transferCycles is the T-cycle cost of one byte at the DMG internal clock
// (8192 Hz bit clock, 8 bits).
const transferCycles = 4096

// captureLimit bounds the capture buffer. Test ROM output is tiny; a
// runaway writer just stops being recorded.
const captureLimit = 64 * 1024

// LogSink owns SB and SC. Transfers started on the internal clock complete
// against a phantom peer that always sends 0xFF; outgoing bytes are
// buffered into lines and logged.
type LogSink struct {
	irqHandler func()
	sb, sc     uint8
	active     bool
	remaining  int
	logger     *slog.Logger

	immediate bool
	peerByte  uint8 // value SB holds after a transfer, no peer means 0xFF

	line     []byte
	captured []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming makes transfers take the hardware 4096 T-cycles per byte
// instead of completing on the next tick.
func WithFixedTiming() LogSinkOption {
	return func(s *LogSink) { s.immediate = false }
}

// WithLogger routes line output somewhere other than the default logger.
func WithLogger(logger *slog.Logger) LogSinkOption {
	return func(s *LogSink) { s.logger = logger }
}

// NewLogSink builds the sink. irq is invoked on every completed transfer
// and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		peerByte:   0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		panic("serial: read outside SB/SC")
	}
}

func (s *LogSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial: write outside SB/SC")
	}
}

// Tick drains the countdown of a fixed-timing transfer.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.active {
		return
	}
	s.remaining -= cycles
	if s.remaining <= 0 {
		s.completeTransfer()
	}
}

// Output returns everything transmitted so far.
func (s *LogSink) Output() []byte {
	return s.captured
}

func (s *LogSink) maybeStartTransfer() {
	if s.active {
		return
	}
	// SC bit 7 starts a transfer, bit 0 selects the internal clock. With
	// no peer, an external-clock transfer never gets a pulse, so only the
	// internal-clock case runs.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.record(s.sb)

	if s.immediate {
		s.completeTransfer()
		return
	}
	s.active = true
	s.remaining = transferCycles
}

func (s *LogSink) completeTransfer() {
	s.sb = s.peerByte
	s.sc = bit.Clear(7, s.sc)
	s.active = false
	s.remaining = 0
	if s.irqHandler != nil {
		s.irqHandler()
	}
}

// record captures the byte and flushes full lines to the log.
func (s *LogSink) record(b uint8) {
	if len(s.captured) < captureLimit {
		s.captured = append(s.captured, b)
	}

	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
		return
	}
	s.line = append(s.line, b)
}
