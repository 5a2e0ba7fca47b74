package serial

import (
	"log/slog"

	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// cyclesPerByte is the transfer time with the internal 8192 Hz clock,
// in machine cycles.
const cyclesPerByte = 1024

// LogSink is a serial peer that logs outgoing bytes as text lines.
// Test ROMs print their results this way.
type LogSink struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	defaultRX byte // shifted in from the missing peer

	line   []byte
	output []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming completes transfers after the hardware byte time instead
// of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger routes completed lines to logger.
func WithLogger(logger *slog.Logger) LogSinkOption {
	return func(s *LogSink) { s.logger = logger }
}

// NewLogSink creates a new logging serial device. irq is called when a
// transfer completes and should request the serial interrupt.
func NewLogSink(irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *LogSink) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc | 0x7E
	}
	return 0xFF
}

// Tick advances a pending timed transfer by one machine cycle.
func (s *LogSink) Tick() {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown--
	if s.countdown <= 0 {
		s.completeTransfer()
	}
}

func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
	s.output = s.output[:0]
}

// Output returns every byte sent since the last reset.
func (s *LogSink) Output() string {
	return string(s.output)
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// only the internal clock drives a transfer without a peer
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	s.output = append(s.output, b)
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = cyclesPerByte
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Clear(7, s.sc)
	s.transferActive = false
	s.countdown = 0
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
