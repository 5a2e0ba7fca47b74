package jeebie

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-jeebie-cgb/jeebie/cartridge"
	"github.com/valerio/go-jeebie-cgb/jeebie/cpu"
	"github.com/valerio/go-jeebie-cgb/jeebie/memory"
	"github.com/valerio/go-jeebie-cgb/jeebie/serial"
	"github.com/valerio/go-jeebie-cgb/jeebie/timing"
	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

// ErrInvalidBootROM is returned when a boot ROM image has the wrong size.
var ErrInvalidBootROM = errors.New("invalid boot ROM")

// ModeSelect controls how the hardware mode is chosen when a cartridge is
// loaded.
type ModeSelect uint8

const (
	// ModeAuto picks color mode unless the cartridge header is legacy only.
	ModeAuto ModeSelect = iota
	// ModeLegacy always runs the monochrome feature set.
	ModeLegacy
)

func (m ModeSelect) String() string {
	if m == ModeLegacy {
		return "dmg"
	}
	return "auto"
}

// ParseModeSelect converts a command line mode name.
func ParseModeSelect(name string) (ModeSelect, error) {
	switch name {
	case "", "auto":
		return ModeAuto, nil
	case "dmg", "legacy":
		return ModeLegacy, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode %q", name)
}

type config struct {
	logger    *slog.Logger
	mode      ModeSelect
	serialLog bool
}

// Option configures an Emulator.
type Option func(*config)

// WithLogger routes every component log to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMode sets how the hardware mode is selected.
func WithMode(mode ModeSelect) Option {
	return func(c *config) { c.mode = mode }
}

// WithSerialLog enables or disables logging of serial output lines.
func WithSerialLog(enabled bool) Option {
	return func(c *config) { c.serialLog = enabled }
}

// Emulator is the whole machine: the bus with its peripherals and the CPU.
type Emulator struct {
	bus *memory.Bus
	cpu *cpu.CPU

	logger  *slog.Logger
	limiter timing.Limiter
	serial  *serial.LogSink

	cycles uint64
}

// New returns a powered-off machine with no cartridge.
func New(opts ...Option) *Emulator {
	cfg := config{
		logger:    slog.Default(),
		serialLog: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Emulator{
		logger:  cfg.logger,
		limiter: timing.NewNoOpLimiter(),
	}

	serialLogger := cfg.logger
	if !cfg.serialLog {
		serialLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	busOpts := []memory.Option{
		memory.WithLogger(cfg.logger),
		memory.WithSerial(func(irq func()) memory.SerialPort {
			e.serial = serial.NewLogSink(irq, serial.WithLogger(serialLogger))
			return e.serial
		}),
	}
	if cfg.mode == ModeLegacy {
		busOpts = append(busOpts, memory.WithLegacyOnly())
	}

	e.bus = memory.New(busOpts...)
	e.cpu = cpu.New(e.bus)
	return e
}

// NewWithFile creates a new emulator and loads the ROM image at path.
func NewWithFile(path string, opts ...Option) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	e := New(opts...)
	e.logger.Info("ROM read", "path", path, "bytes", len(data))
	e.LoadCartridge(cart)
	return e, nil
}

// LoadBootROM maps a boot ROM image. It must be called before
// LoadCartridge, which restarts the machine.
func (e *Emulator) LoadBootROM(rom []byte) error {
	if err := e.bus.LoadBootROM(rom); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBootROM, err)
	}
	e.cpu.Reset()
	return nil
}

// LoadCartridge inserts cart and powers the machine on again.
func (e *Emulator) LoadCartridge(cart cartridge.Cartridge) {
	e.bus.LoadCartridge(cart)
	e.cpu.Reset()
	e.cycles = 0
}

// SetFrameLimiter sets the pacing applied after every RunUntilFrame. A nil
// limiter disables pacing.
func (e *Emulator) SetFrameLimiter(limiter timing.Limiter) {
	if limiter == nil {
		limiter = timing.NewNoOpLimiter()
	}
	e.limiter = limiter
}

// Tick advances the machine by one external cycle: one CPU step, or two in
// double speed, then the transfer engine, the video unit and the serial
// port once each. After a fatal fault every call returns the same error
// without advancing.
func (e *Emulator) Tick() error {
	if err := e.bus.Err(); err != nil {
		return err
	}

	e.cpu.Tick()
	if e.bus.DoubleSpeed() {
		e.cpu.Tick()
	}
	e.bus.Tick()
	e.cycles++

	if err := e.bus.Err(); err != nil {
		e.logFault(err)
		return err
	}
	return nil
}

// RunUntilFrame ticks until the video unit completes a frame. With the LCD
// off it returns after one frame worth of cycles.
func (e *Emulator) RunUntilFrame() error {
	start := e.bus.GPU.Frames()
	for i := 0; i < video.CyclesPerFrame; i++ {
		if err := e.Tick(); err != nil {
			return err
		}
		if e.bus.GPU.Frames() != start {
			break
		}
	}
	e.limiter.WaitForNextFrame()
	return nil
}

// RunFrames runs n frames, stopping at the first fault.
func (e *Emulator) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := e.RunUntilFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// Frame returns the last completed frame.
func (e *Emulator) Frame() *video.FrameBuffer {
	return e.bus.GPU.Frame()
}

// Frames returns the number of frames completed since power on.
func (e *Emulator) Frames() uint64 {
	return e.bus.GPU.Frames()
}

// Cycles returns the number of external cycles run since power on.
func (e *Emulator) Cycles() uint64 {
	return e.cycles
}

// Press holds key down, requesting the joypad interrupt if it was released.
func (e *Emulator) Press(key memory.JoypadKey) {
	e.bus.Joypad.Press(key)
}

// Release lets go of key.
func (e *Emulator) Release(key memory.JoypadKey) {
	e.bus.Joypad.Release(key)
}

// SerialOutput returns every byte written to the serial port.
func (e *Emulator) SerialOutput() string {
	if e.serial == nil {
		return ""
	}
	return e.serial.Output()
}

// Mode returns the active hardware mode.
func (e *Emulator) Mode() memory.Mode {
	return e.bus.Mode()
}

// Err returns the fatal fault that stopped the machine, if any.
func (e *Emulator) Err() error {
	return e.bus.Err()
}

// Bus exposes the system bus for inspection.
func (e *Emulator) Bus() *memory.Bus {
	return e.bus
}

// CPU exposes the processor for inspection.
func (e *Emulator) CPU() *cpu.CPU {
	return e.cpu
}
