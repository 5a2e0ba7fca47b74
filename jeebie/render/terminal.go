package render

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-jeebie-cgb/jeebie/debug"
	"github.com/valerio/go-jeebie-cgb/jeebie/input"
	"github.com/valerio/go-jeebie-cgb/jeebie/input/action"
	"github.com/valerio/go-jeebie-cgb/jeebie/input/event"
	"github.com/valerio/go-jeebie-cgb/jeebie/memory"
	"github.com/valerio/go-jeebie-cgb/jeebie/timing"
	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

const (
	// two pixel rows share one text row
	textRows = video.FramebufferHeight / 2

	panelX     = video.FramebufferWidth + 2
	panelLines = 12

	// terminals only report key repeats, so a key counts as held until
	// no repeat arrived for keyTimeout
	keyTimeout = 150 * time.Millisecond
)

// Source is what the terminal viewer drives: the emulator or a test
// pattern.
type Source interface {
	RunUntilFrame() error
	Frame() *video.FrameBuffer
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

// DebugSource is implemented by sources able to report machine state.
type DebugSource interface {
	ExtractDebugData() *debug.CompleteDebugData
}

type TerminalOption func(*TerminalRenderer)

// WithScreen uses screen instead of the terminal. The screen must not be
// initialized yet.
func WithScreen(screen tcell.Screen) TerminalOption {
	return func(t *TerminalRenderer) { t.screen = screen }
}

// WithLimiter sets the frame pacing.
func WithLimiter(limiter timing.Limiter) TerminalOption {
	return func(t *TerminalRenderer) { t.limiter = limiter }
}

// WithDebugPanel shows registers and disassembly next to the screen.
func WithDebugPanel() TerminalOption {
	return func(t *TerminalRenderer) { t.debugPanel = true }
}

// WithSnapshotDir sets where snapshots taken with F9 are written.
func WithSnapshotDir(dir string) TerminalOption {
	return func(t *TerminalRenderer) { t.snapshotDir = dir }
}

// TerminalRenderer shows frames with half-block characters, two pixels per
// cell, and feeds key presses back to the source.
type TerminalRenderer struct {
	screen  tcell.Screen
	source  Source
	inputs  *input.Manager
	limiter timing.Limiter

	// last key repeat per held console button
	held   map[action.Action]time.Time
	active map[action.Action]bool

	running     bool
	paused      bool
	stepping    bool
	debugPanel  bool
	snapshotDir string
	frames      int
}

func NewTerminalRenderer(src Source, opts ...TerminalOption) (*TerminalRenderer, error) {
	t := &TerminalRenderer{
		source:  src,
		inputs:  input.NewManager(src),
		held:    make(map[action.Action]time.Time),
		active:  make(map[action.Action]bool),
		running: true,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if t.limiter == nil {
		t.limiter = timing.NewTickerLimiter()
	}

	t.inputs.On(action.EmulatorQuit, event.Press, func() { t.running = false })
	t.inputs.On(action.EmulatorPauseToggle, event.Press, func() {
		t.paused = !t.paused
		t.limiter.Reset()
	})
	t.inputs.On(action.EmulatorStepFrame, event.Press, func() { t.stepping = true })
	t.inputs.On(action.EmulatorSnapshot, event.Press, t.snapshot)

	return t, nil
}

// Run shows frames until quit is requested, a signal arrives or the source
// fails.
func (t *TerminalRenderer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		t.screen.Fini()
		if s, ok := t.limiter.(interface{ Stop() }); ok {
			s.Stop()
		}
	}()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go t.pollEvents(events, done)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for t.running {
		select {
		case <-signals:
			slog.Info("Received signal to stop")
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				t.handleEvent(ev, time.Now())
			default:
				break drain
			}
		}

		if err := t.advance(time.Now()); err != nil {
			return err
		}
		t.limiter.WaitForNextFrame()
	}

	return nil
}

// pollEvents forwards screen events to the render loop, which is the only
// place touching the source.
func (t *TerminalRenderer) pollEvents(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// advance releases expired keys, runs one frame unless paused and redraws.
func (t *TerminalRenderer) advance(now time.Time) error {
	t.updateHeldKeys(now)

	if !t.paused || t.stepping {
		t.stepping = false
		if err := t.source.RunUntilFrame(); err != nil {
			return err
		}
		t.frames++
	}

	t.render()
	t.screen.Show()
	return nil
}

func (t *TerminalRenderer) handleEvent(ev tcell.Event, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.handleKey(ev, now)
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// tcellKeyNames converts tcell keys to key names used in default mappings
var tcellKeyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyF9:         "F9",
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return "Space"
		}
		return string(ev.Rune())
	}
	return tcellKeyNames[ev.Key()]
}

func (t *TerminalRenderer) handleKey(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.running = false
		return
	}

	act, ok := input.GetDefaultMapping(keyName(ev))
	if !ok {
		return
	}

	if !act.IsGameInput() {
		t.inputs.Trigger(act, event.Press)
		return
	}

	// a new direction replaces the previous one
	if act.IsDirection() {
		for held := range t.held {
			if held.IsDirection() && held != act {
				delete(t.held, held)
			}
		}
	}
	t.held[act] = now
}

// updateHeldKeys turns key repeat timestamps into press and release events.
func (t *TerminalRenderer) updateHeldKeys(now time.Time) {
	for act, last := range t.held {
		if now.Sub(last) >= keyTimeout {
			delete(t.held, act)
		}
	}

	for act := range t.active {
		if _, ok := t.held[act]; !ok {
			delete(t.active, act)
			t.inputs.Trigger(act, event.Release)
		}
	}
	for act := range t.held {
		if !t.active[act] {
			t.active[act] = true
			t.inputs.Trigger(act, event.Press)
		}
	}
}

func (t *TerminalRenderer) render() {
	t.screen.Clear()
	t.drawFrame(t.source.Frame())

	if t.debugPanel {
		if src, ok := t.source.(DebugSource); ok {
			t.drawDebugPanel(src.ExtractDebugData())
		}
	}

	status := fmt.Sprintf("frame %d", t.frames)
	if t.paused {
		status += "  PAUSED (o: step)"
	}
	status += "  z/x: A/B  enter: start  backspace: select  space: pause  F9: snapshot  q: quit"
	t.drawText(0, textRows, status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
}

// drawFrame draws each pair of pixel rows as upper half blocks: the top
// pixel is the foreground and the bottom one the background.
func (t *TerminalRenderer) drawFrame(frame *video.FrameBuffer) {
	for row := 0; row < textRows; row++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			top := rgb(frame.Pixel(x, row*2))
			bottom := rgb(frame.Pixel(x, row*2+1))
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, row, '▀', nil, style)
		}
	}
}

func rgb(r, g, b byte) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (t *TerminalRenderer) drawDebugPanel(data *debug.CompleteDebugData) {
	if data == nil {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	c := data.CPU

	lines := []string{
		fmt.Sprintf("AF %02X%02X  BC %04X", c.A, c.F, c.BC),
		fmt.Sprintf("DE %04X  HL %04X", c.DE, c.HL),
		fmt.Sprintf("SP %04X  PC %04X", c.SP, c.PC),
		fmt.Sprintf("%s  IME %t  %s", c.Flags, c.IME, c.State),
		fmt.Sprintf("IE %02X  IF %02X  LY %3d", data.InterruptEnable, data.InterruptFlags, data.LY),
		fmt.Sprintf("%s  double speed %t", data.Mode, data.DoubleSpeed),
		"",
	}
	for _, line := range debug.CreateDisassembly(data.Memory, c.PC, panelLines) {
		prefix := " "
		if line.IsCurrent {
			prefix = ">"
		}
		lines = append(lines, fmt.Sprintf("%s%04X %s", prefix, line.Address, line.Instruction))
	}

	for i, line := range lines {
		t.drawText(panelX, i, line, style)
	}
}

func (t *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (t *TerminalRenderer) snapshot() {
	name := fmt.Sprintf("jeebie_%s.png", time.Now().Format("20060102_150405"))
	path := filepath.Join(t.snapshotDir, name)
	if err := SavePNG(path, t.source.Frame(), 1); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}
