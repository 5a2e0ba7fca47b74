package memory

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad holds the button matrix behind P1.
// A cleared bit means the key is held down.
type Joypad struct {
	buttons uint8
	dpad    uint8
	line    uint8

	// InterruptHandler is called once for every newly pressed key.
	InterruptHandler func()
}

// NewJoypad creates a new Joypad instance with all keys released.
func NewJoypad(irq func()) *Joypad {
	return &Joypad{
		buttons:          0x0F,
		dpad:             0x0F,
		line:             0x30,
		InterruptHandler: irq,
	}
}

// Read returns P1 as seen by the CPU.
//
// Bits 4-5 select which half of the matrix is mapped onto bits 0-3:
//   - bit 4 cleared selects the d-pad
//   - bit 5 cleared selects A, B, Select, Start
//   - both cleared ANDs the two sets
//   - neither selected reads 0x0F
//
// Bits 6-7 always read as 1.
func (j *Joypad) Read() uint8 {
	result := 0xC0 | j.line

	selectDpad := !bit.IsSet(4, j.line)
	selectButtons := !bit.IsSet(5, j.line)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad
	case selectButtons:
		result |= j.buttons
	case selectDpad:
		result |= j.dpad
	default:
		result |= 0x0F
	}

	return result
}

// Write sets the joypad line to be read. Only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Pressed reports whether key is currently held.
func (j *Joypad) Pressed(key JoypadKey) bool {
	set, index := j.lookup(key)
	return !bit.IsSet(index, *set)
}

// Press marks key as held. Holding an already held key does nothing.
func (j *Joypad) Press(key JoypadKey) {
	set, index := j.lookup(key)
	if !bit.IsSet(index, *set) {
		return
	}

	*set = bit.Clear(index, *set)
	if j.InterruptHandler != nil {
		j.InterruptHandler()
	}
}

// Release marks key as released.
func (j *Joypad) Release(key JoypadKey) {
	set, index := j.lookup(key)
	*set = bit.Set(index, *set)
}

// Reset releases every key and deselects both lines.
func (j *Joypad) Reset() {
	j.buttons = 0x0F
	j.dpad = 0x0F
	j.line = 0x30
}

func (j *Joypad) lookup(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}
