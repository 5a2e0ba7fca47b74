package memory

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// tacPeriodMask maps TAC input clock select (bits 1-0) to the mask applied
// to the internal counter: TIMA increments whenever the masked counter wraps
// to zero.
//
//	00 -> every 256 ticks (4096 Hz)
//	01 -> every 4 ticks   (262144 Hz)
//	10 -> every 16 ticks  (65536 Hz)
//	11 -> every 64 ticks  (16384 Hz)
var tacPeriodMask = [4]uint8{0xFF, 0x03, 0x0F, 0x3F}

// divPeriodMask makes DIV advance every 64 ticks (16384 Hz).
const divPeriodMask uint8 = 0x3F

// Timer encapsulates the DIV/TIMA/TMA/TAC behavior.
// It is advanced one machine cycle at a time.
type Timer struct {
	counter uint8 // internal cycle counter, wraps at 256
	div     byte

	tima    byte
	tma     byte
	running bool
	rate    uint8

	// IRQ requester callback
	TimerInterruptHandler func()
}

// Seed sets the internal counter and divider to their power-up values.
func (t *Timer) Seed(counter uint8, div byte) {
	t.counter = counter
	t.div = div
}

// Reset clears the internal counter. Registers keep their values.
func (t *Timer) Reset() {
	t.counter = 0
}

// Tick advances the timer by one machine cycle.
func (t *Timer) Tick() {
	t.counter++

	if t.counter&divPeriodMask == 0 {
		t.div++
	}

	if !t.running || t.counter&tacPeriodMask[t.rate] != 0 {
		return
	}

	t.tima++
	if t.tima == 0 {
		t.tima = t.tma
		if t.TimerInterruptHandler != nil {
			t.TimerInterruptHandler()
		}
	}
}

// Counter returns the internal cycle counter.
func (t *Timer) Counter() uint8 {
	return t.counter
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		tac := 0xF8 | t.rate
		if t.running {
			tac = bit.Set(2, tac)
		}
		return tac
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// any write resets the divider chain
		t.counter = 0
		t.div = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.running = bit.IsSet(2, value)
		t.rate = value & 0x03
	}
}
