package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// ErrUnknownOpcode is the fault recorded when an unassigned opcode is fetched.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Bus provides the interface for component communication
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	// TickTimer advances the timer by one CPU step.
	TickTimer()
	BootROMEnabled() bool
	// SeedPostBoot sets the I/O state normally left behind by the boot ROM.
	SeedPostBoot()
	ColorMode() bool
	SpeedSwitchArmed() bool
	ToggleSpeed()
	// Fail records a fatal fault.
	Fail(err error)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// State is the execution state of the CPU.
type State uint8

const (
	Reset State = iota
	Running
	Halted
	Stopped
)

func (s State) String() string {
	switch s {
	case Reset:
		return "reset"
	case Halted:
		return "halted"
	case Stopped:
		return "stopped"
	}
	return "running"
}

const (
	interruptCycles = 5
	cbPrefix        = 0xCB
)

// power-up register values when no boot ROM runs
type powerUp struct {
	af, bc, de, hl uint16
}

var (
	legacyPowerUp = powerUp{af: 0x01B0, bc: 0x0013, de: 0x00D8, hl: 0x014D}
	colorPowerUp  = powerUp{af: 0x1180, bc: 0x0000, de: 0xFF56, hl: 0x000D}
)

// CPU is the SM83 core. It is stepped one machine cycle at a time and
// spreads the cost of each instruction over the following ticks.
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	state State
	// interruptsEnabled is IME
	interruptsEnabled bool
	// eiPending delays EI by one instruction
	eiPending bool
	// haltBug makes the next fetch skip the PC increment
	haltBug bool

	pending       int
	currentOpcode uint16
	cycles        uint64

	bus Bus
}

// New returns a CPU in the reset state. Registers are initialized on the
// first tick.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Reset returns the CPU to its power-on state.
func (c *CPU) Reset() {
	*c = CPU{bus: c.bus}
}

// Tick advances the CPU by one machine cycle.
func (c *CPU) Tick() {
	c.cycles++

	if c.state == Reset {
		c.powerOn()
	} else {
		c.bus.TickTimer()
	}

	if c.pending > 0 {
		c.pending--
		return
	}

	if cost := c.dispatchInterrupt(); cost > 0 {
		c.pending = cost - 1
		return
	}

	switch c.state {
	case Stopped:
		if c.bus.Read(addr.IF)&addr.InterruptMask != 0 {
			c.state = Running
		}
		return
	case Halted:
		if c.pendingInterrupts() != 0 {
			c.state = Running
		}
		return
	}

	if c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	c.pending = c.execute() - 1
}

func (c *CPU) powerOn() {
	c.state = Running
	if c.bus.BootROMEnabled() {
		c.pc = 0x0000
		return
	}

	values := legacyPowerUp
	if c.bus.ColorMode() {
		values = colorPowerUp
	}
	c.setAF(values.af)
	c.setBC(values.bc)
	c.setDE(values.de)
	c.setHL(values.hl)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.bus.SeedPostBoot()
}

// pendingInterrupts returns the interrupts both requested and enabled.
func (c *CPU) pendingInterrupts() uint8 {
	return c.bus.Read(addr.IE) & c.bus.Read(addr.IF) & addr.InterruptMask
}

// dispatchInterrupt services the highest priority pending interrupt and
// returns its cost, 0 when nothing was dispatched.
func (c *CPU) dispatchInterrupt() int {
	if !c.interruptsEnabled {
		return 0
	}
	pending := c.pendingInterrupts()
	if pending == 0 {
		return 0
	}

	for i := addr.Interrupt(0); i < addr.InterruptCount; i++ {
		if pending&i.Mask() == 0 {
			continue
		}

		c.bus.Write(addr.IF, c.bus.Read(addr.IF)&^i.Mask())
		c.interruptsEnabled = false
		c.pushStack(c.pc)
		c.pc = i.Vector()

		cost := interruptCycles
		if c.state == Halted {
			cost++
		}
		c.state = Running
		return cost
	}
	return 0
}

// execute fetches, decodes and runs one instruction, returning its cost.
func (c *CPU) execute() int {
	opcode := c.fetch()
	if opcode == cbPrefix {
		opcode = c.fetch()
		c.currentOpcode = bit.Combine(cbPrefix, opcode)
		return opcodesCB[opcode](c) + 1
	}

	c.currentOpcode = uint16(opcode)
	instruction := opcodes[opcode]
	if instruction == nil {
		c.bus.Fail(fmt.Errorf("%w: 0x%02X at 0x%04X", ErrUnknownOpcode, opcode, c.pc-1))
		return 1
	}
	return instruction(c)
}

// fetch reads the byte at PC. Under the halt bug PC is not incremented.
func (c *CPU) fetch() uint8 {
	value := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
		return value
	}
	c.pc++
	return value
}

// readImmediate returns the byte at PC and advances past it.
func (c *CPU) readImmediate() uint8 {
	return c.fetch()
}

// readImmediateWord returns the little endian word at PC and advances past it.
func (c *CPU) readImmediateWord() uint16 {
	low := c.fetch()
	high := c.fetch()
	return bit.Combine(high, low)
}

func (c *CPU) readSignedImmediate() int8 {
	return int8(c.fetch())
}

// halt implements the HALT opcode, including the halt bug when interrupts
// are disabled and one is already pending.
func (c *CPU) halt() {
	if !c.interruptsEnabled && c.pendingInterrupts() != 0 {
		c.haltBug = true
		return
	}
	c.state = Halted
}

// stop implements STOP: a speed switch when armed, otherwise the CPU
// freezes until an interrupt is requested.
func (c *CPU) stop() {
	if c.bus.ColorMode() && c.bus.SpeedSwitchArmed() {
		c.bus.ToggleSpeed()
		return
	}
	c.state = Stopped
}

// Debug getter methods for register display
func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetBC() uint16     { return c.getBC() }
func (c *CPU) GetDE() uint16     { return c.getDE() }
func (c *CPU) GetHL() uint16     { return c.getHL() }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }

// Interrupt state getters
func (c *CPU) GetIME() bool    { return c.interruptsEnabled }
func (c *CPU) GetState() State { return c.state }

// GetFlagString returns a human-readable representation of the flag register
func (c *CPU) GetFlagString() string {
	flags := []byte("ZNHC")
	for i, flag := range []Flag{zeroFlag, subFlag, halfCarryFlag, carryFlag} {
		if !c.isSetFlag(flag) {
			flags[i] = '-'
		}
	}
	return string(flags)
}
