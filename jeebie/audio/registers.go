package audio

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// Registers is the sound register file at 0xFF10-0xFF3F. Channel synthesis
// is not emulated: values are stored verbatim and read back with the
// hardware's unused bits forced to 1.
type Registers struct {
	regs    [registerCount]byte
	wave    [waveRAMSize]byte
	enabled bool
	// channel status bits reported in NR52 bits 0-3
	status uint8
}

// New returns a register file holding the post-boot values.
func New() *Registers {
	r := &Registers{}
	r.Reset()
	return r
}

// Reset restores the post-boot register values.
func (r *Registers) Reset() {
	r.regs = powerOnValues
	r.enabled = true
	r.status = 0x01
}

// Contains reports whether address belongs to the sound block.
func Contains(address uint16) bool {
	return address >= addr.AudioStart && address <= addr.AudioEnd
}

// ReadRegister returns the value seen by the CPU at address.
func (r *Registers) ReadRegister(address uint16) uint8 {
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return r.wave[address-addr.WaveRAMStart]
	}
	if address < addr.AudioStart || address >= addr.WaveRAMStart {
		return 0xFF
	}

	index := address - addr.AudioStart
	if address == addr.NR52 {
		status := r.status | readMasks[index]
		return bit.SetTo(nr52PowerBit, status, r.enabled)
	}
	return r.regs[index] | readMasks[index]
}

// WriteRegister stores value at address. While powered off only NR52 and
// wave RAM accept writes.
func (r *Registers) WriteRegister(address uint16, value uint8) {
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		r.wave[address-addr.WaveRAMStart] = value
		return
	}
	if address < addr.AudioStart || address >= addr.WaveRAMStart {
		return
	}

	if address == addr.NR52 {
		r.setPower(bit.IsSet(nr52PowerBit, value))
		return
	}
	if !r.enabled {
		return
	}

	index := address - addr.AudioStart
	r.regs[index] = value
	if ch, ok := triggerRegisters[index]; ok && bit.IsSet(7, value) {
		r.status = bit.Set(ch, r.status)
	}
}

// Enabled reports the NR52 master power state.
func (r *Registers) Enabled() bool {
	return r.enabled
}

// WaveRAM returns a copy of the wave pattern RAM.
func (r *Registers) WaveRAM() [waveRAMSize]byte {
	return r.wave
}

func (r *Registers) setPower(on bool) {
	if r.enabled && !on {
		r.regs = [registerCount]byte{}
		r.status = 0
	}
	r.enabled = on
}
