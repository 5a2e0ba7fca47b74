package memory

import (
	"fmt"

	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

const (
	oamTransferLength = 0xA0
	// one setup tick followed by one byte per tick
	oamTransferTicks = oamTransferLength + 1

	hdmaBlockSize = 16
)

// TransferMemory is the view of the bus used by the transfer engine.
type TransferMemory interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	// HBlank reports whether the video unit is currently in horizontal blank.
	HBlank() bool
	// Fail records a fatal error.
	Fail(err error)
}

type oamTransfer struct {
	active bool
	source uint16
	ticks  int
}

type blockTransfer struct {
	active  bool
	hblank  bool
	stopped bool

	source      uint16
	destination uint16
	length      int
	copied      int

	phase  int // a byte moves on every second tick
	budget int // bytes left in the current hblank period
}

// Transfer drives OAM DMA and the color-mode VRAM block transfers
// (general purpose and HBlank gated). It is ticked once per external cycle.
type Transfer struct {
	mem TransferMemory

	oam   oamTransfer
	block blockTransfer

	inHBlank bool
}

// NewTransfer returns an idle transfer engine bound to mem.
func NewTransfer(mem TransferMemory) *Transfer {
	t := &Transfer{mem: mem}
	t.Reset()
	return t
}

// Reset aborts any in-flight transfer.
func (t *Transfer) Reset() {
	t.oam = oamTransfer{}
	t.block = blockTransfer{destination: addr.VRAMStart}
	t.inHBlank = false
}

// StartOAM starts an OAM DMA from page value. Pages in the echo range are
// mirrored down to work RAM.
func (t *Transfer) StartOAM(value byte) {
	source := uint16(value) << 8
	if source >= addr.EchoStart {
		source -= 0x2000
	}
	t.oam = oamTransfer{active: true, source: source}
}

// OAMActive reports whether an OAM DMA is in progress.
func (t *Transfer) OAMActive() bool {
	return t.oam.active
}

// SetSourceHigh handles HDMA1.
func (t *Transfer) SetSourceHigh(value byte) {
	t.block.source = bit.Combine(value, bit.Low(t.block.source))
}

// SetSourceLow handles HDMA2, the lower 4 bits are ignored.
func (t *Transfer) SetSourceLow(value byte) {
	t.block.source = bit.Combine(bit.High(t.block.source), value&0xF0)
}

// SetDestinationHigh handles HDMA3, only bits 0-4 are used.
func (t *Transfer) SetDestinationHigh(value byte) {
	t.block.destination = bit.Combine(0x80|(value&0x1F), bit.Low(t.block.destination))
}

// SetDestinationLow handles HDMA4, the lower 4 bits are ignored.
func (t *Transfer) SetDestinationLow(value byte) {
	t.block.destination = bit.Combine(0x80|bit.High(t.block.destination)&0x1F, value&0xF0)
}

// Control handles a write to HDMA5.
//
// Bit 7 selects HBlank mode (1) or general purpose mode (0), bits 0-6 give
// the length in 16 byte blocks minus one. Writing with bit 7 cleared while an
// HBlank transfer runs stops it, keeping the addresses reached so far.
func (t *Transfer) Control(value byte) {
	if t.block.active && t.block.hblank && !t.block.stopped && !bit.IsSet(7, value) {
		t.block.stopped = true
		return
	}

	length := (int(value&0x7F) + 1) * hdmaBlockSize
	if err := validateBlock(t.block.source, t.block.destination, length); err != nil {
		t.block.active = false
		t.mem.Fail(err)
		return
	}

	t.block.active = true
	t.block.hblank = bit.IsSet(7, value)
	t.block.stopped = false
	t.block.length = length
	t.block.copied = 0
	t.block.phase = 0
	t.block.budget = 0
	if t.block.hblank && t.inHBlank {
		t.block.budget = hdmaBlockSize
	}
}

// Status returns the HDMA5 read value: 0xFF when idle, otherwise the
// remaining blocks minus one, with bit 7 set if the transfer was stopped.
func (t *Transfer) Status() byte {
	if !t.block.active {
		return 0xFF
	}

	remaining := (t.block.length - t.block.copied + hdmaBlockSize - 1) / hdmaBlockSize
	status := byte(remaining-1) & 0x7F
	if t.block.stopped {
		status |= 0x80
	}
	return status
}

// BlockActive reports whether a VRAM block transfer is in progress.
func (t *Transfer) BlockActive() bool {
	return t.block.active
}

// Tick advances the engine by one cycle. At most one byte is moved, and a
// block transfer that can progress takes priority over OAM DMA.
func (t *Transfer) Tick() {
	hblank := t.mem.HBlank()
	if hblank && !t.inHBlank {
		t.block.budget = hdmaBlockSize
	}
	t.inHBlank = hblank

	if t.blockReady() {
		t.stepBlock()
		return
	}

	if t.oam.active {
		t.stepOAM()
	}
}

func (t *Transfer) blockReady() bool {
	b := &t.block
	if !b.active || b.stopped {
		return false
	}
	if !b.hblank {
		return true
	}
	return t.inHBlank && b.budget > 0
}

func (t *Transfer) stepBlock() {
	b := &t.block
	b.phase ^= 1
	if b.phase == 1 {
		return
	}

	t.mem.Write(b.destination, t.mem.Read(b.source))
	b.source++
	b.destination++
	b.copied++
	if b.hblank {
		b.budget--
	}

	if b.copied >= b.length {
		b.active = false
		b.stopped = false
	}
}

func (t *Transfer) stepOAM() {
	o := &t.oam
	o.ticks++
	if o.ticks >= 2 {
		i := uint16(o.ticks - 2)
		t.mem.Write(addr.OAMStart+i, t.mem.Read(o.source+i))
	}
	if o.ticks >= oamTransferTicks {
		o.active = false
	}
}

// validateBlock checks that source lies in cartridge ROM, external RAM or work RAM
// and that the whole destination range lies in VRAM.
func validateBlock(source, destination uint16, length int) error {
	srcEnd := int(source) + length - 1
	switch {
	case srcEnd < int(addr.VRAMStart):
	case source >= addr.ExternalRAM && srcEnd < int(addr.EchoStart):
	default:
		return fmt.Errorf("%w: source 0x%04X length %d", ErrInvalidTransfer, source, length)
	}

	dstEnd := int(destination) + length - 1
	if destination < addr.VRAMStart || dstEnd >= int(addr.ExternalRAM) {
		return fmt.Errorf("%w: destination 0x%04X length %d", ErrInvalidTransfer, destination, length)
	}
	return nil
}
