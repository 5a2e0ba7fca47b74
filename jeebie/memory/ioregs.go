package memory

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/audio"
)

// port hooks one I/O register. A nil hook falls back to plain storage.
type port struct {
	read  func() byte
	write func(value byte)
}

func ioOffset(address uint16) uint16 {
	return address - addr.IOStart
}

func (b *Bus) readIO(offset uint16) byte {
	if p := b.ports[offset]; p.read != nil {
		return p.read()
	}
	return b.io[offset]
}

func (b *Bus) writeIO(offset uint16, value byte) {
	if p := b.ports[offset]; p.write != nil {
		p.write(value)
		return
	}
	b.io[offset] = value
}

func (b *Bus) hook(address uint16, read func() byte, write func(byte)) {
	b.ports[ioOffset(address)] = port{read: read, write: write}
}

// buildPorts fills the dispatch table for the active mode.
func (b *Bus) buildPorts() {
	b.ports = [ioSize]port{}

	b.hook(addr.P1, b.Joypad.Read, b.Joypad.Write)

	for _, a := range []uint16{addr.SB, addr.SC} {
		b.hook(a, func() byte { return b.Serial.Read(a) }, func(v byte) { b.Serial.Write(a, v) })
	}
	for _, a := range []uint16{addr.DIV, addr.TIMA, addr.TMA, addr.TAC} {
		b.hook(a, func() byte { return b.Timer.Read(a) }, func(v byte) { b.Timer.Write(a, v) })
	}

	b.hook(addr.IF,
		func() byte { return 0xE0 | b.io[ioOffset(addr.IF)] },
		func(v byte) { b.io[ioOffset(addr.IF)] = v & addr.InterruptMask },
	)

	for a := addr.AudioStart; a <= addr.AudioEnd; a++ {
		if !audio.Contains(a) {
			continue
		}
		b.hook(a, func() byte { return b.Audio.ReadRegister(a) }, func(v byte) { b.Audio.WriteRegister(a, v) })
	}

	b.hook(addr.LCDC, nil, func(v byte) {
		b.io[ioOffset(addr.LCDC)] = v
		b.GPU.SetControl(v)
	})
	b.hook(addr.STAT, b.GPU.Status, b.GPU.SetStatus)
	b.hook(addr.LY, b.GPU.LY, func(byte) {})
	b.hook(addr.LYC, b.GPU.LYC, b.GPU.SetLYC)
	b.hook(addr.DMA, nil, func(v byte) {
		b.io[ioOffset(addr.DMA)] = v
		b.Transfer.StartOAM(v)
	})

	b.hook(addr.BootOff, unmapped, func(v byte) {
		if v != 0 && b.bootEnabled {
			b.bootEnabled = false
			b.logger.Debug("boot ROM unmapped")
		}
	})

	if b.mode == Color {
		b.buildColorPorts()
	} else {
		for _, a := range colorRegisters {
			b.hook(a, unmapped, discard)
		}
	}

	for offset := range b.ports {
		a := addr.IOStart + uint16(offset)
		if p := b.ports[offset]; p.read == nil && p.write == nil && !storedRegisters[a] {
			b.hook(a, unmapped, discard)
		}
	}
}

func unmapped() byte { return 0xFF }
func discard(_ byte) {}

// storedRegisters are plain storage read directly by the video unit.
var storedRegisters = map[uint16]bool{
	addr.SCY:  true,
	addr.SCX:  true,
	addr.BGP:  true,
	addr.OBP0: true,
	addr.OBP1: true,
	addr.WY:   true,
	addr.WX:   true,
}

// colorRegisters are unmapped on legacy hardware.
var colorRegisters = []uint16{
	addr.KEY1, addr.VBK,
	addr.HDMA1, addr.HDMA2, addr.HDMA3, addr.HDMA4, addr.HDMA5,
	addr.BCPS, addr.BCPD, addr.OCPS, addr.OCPD,
	addr.SVBK,
}

func (b *Bus) buildColorPorts() {
	b.hook(addr.KEY1,
		func() byte {
			v := byte(0x7E)
			if b.doubleSpeed {
				v |= 0x80
			}
			if b.speedArmed {
				v |= 0x01
			}
			return v
		},
		func(v byte) { b.speedArmed = v&0x01 != 0 },
	)
	b.hook(addr.VBK,
		func() byte { return 0xFE | byte(b.vramBank) },
		func(v byte) { b.vramBank = int(v & 0x01) },
	)

	b.hook(addr.HDMA1, unmapped, b.Transfer.SetSourceHigh)
	b.hook(addr.HDMA2, unmapped, b.Transfer.SetSourceLow)
	b.hook(addr.HDMA3, unmapped, b.Transfer.SetDestinationHigh)
	b.hook(addr.HDMA4, unmapped, b.Transfer.SetDestinationLow)
	b.hook(addr.HDMA5, b.Transfer.Status, b.Transfer.Control)

	bg, obj := b.GPU.BGPalette(), b.GPU.OBJPalette()
	b.hook(addr.BCPS, bg.ReadIndex, bg.WriteIndex)
	b.hook(addr.BCPD, bg.ReadData, bg.WriteData)
	b.hook(addr.OCPS, obj.ReadIndex, obj.WriteIndex)
	b.hook(addr.OCPD, obj.ReadData, obj.WriteData)

	b.hook(addr.SVBK,
		func() byte { return 0xF8 | byte(b.wramBank) },
		func(v byte) {
			b.wramBank = int(v & 0x07)
			if b.wramBank == 0 {
				b.wramBank = 1
			}
		},
	)
}
