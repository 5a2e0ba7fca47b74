package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/cartridge"
)

func testCartridge(t *testing.T, colorFlag byte) cartridge.Cartridge {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x11
	rom[0x4000] = 0x22
	rom[0x0143] = colorFlag
	cart, err := cartridge.New(rom)
	require.NoError(t, err)
	return cart
}

func newLegacyBus(t *testing.T) *Bus {
	b := New()
	b.LoadCartridge(testCartridge(t, 0x00))
	return b
}

func newColorBus(t *testing.T) *Bus {
	b := New()
	b.LoadCartridge(testCartridge(t, 0x80))
	return b
}

// sweepRoundTrip writes every value to every address in [start, end] and
// reads it back.
func sweepRoundTrip(t *testing.T, b *Bus, start, end int) {
	t.Helper()
	for address := start; address <= end; address++ {
		for v := 0; v <= 0xFF; v++ {
			require.NoError(t, b.SetByte(address, byte(v)))
			got, err := b.GetByte(address)
			require.NoError(t, err)
			if got != byte(v) {
				require.Equal(t, byte(v), got, "address 0x%04X", address)
			}
		}
	}
}

func TestBus_roundTrip(t *testing.T) {
	testCases := []struct {
		desc       string
		start, end int
	}{
		{desc: "vram", start: 0x8000, end: 0x9FFF},
		{desc: "wram bank 0", start: 0xC000, end: 0xCFFF},
		{desc: "wram bank n", start: 0xD000, end: 0xDFFF},
		{desc: "oam", start: 0xFE00, end: 0xFE9F},
		{desc: "hram", start: 0xFF80, end: 0xFFFE},
		{desc: "scroll registers", start: 0xFF42, end: 0xFF43},
		{desc: "window registers", start: 0xFF4A, end: 0xFF4B},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			sweepRoundTrip(t, newLegacyBus(t), tC.start, tC.end)
		})
	}
}

func TestBus_roundTripBanks(t *testing.T) {
	t.Run("vram banks", func(t *testing.T) {
		b := newColorBus(t)
		for bank := byte(0); bank < 2; bank++ {
			b.Write(addr.VBK, bank)
			sweepRoundTrip(t, b, 0x8000, 0x9FFF)
		}
	})

	t.Run("wram banks", func(t *testing.T) {
		b := newColorBus(t)
		for bank := byte(1); bank < 8; bank++ {
			b.Write(addr.SVBK, bank)
			sweepRoundTrip(t, b, 0xD000, 0xDFFF)
		}
	})

	t.Run("banks are independent", func(t *testing.T) {
		b := newColorBus(t)
		for bank := byte(1); bank < 8; bank++ {
			b.Write(addr.SVBK, bank)
			b.Write(0xD123, bank)
		}
		for bank := byte(1); bank < 8; bank++ {
			b.Write(addr.SVBK, bank)
			assert.Equal(t, bank, b.Read(0xD123), "wram bank %d", bank)
		}
	})
}

func TestBus_unmappedIORegisters(t *testing.T) {
	unmapped := []uint16{0xFF03, 0xFF08, 0xFF0E, 0xFF4C, 0xFF4E, 0xFF56, 0xFF67, 0xFF6C, 0xFF6F, 0xFF71, 0xFF7F}

	for _, tC := range []struct {
		desc string
		bus  func(t *testing.T) *Bus
	}{
		{desc: "legacy", bus: newLegacyBus},
		{desc: "color", bus: newColorBus},
	} {
		t.Run(tC.desc, func(t *testing.T) {
			b := tC.bus(t)
			for _, a := range unmapped {
				b.Write(a, 0x00)
				assert.Equal(t, byte(0xFF), b.Read(a), "0x%04X", a)
			}
			require.NoError(t, b.Err())
		})
	}
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "dmg", Legacy.String())
	assert.Equal(t, "cgb", Color.String())
}

func TestBus_words(t *testing.T) {
	b := newLegacyBus(t)
	require.NoError(t, b.SetWord(0xC000, 0xBEEF))

	low, _ := b.GetByte(0xC000)
	assert.Equal(t, byte(0xEF), low)

	w, err := b.GetWord(0xC000)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), w)

	_, err = b.GetWord(0xFFFF)
	assert.ErrorIs(t, err, ErrAddressOutOfRange)
}

func TestBus_addressOutOfRange(t *testing.T) {
	b := newLegacyBus(t)

	for _, address := range []int{-1, 0x10000} {
		_, err := b.GetByte(address)
		assert.ErrorIs(t, err, ErrAddressOutOfRange)
		assert.ErrorIs(t, b.SetByte(address, 0), ErrAddressOutOfRange)
	}
	assert.NoError(t, b.Err(), "checked access does not fault the bus")
}

func TestBus_echo(t *testing.T) {
	b := newLegacyBus(t)

	b.Write(0xC123, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0xE123))

	b.Write(0xFDFF, 0x24)
	assert.Equal(t, byte(0x24), b.Read(0xDDFF))
}

func TestBus_unusableArea(t *testing.T) {
	b := newLegacyBus(t)

	b.Write(0xFEA0, 0x12)
	assert.Equal(t, byte(0xFF), b.Read(0xFEA0))
	assert.Equal(t, byte(0xFF), b.Read(0xFEFF))
	assert.NoError(t, b.Err())
}

func TestBus_cartridgeAccess(t *testing.T) {
	b := newLegacyBus(t)

	assert.Equal(t, byte(0x11), b.Read(0x0000))
	assert.Equal(t, byte(0x22), b.Read(0x4000))
	assert.Equal(t, byte(0xFF), b.Read(0xA000), "no external RAM")

	b.Write(0x2000, 0x01)
	assert.NoError(t, b.Err(), "bank select is claimed by the controller")

	err := b.SetByte(0x0100, 0x01)
	assert.ErrorIs(t, err, ErrNotWritable)
}

func TestBus_noCartridgeFaultIsSticky(t *testing.T) {
	b := New()

	_, err := b.GetByte(0x0100)
	assert.ErrorIs(t, err, ErrNoCartridge)
	assert.NoError(t, b.Err())

	assert.Equal(t, byte(0xFF), b.Read(0x0100))
	assert.ErrorIs(t, b.Err(), ErrNoCartridge)

	b.Transfer.SetSourceHigh(0x80)
	b.Transfer.Control(0x00)
	assert.ErrorIs(t, b.Err(), ErrNoCartridge, "first fault wins")
}

func TestBus_interruptRegisters(t *testing.T) {
	b := newLegacyBus(t)

	b.Write(addr.IF, 0x00)
	assert.Equal(t, byte(0xE0), b.Read(addr.IF))

	b.RequestInterrupt(addr.TimerInterrupt)
	b.RequestInterrupt(addr.JoypadInterrupt)
	assert.Equal(t, byte(0xF4), b.Read(addr.IF))

	b.Write(addr.IF, 0xFF)
	assert.Equal(t, byte(0xFF), b.Read(addr.IF))

	b.Write(addr.IE, 0x05)
	assert.Equal(t, byte(0xE5), b.Read(addr.IE))
}

func TestBus_bootROM(t *testing.T) {
	b := newLegacyBus(t)

	assert.Error(t, b.LoadBootROM(make([]byte, 0x200)))

	boot := make([]byte, 0x100)
	for i := range boot {
		boot[i] = 0xAA
	}
	require.NoError(t, b.LoadBootROM(boot))
	assert.True(t, b.BootROMEnabled())
	assert.Equal(t, byte(0xAA), b.Read(0x0000))
	assert.Equal(t, byte(0x00), b.Read(0x0100), "header stays visible")

	b.Write(addr.BootOff, 0x01)
	assert.False(t, b.BootROMEnabled())
	assert.Equal(t, byte(0x11), b.Read(0x0000))

	b.Reset()
	assert.True(t, b.BootROMEnabled(), "reset maps the boot ROM again")
}

func TestBus_colorBootROMGap(t *testing.T) {
	b := newColorBus(t)
	boot := make([]byte, 0x900)
	for i := range boot {
		boot[i] = 0xBB
	}
	require.NoError(t, b.LoadBootROM(boot))

	assert.Equal(t, byte(0xBB), b.Read(0x00FF))
	assert.Equal(t, byte(0x00), b.Read(0x0150))
	assert.Equal(t, byte(0xBB), b.Read(0x0200))
	assert.Equal(t, byte(0xBB), b.Read(0x08FF))
	assert.Equal(t, byte(0x00), b.Read(0x0900))
}

func TestBus_modeFromHeader(t *testing.T) {
	testCases := []struct {
		desc      string
		colorFlag byte
		opts      []Option
		want      Mode
	}{
		{desc: "legacy only", colorFlag: 0x00, want: Legacy},
		{desc: "compatible", colorFlag: 0x80, want: Color},
		{desc: "color only", colorFlag: 0xC0, want: Color},
		{desc: "forced legacy", colorFlag: 0x80, opts: []Option{WithLegacyOnly()}, want: Legacy},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			b := New(tC.opts...)
			b.LoadCartridge(testCartridge(t, tC.colorFlag))
			assert.Equal(t, tC.want, b.Mode())
		})
	}
}

func TestBus_vramBanks(t *testing.T) {
	b := newColorBus(t)

	b.Write(0x8000, 0x01)
	b.Write(addr.VBK, 0x01)
	assert.Equal(t, byte(0xFF), b.Read(addr.VBK))
	b.Write(0x8000, 0x02)

	assert.Equal(t, byte(0x01), b.VRAM(0)[0])
	assert.Equal(t, byte(0x02), b.VRAM(1)[0])

	b.Write(addr.VBK, 0x00)
	assert.Equal(t, byte(0xFE), b.Read(addr.VBK))
	assert.Equal(t, byte(0x01), b.Read(0x8000))
}

func TestBus_wramBanks(t *testing.T) {
	b := newColorBus(t)

	b.Write(addr.SVBK, 0x00)
	assert.Equal(t, byte(0xF9), b.Read(addr.SVBK), "bank 0 selects bank 1")

	b.Write(0xD000, 0x11)
	b.Write(addr.SVBK, 0x03)
	assert.Equal(t, byte(0xFB), b.Read(addr.SVBK))
	assert.Equal(t, byte(0x00), b.Read(0xD000))
	b.Write(0xD000, 0x33)
	assert.Equal(t, byte(0x33), b.Read(0xF000), "echo follows the selected bank")

	b.Write(addr.SVBK, 0x01)
	assert.Equal(t, byte(0x11), b.Read(0xD000))
}

func TestBus_colorRegistersInLegacyMode(t *testing.T) {
	b := newLegacyBus(t)

	for _, a := range colorRegisters {
		b.Write(a, 0x01)
		assert.Equal(t, byte(0xFF), b.Read(a), "0x%04X", a)
	}

	b.Write(0x8000, 0x07)
	assert.Equal(t, byte(0x07), b.VRAM(0)[0], "bank select was ignored")
	assert.False(t, b.SpeedSwitchArmed())
}

func TestBus_speedSwitch(t *testing.T) {
	b := newColorBus(t)
	assert.Equal(t, byte(0x7E), b.Read(addr.KEY1))

	b.Write(addr.KEY1, 0x01)
	assert.Equal(t, byte(0x7F), b.Read(addr.KEY1))
	assert.True(t, b.SpeedSwitchArmed())

	b.ToggleSpeed()
	assert.True(t, b.DoubleSpeed())
	assert.False(t, b.SpeedSwitchArmed())
	assert.Equal(t, byte(0xFE), b.Read(addr.KEY1))
}

func TestBus_paletteRegisters(t *testing.T) {
	b := newColorBus(t)

	b.Write(addr.BCPS, 0x80)
	b.Write(addr.BCPD, 0x1F)
	b.Write(addr.BCPD, 0x00)
	assert.Equal(t, byte(0xC2), b.Read(addr.BCPS))

	r, g, bl := b.GPU.BGPalette().RGB(0, 0)
	assert.Equal(t, []byte{0xFF, 0x00, 0x00}, []byte{r, g, bl})

	b.Write(addr.OCPS, 0x01)
	b.Write(addr.OCPD, 0x7F)
	assert.Equal(t, byte(0x7F), b.Read(addr.OCPD))
}

func TestBus_peripheralPorts(t *testing.T) {
	b := newLegacyBus(t)

	t.Run("timer", func(t *testing.T) {
		b.Write(addr.TAC, 0x05)
		for i := 0; i < 4; i++ {
			b.TickTimer()
		}
		assert.Equal(t, byte(0x01), b.Read(addr.TIMA))
		assert.Equal(t, byte(0xFD), b.Read(addr.TAC))
	})

	t.Run("joypad", func(t *testing.T) {
		b.Joypad.Press(JoypadStart)
		b.Write(addr.P1, 0x10)
		assert.Equal(t, byte(0xD7), b.Read(addr.P1))
		assert.Equal(t, addr.JoypadInterrupt.Mask(), b.Read(addr.IF)&addr.JoypadInterrupt.Mask())
	})

	t.Run("lcd registers", func(t *testing.T) {
		b.Write(addr.LY, 0x22)
		assert.Equal(t, byte(0x00), b.Read(addr.LY))

		b.Write(addr.STAT, 0xFF)
		assert.Equal(t, byte(0xF8), b.Read(addr.STAT), "only interrupt selects are writable")

		b.Write(addr.LCDC, 0x91)
		assert.Equal(t, byte(0x91), b.Read(addr.LCDC))
		assert.True(t, b.GPU.Control().Enabled)
	})

	t.Run("audio", func(t *testing.T) {
		b.Write(addr.NR50, 0x35)
		assert.Equal(t, byte(0x35), b.Read(addr.NR50))
		b.Write(addr.WaveRAMStart, 0x9A)
		assert.Equal(t, byte(0x9A), b.Read(addr.WaveRAMStart))
	})

	t.Run("oam updates sprite table", func(t *testing.T) {
		b.Write(0xFE04, 0x30)
		b.Write(0xFE05, 0x18)
		s := b.Sprites().Get(1)
		assert.Equal(t, 0x30-16, s.Y)
		assert.Equal(t, 0x18-8, s.X)
	})
}
