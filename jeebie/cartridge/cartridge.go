package cartridge

import (
	"fmt"
	"log/slog"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// Cartridge is the bank controller view used by the bus. Bank selection is
// applied on every call, so the returned slices must not be cached.
type Cartridge interface {
	// ROM0 is the bank mapped at 0x0000-0x3FFF.
	ROM0() []byte
	// ROMX is the bank mapped at 0x4000-0x7FFF.
	ROMX() []byte
	// RAM is the bank mapped at 0xA000-0xBFFF, nil when absent or disabled.
	RAM() []byte
	// Control handles a write to the ROM area. It returns false when no
	// controller register is mapped at address.
	Control(address uint16, value byte) bool
	Header() Header
	Reset()
}

// New parses the header of data and returns the matching controller.
// Unsupported controller types fall back to ROM only.
func New(data []byte) (Cartridge, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	rom := padBanks(data)

	switch header.Type {
	case 0x00, 0x08, 0x09:
		return NewROMOnly(rom, header), nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, header), nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, header), nil
	}

	slog.Warn("unsupported cartridge type, mapping as ROM only",
		"type", fmt.Sprintf("0x%02X", header.Type), "title", header.Title)
	return NewROMOnly(rom, header), nil
}

// padBanks copies data into a buffer holding at least two whole ROM banks.
func padBanks(data []byte) []byte {
	size := len(data)
	if rem := size % romBankSize; rem != 0 {
		size += romBankSize - rem
	}
	if size < 2*romBankSize {
		size = 2 * romBankSize
	}

	rom := make([]byte, size)
	for i := copy(rom, data); i < size; i++ {
		rom[i] = 0xFF
	}
	return rom
}

func romBank(rom []byte, bank int) []byte {
	count := len(rom) / romBankSize
	bank %= count
	return rom[bank*romBankSize : (bank+1)*romBankSize]
}

func ramBank(ram []byte, bank int) []byte {
	count := len(ram) / ramBankSize
	if count == 0 {
		return nil
	}
	bank %= count
	return ram[bank*ramBankSize : (bank+1)*ramBankSize]
}

// ROMOnly maps up to 32KB directly with no banking and no RAM.
type ROMOnly struct {
	rom    []byte
	header Header
}

// NewROMOnly wraps rom, which must hold at least two banks.
func NewROMOnly(rom []byte, header Header) *ROMOnly {
	return &ROMOnly{rom: rom, header: header}
}

func (c *ROMOnly) ROM0() []byte { return romBank(c.rom, 0) }
func (c *ROMOnly) ROMX() []byte { return romBank(c.rom, 1) }
func (c *ROMOnly) RAM() []byte  { return nil }

// Control accepts the writes to 0x2000-0x3FFF that many ROM only titles
// issue while setting up, and rejects the rest.
func (c *ROMOnly) Control(address uint16, _ byte) bool {
	return address >= 0x2000 && address <= 0x3FFF
}

func (c *ROMOnly) Header() Header { return c.header }
func (c *ROMOnly) Reset()         {}

// MBC1 supports up to 2MB ROM and 32KB RAM with two banking modes:
//   - mode 0: the 2 bit register extends the ROM bank, RAM bank fixed at 0
//   - mode 1: the 2 bit register selects the RAM bank and the upper bank
//     bits also apply to 0x0000-0x3FFF
type MBC1 struct {
	rom    []byte
	ram    []byte
	header Header

	romBank     uint8
	upper       uint8
	ramEnabled  bool
	bankingMode uint8
}

// NewMBC1 creates a new MBC1 controller.
func NewMBC1(rom []byte, header Header) *MBC1 {
	m := &MBC1{
		rom:    rom,
		ram:    make([]byte, header.RAMBanks()*ramBankSize),
		header: header,
	}
	m.Reset()
	return m
}

func (m *MBC1) ROM0() []byte {
	if m.bankingMode == 1 {
		return romBank(m.rom, int(m.upper)<<5)
	}
	return romBank(m.rom, 0)
}

func (m *MBC1) ROMX() []byte {
	return romBank(m.rom, int(m.upper)<<5|int(m.romBank))
}

func (m *MBC1) RAM() []byte {
	if !m.ramEnabled {
		return nil
	}
	if m.bankingMode == 1 {
		return ramBank(m.ram, int(m.upper))
	}
	return ramBank(m.ram, 0)
}

func (m *MBC1) Control(address uint16, value byte) bool {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		m.romBank = value & 0x1F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case address <= 0x5FFF:
		m.upper = value & 0x03
	case address <= 0x7FFF:
		m.bankingMode = value & 0x01
	default:
		return false
	}
	return true
}

func (m *MBC1) Header() Header { return m.header }

func (m *MBC1) Reset() {
	m.romBank = 1
	m.upper = 0
	m.ramEnabled = false
	m.bankingMode = 0
}

// MBC5 supports up to 8MB ROM through a 9 bit bank number and 128KB RAM.
// Bank 0 is selectable at 0x4000.
type MBC5 struct {
	rom    []byte
	ram    []byte
	header Header

	romBank    uint16
	ramBank    uint8
	ramEnabled bool
}

// NewMBC5 creates a new MBC5 controller.
func NewMBC5(rom []byte, header Header) *MBC5 {
	m := &MBC5{
		rom:    rom,
		ram:    make([]byte, header.RAMBanks()*ramBankSize),
		header: header,
	}
	m.Reset()
	return m
}

func (m *MBC5) ROM0() []byte { return romBank(m.rom, 0) }
func (m *MBC5) ROMX() []byte { return romBank(m.rom, int(m.romBank)) }

func (m *MBC5) RAM() []byte {
	if !m.ramEnabled {
		return nil
	}
	return ramBank(m.ram, int(m.ramBank))
}

func (m *MBC5) Control(address uint16, value byte) bool {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x2FFF:
		m.romBank = m.romBank&0x100 | uint16(value)
	case address <= 0x3FFF:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case address <= 0x5FFF:
		m.ramBank = value & 0x0F
	case address <= 0x7FFF:
		// unused on MBC5
	default:
		return false
	}
	return true
}

func (m *MBC5) Header() Header { return m.header }

func (m *MBC5) Reset() {
	m.romBank = 1
	m.ramBank = 0
	m.ramEnabled = false
}
