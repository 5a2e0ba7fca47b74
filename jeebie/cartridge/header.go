package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidROM is returned for images too small to hold a cartridge header.
var ErrInvalidROM = errors.New("invalid ROM image")

const (
	titleAddress          = 0x134
	colorFlagAddress      = 0x143
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
	headerEnd             = 0x14F
)

// Compatibility is derived from the color flag at 0x143.
type Compatibility uint8

const (
	// LegacyOnly titles run on monochrome hardware only.
	LegacyOnly Compatibility = iota
	// Compatible titles support both generations.
	Compatible
	// ColorOnly titles require color hardware.
	ColorOnly
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case ColorOnly:
		return "color-only"
	}
	return "legacy-only"
}

// Header is the cartridge metadata stored at 0x134-0x14F.
type Header struct {
	Title          string
	ColorFlag      byte
	Type           byte
	ROMSizeCode    byte
	RAMSizeCode    byte
	Version        byte
	HeaderChecksum byte

	checksumOK bool
}

// ParseHeader decodes the cartridge header from a ROM image.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) <= headerEnd {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrInvalidROM, len(rom), headerEnd+1)
	}

	h := Header{
		ColorFlag:      rom[colorFlagAddress],
		Type:           rom[cartridgeTypeAddress],
		ROMSizeCode:    rom[romSizeAddress],
		RAMSizeCode:    rom[ramSizeAddress],
		Version:        rom[versionNumberAddress],
		HeaderChecksum: rom[headerChecksumAddress],
	}

	// color titles reuse the last bytes of the title area
	titleEnd := colorFlagAddress + 1
	if h.ColorFlag&0x80 != 0 {
		titleEnd = colorFlagAddress
	}
	h.Title = strings.TrimRight(string(rom[titleAddress:titleEnd]), "\x00 ")

	var sum byte
	for _, b := range rom[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	h.checksumOK = sum == h.HeaderChecksum

	return h, nil
}

// Mode reports which hardware generations the title supports.
func (h Header) Mode() Compatibility {
	switch h.ColorFlag {
	case 0xC0:
		return ColorOnly
	case 0x80:
		return Compatible
	}
	return LegacyOnly
}

// ChecksumValid reports whether the header checksum at 0x14D matches.
func (h Header) ChecksumValid() bool {
	return h.checksumOK
}

// ROMBanks returns the number of 16KB ROM banks declared by the header.
func (h Header) ROMBanks() int {
	if h.ROMSizeCode > 8 {
		return 2
	}
	return 2 << h.ROMSizeCode
}

// RAMBanks returns the number of 8KB external RAM banks declared by the header.
func (h Header) RAMBanks() int {
	switch h.RAMSizeCode {
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	}
	return 0
}
