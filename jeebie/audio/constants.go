package audio

// Register layout
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
const (
	// registerCount covers 0xFF10-0xFF2F, wave RAM is stored separately
	registerCount = 0x20
	// waveRAMSize is the size of wave pattern RAM in bytes (16 bytes = 32 nibbles)
	waveRAMSize = 16

	nr52PowerBit = 7
)

// readMasks holds the bits that always read back as 1, indexed from 0xFF10.
var readMasks = [registerCount]byte{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // unused, NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // unused, NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // unused
}

// triggerRegisters maps each channel's NRx4 offset to its NR52 status bit.
var triggerRegisters = map[uint16]uint8{
	0x04: 0,
	0x09: 1,
	0x0E: 2,
	0x13: 3,
}

// powerOnValues are the register contents left by the boot ROM.
// Reference: https://gbdev.io/pandocs/Power_Up_Sequence.html#hardware-registers
var powerOnValues = [registerCount]byte{
	0x80, 0xBF, 0xF3, 0xFF, 0xBF,
	0xFF, 0x3F, 0x00, 0xFF, 0xBF,
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF,
	0xFF, 0xFF, 0x00, 0x00, 0xBF,
	0x77, 0xF3, 0xF1,
}
