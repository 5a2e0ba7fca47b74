package addr

// memory map
const (
	// BootROMEnd is the last address shadowed by the boot ROM while enabled.
	BootROMEnd uint16 = 0x00FF
	// ROMBank0 is the fixed cartridge bank.
	ROMBank0 uint16 = 0x0000
	// ROMBankN is the switchable cartridge bank.
	ROMBankN uint16 = 0x4000
	// VRAMStart is the start of video RAM, banked in color mode.
	VRAMStart uint16 = 0x8000
	// ExternalRAM is the cartridge RAM window.
	ExternalRAM uint16 = 0xA000
	// WRAMBank0 is internal work RAM bank 0.
	WRAMBank0 uint16 = 0xC000
	// WRAMBankN is the switchable work RAM bank (1-7).
	WRAMBankN uint16 = 0xD000
	// EchoStart mirrors 0xC000-0xDDFF.
	EchoStart uint16 = 0xE000
	// EchoEnd is the last mirrored address.
	EchoEnd uint16 = 0xFDFF
	// Unusable is the start of the unusable gap after OAM.
	Unusable uint16 = 0xFEA0
	// IOStart is the start of the I/O register block.
	IOStart uint16 = 0xFF00
	// HRAMStart is the start of high RAM.
	HRAMStart uint16 = 0xFF80
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// color-mode registers
const (
	// KEY1 prepares a CPU speed switch, bit 7 reports the current speed.
	KEY1 uint16 = 0xFF4D
	// VBK selects the VRAM bank.
	VBK uint16 = 0xFF4F
	// BootOff unmaps the boot ROM on any non-zero write.
	BootOff uint16 = 0xFF50
	// HDMA1 is the source high byte.
	HDMA1 uint16 = 0xFF51
	// HDMA2 is the source low byte, lower 4 bits ignored.
	HDMA2 uint16 = 0xFF52
	// HDMA3 is the destination high byte, upper 3 bits ignored.
	HDMA3 uint16 = 0xFF53
	// HDMA4 is the destination low byte, lower 4 bits ignored.
	HDMA4 uint16 = 0xFF54
	// HDMA5 starts a transfer and reports its status.
	HDMA5 uint16 = 0xFF55
	// BCPS is the background palette index.
	BCPS uint16 = 0xFF68
	// BCPD is the background palette data port.
	BCPD uint16 = 0xFF69
	// OCPS is the object palette index.
	OCPS uint16 = 0xFF6A
	// OCPD is the object palette data port.
	OCPD uint16 = 0xFF6B
	// SVBK selects the work RAM bank mapped at 0xD000.
	SVBK uint16 = 0xFF70
)

// Audio/Sound registers
// Reference: https://gbdev.io/pandocs/Audio_Registers.html
const (
	// Audio register range
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10 // Channel 1 sweep
	NR11 uint16 = 0xFF11 // Channel 1 length timer & duty cycle
	NR12 uint16 = 0xFF12 // Channel 1 volume & envelope
	NR13 uint16 = 0xFF13 // Channel 1 period low
	NR14 uint16 = 0xFF14 // Channel 1 period high & control

	NR21 uint16 = 0xFF16 // Channel 2 length timer & duty cycle
	NR22 uint16 = 0xFF17 // Channel 2 volume & envelope
	NR23 uint16 = 0xFF18 // Channel 2 period low
	NR24 uint16 = 0xFF19 // Channel 2 period high & control

	NR30 uint16 = 0xFF1A // Channel 3 DAC enable
	NR31 uint16 = 0xFF1B // Channel 3 length timer
	NR32 uint16 = 0xFF1C // Channel 3 output level
	NR33 uint16 = 0xFF1D // Channel 3 period low
	NR34 uint16 = 0xFF1E // Channel 3 period high & control

	NR41 uint16 = 0xFF20 // Channel 4 length timer
	NR42 uint16 = 0xFF21 // Channel 4 volume & envelope
	NR43 uint16 = 0xFF22 // Channel 4 frequency & randomness
	NR44 uint16 = 0xFF23 // Channel 4 control

	NR50 uint16 = 0xFF24 // Master volume & VIN panning
	NR51 uint16 = 0xFF25 // Sound panning
	NR52 uint16 = 0xFF26 // Sound on/off and channel status

	// Wave pattern RAM (32 samples, 4-bit each)
	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// OAM (Object Attribute Memory) - sprite data
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory
	OAMEnd uint16 = 0xFE9F
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData2 is the base of signed tile data (tile 0 of -128..127)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte being shifted out, and the received byte afterwards.
	SB uint16 = 0xFF01
	// SC starts a transfer (bit 7) and selects the clock source (bit 0).
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt is the bit index of one of the five interrupt sources.
// Lower indices have higher priority.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = iota
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt
	// TimerInterrupt is fired when the timer register (TIMA) overflows.
	TimerInterrupt
	// SerialInterrupt is fired when a serial transfer has completed on the game link port.
	SerialInterrupt
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt
)

// InterruptCount is the number of interrupt sources.
const InterruptCount = 5

// InterruptMask selects the bits of IF/IE backed by an interrupt source.
const InterruptMask byte = 0x1F

// Mask returns the IF/IE bit for the interrupt.
func (i Interrupt) Mask() byte {
	return 1 << i
}

// Vector returns the handler address jumped to when the interrupt is serviced.
func (i Interrupt) Vector() uint16 {
	return 0x40 + uint16(i)*8
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "vblank"
	case LCDSTATInterrupt:
		return "lcdstat"
	case TimerInterrupt:
		return "timer"
	case SerialInterrupt:
		return "serial"
	case JoypadInterrupt:
		return "joypad"
	}
	return "unknown"
}
