package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/audio"
	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
	"github.com/valerio/go-jeebie-cgb/jeebie/cartridge"
	"github.com/valerio/go-jeebie-cgb/jeebie/serial"
	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

// Mode is the hardware feature set the bus exposes.
type Mode uint8

const (
	// Legacy is the monochrome feature set.
	Legacy Mode = iota
	// Color enables banked VRAM/WRAM, color palettes, HDMA and double speed.
	Color
)

func (m Mode) String() string {
	if m == Color {
		return "cgb"
	}
	return "dmg"
}

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionHigh
)

const (
	vramBankSize = 0x2000
	wramBankSize = 0x1000
	oamSize      = 0xA0
	ioSize       = 0x80
	hramSize     = 0x7F

	bootROMSize      = 0x100
	colorBootROMSize = 0x900
	// color boot ROMs leave the cartridge header at 0x100-0x1FF visible
	colorBootROMGap = 0x200
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick()
	Reset()
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for bus events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithSerial replaces the default serial log sink. newPort receives the
// function requesting the serial interrupt.
func WithSerial(newPort func(irq func()) SerialPort) Option {
	return func(b *Bus) { b.Serial = newPort(b.requestSerial) }
}

// WithLegacyOnly keeps the bus in legacy mode regardless of the cartridge.
func WithLegacyOnly() Option {
	return func(b *Bus) { b.legacyOnly = true }
}

// Bus owns the address space and the peripherals mapped into it.
type Bus struct {
	mode        Mode
	legacyOnly  bool
	doubleSpeed bool
	speedArmed  bool

	bootROM     []byte
	bootEnabled bool
	cart        cartridge.Cartridge

	vram     [2][]byte
	vramBank int
	wram     [8][]byte
	wramBank int
	oam      [oamSize]byte
	io       [ioSize]byte
	hram     [hramSize]byte
	ie       byte

	regionMap [256]memRegion
	ports     [ioSize]port

	Timer    *Timer
	Transfer *Transfer
	GPU      *video.GPU
	Joypad   *Joypad
	Serial   SerialPort
	Audio    *audio.Registers

	sprites *video.SpriteTable

	err    error
	logger *slog.Logger
}

// New returns a bus in legacy mode with no cartridge inserted.
func New(opts ...Option) *Bus {
	b := &Bus{
		Timer:   &Timer{},
		Audio:   audio.New(),
		sprites: video.NewSpriteTable(),
		logger:  slog.Default(),
	}
	for i := range b.vram {
		b.vram[i] = make([]byte, vramBankSize)
	}
	for i := range b.wram {
		b.wram[i] = make([]byte, wramBankSize)
	}

	b.Timer.TimerInterruptHandler = func() { b.RequestInterrupt(addr.TimerInterrupt) }
	b.Joypad = NewJoypad(func() { b.RequestInterrupt(addr.JoypadInterrupt) })
	b.Transfer = NewTransfer(b)
	b.GPU = video.NewGpu(b)

	for _, opt := range opts {
		opt(b)
	}
	if b.Serial == nil {
		b.Serial = serial.NewLogSink(b.requestSerial, serial.WithLogger(b.logger))
	}

	initRegionMap(b)
	b.Reset()
	return b
}

func (b *Bus) requestSerial() {
	b.RequestInterrupt(addr.SerialInterrupt)
}

func initRegionMap(b *Bus) {
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	// OAM, the unusable gap, I/O, HRAM and IE
	b.regionMap[0xFE] = regionHigh
	b.regionMap[0xFF] = regionHigh
}

// Reset powers the bus back on: memory is cleared, the boot ROM is mapped
// again if one is loaded and the peripherals are reset.
func (b *Bus) Reset() {
	for i := range b.vram {
		clear(b.vram[i])
	}
	for i := range b.wram {
		clear(b.wram[i])
	}
	b.oam = [oamSize]byte{}
	b.io = [ioSize]byte{}
	b.hram = [hramSize]byte{}
	b.ie = 0
	b.vramBank = 0
	b.wramBank = 1
	b.doubleSpeed = false
	b.speedArmed = false
	b.bootEnabled = b.bootROM != nil
	b.err = nil

	if b.cart != nil {
		b.cart.Reset()
	}
	b.sprites.Reset()
	b.Timer.Reset()
	b.Transfer.Reset()
	b.GPU.Reset()
	b.Joypad.Reset()
	b.Serial.Reset()
	b.Audio.Reset()

	b.buildPorts()
}

// LoadBootROM maps rom over the start of the address space until 0xFF50 is
// written. Both 256 byte and 2304 byte images are accepted.
func (b *Bus) LoadBootROM(rom []byte) error {
	if len(rom) != bootROMSize && len(rom) != colorBootROMSize {
		return fmt.Errorf("boot ROM must be 0x%X or 0x%X bytes, got 0x%X", bootROMSize, colorBootROMSize, len(rom))
	}
	b.bootROM = append([]byte(nil), rom...)
	b.bootEnabled = true
	b.logger.Info("boot ROM loaded", "size", len(rom))
	return nil
}

// BootROMEnabled reports whether the boot ROM is currently mapped.
func (b *Bus) BootROMEnabled() bool {
	return b.bootEnabled
}

// LoadCartridge inserts cart and selects the hardware mode from its header,
// then resets the bus.
func (b *Bus) LoadCartridge(cart cartridge.Cartridge) {
	b.cart = cart

	header := cart.Header()
	b.mode = Color
	if b.legacyOnly || header.Mode() == cartridge.LegacyOnly {
		b.mode = Legacy
	}
	b.logger.Info("cartridge loaded",
		"title", header.Title,
		"type", fmt.Sprintf("0x%02X", header.Type),
		"compatibility", header.Mode(),
		"mode", b.mode,
	)
	b.Reset()
}

// Cartridge returns the inserted cartridge, nil if none.
func (b *Bus) Cartridge() cartridge.Cartridge {
	return b.cart
}

// SeedPostBoot sets the I/O state the boot ROM leaves behind. It is used
// when emulation starts without a boot ROM.
func (b *Bus) SeedPostBoot() {
	if b.mode == Color {
		b.Timer.Seed(0xA8, 0x1E)
	} else {
		b.Timer.Seed(0xF3, 0xAB)
	}

	b.Write(addr.P1, 0xCF)
	b.Write(addr.TAC, 0x00)
	b.Write(addr.LCDC, 0x91)
	b.Write(addr.BGP, 0xFC)
	b.Write(addr.OBP0, 0xFF)
	b.Write(addr.OBP1, 0xFF)
	b.Write(addr.IF, 0x01)
	b.bootEnabled = false
}

// Mode returns the active hardware mode.
func (b *Bus) Mode() Mode {
	return b.mode
}

// ColorMode reports whether the color feature set is active.
func (b *Bus) ColorMode() bool {
	return b.mode == Color
}

// DoubleSpeed reports whether the CPU runs two steps per external cycle.
func (b *Bus) DoubleSpeed() bool {
	return b.doubleSpeed
}

// SpeedSwitchArmed reports whether KEY1 bit 0 was set, so that the next
// STOP switches speed.
func (b *Bus) SpeedSwitchArmed() bool {
	return b.mode == Color && b.speedArmed
}

// ToggleSpeed completes a speed switch.
func (b *Bus) ToggleSpeed() {
	b.doubleSpeed = !b.doubleSpeed
	b.speedArmed = false
	b.Timer.Reset()
	b.logger.Debug("speed switch", "double", b.doubleSpeed)
}

// Tick advances the peripherals clocked at the external rate by one cycle.
func (b *Bus) Tick() {
	b.Transfer.Tick()
	b.GPU.Tick()
	b.Serial.Tick()
}

// TickTimer advances the timer, which is clocked with the CPU.
func (b *Bus) TickTimer() {
	b.Timer.Tick()
}

// Err returns the first fatal fault recorded on the bus.
func (b *Bus) Err() error {
	return b.err
}

// Fail records err as the bus fault unless one is already set.
func (b *Bus) Fail(err error) {
	if b.err != nil || err == nil {
		return
	}
	b.err = err
	b.logger.Error("bus fault", "err", err)
}

// RequestInterrupt sets the IF bit of interrupt.
func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.io[addr.IF-addr.IOStart] |= interrupt.Mask()
}

// VRAM returns one of the two video RAM banks.
func (b *Bus) VRAM(bank int) []byte {
	return b.vram[bank&1]
}

// Sprites returns the decoded copy of OAM.
func (b *Bus) Sprites() *video.SpriteTable {
	return b.sprites
}

// HBlank reports whether the video unit is in horizontal blank.
func (b *Bus) HBlank() bool {
	return b.GPU.HBlank()
}

// Read returns the byte at address. Faults are recorded on the bus.
func (b *Bus) Read(address uint16) byte {
	value, err := b.read(address)
	if err != nil {
		b.Fail(err)
	}
	return value
}

// Write stores value at address. Faults are recorded on the bus.
func (b *Bus) Write(address uint16, value byte) {
	if err := b.write(address, value); err != nil {
		b.Fail(err)
	}
}

// GetByte is the checked form of Read. Errors are returned, not recorded.
func (b *Bus) GetByte(address int) (byte, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}
	return b.read(uint16(address))
}

// SetByte is the checked form of Write. Errors are returned, not recorded.
func (b *Bus) SetByte(address int, value byte) error {
	if err := checkAddress(address); err != nil {
		return err
	}
	return b.write(uint16(address), value)
}

// GetWord reads a little endian word from address and address+1.
func (b *Bus) GetWord(address int) (uint16, error) {
	if err := checkAddress(address + 1); err != nil {
		return 0, err
	}
	low, err := b.GetByte(address)
	if err != nil {
		return 0, err
	}
	high, err := b.GetByte(address + 1)
	if err != nil {
		return 0, err
	}
	return bit.Combine(high, low), nil
}

// SetWord writes a little endian word to address and address+1.
func (b *Bus) SetWord(address int, value uint16) error {
	if err := checkAddress(address + 1); err != nil {
		return err
	}
	if err := b.SetByte(address, bit.Low(value)); err != nil {
		return err
	}
	return b.SetByte(address+1, bit.High(value))
}

func checkAddress(address int) error {
	if address < 0 || address > 0xFFFF {
		return fmt.Errorf("%w: 0x%X", ErrAddressOutOfRange, address)
	}
	return nil
}

func (b *Bus) read(address uint16) (byte, error) {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.bootMapped(address) {
			return b.bootROM[address], nil
		}
		if b.cart == nil {
			return 0xFF, fmt.Errorf("%w: read 0x%04X", ErrNoCartridge, address)
		}
		if address < addr.ROMBankN {
			return b.cart.ROM0()[address], nil
		}
		return b.cart.ROMX()[address-addr.ROMBankN], nil
	case regionVRAM:
		return b.vram[b.vramBank][address-addr.VRAMStart], nil
	case regionExtRAM:
		if b.cart == nil {
			return 0xFF, fmt.Errorf("%w: read 0x%04X", ErrNoCartridge, address)
		}
		ram := b.cart.RAM()
		offset := int(address - addr.ExternalRAM)
		if offset >= len(ram) {
			return 0xFF, nil
		}
		return ram[offset], nil
	case regionWRAM:
		return *b.wramCell(address), nil
	case regionEcho:
		return *b.wramCell(address - 0x2000), nil
	}

	switch {
	case address <= addr.OAMEnd:
		return b.oam[address-addr.OAMStart], nil
	case address < addr.IOStart:
		return 0xFF, nil
	case address < addr.HRAMStart:
		return b.readIO(address - addr.IOStart), nil
	case address < addr.IE:
		return b.hram[address-addr.HRAMStart], nil
	}
	return 0xE0 | b.ie, nil
}

func (b *Bus) write(address uint16, value byte) error {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.cart == nil {
			return fmt.Errorf("%w: write 0x%02X to 0x%04X", ErrNoCartridge, value, address)
		}
		if !b.cart.Control(address, value) {
			return fmt.Errorf("%w: write 0x%02X to ROM at 0x%04X", ErrNotWritable, value, address)
		}
		return nil
	case regionVRAM:
		b.vram[b.vramBank][address-addr.VRAMStart] = value
		return nil
	case regionExtRAM:
		if b.cart == nil {
			return fmt.Errorf("%w: write 0x%02X to 0x%04X", ErrNoCartridge, value, address)
		}
		ram := b.cart.RAM()
		if offset := int(address - addr.ExternalRAM); offset < len(ram) {
			ram[offset] = value
		}
		return nil
	case regionWRAM:
		*b.wramCell(address) = value
		return nil
	case regionEcho:
		*b.wramCell(address - 0x2000) = value
		return nil
	}

	switch {
	case address <= addr.OAMEnd:
		offset := address - addr.OAMStart
		b.oam[offset] = value
		b.sprites.Write(offset, value)
	case address < addr.IOStart:
		// unusable, writes are dropped
	case address < addr.HRAMStart:
		b.writeIO(address-addr.IOStart, value)
	case address < addr.IE:
		b.hram[address-addr.HRAMStart] = value
	default:
		b.ie = value
	}
	return nil
}

func (b *Bus) bootMapped(address uint16) bool {
	if !b.bootEnabled {
		return false
	}
	if address < bootROMSize {
		return true
	}
	return len(b.bootROM) == colorBootROMSize && address >= colorBootROMGap && address < colorBootROMSize
}

func (b *Bus) wramCell(address uint16) *byte {
	if address < addr.WRAMBankN {
		return &b.wram[0][address-addr.WRAMBank0]
	}
	return &b.wram[b.wramBank][address-addr.WRAMBankN]
}
