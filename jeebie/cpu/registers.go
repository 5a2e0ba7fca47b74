package cpu

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
		return
	}
	c.resetFlag(flag)
}

// setFlags replaces all four flags at once.
func (c *CPU) setFlags(zero, sub, halfCarry, carry bool) {
	c.f = 0
	c.setFlagToCondition(zeroFlag, zero)
	c.setFlagToCondition(subFlag, sub)
	c.setFlagToCondition(halfCarryFlag, halfCarry)
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// Operand encodings shared by most opcodes: 3 bit register indices
// (B C D E H L (HL) A) and 2 bit register pair indices.
const (
	regB = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

// reg8 returns the register selected by index, reading memory for (HL).
func (c *CPU) reg8(index uint8) uint8 {
	switch index & 7 {
	case regB:
		return c.b
	case regC:
		return c.c
	case regD:
		return c.d
	case regE:
		return c.e
	case regH:
		return c.h
	case regL:
		return c.l
	case regHLIndirect:
		return c.bus.Read(c.getHL())
	}
	return c.a
}

func (c *CPU) setReg8(index, value uint8) {
	switch index & 7 {
	case regB:
		c.b = value
	case regC:
		c.c = value
	case regD:
		c.d = value
	case regE:
		c.e = value
	case regH:
		c.h = value
	case regL:
		c.l = value
	case regHLIndirect:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// reg16 selects BC, DE, HL or SP.
func (c *CPU) reg16(index uint8) uint16 {
	switch index & 3 {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	}
	return c.sp
}

func (c *CPU) setReg16(index uint8, value uint16) {
	switch index & 3 {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// stackReg16 selects BC, DE, HL or AF, as used by PUSH and POP.
func (c *CPU) stackReg16(index uint8) uint16 {
	if index&3 == 3 {
		return c.getAF()
	}
	return c.reg16(index)
}

func (c *CPU) setStackReg16(index uint8, value uint16) {
	if index&3 == 3 {
		c.setAF(value)
		return
	}
	c.setReg16(index, value)
}

// condition evaluates the NZ, Z, NC, C branch conditions.
func (c *CPU) condition(index uint8) bool {
	switch index & 3 {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	}
	return c.isSetFlag(carryFlag)
}
