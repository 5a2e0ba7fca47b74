package cpu

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) inc(value uint8) uint8 {
	result := value + 1
	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0x0F == 0)
	return result
}

func (c *CPU) dec(value uint8) uint8 {
	result := value - 1
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0x0F == 0x0F)
	return result
}

// addToA adds value and the optional carry to A, setting all flags.
func (c *CPU) addToA(value, carry uint8) {
	a := c.a
	sum := uint16(a) + uint16(value) + uint16(carry)
	result := uint8(sum & 0xFF)

	c.setFlags(result == 0, false, (a&0xF)+(value&0xF)+carry > 0xF, sum > 0xFF)
	c.a = result
}

// subFromA subtracts value and the optional carry from A, setting all flags.
func (c *CPU) subFromA(value, carry uint8) {
	c.a = c.compare(value, carry)
}

// compare computes A - value - carry and sets the flags without storing it.
func (c *CPU) compare(value, carry uint8) uint8 {
	a := c.a
	diff := int(a) - int(value) - int(carry)
	result := uint8(diff & 0xFF)

	halfCarry := int(a&0xF)-int(value&0xF)-int(carry) < 0
	c.setFlags(result == 0, true, halfCarry, diff < 0)
	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlags(c.a == 0, false, true, false)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlags(c.a == 0, false, false, false)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlags(c.a == 0, false, false, false)
}

// alu runs one of the eight accumulator operations selected by bits 3-5 of
// the opcode: ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(op, value uint8) {
	switch op & 7 {
	case 0:
		c.addToA(value, 0)
	case 1:
		c.addToA(value, c.flagToBit(carryFlag))
	case 2:
		c.subFromA(value, 0)
	case 3:
		c.subFromA(value, c.flagToBit(carryFlag))
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.compare(value, 0)
	}
}

// addToHL adds a 16 bit value to HL, Z is left untouched.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	sum := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, sum > 0xFFFF)
	c.setHL(uint16(sum & 0xFFFF))
}

// offsetSP returns SP plus a signed offset. Carries come from the low byte.
func (c *CPU) offsetSP(offset int8) uint16 {
	sp := c.sp
	value := uint16(int16(offset))
	result := sp + value

	halfCarry := (sp&0x0F)+(value&0x0F) > 0x0F
	carry := (sp&0xFF)+(value&0xFF) > 0xFF
	c.setFlags(false, false, halfCarry, carry)
	return result
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(subFlag) {
		if carry {
			a -= 0x60
		}
		if c.isSetFlag(halfCarryFlag) {
			a -= 0x06
		}
	} else {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// rotate and shift operations, flags as for the 0xCB forms

func (c *CPU) rlc(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rrc(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) rl(value uint8) uint8 {
	result := value<<1 | c.flagToBit(carryFlag)
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) rr(value uint8) uint8 {
	result := value>>1 | c.flagToBit(carryFlag)<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) sla(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

func (c *CPU) sra(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

func (c *CPU) srl(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// testBit implements BIT, C is left untouched.
func (c *CPU) testBit(index, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}
