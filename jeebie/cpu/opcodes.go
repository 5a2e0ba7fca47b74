package cpu

import "github.com/valerio/go-jeebie-cgb/jeebie/bit"

// Opcode executes one instruction and returns its cost in machine cycles,
// including the opcode fetch.
type Opcode func(*CPU) int

// opcodes is the primary decode table. Unassigned opcodes are nil and 0xCB
// is handled by the decoder as a prefix.
var opcodes [256]Opcode

func init() {
	for op := 0x40; op <= 0x7F; op++ {
		if op != 0x76 {
			opcodes[op] = load(uint8(op>>3)&7, uint8(op)&7)
		}
	}
	for op := 0x80; op <= 0xBF; op++ {
		opcodes[op] = aluRegister(uint8(op>>3)&7, uint8(op)&7)
	}

	for r := uint8(0); r < 8; r++ {
		opcodes[0x04|r<<3] = incRegister(r)
		opcodes[0x05|r<<3] = decRegister(r)
		opcodes[0x06|r<<3] = loadImmediate(r)
		opcodes[0xC6|r<<3] = aluImmediate(r)
		opcodes[0xC7|r<<3] = restart(uint16(r) * 8)
	}

	for p := uint8(0); p < 4; p++ {
		opcodes[0x01|p<<4] = loadWordImmediate(p)
		opcodes[0x03|p<<4] = incWord(p)
		opcodes[0x09|p<<4] = addHL(p)
		opcodes[0x0B|p<<4] = decWord(p)
		opcodes[0xC1|p<<4] = pop(p)
		opcodes[0xC5|p<<4] = push(p)

		opcodes[0x20|p<<3] = jumpRelativeIf(p)
		opcodes[0xC0|p<<3] = returnIf(p)
		opcodes[0xC2|p<<3] = jumpIf(p)
		opcodes[0xC4|p<<3] = callIf(p)
	}

	fixed := map[uint8]Opcode{
		0x00: opcodeNOP,
		0x02: func(c *CPU) int { c.bus.Write(c.getBC(), c.a); return 2 },
		0x12: func(c *CPU) int { c.bus.Write(c.getDE(), c.a); return 2 },
		0x22: func(c *CPU) int { c.bus.Write(c.getHL(), c.a); c.setHL(c.getHL() + 1); return 2 },
		0x32: func(c *CPU) int { c.bus.Write(c.getHL(), c.a); c.setHL(c.getHL() - 1); return 2 },
		0x0A: func(c *CPU) int { c.a = c.bus.Read(c.getBC()); return 2 },
		0x1A: func(c *CPU) int { c.a = c.bus.Read(c.getDE()); return 2 },
		0x2A: func(c *CPU) int { c.a = c.bus.Read(c.getHL()); c.setHL(c.getHL() + 1); return 2 },
		0x3A: func(c *CPU) int { c.a = c.bus.Read(c.getHL()); c.setHL(c.getHL() - 1); return 2 },

		0x07: func(c *CPU) int { c.a = c.rlc(c.a); c.resetFlag(zeroFlag); return 1 },
		0x0F: func(c *CPU) int { c.a = c.rrc(c.a); c.resetFlag(zeroFlag); return 1 },
		0x17: func(c *CPU) int { c.a = c.rl(c.a); c.resetFlag(zeroFlag); return 1 },
		0x1F: func(c *CPU) int { c.a = c.rr(c.a); c.resetFlag(zeroFlag); return 1 },

		0x08: opcodeStoreSP,
		0x10: opcodeSTOP,
		0x18: func(c *CPU) int { c.jumpRelative(c.readSignedImmediate()); return 3 },

		0x27: func(c *CPU) int { c.daa(); return 1 },
		0x2F: opcodeCPL,
		0x37: func(c *CPU) int { c.resetFlag(subFlag | halfCarryFlag); c.setFlag(carryFlag); return 1 },
		0x3F: opcodeCCF,
		0x76: func(c *CPU) int { c.halt(); return 1 },

		0xC3: func(c *CPU) int { c.pc = c.readImmediateWord(); return 4 },
		0xC9: func(c *CPU) int { c.pc = c.popStack(); return 4 },
		0xD9: func(c *CPU) int { c.pc = c.popStack(); c.interruptsEnabled = true; return 4 },
		0xCD: func(c *CPU) int { c.call(c.readImmediateWord()); return 6 },
		0xE9: func(c *CPU) int { c.pc = c.getHL(); return 1 },

		0xE0: func(c *CPU) int { c.bus.Write(0xFF00|uint16(c.readImmediate()), c.a); return 3 },
		0xF0: func(c *CPU) int { c.a = c.bus.Read(0xFF00 | uint16(c.readImmediate())); return 3 },
		0xE2: func(c *CPU) int { c.bus.Write(0xFF00|uint16(c.c), c.a); return 2 },
		0xF2: func(c *CPU) int { c.a = c.bus.Read(0xFF00 | uint16(c.c)); return 2 },
		0xEA: func(c *CPU) int { c.bus.Write(c.readImmediateWord(), c.a); return 4 },
		0xFA: func(c *CPU) int { c.a = c.bus.Read(c.readImmediateWord()); return 4 },

		0xE8: func(c *CPU) int { c.sp = c.offsetSP(c.readSignedImmediate()); return 4 },
		0xF8: func(c *CPU) int { c.setHL(c.offsetSP(c.readSignedImmediate())); return 3 },
		0xF9: func(c *CPU) int { c.sp = c.getHL(); return 2 },

		0xF3: opcodeDI,
		0xFB: opcodeEI,
	}
	for op, fn := range fixed {
		opcodes[op] = fn
	}
}

// NOP
func opcodeNOP(_ *CPU) int {
	return 1
}

// LD (nn), SP
func opcodeStoreSP(c *CPU) int {
	address := c.readImmediateWord()
	c.bus.Write(address, bit.Low(c.sp))
	c.bus.Write(address+1, bit.High(c.sp))
	return 5
}

// STOP 0
func opcodeSTOP(c *CPU) int {
	// the padding byte is skipped
	c.readImmediate()
	c.stop()
	return 1
}

// CPL
func opcodeCPL(c *CPU) int {
	c.a = ^c.a
	c.setFlag(subFlag | halfCarryFlag)
	return 1
}

// CCF
func opcodeCCF(c *CPU) int {
	c.resetFlag(subFlag | halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
	return 1
}

// DI
func opcodeDI(c *CPU) int {
	c.interruptsEnabled = false
	c.eiPending = false
	return 1
}

// EI, takes effect after the next instruction
func opcodeEI(c *CPU) int {
	c.eiPending = true
	return 1
}

// LD r, r'
func load(dst, src uint8) Opcode {
	cost := 1
	if dst == regHLIndirect || src == regHLIndirect {
		cost = 2
	}
	return func(c *CPU) int {
		c.setReg8(dst, c.reg8(src))
		return cost
	}
}

// LD r, n
func loadImmediate(dst uint8) Opcode {
	cost := 2
	if dst == regHLIndirect {
		cost = 3
	}
	return func(c *CPU) int {
		c.setReg8(dst, c.readImmediate())
		return cost
	}
}

// INC r
func incRegister(r uint8) Opcode {
	cost := 1
	if r == regHLIndirect {
		cost = 3
	}
	return func(c *CPU) int {
		c.setReg8(r, c.inc(c.reg8(r)))
		return cost
	}
}

// DEC r
func decRegister(r uint8) Opcode {
	cost := 1
	if r == regHLIndirect {
		cost = 3
	}
	return func(c *CPU) int {
		c.setReg8(r, c.dec(c.reg8(r)))
		return cost
	}
}

// ADD/ADC/SUB/SBC/AND/XOR/OR/CP A, r
func aluRegister(op, src uint8) Opcode {
	cost := 1
	if src == regHLIndirect {
		cost = 2
	}
	return func(c *CPU) int {
		c.alu(op, c.reg8(src))
		return cost
	}
}

// ADD/ADC/SUB/SBC/AND/XOR/OR/CP A, n
func aluImmediate(op uint8) Opcode {
	return func(c *CPU) int {
		c.alu(op, c.readImmediate())
		return 2
	}
}

// LD rr, nn
func loadWordImmediate(p uint8) Opcode {
	return func(c *CPU) int {
		c.setReg16(p, c.readImmediateWord())
		return 3
	}
}

// INC rr
func incWord(p uint8) Opcode {
	return func(c *CPU) int {
		c.setReg16(p, c.reg16(p)+1)
		return 2
	}
}

// DEC rr
func decWord(p uint8) Opcode {
	return func(c *CPU) int {
		c.setReg16(p, c.reg16(p)-1)
		return 2
	}
}

// ADD HL, rr
func addHL(p uint8) Opcode {
	return func(c *CPU) int {
		c.addToHL(c.reg16(p))
		return 2
	}
}

// PUSH rr
func push(p uint8) Opcode {
	return func(c *CPU) int {
		c.pushStack(c.stackReg16(p))
		return 4
	}
}

// POP rr
func pop(p uint8) Opcode {
	return func(c *CPU) int {
		c.setStackReg16(p, c.popStack())
		return 3
	}
}

// RST n
func restart(vector uint16) Opcode {
	return func(c *CPU) int {
		c.call(vector)
		return 4
	}
}

// JR cc, e
func jumpRelativeIf(cc uint8) Opcode {
	return func(c *CPU) int {
		offset := c.readSignedImmediate()
		if !c.condition(cc) {
			return 2
		}
		c.jumpRelative(offset)
		return 3
	}
}

// JP cc, nn
func jumpIf(cc uint8) Opcode {
	return func(c *CPU) int {
		target := c.readImmediateWord()
		if !c.condition(cc) {
			return 3
		}
		c.pc = target
		return 4
	}
}

// CALL cc, nn
func callIf(cc uint8) Opcode {
	return func(c *CPU) int {
		target := c.readImmediateWord()
		if !c.condition(cc) {
			return 3
		}
		c.call(target)
		return 6
	}
}

// RET cc
func returnIf(cc uint8) Opcode {
	return func(c *CPU) int {
		if !c.condition(cc) {
			return 2
		}
		c.pc = c.popStack()
		return 5
	}
}

func (c *CPU) jumpRelative(offset int8) {
	c.pc += uint16(int16(offset))
}

func (c *CPU) call(target uint16) {
	c.pushStack(c.pc)
	c.pc = target
}
