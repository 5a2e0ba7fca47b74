package cpu

// opcodesCB is the decode table for 0xCB prefixed opcodes. Costs exclude
// the prefix fetch, which the decoder charges.
var opcodesCB [256]Opcode

func init() {
	shifts := [8]func(*CPU, uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}

	for op := 0; op < 256; op++ {
		r := uint8(op) & 7
		n := uint8(op>>3) & 7

		switch op >> 6 {
		case 0:
			opcodesCB[op] = rotate(shifts[n], r)
		case 1:
			opcodesCB[op] = testBit(n, r)
		case 2:
			opcodesCB[op] = resetBit(n, r)
		case 3:
			opcodesCB[op] = setBit(n, r)
		}
	}
}

// readModifyWriteCost is the cost of a CB operation that writes its
// operand back.
func readModifyWriteCost(r uint8) int {
	if r == regHLIndirect {
		return 3
	}
	return 1
}

// RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL r
func rotate(shift func(*CPU, uint8) uint8, r uint8) Opcode {
	cost := readModifyWriteCost(r)
	return func(c *CPU) int {
		c.setReg8(r, shift(c, c.reg8(r)))
		return cost
	}
}

// BIT n, r
func testBit(n, r uint8) Opcode {
	cost := 1
	if r == regHLIndirect {
		cost = 2
	}
	return func(c *CPU) int {
		c.testBit(n, c.reg8(r))
		return cost
	}
}

// RES n, r
func resetBit(n, r uint8) Opcode {
	cost := readModifyWriteCost(r)
	return func(c *CPU) int {
		c.setReg8(r, c.reg8(r)&^(1<<n))
		return cost
	}
}

// SET n, r
func setBit(n, r uint8) Opcode {
	cost := readModifyWriteCost(r)
	return func(c *CPU) int {
		c.setReg8(r, c.reg8(r)|1<<n)
		return cost
	}
}
