package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstructionCosts(t *testing.T) {
	testCases := []struct {
		desc    string
		program []byte
		setup   func(c *CPU, bus *testBus)
		cost    int
		check   func(t *testing.T, c *CPU, bus *testBus)
	}{
		{desc: "nop", program: []byte{0x00}, cost: 1},
		{
			desc: "ld bc,nn", program: []byte{0x01, 0x34, 0x12}, cost: 3,
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x1234), c.getBC()) },
		},
		{
			desc: "ld (hl),n", program: []byte{0x36, 0x77}, cost: 3,
			setup: func(c *CPU, _ *testBus) { c.setHL(0xC000) },
			check: func(t *testing.T, _ *CPU, bus *testBus) { assert.Equal(t, byte(0x77), bus.mem[0xC000]) },
		},
		{
			desc: "ld a,(hl)", program: []byte{0x7E}, cost: 2,
			setup: func(c *CPU, bus *testBus) { c.setHL(0xC000); bus.mem[0xC000] = 0x42 },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint8(0x42), c.a) },
		},
		{
			desc: "ld (hl+),a", program: []byte{0x22}, cost: 2,
			setup: func(c *CPU, _ *testBus) { c.setHL(0xC0FF); c.a = 0x12 },
			check: func(t *testing.T, c *CPU, bus *testBus) {
				assert.Equal(t, byte(0x12), bus.mem[0xC0FF])
				assert.Equal(t, uint16(0xC100), c.getHL())
			},
		},
		{
			desc: "jr taken", program: []byte{0x18, 0x05}, cost: 3,
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x0107), c.pc) },
		},
		{
			desc: "jr backwards", program: []byte{0x18, 0xFE}, cost: 3,
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x0100), c.pc) },
		},
		{
			desc: "jr nz not taken", program: []byte{0x20, 0x05}, cost: 2,
			setup: func(c *CPU, _ *testBus) { c.f = uint8(zeroFlag) },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x0102), c.pc) },
		},
		{
			desc: "jp nz taken", program: []byte{0xC2, 0x00, 0xC0}, cost: 4,
			setup: func(c *CPU, _ *testBus) { c.f = 0 },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0xC000), c.pc) },
		},
		{
			desc: "call nc not taken", program: []byte{0xD4, 0x00, 0xC0}, cost: 3,
			setup: func(c *CPU, _ *testBus) { c.f = uint8(carryFlag) },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x0103), c.pc) },
		},
		{
			desc: "call", program: []byte{0xCD, 0x00, 0xC0}, cost: 6,
			check: func(t *testing.T, c *CPU, bus *testBus) {
				assert.Equal(t, uint16(0xC000), c.pc)
				assert.Equal(t, uint16(0xFFFC), c.sp)
				assert.Equal(t, byte(0x01), bus.mem[0xFFFD])
				assert.Equal(t, byte(0x03), bus.mem[0xFFFC])
			},
		},
		{
			desc: "ret z taken", program: []byte{0xC8}, cost: 5,
			setup: func(c *CPU, bus *testBus) {
				c.f = uint8(zeroFlag)
				c.sp = 0xC100
				bus.mem[0xC100], bus.mem[0xC101] = 0x34, 0x12
			},
			check: func(t *testing.T, c *CPU, _ *testBus) {
				assert.Equal(t, uint16(0x1234), c.pc)
				assert.Equal(t, uint16(0xC102), c.sp)
			},
		},
		{
			desc: "ret z not taken", program: []byte{0xC8}, cost: 2,
			setup: func(c *CPU, _ *testBus) { c.f = 0 },
		},
		{desc: "push bc", program: []byte{0xC5}, cost: 4},
		{
			desc: "pop af masks low flag bits", program: []byte{0xF1}, cost: 3,
			setup: func(c *CPU, bus *testBus) {
				c.sp = 0xC100
				bus.mem[0xC100], bus.mem[0xC101] = 0xFF, 0x12
			},
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x12F0), c.getAF()) },
		},
		{
			desc: "ld (nn),sp", program: []byte{0x08, 0x00, 0xC0}, cost: 5,
			check: func(t *testing.T, _ *CPU, bus *testBus) {
				assert.Equal(t, []byte{0xFE, 0xFF}, bus.mem[0xC000:0xC002])
			},
		},
		{
			desc: "add sp,e", program: []byte{0xE8, 0xFF}, cost: 4,
			setup: func(c *CPU, _ *testBus) { c.sp = 0x0001 },
			check: func(t *testing.T, c *CPU, _ *testBus) {
				assert.Equal(t, uint16(0x0000), c.sp)
				assert.Equal(t, uint8(halfCarryFlag|carryFlag), c.f)
			},
		},
		{
			desc: "ld hl,sp+e", program: []byte{0xF8, 0x02}, cost: 3,
			check: func(t *testing.T, c *CPU, _ *testBus) {
				assert.Equal(t, uint16(0x0000), c.getHL())
				assert.Equal(t, uint8(halfCarryFlag|carryFlag), c.f)
			},
		},
		{
			desc: "ldh (n),a", program: []byte{0xE0, 0x80}, cost: 3,
			setup: func(c *CPU, _ *testBus) { c.a = 0x99 },
			check: func(t *testing.T, _ *CPU, bus *testBus) { assert.Equal(t, byte(0x99), bus.mem[0xFF80]) },
		},
		{
			desc: "inc (hl)", program: []byte{0x34}, cost: 3,
			setup: func(c *CPU, bus *testBus) { c.setHL(0xC000); bus.mem[0xC000] = 0x0F; c.f = uint8(carryFlag) },
			check: func(t *testing.T, c *CPU, bus *testBus) {
				assert.Equal(t, byte(0x10), bus.mem[0xC000])
				assert.Equal(t, uint8(halfCarryFlag|carryFlag), c.f)
			},
		},
		{
			desc: "rst 38", program: []byte{0xFF}, cost: 4,
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint16(0x0038), c.pc) },
		},
		{
			desc: "cb swap a", program: []byte{0xCB, 0x37}, cost: 2,
			setup: func(c *CPU, _ *testBus) { c.a = 0xF1 },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint8(0x1F), c.a) },
		},
		{
			desc: "cb bit 7,(hl)", program: []byte{0xCB, 0x7E}, cost: 3,
			setup: func(c *CPU, bus *testBus) { c.setHL(0xC000); bus.mem[0xC000] = 0x80; c.f = 0 },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint8(halfCarryFlag), c.f) },
		},
		{
			desc: "cb res 0,(hl)", program: []byte{0xCB, 0x86}, cost: 4,
			setup: func(c *CPU, bus *testBus) { c.setHL(0xC000); bus.mem[0xC000] = 0xFF },
			check: func(t *testing.T, _ *CPU, bus *testBus) { assert.Equal(t, byte(0xFE), bus.mem[0xC000]) },
		},
		{
			desc: "cb set 3,b", program: []byte{0xCB, 0xD8}, cost: 2,
			setup: func(c *CPU, _ *testBus) { c.b = 0 },
			check: func(t *testing.T, c *CPU, _ *testBus) { assert.Equal(t, uint8(0x08), c.b) },
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, bus := newTestCPU(tC.program...)
			if tC.setup != nil {
				tC.setup(c, bus)
			}

			assert.Equal(t, tC.cost, step(c))
			if tC.check != nil {
				tC.check(t, c, bus)
			}
		})
	}
}

func TestALU(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode byte
		a, n   uint8
		carry  bool
		want   uint8
		flags  Flag
	}{
		{desc: "add overflow", opcode: 0xC6, a: 0x3A, n: 0xC6, want: 0x00, flags: zeroFlag | halfCarryFlag | carryFlag},
		{desc: "adc with carry", opcode: 0xCE, a: 0xE1, n: 0x0F, carry: true, want: 0xF1, flags: halfCarryFlag},
		{desc: "sub to zero", opcode: 0xD6, a: 0x3E, n: 0x3E, want: 0x00, flags: zeroFlag | subFlag},
		{desc: "sbc with carry", opcode: 0xDE, a: 0x3B, n: 0x2A, carry: true, want: 0x10, flags: subFlag},
		{desc: "sbc borrow", opcode: 0xDE, a: 0x00, n: 0x00, carry: true, want: 0xFF, flags: subFlag | halfCarryFlag | carryFlag},
		{desc: "and", opcode: 0xE6, a: 0x5A, n: 0x3F, want: 0x1A, flags: halfCarryFlag},
		{desc: "xor to zero", opcode: 0xEE, a: 0xFF, n: 0xFF, want: 0x00, flags: zeroFlag},
		{desc: "or", opcode: 0xF6, a: 0x5A, n: 0x03, want: 0x5B},
		{desc: "cp less", opcode: 0xFE, a: 0x3C, n: 0x40, want: 0x3C, flags: subFlag | carryFlag},
		{desc: "cp half borrow", opcode: 0xFE, a: 0x3C, n: 0x2F, want: 0x3C, flags: subFlag | halfCarryFlag},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU(tC.opcode, tC.n)
			c.a = tC.a
			c.f = 0
			c.setFlagToCondition(carryFlag, tC.carry)

			step(c)

			assert.Equal(t, tC.want, c.a)
			assert.Equal(t, uint8(tC.flags), c.f)
		})
	}
}

func TestDAA(t *testing.T) {
	t.Run("after addition", func(t *testing.T) {
		c, _ := newTestCPU(0xC6, 0x38, 0x27)
		c.a = 0x45

		step(c)
		step(c)
		assert.Equal(t, uint8(0x83), c.a)
		assert.False(t, c.isSetFlag(carryFlag))
	})

	t.Run("after subtraction", func(t *testing.T) {
		c, _ := newTestCPU(0xD6, 0x38, 0x27)
		c.a = 0x83

		step(c)
		step(c)
		assert.Equal(t, uint8(0x45), c.a)
		assert.True(t, c.isSetFlag(subFlag))
	})

	t.Run("decimal carry", func(t *testing.T) {
		c, _ := newTestCPU(0xC6, 0x01, 0x27)
		c.a = 0x99

		step(c)
		step(c)
		assert.Equal(t, uint8(0x00), c.a)
		assert.Equal(t, uint8(zeroFlag|carryFlag), c.f)
	})
}

func TestRotates(t *testing.T) {
	testCases := []struct {
		desc    string
		program []byte
		a       uint8
		carry   bool
		want    uint8
		flags   Flag
	}{
		{desc: "rlca clears zero", program: []byte{0x07}, a: 0x00, want: 0x00},
		{desc: "rlca", program: []byte{0x07}, a: 0x85, want: 0x0B, flags: carryFlag},
		{desc: "rra through carry", program: []byte{0x1F}, a: 0x01, carry: true, want: 0x80, flags: carryFlag},
		{desc: "cb rl a sets zero", program: []byte{0xCB, 0x17}, a: 0x80, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "cb sra keeps sign", program: []byte{0xCB, 0x2F}, a: 0x81, want: 0xC0, flags: carryFlag},
		{desc: "cb srl", program: []byte{0xCB, 0x3F}, a: 0x01, want: 0x00, flags: zeroFlag | carryFlag},
		{desc: "cb sla", program: []byte{0xCB, 0x27}, a: 0x41, want: 0x82},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, _ := newTestCPU(tC.program...)
			c.a = tC.a
			c.f = 0
			c.setFlagToCondition(carryFlag, tC.carry)

			step(c)

			assert.Equal(t, tC.want, c.a)
			assert.Equal(t, uint8(tC.flags), c.f)
		})
	}
}

func TestCPU_stack(t *testing.T) {
	c, _ := newTestCPU()

	c.sp = 0xFFFE
	c.pushStack(0x0102)
	assert.Equal(t, uint16(0xFFFC), c.sp)

	assert.Equal(t, uint16(0x0102), c.popStack())
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestCPU_incDecFlags(t *testing.T) {
	c, _ := newTestCPU()

	c.f = uint8(carryFlag)
	assert.Equal(t, uint8(0x00), c.inc(0xFF))
	assert.Equal(t, uint8(zeroFlag|halfCarryFlag|carryFlag), c.f, "carry untouched")

	c.f = 0
	assert.Equal(t, uint8(0x0F), c.dec(0x10))
	assert.Equal(t, uint8(subFlag|halfCarryFlag), c.f)

	c.f = 0
	assert.Equal(t, uint8(0x00), c.dec(0x01))
	assert.Equal(t, uint8(zeroFlag|subFlag), c.f)
}
