package disasm

import (
	"fmt"

	"github.com/valerio/go-jeebie-cgb/jeebie/bit"
)

// Reader is the memory view needed to decode instructions.
type Reader interface {
	Read(address uint16) byte
}

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Instruction string
	Length      int
}

// operand kinds
const (
	none = iota
	imm8
	imm16
	rel8
	// second byte is encoded but not shown
	pad8
)

type entry struct {
	template string
	operand  int
}

var (
	instructions   [256]entry
	cbInstructions [256]string
)

var (
	reg8Names    = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	reg16Names   = [4]string{"BC", "DE", "HL", "SP"}
	stackNames   = [4]string{"BC", "DE", "HL", "AF"}
	condNames    = [4]string{"NZ", "Z", "NC", "C"}
	aluNames     = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	shiftNames   = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	bitOperation = [4]string{"", "BIT", "RES", "SET"}
)

func init() {
	for op := 0x40; op < 0x80; op++ {
		instructions[op] = entry{template: "LD " + reg8Names[(op>>3)&7] + "," + reg8Names[op&7]}
	}
	for op := 0x80; op < 0xC0; op++ {
		instructions[op] = entry{template: aluNames[(op>>3)&7] + reg8Names[op&7]}
	}
	for r := 0; r < 8; r++ {
		instructions[0x04+r<<3] = entry{template: "INC " + reg8Names[r]}
		instructions[0x05+r<<3] = entry{template: "DEC " + reg8Names[r]}
		instructions[0x06+r<<3] = entry{template: "LD " + reg8Names[r] + ",$%02X", operand: imm8}
		instructions[0xC6+r<<3] = entry{template: aluNames[r] + "$%02X", operand: imm8}
		instructions[0xC7+r<<3] = entry{template: fmt.Sprintf("RST $%02X", r<<3)}
	}
	for p := 0; p < 4; p++ {
		instructions[0x01+p<<4] = entry{template: "LD " + reg16Names[p] + ",$%04X", operand: imm16}
		instructions[0x03+p<<4] = entry{template: "INC " + reg16Names[p]}
		instructions[0x0B+p<<4] = entry{template: "DEC " + reg16Names[p]}
		instructions[0x09+p<<4] = entry{template: "ADD HL," + reg16Names[p]}
		instructions[0xC5+p<<4] = entry{template: "PUSH " + stackNames[p]}
		instructions[0xC1+p<<4] = entry{template: "POP " + stackNames[p]}
	}
	for c := 0; c < 4; c++ {
		instructions[0x20+c<<3] = entry{template: "JR " + condNames[c] + ",$%04X", operand: rel8}
		instructions[0xC0+c<<3] = entry{template: "RET " + condNames[c]}
		instructions[0xC2+c<<3] = entry{template: "JP " + condNames[c] + ",$%04X", operand: imm16}
		instructions[0xC4+c<<3] = entry{template: "CALL " + condNames[c] + ",$%04X", operand: imm16}
	}

	fixed := map[int]entry{
		0x00: {template: "NOP"},
		0x02: {template: "LD (BC),A"},
		0x12: {template: "LD (DE),A"},
		0x22: {template: "LD (HL+),A"},
		0x32: {template: "LD (HL-),A"},
		0x0A: {template: "LD A,(BC)"},
		0x1A: {template: "LD A,(DE)"},
		0x2A: {template: "LD A,(HL+)"},
		0x3A: {template: "LD A,(HL-)"},
		0x07: {template: "RLCA"},
		0x0F: {template: "RRCA"},
		0x17: {template: "RLA"},
		0x1F: {template: "RRA"},
		0x08: {template: "LD ($%04X),SP", operand: imm16},
		0x10: {template: "STOP", operand: pad8},
		0x18: {template: "JR $%04X", operand: rel8},
		0x27: {template: "DAA"},
		0x2F: {template: "CPL"},
		0x37: {template: "SCF"},
		0x3F: {template: "CCF"},
		0x76: {template: "HALT"},
		0xC3: {template: "JP $%04X", operand: imm16},
		0xC9: {template: "RET"},
		0xD9: {template: "RETI"},
		0xCD: {template: "CALL $%04X", operand: imm16},
		0xE9: {template: "JP HL"},
		0xE0: {template: "LDH ($FF%02X),A", operand: imm8},
		0xF0: {template: "LDH A,($FF%02X)", operand: imm8},
		0xE2: {template: "LD ($FF00+C),A"},
		0xF2: {template: "LD A,($FF00+C)"},
		0xEA: {template: "LD ($%04X),A", operand: imm16},
		0xFA: {template: "LD A,($%04X)", operand: imm16},
		0xE8: {template: "ADD SP,$%02X", operand: imm8},
		0xF8: {template: "LD HL,SP+$%02X", operand: imm8},
		0xF9: {template: "LD SP,HL"},
		0xF3: {template: "DI"},
		0xFB: {template: "EI"},
	}
	for op, e := range fixed {
		instructions[op] = e
	}

	for op := 0; op < 256; op++ {
		r := reg8Names[op&7]
		group := op >> 6
		if group == 0 {
			cbInstructions[op] = shiftNames[(op>>3)&7] + " " + r
			continue
		}
		cbInstructions[op] = fmt.Sprintf("%s %d,%s", bitOperation[group], (op>>3)&7, r)
	}
}

// Length returns the encoded size of the instruction starting with opcode.
func Length(opcode byte) int {
	if opcode == 0xCB {
		return 2
	}
	switch instructions[opcode].operand {
	case imm8, rel8, pad8:
		return 2
	case imm16:
		return 3
	}
	return 1
}

// DisassembleAt disassembles the instruction at the given program counter
func DisassembleAt(pc uint16, mem Reader) DisassemblyLine {
	opcode := mem.Read(pc)
	line := DisassemblyLine{Address: pc, Length: Length(opcode)}

	if opcode == 0xCB {
		line.Instruction = cbInstructions[mem.Read(pc+1)]
		return line
	}

	e := instructions[opcode]
	switch {
	case e.template == "":
		line.Instruction = fmt.Sprintf("DB $%02X", opcode)
	case e.operand == imm8:
		line.Instruction = fmt.Sprintf(e.template, mem.Read(pc+1))
	case e.operand == imm16:
		line.Instruction = fmt.Sprintf(e.template, bit.Combine(mem.Read(pc+2), mem.Read(pc+1)))
	case e.operand == rel8:
		target := pc + 2 + uint16(int8(mem.Read(pc+1)))
		line.Instruction = fmt.Sprintf(e.template, target)
	default:
		line.Instruction = e.template
	}
	return line
}

// DisassembleRange disassembles count instructions starting from startPC.
func DisassembleRange(startPC uint16, count int, mem Reader) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, count)
	pc := startPC

	for i := 0; i < count; i++ {
		line := DisassembleAt(pc, mem)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}

	return lines
}

// FormatDisassemblyLine formats a disassembly line for display
func FormatDisassemblyLine(line DisassemblyLine, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = ">"
	}

	return fmt.Sprintf("%s0x%04X: %s", prefix, line.Address, line.Instruction)
}
