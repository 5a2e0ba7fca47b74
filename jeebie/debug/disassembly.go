package debug

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/disasm"
)

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// backwardBytes is how far before PC decoding starts.
const backwardBytes = 16

// CreateDisassembly decodes the snapshot into at most maxLines lines
// centered on pc. Decoding starts before pc and may be misaligned there,
// so the scan restarts at pc whenever it would step over it.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	if !snapshot.Contains(pc) {
		lines := decode(snapshot, 0, -1, maxLines-1)
		return append(lines, DisasmLine{
			Address:     pc,
			Instruction: "[PC outside snapshot range]",
			IsCurrent:   true,
		})
	}

	pcOffset := int(pc - snapshot.StartAddr)
	start := pcOffset - backwardBytes
	if start < 0 {
		start = 0
	}

	all := decode(snapshot, start, pcOffset, len(snapshot.Bytes))

	pcIndex := 0
	for i, line := range all {
		if line.IsCurrent {
			pcIndex = i
			break
		}
	}

	first := pcIndex - maxLines/2
	if first < 0 {
		first = 0
	}
	last := first + maxLines
	if last > len(all) {
		last = len(all)
		first = max(0, last-maxLines)
	}
	return all[first:last]
}

// decode disassembles from offset, resynchronizing on pcOffset when it is
// not negative.
func decode(snapshot *MemorySnapshot, offset, pcOffset, limit int) []DisasmLine {
	var lines []DisasmLine
	for i := offset; i < len(snapshot.Bytes) && len(lines) < limit; {
		line := disasm.DisassembleAt(snapshot.StartAddr+uint16(i), snapshot)
		if pcOffset >= 0 && i < pcOffset && i+line.Length > pcOffset {
			i = pcOffset
			continue
		}

		lines = append(lines, DisasmLine{
			Address:     line.Address,
			Instruction: line.Instruction,
			IsCurrent:   i == pcOffset,
		})
		i += line.Length
	}
	return lines
}
