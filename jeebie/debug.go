package jeebie

import (
	"github.com/valerio/go-jeebie-cgb/jeebie/addr"
	"github.com/valerio/go-jeebie-cgb/jeebie/debug"
)

const (
	snapshotBefore = 64
	snapshotSize   = 128
)

// ExtractDebugData captures the CPU registers and the memory around PC.
// Reads go through the checked bus API so that capturing never records a
// fault.
func (e *Emulator) ExtractDebugData() *debug.CompleteDebugData {
	if e.cpu == nil || e.bus == nil {
		return nil
	}

	c := e.cpu
	data := &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			A:      c.GetA(),
			F:      c.GetF(),
			BC:     c.GetBC(),
			DE:     c.GetDE(),
			HL:     c.GetHL(),
			SP:     c.GetSP(),
			PC:     c.GetPC(),
			IME:    c.GetIME(),
			State:  c.GetState().String(),
			Flags:  c.GetFlagString(),
			Cycles: c.GetCycles(),
		},
		Memory:          e.snapshotAround(c.GetPC()),
		Mode:            e.bus.Mode().String(),
		DoubleSpeed:     e.bus.DoubleSpeed(),
		LY:              e.bus.GPU.LY(),
		Frames:          e.bus.GPU.Frames(),
		InterruptEnable: e.peek(addr.IE),
		InterruptFlags:  e.peek(addr.IF),
	}
	return data
}

func (e *Emulator) snapshotAround(pc uint16) *debug.MemorySnapshot {
	start := 0
	if int(pc) > snapshotBefore {
		start = int(pc) - snapshotBefore
	}
	end := min(start+snapshotSize, 0x10000)

	snapshot := &debug.MemorySnapshot{
		StartAddr: uint16(start),
		Bytes:     make([]byte, 0, end-start),
	}
	for a := start; a < end; a++ {
		snapshot.Bytes = append(snapshot.Bytes, e.peek(uint16(a)))
	}
	return snapshot
}

// peek reads address without side effects on the fault state. Unreadable
// addresses return 0xFF.
func (e *Emulator) peek(address uint16) byte {
	v, err := e.bus.GetByte(int(address))
	if err != nil {
		return 0xFF
	}
	return v
}

// logFault writes the machine state at the time of a fatal fault.
func (e *Emulator) logFault(err error) {
	data := e.ExtractDebugData()
	cpuState := data.CPU

	e.logger.Error("emulation stopped",
		"err", err,
		"pc", cpuState.PC,
		"sp", cpuState.SP,
		"af", uint16(cpuState.A)<<8|uint16(cpuState.F),
		"bc", cpuState.BC,
		"de", cpuState.DE,
		"hl", cpuState.HL,
		"flags", cpuState.Flags,
		"cpu_state", cpuState.State,
		"ly", data.LY,
		"frames", data.Frames,
	)
	for _, line := range debug.CreateDisassembly(data.Memory, cpuState.PC, 7) {
		e.logger.Debug("disassembly", "addr", line.Address, "instruction", line.Instruction, "current", line.IsCurrent)
	}
}
