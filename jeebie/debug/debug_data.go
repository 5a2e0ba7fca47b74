package debug

// CPUState contains all CPU register information for debugging
type CPUState struct {
	A  uint8
	F  uint8
	BC uint16
	DE uint16
	HL uint16

	SP     uint16
	PC     uint16
	IME    bool
	State  string
	Flags  string
	Cycles uint64
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// Contains reports whether address falls inside the snapshot.
func (s *MemorySnapshot) Contains(address uint16) bool {
	return int(address) >= int(s.StartAddr) && int(address) < int(s.StartAddr)+len(s.Bytes)
}

// Read returns the captured byte at address. Addresses outside the
// snapshot read as 0xFF.
func (s *MemorySnapshot) Read(address uint16) byte {
	if !s.Contains(address) {
		return 0xFF
	}
	return s.Bytes[address-s.StartAddr]
}

// CompleteDebugData contains the machine state shown by debug displays and
// logged with fatal faults.
type CompleteDebugData struct {
	CPU             *CPUState
	Memory          *MemorySnapshot
	Mode            string
	DoubleSpeed     bool
	LY              uint8
	Frames          uint64
	InterruptEnable uint8 // IE register at 0xFFFF
	InterruptFlags  uint8 // IF register at 0xFF0F
}
