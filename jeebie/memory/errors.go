package memory

import "errors"

// Fatal bus conditions. They are recorded as the bus fault and stop emulation
// of the current ROM; match them with errors.Is.
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrNotWritable       = errors.New("address not writable")
	ErrNoCartridge       = errors.New("no cartridge loaded")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)
