package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySnapshot_Read(t *testing.T) {
	snapshot := &MemorySnapshot{StartAddr: 0xC000, Bytes: []byte{0x11, 0x22}}

	assert.Equal(t, byte(0x11), snapshot.Read(0xC000))
	assert.Equal(t, byte(0x22), snapshot.Read(0xC001))
	assert.Equal(t, byte(0xFF), snapshot.Read(0xC002))
	assert.Equal(t, byte(0xFF), snapshot.Read(0xBFFF))
}

func TestCreateDisassembly(t *testing.T) {
	// NOP; LD A,$12; JP $0150; INC A; INC B; INC C
	code := []byte{0x00, 0x3E, 0x12, 0xC3, 0x50, 0x01, 0x3C, 0x04, 0x0C}
	snapshot := &MemorySnapshot{StartAddr: 0x0100, Bytes: code}

	t.Run("marks the current instruction", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x0103, 10)

		require.Len(t, lines, 6)
		assert.Equal(t, "JP $0150", lines[2].Instruction)
		assert.True(t, lines[2].IsCurrent)
		assert.False(t, lines[0].IsCurrent)
	})

	t.Run("window is limited", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x0103, 3)

		require.Len(t, lines, 3)
		assert.Equal(t, uint16(0x0101), lines[0].Address)
		assert.Equal(t, uint16(0x0103), lines[1].Address)
	})

	t.Run("resynchronizes on pc", func(t *testing.T) {
		// pc inside the operand of LD A,n
		lines := CreateDisassembly(snapshot, 0x0102, 10)

		var current DisasmLine
		for _, line := range lines {
			if line.IsCurrent {
				current = line
			}
		}
		assert.Equal(t, uint16(0x0102), current.Address)
		assert.Equal(t, "LD (DE),A", current.Instruction)
	})

	t.Run("pc outside snapshot", func(t *testing.T) {
		lines := CreateDisassembly(snapshot, 0x4000, 4)

		require.Len(t, lines, 4)
		assert.True(t, lines[3].IsCurrent)
		assert.Equal(t, "[PC outside snapshot range]", lines[3].Instruction)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		assert.Nil(t, CreateDisassembly(nil, 0, 4))
	})
}
