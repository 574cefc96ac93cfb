package trace

import (
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		wantName string
		operands string
		skip     bool
	}{
		{"clear screen", 0x00E0, chip8.ClsName, "", false},
		{"return", 0x00EE, chip8.RetName, "", false},
		{"jump", 0x1234, chip8.JpName, "$234", false},
		{"jump with offset", 0xB300, chip8.JpName, "V0, $300", false},
		{"call", 0x2ABC, chip8.CallName, "$ABC", false},
		{"skip equal immediate", 0x3A05, chip8.SeName, "VA, $05", true},
		{"skip not equal registers", 0x9120, chip8.SneName, "V1, V2", true},
		{"load immediate", 0x6A05, chip8.LdName, "VA, $05", false},
		{"load index", 0xA123, chip8.LdName, "I, $123", false},
		{"add immediate", 0x7F01, chip8.AddName, "VF, $01", false},
		{"xor", 0x8123, chip8.XorName, "V1, V2", false},
		{"random", 0xC3FF, chip8.RndName, "V3, $FF", false},
		{"draw", 0xD125, chip8.DrwName, "V1, V2, $5", false},
		{"scroll down", 0x00C4, "scd", "4", false},
		{"scroll up", 0x00D2, "scu", "2", false},
		{"exit", 0x00FD, "exit", "", false},
		{"high resolution", 0x00FF, "high", "", false},
		{"save range", 0x5962, "save", "V9-V6", false},
		{"load range", 0x5123, "load", "V1-V2", false},
		{"long index", 0xF000, "ld", "I, long", false},
		{"plane", 0xF201, "plane", "2", false},
		{"audio", 0xF002, "audio", "", false},
		{"big font", 0xF530, "ld", "HF, V5", false},
		{"pitch", 0xF13A, "pitch", "V1", false},
		{"save flags", 0xF775, "ld", "R, V7", false},
		{"load flags", 0xF785, "ld", "V7, R", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := Decode(tt.word)
			assert.Equal(t, tt.wantName, ins.Name)
			assert.Equal(t, tt.operands, ins.Operands)
			assert.Equal(t, tt.skip, ins.Skip)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "low", Format(0x00FE))
	assert.Equal(t, "save V9-V6", Format(0x5962))
	assert.Equal(t, chip8.JpName+" $200", Format(0x1200))
	assert.Equal(t, "unknown", Instruction{}.String())
}

func TestDecodeMatchesOpcodeTable(t *testing.T) {
	for nibble, opcodes := range chip8.Opcodes {
		for _, op := range opcodes {
			ins := Decode(op.Info.Value)
			assert.Equal(t, op.Instruction.Name, ins.Name, "nibble", nibble, "opcode", op.Info.Value)
		}
	}
}
