// Package trace formats CHIP-8, SUPER-CHIP and XO-CHIP instruction words as
// assembly text for debug logging of executed instructions.
package trace

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded instruction word.
type Instruction struct {
	Name     string // mnemonic, empty for unknown words
	Operands string // formatted operands
	Skip     bool   // conditionally skips the next instruction
}

func (i Instruction) String() string {
	switch {
	case i.Name == "":
		return "unknown"
	case i.Operands == "":
		return i.Name
	default:
		return i.Name + " " + i.Operands
	}
}

// Format returns the assembly text of an instruction word.
func Format(word uint16) string {
	ins := Decode(word)
	if ins.Name == "" {
		return fmt.Sprintf("$%04X", word)
	}
	return ins.String()
}

// Decode returns the mnemonic and operands of an instruction word. The
// extension instructions are matched first as some of them overlap with the
// machine code call of the original instruction set.
func Decode(word uint16) Instruction {
	if ins, ok := decodeExtended(word); ok {
		return ins
	}

	op := lookup(word)
	if op.Instruction == nil {
		return Instruction{}
	}
	name := op.Instruction.Name
	return Instruction{
		Name:     name,
		Operands: formatOperands(name, word),
		Skip:     chip8.SkipInstructions.Contains(name),
	}
}

// lookup finds the opcode of a CHIP-8 instruction word.
func lookup(word uint16) chip8.Opcode {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value {
			return op
		}
	}
	return chip8.Opcode{}
}

// extended describes a SUPER-CHIP or XO-CHIP instruction.
type extended struct {
	mask, value uint16
	name        string
	operands    func(word uint16) string
}

var extendedInstructions = []extended{
	{0xFFFF, 0x0000, "halt", nil},
	{0xFFF0, 0x00C0, "scd", nibble},
	{0xFFF0, 0x00D0, "scu", nibble},
	{0xFFFF, 0x00FB, "scr", nil},
	{0xFFFF, 0x00FC, "scl", nil},
	{0xFFFF, 0x00FD, "exit", nil},
	{0xFFFF, 0x00FE, "low", nil},
	{0xFFFF, 0x00FF, "high", nil},
	{0xF00F, 0x5002, "save", registerRange},
	{0xF00F, 0x5003, "load", registerRange},
	{0xF0FF, 0xF000, "ld", func(uint16) string { return "I, long" }},
	{0xF0FF, 0xF001, "plane", func(word uint16) string { return fmt.Sprintf("%d", registerX(word)) }},
	{0xFFFF, 0xF002, "audio", nil},
	{0xF0FF, 0xF030, "ld", func(word uint16) string { return fmt.Sprintf("HF, V%X", registerX(word)) }},
	{0xF0FF, 0xF03A, "pitch", func(word uint16) string { return fmt.Sprintf("V%X", registerX(word)) }},
	{0xF0FF, 0xF075, "ld", func(word uint16) string { return fmt.Sprintf("R, V%X", registerX(word)) }},
	{0xF0FF, 0xF085, "ld", func(word uint16) string { return fmt.Sprintf("V%X, R", registerX(word)) }},
}

func decodeExtended(word uint16) (Instruction, bool) {
	for _, e := range extendedInstructions {
		if word&e.mask != e.value {
			continue
		}
		ins := Instruction{Name: e.name}
		if e.operands != nil {
			ins.Operands = e.operands(word)
		}
		return ins, true
	}
	return Instruction{}, false
}

func nibble(word uint16) string {
	return fmt.Sprintf("%d", word&0x000F)
}

func registerRange(word uint16) string {
	return fmt.Sprintf("V%X-V%X", registerX(word), registerY(word))
}

// formatOperands formats the operands of a CHIP-8 instruction.
func formatOperands(name string, word uint16) string {
	switch name {
	case chip8.ClsName, chip8.RetName:
		return ""
	case chip8.JpName:
		return formatJump(word)
	case chip8.CallName:
		return fmt.Sprintf("$%03X", word&0x0FFF)
	case chip8.SeName, chip8.SneName:
		return formatCompare(word)
	case chip8.LdName:
		return formatLoad(word)
	case chip8.AddName:
		return formatAdd(word)
	case chip8.OrName, chip8.AndName, chip8.XorName, chip8.SubName, chip8.SubnName:
		return fmt.Sprintf("V%X, V%X", registerX(word), registerY(word))
	case chip8.ShrName, chip8.ShlName, chip8.SkpName, chip8.SknpName:
		return fmt.Sprintf("V%X", registerX(word))
	case chip8.RndName:
		return fmt.Sprintf("V%X, $%02X", registerX(word), word&0x00FF)
	case chip8.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", registerX(word), registerY(word), word&0x000F)
	}
	return ""
}

func formatJump(word uint16) string {
	if word&0xF000 == 0xB000 {
		return fmt.Sprintf("V0, $%03X", word&0x0FFF)
	}
	return fmt.Sprintf("$%03X", word&0x0FFF)
}

func formatCompare(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	default:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	}
}

func formatLoad(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", word&0x0FFF)
	case 0xF000:
		return formatLoadMisc(word)
	}
	return ""
}

// formatLoadMisc formats the Fxkk load variants.
func formatLoadMisc(word uint16) string {
	x := registerX(word)
	switch word & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

func formatAdd(word uint16) string {
	x := registerX(word)
	switch word & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, registerY(word))
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}

func registerX(word uint16) uint16 {
	return (word & 0x0F00) >> 8
}

func registerY(word uint16) uint16 {
	return (word & 0x00F0) >> 4
}
