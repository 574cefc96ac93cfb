package chip8

import (
	"fmt"

	"github.com/retroenv/chip8vm/internal/display"
	"github.com/retroenv/chip8vm/internal/trace"
	"github.com/retroenv/retrogolib/log"
)

// opcode is a fetched instruction word.
type opcode struct {
	b1, b2 byte
}

func (o opcode) word() uint16 { return uint16(o.b1)<<8 | uint16(o.b2) }
func (o opcode) x() byte      { return o.b1 & 0xF }
func (o opcode) y() byte      { return o.b2 >> 4 }
func (o opcode) n() byte      { return o.b2 & 0xF }
func (o opcode) kk() byte     { return o.b2 }
func (o opcode) nnn() uint16  { return uint16(o.b1&0xF)<<8 | uint16(o.b2) }

// handler executes a decoded instruction. PC already points to the next
// instruction when a handler is called.
type handler func(m *Machine, op opcode) error

// families dispatches on the high nibble of the instruction.
var families = [16]handler{
	0x0: (*Machine).execSystem,
	0x1: (*Machine).execJump,
	0x2: (*Machine).execCall,
	0x3: (*Machine).execSkipEqualImmediate,
	0x4: (*Machine).execSkipNotEqualImmediate,
	0x5: (*Machine).execRegisterPair,
	0x6: (*Machine).execLoadImmediate,
	0x7: (*Machine).execAddImmediate,
	0x8: (*Machine).execArithmetic,
	0x9: (*Machine).execSkipNotEqualRegister,
	0xA: (*Machine).execLoadIndex,
	0xB: (*Machine).execJumpOffset,
	0xC: (*Machine).execRandom,
	0xD: (*Machine).execDraw,
	0xE: (*Machine).execKey,
	0xF: (*Machine).execMisc,
}

// systemOps dispatches 00kk instructions on the low byte.
var systemOps = map[byte]handler{
	0x00: (*Machine).opHalt,
	0xE0: (*Machine).opClear,
	0xEE: (*Machine).opReturn,
	0xFB: (*Machine).opScrollRight,
	0xFC: (*Machine).opScrollLeft,
	0xFD: (*Machine).opExit,
	0xFE: (*Machine).opLowRes,
	0xFF: (*Machine).opHighRes,
}

// scrollOps dispatches 00Cn and 00Dn on the high nibble of the low byte.
var scrollOps = [16]handler{
	0xC: (*Machine).opScrollDown,
	0xD: (*Machine).opScrollUp,
}

// registerPairOps dispatches 5xyn on n.
var registerPairOps = [16]handler{
	0x0: (*Machine).opSkipEqualRegister,
	0x2: (*Machine).opSaveRange,
	0x3: (*Machine).opLoadRange,
}

// arithmeticOps dispatches 8xyn on n.
var arithmeticOps = [16]handler{
	0x0: (*Machine).opMove,
	0x1: (*Machine).opOr,
	0x2: (*Machine).opAnd,
	0x3: (*Machine).opXor,
	0x4: (*Machine).opAdd,
	0x5: (*Machine).opSub,
	0x6: (*Machine).opShiftRight,
	0x7: (*Machine).opSubReverse,
	0xE: (*Machine).opShiftLeft,
}

// keyOps dispatches Exkk on the low byte.
var keyOps = map[byte]handler{
	0x9E: (*Machine).opSkipKeyDown,
	0xA1: (*Machine).opSkipKeyNotDown,
}

// miscOps dispatches Fxkk on the low byte.
var miscOps = map[byte]handler{
	0x00: (*Machine).opLoadLongIndex,
	0x01: (*Machine).opSelectPlane,
	0x02: (*Machine).opLoadPattern,
	0x07: (*Machine).opReadDelay,
	0x0A: (*Machine).opWaitKey,
	0x15: (*Machine).opSetDelay,
	0x18: (*Machine).opSetSound,
	0x1E: (*Machine).opAddIndex,
	0x29: (*Machine).opFontGlyph,
	0x30: (*Machine).opBigFontGlyph,
	0x33: (*Machine).opBCD,
	0x3A: (*Machine).opSetPitch,
	0x55: (*Machine).opStoreRegisters,
	0x65: (*Machine).opLoadRegisters,
	0x75: (*Machine).opSaveUserFlags,
	0x85: (*Machine).opLoadUserFlags,
}

// Execute fetches, decodes and executes the instruction at PC. Released keys
// revert to up afterwards. On error PC is left on the failing instruction.
func (m *Machine) Execute() error {
	pc := m.PC
	op := opcode{b1: m.Memory[pc], b2: m.Memory[pc+1]}
	m.PC += 2

	if m.trace {
		m.logger.Debug("Executing instruction",
			log.Hex("pc", pc),
			log.Hex("opcode", op.word()),
			log.String("instruction", trace.Format(op.word())))
	}

	err := families[op.b1>>4](m, op)
	m.resetReleasedKeys()
	if err != nil {
		m.PC = pc
		return fmt.Errorf("executing opcode %04X at %04X: %w", op.word(), pc, err)
	}
	return nil
}

// dispatch runs the handler of a secondary table or ignores the instruction.
func (m *Machine) dispatch(h handler, op opcode) error {
	if h == nil {
		m.unknown(op)
		return nil
	}
	return h(m, op)
}

func (m *Machine) unknown(op opcode) {
	m.logger.Debug("Ignoring unknown instruction",
		log.Hex("pc", m.PC-2), log.Hex("opcode", op.word()))
}

// skip advances PC over the next instruction, which is 4 bytes long for the
// long index load.
func (m *Machine) skip() {
	if m.Memory[m.PC]&0xF0 == 0xF0 && m.Memory[m.PC+1] == 0x00 {
		m.PC += 4
		return
	}
	m.PC += 2
}

func (m *Machine) skipIf(condition bool) error {
	if condition {
		m.skip()
	}
	return nil
}

func (m *Machine) execSystem(op opcode) error {
	if op.b1 != 0x00 {
		// 0nnn calls native machine code, which is not supported
		m.unknown(op)
		return nil
	}
	if h, ok := systemOps[op.b2]; ok {
		return h(m, op)
	}
	return m.dispatch(scrollOps[op.b2>>4], op)
}

func (m *Machine) execRegisterPair(op opcode) error {
	return m.dispatch(registerPairOps[op.n()], op)
}

func (m *Machine) execArithmetic(op opcode) error {
	return m.dispatch(arithmeticOps[op.n()], op)
}

func (m *Machine) execKey(op opcode) error {
	return m.dispatch(keyOps[op.b2], op)
}

func (m *Machine) execMisc(op opcode) error {
	return m.dispatch(miscOps[op.b2], op)
}

// 0000: stop by looping on the instruction.
func (m *Machine) opHalt(opcode) error {
	m.PC -= 2
	return nil
}

// 00E0
func (m *Machine) opClear(opcode) error {
	m.Display.Reset(m.Plane)
	return nil
}

// 00EE
func (m *Machine) opReturn(opcode) error {
	if m.SP == 0 {
		return ErrStackUnderflow
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	return nil
}

// 00Cn
func (m *Machine) opScrollDown(op opcode) error {
	m.Display.Scroll(0, 1, int(op.n()), m.Plane)
	return nil
}

// 00Dn
func (m *Machine) opScrollUp(op opcode) error {
	m.Display.Scroll(0, -1, int(op.n()), m.Plane)
	return nil
}

// 00FB
func (m *Machine) opScrollRight(opcode) error {
	m.Display.Scroll(1, 0, 4, m.Plane)
	return nil
}

// 00FC
func (m *Machine) opScrollLeft(opcode) error {
	m.Display.Scroll(-1, 0, 4, m.Plane)
	return nil
}

// 00FD: signal the host to stop and stay on the instruction.
func (m *Machine) opExit(opcode) error {
	m.Exit = true
	m.PC -= 2
	return nil
}

// 00FE
func (m *Machine) opLowRes(opcode) error {
	m.setResolution(false)
	return nil
}

// 00FF
func (m *Machine) opHighRes(opcode) error {
	m.setResolution(true)
	return nil
}

func (m *Machine) setResolution(hires bool) {
	m.Hires = hires
	if !m.quirks.KeepDisplayOnResolutionSwitch {
		m.Display.Reset(display.Both)
	}
}

// 1nnn
func (m *Machine) execJump(op opcode) error {
	m.PC = op.nnn()
	return nil
}

// 2nnn
func (m *Machine) execCall(op opcode) error {
	if m.SP >= StackDepth {
		return ErrStackOverflow
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = op.nnn()
	return nil
}

// 3xkk
func (m *Machine) execSkipEqualImmediate(op opcode) error {
	return m.skipIf(m.V[op.x()] == op.kk())
}

// 4xkk
func (m *Machine) execSkipNotEqualImmediate(op opcode) error {
	return m.skipIf(m.V[op.x()] != op.kk())
}

// 5xy0
func (m *Machine) opSkipEqualRegister(op opcode) error {
	return m.skipIf(m.V[op.x()] == m.V[op.y()])
}

// 5xy2: store Vx..Vy at I, walking backwards if x > y.
func (m *Machine) opSaveRange(op opcode) error {
	x, y := int(op.x()), int(op.y())
	step := 1
	if x > y {
		step = -1
	}
	for i, reg := 0, x; ; i, reg = i+1, reg+step {
		m.write(m.I, i, m.V[reg])
		if reg == y {
			return nil
		}
	}
}

// 5xy3: load Vx..Vy from I, walking backwards if x > y.
func (m *Machine) opLoadRange(op opcode) error {
	x, y := int(op.x()), int(op.y())
	step := 1
	if x > y {
		step = -1
	}
	for i, reg := 0, x; ; i, reg = i+1, reg+step {
		m.V[reg] = m.read(m.I, i)
		if reg == y {
			return nil
		}
	}
}

// 6xkk
func (m *Machine) execLoadImmediate(op opcode) error {
	m.V[op.x()] = op.kk()
	return nil
}

// 7xkk
func (m *Machine) execAddImmediate(op opcode) error {
	m.V[op.x()] += op.kk()
	return nil
}

// 8xy0
func (m *Machine) opMove(op opcode) error {
	m.V[op.x()] = m.V[op.y()]
	return nil
}

// 8xy1
func (m *Machine) opOr(op opcode) error {
	m.V[op.x()] |= m.V[op.y()]
	m.clearFlagAfterLogic()
	return nil
}

// 8xy2
func (m *Machine) opAnd(op opcode) error {
	m.V[op.x()] &= m.V[op.y()]
	m.clearFlagAfterLogic()
	return nil
}

// 8xy3
func (m *Machine) opXor(op opcode) error {
	m.V[op.x()] ^= m.V[op.y()]
	m.clearFlagAfterLogic()
	return nil
}

func (m *Machine) clearFlagAfterLogic() {
	if !m.quirks.KeepFlagOnLogic {
		m.V[flagRegister] = 0
	}
}

// setResult stores an arithmetic result and then the flag, so the flag wins
// when x is VF.
func (m *Machine) setResult(x, result byte, flag bool) {
	m.V[x] = result
	if flag {
		m.V[flagRegister] = 1
	} else {
		m.V[flagRegister] = 0
	}
}

// 8xy4
func (m *Machine) opAdd(op opcode) error {
	vx, vy := m.V[op.x()], m.V[op.y()]
	sum := uint16(vx) + uint16(vy)
	m.setResult(op.x(), byte(sum), sum > 0xFF)
	return nil
}

// 8xy5
func (m *Machine) opSub(op opcode) error {
	vx, vy := m.V[op.x()], m.V[op.y()]
	m.setResult(op.x(), vx-vy, vx >= vy)
	return nil
}

// 8xy7
func (m *Machine) opSubReverse(op opcode) error {
	vx, vy := m.V[op.x()], m.V[op.y()]
	m.setResult(op.x(), vy-vx, vy >= vx)
	return nil
}

func (m *Machine) shiftSource(op opcode) byte {
	if m.quirks.ShiftInPlace {
		return m.V[op.x()]
	}
	return m.V[op.y()]
}

// 8xy6
func (m *Machine) opShiftRight(op opcode) error {
	value := m.shiftSource(op)
	m.setResult(op.x(), value>>1, value&0x01 != 0)
	return nil
}

// 8xyE
func (m *Machine) opShiftLeft(op opcode) error {
	value := m.shiftSource(op)
	m.setResult(op.x(), value<<1, value&0x80 != 0)
	return nil
}

// 9xy0
func (m *Machine) execSkipNotEqualRegister(op opcode) error {
	if op.n() != 0 {
		m.unknown(op)
		return nil
	}
	return m.skipIf(m.V[op.x()] != m.V[op.y()])
}

// Annn
func (m *Machine) execLoadIndex(op opcode) error {
	m.I = op.nnn()
	return nil
}

// Bnnn
func (m *Machine) execJumpOffset(op opcode) error {
	register := byte(0)
	if m.quirks.JumpWithVx {
		register = op.x()
	}
	m.PC = op.nnn() + uint16(m.V[register])
	return nil
}

// Cxkk
func (m *Machine) execRandom(op opcode) error {
	m.V[op.x()] = byte(m.rng.UintN(256)) & op.kk()
	return nil
}

// Dxyn
func (m *Machine) execDraw(op opcode) error {
	layout := display.Layout(int(op.n()), m.Hires, m.quirks)
	size := layout.PlaneBytes()
	if m.Plane == display.Both {
		size *= 2
	}
	sprite := m.sprite[:size]
	for i := range sprite {
		sprite[i] = m.read(m.I, i)
	}

	x, y := int(m.V[op.x()]), int(m.V[op.y()])
	m.V[flagRegister] = m.Display.Draw(sprite, x, y, layout, m.Plane, m.Hires, m.quirks)
	return nil
}

// Ex9E
func (m *Machine) opSkipKeyDown(op opcode) error {
	return m.skipIf(m.Keypad[m.V[op.x()]&0xF] == KeyDown)
}

// ExA1
func (m *Machine) opSkipKeyNotDown(op opcode) error {
	return m.skipIf(m.Keypad[m.V[op.x()]&0xF] != KeyDown)
}

// F000 nnnn: load a 16 bit address into I.
func (m *Machine) opLoadLongIndex(opcode) error {
	m.I = uint16(m.Memory[m.PC])<<8 | uint16(m.Memory[m.PC+1])
	m.PC += 2
	return nil
}

// Fn01
func (m *Machine) opSelectPlane(op opcode) error {
	m.Plane = display.Plane(op.x() & 0x3)
	return nil
}

// F002
func (m *Machine) opLoadPattern(opcode) error {
	m.loadPattern()
	return nil
}

// Fx07
func (m *Machine) opReadDelay(op opcode) error {
	m.V[op.x()] = m.DT
	return nil
}

// Fx0A: retry the instruction until a key is released.
func (m *Machine) opWaitKey(op opcode) error {
	key, ok := m.releasedKey()
	if !ok {
		m.PC -= 2
		return nil
	}
	m.V[op.x()] = key
	return nil
}

// Fx15
func (m *Machine) opSetDelay(op opcode) error {
	m.DT = m.V[op.x()]
	return nil
}

// Fx18
func (m *Machine) opSetSound(op opcode) error {
	m.ST = m.V[op.x()]
	return nil
}

// Fx1E
func (m *Machine) opAddIndex(op opcode) error {
	m.I += uint16(m.V[op.x()])
	return nil
}

// Fx29
func (m *Machine) opFontGlyph(op opcode) error {
	m.I = glyphAddress(m.V[op.x()])
	return nil
}

// Fx30
func (m *Machine) opBigFontGlyph(op opcode) error {
	m.I = bigGlyphAddress(m.V[op.x()])
	return nil
}

// Fx33
func (m *Machine) opBCD(op opcode) error {
	value := m.V[op.x()]
	m.write(m.I, 0, value/100)
	m.write(m.I, 1, value/10%10)
	m.write(m.I, 2, value%10)
	return nil
}

// Fx3A
func (m *Machine) opSetPitch(op opcode) error {
	m.Pitch = m.V[op.x()]
	return nil
}

// Fx55
func (m *Machine) opStoreRegisters(op opcode) error {
	x := int(op.x())
	for i := 0; i <= x; i++ {
		m.write(m.I, i, m.V[i])
	}
	m.advanceIndexAfterTransfer(x)
	return nil
}

// Fx65
func (m *Machine) opLoadRegisters(op opcode) error {
	x := int(op.x())
	for i := 0; i <= x; i++ {
		m.V[i] = m.read(m.I, i)
	}
	m.advanceIndexAfterTransfer(x)
	return nil
}

func (m *Machine) advanceIndexAfterTransfer(x int) {
	if !m.quirks.KeepIndexOnTransfer {
		m.I += uint16(x + 1)
	}
}

// Fx75
func (m *Machine) opSaveUserFlags(op opcode) error {
	if err := m.SaveUserFlags(int(op.x()) + 1); err != nil {
		m.logger.Warn("Saving user flags failed", log.Err(err))
	}
	return nil
}

// Fx85
func (m *Machine) opLoadUserFlags(op opcode) error {
	if err := m.LoadUserFlags(int(op.x()) + 1); err != nil {
		m.logger.Warn("Loading user flags failed", log.Err(err))
	}
	return nil
}
