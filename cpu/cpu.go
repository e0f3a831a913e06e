// Package cpu implements a W65C816-class processor core: bank-addressed
// 24-bit memory, native and emulation modes, and variable-width
// accumulator/index registers.
// https://en.wikipedia.org/wiki/WDC_65C816
package cpu

import (
	"fmt"
	"strings"
)

// Interrupt/reset vectors, native mode (low byte first).
const (
	VEC_COP_NATIVE   = 0xFFE4
	VEC_BRK_NATIVE   = 0xFFE6
	VEC_ABORT_NATIVE = 0xFFE8
	VEC_NMI_NATIVE   = 0xFFEA
	VEC_IRQ_NATIVE   = 0xFFEE

	VEC_COP_EMU   = 0xFFF4
	VEC_ABORT_EMU = 0xFFF8
	VEC_NMI_EMU   = 0xFFFA
	VEC_RESET     = 0xFFFC
	VEC_IRQBRK_EMU = 0xFFFE
)

// Processor status flags. In emulation mode bits 4 and 5 are the B and
// unused-1 flags; in native mode they become the M (accumulator width)
// and X (index width) flags.
const (
	FLAG_CARRY     = 1 << 0 // C
	FLAG_ZERO      = 1 << 1 // Z
	FLAG_IRQD      = 1 << 2 // I
	FLAG_DECIMAL   = 1 << 3 // D
	FLAG_INDEX8    = 1 << 4 // X (native) / B (emulation)
	FLAG_MEM8      = 1 << 5 // M (native) / always 1 (emulation)
	FLAG_OVERFLOW  = 1 << 6 // V
	FLAG_NEGATIVE  = 1 << 7 // N
)

// Bus is the decoupled memory/timing interface the CPU drives. The CPU
// is stateless with respect to timing: every access and every idle
// cycle goes through the bus, which owns the master clock.
type Bus interface {
	Read(bank uint8, offset uint16) uint8
	Write(bank uint8, offset uint16, val uint8)
	Idle()
}

// CPU holds all W65C816 programmer-visible state.
type CPU struct {
	bus Bus

	a, x, y uint16
	sp      uint16
	d       uint16 // direct page register
	pbr     uint8  // program bank
	dbr     uint8  // data bank
	p       uint8  // status flags
	pc      uint16

	emulation bool

	stopped bool // STP executed
	waiting bool // WAI executed, waiting for interrupt

	// nmiWanted/intDelay implement the hardware's interrupt-arming
	// delay: a freshly raised NMI is not serviced by checkInt until one
	// full instruction has elapsed. The IRQ line is a level, sampled
	// whenever intDelay is not armed.
	nmiLine    bool
	nmiWanted  bool
	irqLine    bool
	intDelay   int

	cycleMark uint64
}

// New constructs a CPU wired to bus, powered up in emulation mode with
// interrupts disabled, mirroring real 65816 reset behavior.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset(true)
	return c
}

// Reset performs a hardware reset: emulation mode is forced, D/DBR/PBR
// are cleared, interrupts are disabled, and PC is loaded from the
// reset vector. hard is accepted for symmetry with console reset
// buttons that distinguish power-on from warm reset; the 65816 itself
// does not.
func (c *CPU) Reset(hard bool) {
	c.emulation = true
	c.d = 0
	c.dbr = 0
	c.pbr = 0
	c.sp = 0x0100 | (uint16(c.sp-3) & 0xFF)
	c.p = FLAG_IRQD | FLAG_MEM8 | FLAG_INDEX8
	c.x &= 0xFF
	c.y &= 0xFF
	c.stopped = false
	c.waiting = false
	c.nmiLine, c.nmiWanted, c.irqLine = false, false, false
	c.pc = c.read16(0x00, VEC_RESET)
}

// TriggerNMI raises the NMI line. The bus calls this on entering
// vblank when NMI is enabled in NMITIMEN.
func (c *CPU) TriggerNMI() {
	if !c.nmiLine {
		c.nmiWanted = true
		c.intDelay = 1
	}
	c.nmiLine = true
}

// ClearNMI lowers the NMI line, called once per frame by the bus
// before the next vblank edge can be detected.
func (c *CPU) ClearNMI() { c.nmiLine = false }

// ArmIntDelay arms the one-instruction interrupt-check delay. Any
// P-modifying instruction (PLP/REP/SEP/RTI/XCE) calls this internally,
// and the bus calls it from the $4200 (NMITIMEN) write handler, since
// both can unmask an interrupt that must not be serviced until the
// following opcode.
func (c *CPU) ArmIntDelay() { c.intDelay = 1 }

// SetIRQLine sets or clears the level-triggered IRQ line, driven by
// the bus's H/V timer IRQ logic.
func (c *CPU) SetIRQLine(asserted bool) { c.irqLine = asserted }

func (c *CPU) emulationMode() bool { return c.emulation }

func (c *CPU) flag(f uint8) bool { return c.p&f != 0 }

func (c *CPU) setFlag(f uint8, v bool) {
	if v {
		c.p |= f
	} else {
		c.p &^= f
	}
}

// mFlag/xFlag report effective register widths: emulation mode forces
// both to 8-bit regardless of the M/X bits.
func (c *CPU) m8() bool { return c.emulation || c.p&FLAG_MEM8 != 0 }
func (c *CPU) x8() bool { return c.emulation || c.p&FLAG_INDEX8 != 0 }

func (c *CPU) setNZ8(v uint8) {
	c.setFlag(FLAG_ZERO, v == 0)
	c.setFlag(FLAG_NEGATIVE, v&0x80 != 0)
}

func (c *CPU) setNZ16(v uint16) {
	c.setFlag(FLAG_ZERO, v == 0)
	c.setFlag(FLAG_NEGATIVE, v&0x8000 != 0)
}

func (c *CPU) read(bank uint8, offset uint16) uint8 {
	c.tickAccount(1)
	return c.bus.Read(bank, offset)
}

func (c *CPU) write(bank uint8, offset uint16, v uint8) {
	c.tickAccount(1)
	c.bus.Write(bank, offset, v)
}

func (c *CPU) idle() {
	c.tickAccount(1)
	c.bus.Idle()
}

func (c *CPU) read16(bank uint8, offset uint16) uint16 {
	lo := c.read(bank, offset)
	hi := c.read(bank, offset+1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) fetch8() uint8 {
	v := c.read(c.pbr, c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

// push8/push16 write the stack downward. In emulation mode SP's high
// byte is pinned to 0x01 after every adjustment.
func (c *CPU) push8(v uint8) {
	c.write(0, c.sp, v)
	c.sp--
	if c.emulation {
		c.sp = 0x0100 | (c.sp & 0xFF)
	}
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pull8() uint8 {
	c.sp++
	if c.emulation {
		c.sp = 0x0100 | (c.sp & 0xFF)
	}
	return c.read(0, c.sp)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(lo) | uint16(hi)<<8
}

// StackAddr reports the current stack pointer, for debug tooling.
func (c *CPU) StackAddr() uint16 { return c.sp }

// SetPC forces the program counter, used by the debug REPL.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

// checkInt samples the interrupt lines. Step calls it once, after the
// instruction has finished executing; the lines are not sampled at
// any cycle inside an instruction. A newly raised NMI edge is not
// serviced until one instruction after it was raised (intDelay).
func (c *CPU) checkInt() {
	if c.intDelay > 0 {
		c.intDelay--
		return
	}
	if c.nmiWanted {
		c.nmiWanted = false
		c.serviceInterrupt(true)
		return
	}
	if c.irqLine && !c.flag(FLAG_IRQD) {
		c.serviceInterrupt(false)
	}
}

func (c *CPU) serviceInterrupt(nmi bool) {
	c.waiting = false
	if !c.emulation {
		c.push8(c.pbr)
	}
	c.push16(c.pc)
	brk := c.p
	if c.emulation {
		brk |= FLAG_INDEX8 // the B flag, reusing the same bit position
	}
	c.push8(brk)
	c.setFlag(FLAG_IRQD, true)
	c.setFlag(FLAG_DECIMAL, false)
	c.pbr = 0

	var vec uint16
	switch {
	case nmi && c.emulation:
		vec = VEC_NMI_EMU
	case nmi:
		vec = VEC_NMI_NATIVE
	case c.emulation:
		vec = VEC_IRQBRK_EMU
	default:
		vec = VEC_IRQ_NATIVE
	}
	c.pc = c.read16(0, vec)
	c.idle()
	c.idle()
}

// Step decodes and executes one instruction, returning the cycle
// count consumed (informational only; the bus, not the CPU, is the
// authority on elapsed master cycles since every access already went
// through it).
func (c *CPU) Step() int {
	if c.stopped {
		c.idle()
		return 1
	}
	if c.waiting {
		c.idle()
		if c.nmiWanted || c.irqLine {
			c.waiting = false
			c.checkInt()
		}
		return 1
	}

	op := c.fetch8()
	entry := opcodeTable[op]
	before := c.cycleMark
	entry.exec(c, entry.mode)
	c.checkInt()
	return int(c.cycleMark - before)
}

// cycleMark is a soft accounting counter, incremented by idle/access
// helpers, used only to report an approximate per-Step cycle count to
// callers that want it (the debug REPL's step command); it has no
// bearing on the bus's own master-cycle counter.
func (c *CPU) tickAccount(n int) { c.cycleMark += uint64(n) }

// Inst returns the mnemonic and addressing mode of the instruction at
// PC, for the debug REPL.
func (c *CPU) Inst() string {
	op := c.read(c.pbr, c.pc)
	e := opcodeTable[op]
	return fmt.Sprintf("0x%02x: %s (%s)", op, e.name, e.mode)
}

func statusString(p uint8, emu bool) string {
	var sb strings.Builder
	labels := "NVMXDIZC"
	if emu {
		labels = "NVMBDIZC"
	}
	for i, ch := range labels {
		bit := uint8(1) << (7 - i)
		if p&bit != 0 {
			sb.WriteRune(ch)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func (c *CPU) String() string {
	mode := "E"
	if !c.emulation {
		mode = "N"
	}
	return fmt.Sprintf("A:%04x X:%04x Y:%04x D:%04x DBR:%02x PBR:%02x SP:%04x PC:%02x:%04x P:%s(%s)",
		c.a, c.x, c.y, c.d, c.dbr, c.pbr, c.sp, c.pbr, c.pc, statusString(c.p, c.emulation), mode)
}
