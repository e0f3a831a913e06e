package cpu

type execFunc func(c *CPU, mode AddrMode)

func execADC(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	carryIn := c.flag(FLAG_CARRY)
	if c.flag(FLAG_DECIMAL) {
		if c.m8() {
			r, co, ov, neg, z := decimalAdd8(uint8(c.a), uint8(v), carryIn)
			c.a = c.a&0xFF00 | uint16(r)
			c.setFlag(FLAG_CARRY, co)
			c.setFlag(FLAG_OVERFLOW, ov)
			c.setFlag(FLAG_NEGATIVE, neg)
			c.setFlag(FLAG_ZERO, z)
		} else {
			r, co, ov, neg, z := decimalAdd16(c.a, v, carryIn)
			c.a = r
			c.setFlag(FLAG_CARRY, co)
			c.setFlag(FLAG_OVERFLOW, ov)
			c.setFlag(FLAG_NEGATIVE, neg)
			c.setFlag(FLAG_ZERO, z)
		}
		return
	}
	if c.m8() {
		a, b := uint8(c.a), uint8(v)
		var cin uint16
		if carryIn {
			cin = 1
		}
		sum := uint16(a) + uint16(b) + cin
		c.setFlag(FLAG_OVERFLOW, (^(uint16(a)^uint16(b)))&(uint16(a)^sum)&0x80 != 0)
		c.setFlag(FLAG_CARRY, sum > 0xFF)
		c.a = c.a&0xFF00 | (sum & 0xFF)
		c.setNZ8(uint8(sum))
	} else {
		var cin uint32
		if carryIn {
			cin = 1
		}
		sum := uint32(c.a) + uint32(v) + cin
		c.setFlag(FLAG_OVERFLOW, (^(uint32(c.a)^uint32(v)))&(uint32(c.a)^sum)&0x8000 != 0)
		c.setFlag(FLAG_CARRY, sum > 0xFFFF)
		c.a = uint16(sum)
		c.setNZ16(c.a)
	}
}

func execSBC(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	carryIn := c.flag(FLAG_CARRY)
	if c.flag(FLAG_DECIMAL) {
		if c.m8() {
			r, co, ov, neg, z := decimalSub8(uint8(c.a), uint8(v), carryIn)
			c.a = c.a&0xFF00 | uint16(r)
			c.setFlag(FLAG_CARRY, co)
			c.setFlag(FLAG_OVERFLOW, ov)
			c.setFlag(FLAG_NEGATIVE, neg)
			c.setFlag(FLAG_ZERO, z)
		} else {
			r, co, ov, neg, z := decimalSub16(c.a, v, carryIn)
			c.a = r
			c.setFlag(FLAG_CARRY, co)
			c.setFlag(FLAG_OVERFLOW, ov)
			c.setFlag(FLAG_NEGATIVE, neg)
			c.setFlag(FLAG_ZERO, z)
		}
		return
	}
	// Binary subtraction via two's complement addition of ~v.
	if c.m8() {
		a, b := uint8(c.a), ^uint8(v)
		var cin uint16
		if carryIn {
			cin = 1
		}
		sum := uint16(a) + uint16(b) + cin
		c.setFlag(FLAG_OVERFLOW, (^(uint16(a)^uint16(b)))&(uint16(a)^sum)&0x80 != 0)
		c.setFlag(FLAG_CARRY, sum > 0xFF)
		c.a = c.a&0xFF00 | (sum & 0xFF)
		c.setNZ8(uint8(sum))
	} else {
		b := ^v
		var cin uint32
		if carryIn {
			cin = 1
		}
		sum := uint32(c.a) + uint32(b) + cin
		c.setFlag(FLAG_OVERFLOW, (^(uint32(c.a)^uint32(b)))&(uint32(c.a)^sum)&0x8000 != 0)
		c.setFlag(FLAG_CARRY, sum > 0xFFFF)
		c.a = uint16(sum)
		c.setNZ16(c.a)
	}
}

func execAND(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	c.a &= v | boolMask16(c.m8(), 0xFF00)
	if c.m8() {
		c.setNZ8(uint8(c.a))
	} else {
		c.setNZ16(c.a)
	}
}

// boolMask16 returns mask if cond else 0, used to leave the high byte
// of A untouched by 8-bit logical ops.
func boolMask16(cond bool, mask uint16) uint16 {
	if cond {
		return mask
	}
	return 0
}

func execORA(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	if c.m8() {
		c.a = c.a&0xFF00 | ((c.a | v) & 0xFF)
		c.setNZ8(uint8(c.a))
	} else {
		c.a |= v
		c.setNZ16(c.a)
	}
}

func execEOR(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	if c.m8() {
		c.a = c.a&0xFF00 | ((c.a ^ v) & 0xFF)
		c.setNZ8(uint8(c.a))
	} else {
		c.a ^= v
		c.setNZ16(c.a)
	}
}

func execCMP(c *CPU, mode AddrMode) { compare(c, c.a, c.readOperand(mode), c.m8()) }
func execCPX(c *CPU, mode AddrMode) { compare(c, c.x, c.readOperandX(mode), c.x8()) }
func execCPY(c *CPU, mode AddrMode) { compare(c, c.y, c.readOperandX(mode), c.x8()) }

func compare(c *CPU, reg, v uint16, narrow bool) {
	if narrow {
		r := uint8(reg) - uint8(v)
		c.setFlag(FLAG_CARRY, uint8(reg) >= uint8(v))
		c.setNZ8(r)
	} else {
		r := reg - v
		c.setFlag(FLAG_CARRY, reg >= v)
		c.setNZ16(r)
	}
}

func execBIT(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	if mode != ModeImmediateM {
		if c.m8() {
			c.setFlag(FLAG_OVERFLOW, v&0x40 != 0)
			c.setFlag(FLAG_NEGATIVE, v&0x80 != 0)
		} else {
			c.setFlag(FLAG_OVERFLOW, v&0x4000 != 0)
			c.setFlag(FLAG_NEGATIVE, v&0x8000 != 0)
		}
	}
	if c.m8() {
		c.setFlag(FLAG_ZERO, uint8(c.a)&uint8(v) == 0)
	} else {
		c.setFlag(FLAG_ZERO, c.a&v == 0)
	}
}

func execLDA(c *CPU, mode AddrMode) {
	v := c.readOperand(mode)
	if c.m8() {
		c.a = c.a&0xFF00 | v
		c.setNZ8(uint8(v))
	} else {
		c.a = v
		c.setNZ16(v)
	}
}

func execLDX(c *CPU, mode AddrMode) {
	v := c.readOperandX(mode)
	if c.x8() {
		c.x = v
		c.setNZ8(uint8(v))
	} else {
		c.x = v
		c.setNZ16(v)
	}
}

func execLDY(c *CPU, mode AddrMode) {
	v := c.readOperandX(mode)
	if c.x8() {
		c.y = v
		c.setNZ8(uint8(v))
	} else {
		c.y = v
		c.setNZ16(v)
	}
}

func execSTA(c *CPU, mode AddrMode) { c.writeOperand(mode, c.a) }
func execSTX(c *CPU, mode AddrMode) { c.writeOperandX(mode, c.x) }
func execSTY(c *CPU, mode AddrMode) { c.writeOperandX(mode, c.y) }
func execSTZ(c *CPU, mode AddrMode) { c.writeOperand(mode, 0) }

func execASL(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			c.setFlag(FLAG_CARRY, v&0x80 != 0)
			r := uint8(v << 1)
			c.setNZ8(r)
			return uint16(r)
		}
		c.setFlag(FLAG_CARRY, v&0x8000 != 0)
		r := v << 1
		c.setNZ16(r)
		return r
	})
}

func execLSR(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			c.setFlag(FLAG_CARRY, v&1 != 0)
			r := uint8(v >> 1)
			c.setNZ8(r)
			return uint16(r)
		}
		c.setFlag(FLAG_CARRY, v&1 != 0)
		r := v >> 1
		c.setNZ16(r)
		return r
	})
}

func execROL(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		var cin uint16
		if c.flag(FLAG_CARRY) {
			cin = 1
		}
		if c.m8() {
			c.setFlag(FLAG_CARRY, v&0x80 != 0)
			r := uint8(v<<1) | uint8(cin)
			c.setNZ8(r)
			return uint16(r)
		}
		c.setFlag(FLAG_CARRY, v&0x8000 != 0)
		r := (v << 1) | cin
		c.setNZ16(r)
		return r
	})
}

func execROR(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		var cin uint16
		if c.flag(FLAG_CARRY) {
			if c.m8() {
				cin = 0x80
			} else {
				cin = 0x8000
			}
		}
		if c.m8() {
			c.setFlag(FLAG_CARRY, v&1 != 0)
			r := uint8(v>>1) | uint8(cin)
			c.setNZ8(r)
			return uint16(r)
		}
		c.setFlag(FLAG_CARRY, v&1 != 0)
		r := (v >> 1) | cin
		c.setNZ16(r)
		return r
	})
}

func execINC(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			r := uint8(v) + 1
			c.setNZ8(r)
			return uint16(r)
		}
		r := v + 1
		c.setNZ16(r)
		return r
	})
}

func execDEC(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			r := uint8(v) - 1
			c.setNZ8(r)
			return uint16(r)
		}
		r := v - 1
		c.setNZ16(r)
		return r
	})
}

func execTRB(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			c.setFlag(FLAG_ZERO, uint8(c.a)&uint8(v) == 0)
		} else {
			c.setFlag(FLAG_ZERO, c.a&v == 0)
		}
		return v &^ c.a
	})
}

func execTSB(c *CPU, mode AddrMode) {
	c.modifyOperand(mode, func(v uint16) uint16 {
		if c.m8() {
			c.setFlag(FLAG_ZERO, uint8(c.a)&uint8(v) == 0)
		} else {
			c.setFlag(FLAG_ZERO, c.a&v == 0)
		}
		return v | c.a
	})
}

func execINX(c *CPU, _ AddrMode) { c.x = bumpIndex(c, c.x, 1); c.setNZx(c.x) }
func execINY(c *CPU, _ AddrMode) { c.y = bumpIndex(c, c.y, 1); c.setNZx(c.y) }
func execDEX(c *CPU, _ AddrMode) { c.x = bumpIndex(c, c.x, -1); c.setNZx(c.x) }
func execDEY(c *CPU, _ AddrMode) { c.y = bumpIndex(c, c.y, -1); c.setNZx(c.y) }

func bumpIndex(c *CPU, v uint16, delta int16) uint16 {
	if c.x8() {
		return uint16(uint8(int16(uint8(v)) + delta))
	}
	return uint16(int16(v) + delta)
}

func (c *CPU) setNZx(v uint16) {
	if c.x8() {
		c.setNZ8(uint8(v))
	} else {
		c.setNZ16(v)
	}
}

func execTAX(c *CPU, _ AddrMode) { c.x = widenTo(c.a, c.x8()); c.setNZx(c.x) }
func execTAY(c *CPU, _ AddrMode) { c.y = widenTo(c.a, c.x8()); c.setNZx(c.y) }
func execTXA(c *CPU, _ AddrMode) {
	if c.m8() {
		c.a = c.a&0xFF00 | (c.x & 0xFF)
		c.setNZ8(uint8(c.a))
		return
	}
	c.a = c.x
	c.setNZ16(c.a)
}

func execTYA(c *CPU, _ AddrMode) {
	if c.m8() {
		c.a = c.a&0xFF00 | (c.y & 0xFF)
		c.setNZ8(uint8(c.a))
		return
	}
	c.a = c.y
	c.setNZ16(c.a)
}
func execTXY(c *CPU, _ AddrMode) { c.y = c.x; c.setNZx(c.y) }
func execTYX(c *CPU, _ AddrMode) { c.x = c.y; c.setNZx(c.x) }

func widenTo(v uint16, narrow bool) uint16 {
	if narrow {
		return v & 0xFF
	}
	return v
}

func execTXS(c *CPU, _ AddrMode) {
	if c.emulation {
		c.sp = 0x0100 | (c.x & 0xFF)
	} else {
		c.sp = c.x
	}
}

func execTSX(c *CPU, _ AddrMode) { c.x = widenTo(c.sp, c.x8()); c.setNZx(c.x) }
func execTCD(c *CPU, _ AddrMode) { c.d = c.a; c.setNZ16(c.d) }
func execTDC(c *CPU, _ AddrMode) { c.a = c.d; c.setNZ16(c.a) }
func execTCS(c *CPU, _ AddrMode) {
	if c.emulation {
		c.sp = 0x0100 | (c.a & 0xFF)
	} else {
		c.sp = c.a
	}
}
func execTSC(c *CPU, _ AddrMode) { c.a = c.sp; c.setNZ16(c.a) }

func execPHA(c *CPU, _ AddrMode) {
	if c.m8() {
		c.push8(uint8(c.a))
	} else {
		c.push16(c.a)
	}
}
func execPHX(c *CPU, _ AddrMode) {
	if c.x8() {
		c.push8(uint8(c.x))
	} else {
		c.push16(c.x)
	}
}
func execPHY(c *CPU, _ AddrMode) {
	if c.x8() {
		c.push8(uint8(c.y))
	} else {
		c.push16(c.y)
	}
}
func execPHB(c *CPU, _ AddrMode) { c.push8(c.dbr) }
func execPHD(c *CPU, _ AddrMode) { c.push16(c.d) }
func execPHK(c *CPU, _ AddrMode) { c.push8(c.pbr) }
func execPHP(c *CPU, _ AddrMode) { c.push8(c.p) }

func execPLA(c *CPU, _ AddrMode) {
	if c.m8() {
		v := c.pull8()
		c.a = c.a&0xFF00 | uint16(v)
		c.setNZ8(v)
	} else {
		c.a = c.pull16()
		c.setNZ16(c.a)
	}
}
func execPLX(c *CPU, _ AddrMode) {
	if c.x8() {
		v := c.pull8()
		c.x = uint16(v)
		c.setNZ8(v)
	} else {
		c.x = c.pull16()
		c.setNZ16(c.x)
	}
}
func execPLY(c *CPU, _ AddrMode) {
	if c.x8() {
		v := c.pull8()
		c.y = uint16(v)
		c.setNZ8(v)
	} else {
		c.y = c.pull16()
		c.setNZ16(c.y)
	}
}
func execPLB(c *CPU, _ AddrMode) { c.dbr = c.pull8(); c.setNZ8(c.dbr) }
func execPLD(c *CPU, _ AddrMode) { c.d = c.pull16(); c.setNZ16(c.d) }
func execPLP(c *CPU, _ AddrMode) {
	c.p = c.pull8()
	if c.emulation {
		c.p |= FLAG_MEM8
	}
	c.widenOnFlagChange()
	c.ArmIntDelay()
}

// widenOnFlagChange enforces that setting X back to 1 truncates X and
// Y to 8 bits, as real hardware does immediately. Setting M leaves the
// accumulator's high byte in place.
func (c *CPU) widenOnFlagChange() {
	if c.p&FLAG_INDEX8 != 0 {
		c.x &= 0xFF
		c.y &= 0xFF
	}
}

func execPEA(c *CPU, _ AddrMode) { c.push16(c.fetch16()) }
func execPEI(c *CPU, _ AddrMode) {
	dp := c.directAddr(c.fetch8(), 0)
	c.push16(c.read16(0, dp))
}
func execPER(c *CPU, _ AddrMode) {
	rel := int16(c.fetch16())
	c.push16(c.pc + uint16(rel))
}

func branch(c *CPU, cond bool) {
	rel := int8(c.fetch8())
	if cond {
		c.idle()
		c.pc = uint16(int32(c.pc) + int32(rel))
	}
}

func execBCC(c *CPU, _ AddrMode) { branch(c, !c.flag(FLAG_CARRY)) }
func execBCS(c *CPU, _ AddrMode) { branch(c, c.flag(FLAG_CARRY)) }
func execBEQ(c *CPU, _ AddrMode) { branch(c, c.flag(FLAG_ZERO)) }
func execBNE(c *CPU, _ AddrMode) { branch(c, !c.flag(FLAG_ZERO)) }
func execBMI(c *CPU, _ AddrMode) { branch(c, c.flag(FLAG_NEGATIVE)) }
func execBPL(c *CPU, _ AddrMode) { branch(c, !c.flag(FLAG_NEGATIVE)) }
func execBVC(c *CPU, _ AddrMode) { branch(c, !c.flag(FLAG_OVERFLOW)) }
func execBVS(c *CPU, _ AddrMode) { branch(c, c.flag(FLAG_OVERFLOW)) }
func execBRA(c *CPU, _ AddrMode) { branch(c, true) }

func execBRL(c *CPU, _ AddrMode) {
	rel := int16(c.fetch16())
	c.pc = uint16(int32(c.pc) + int32(rel))
}

func execJMP(c *CPU, mode AddrMode) {
	bank, off := c.operand(mode, false)
	c.pc = off
	if mode == ModeAbsoluteLong {
		c.pbr = bank
	}
}

func execJML(c *CPU, mode AddrMode) {
	bank, off := c.operand(mode, false)
	c.pc = off
	c.pbr = bank
}

func execJSR(c *CPU, mode AddrMode) {
	_, off := c.operand(mode, false)
	c.idle()
	c.push16(c.pc - 1)
	c.pc = off
}

func execJSL(c *CPU, _ AddrMode) {
	off := c.fetch16()
	bank := c.fetch8()
	c.push8(c.pbr)
	c.idle()
	c.push16(c.pc - 1)
	c.pbr = bank
	c.pc = off
}

func execRTS(c *CPU, _ AddrMode) {
	c.pc = c.pull16() + 1
	c.idle()
	c.idle()
}

func execRTL(c *CPU, _ AddrMode) {
	c.pc = c.pull16() + 1
	c.pbr = c.pull8()
	c.idle()
}

func execRTI(c *CPU, _ AddrMode) {
	c.p = c.pull8()
	if c.emulation {
		c.p |= FLAG_MEM8
	}
	c.widenOnFlagChange()
	c.pc = c.pull16()
	if !c.emulation {
		c.pbr = c.pull8()
	}
	c.idle()
	c.ArmIntDelay()
}

func execBRK(c *CPU, _ AddrMode) {
	c.fetch8() // signature byte, ignored
	if !c.emulation {
		c.push8(c.pbr)
	}
	c.push16(c.pc)
	c.push8(c.p)
	c.setFlag(FLAG_IRQD, true)
	c.setFlag(FLAG_DECIMAL, false)
	c.pbr = 0
	if c.emulation {
		c.pc = c.read16(0, VEC_IRQBRK_EMU)
	} else {
		c.pc = c.read16(0, VEC_BRK_NATIVE)
	}
}

func execCOP(c *CPU, _ AddrMode) {
	c.fetch8()
	if !c.emulation {
		c.push8(c.pbr)
	}
	c.push16(c.pc)
	c.push8(c.p)
	c.setFlag(FLAG_IRQD, true)
	c.setFlag(FLAG_DECIMAL, false)
	c.pbr = 0
	if c.emulation {
		c.pc = c.read16(0, VEC_COP_EMU)
	} else {
		c.pc = c.read16(0, VEC_COP_NATIVE)
	}
}

func execCLC(c *CPU, _ AddrMode) { c.setFlag(FLAG_CARRY, false) }
func execSEC(c *CPU, _ AddrMode) { c.setFlag(FLAG_CARRY, true) }
func execCLD(c *CPU, _ AddrMode) { c.setFlag(FLAG_DECIMAL, false) }
func execSED(c *CPU, _ AddrMode) { c.setFlag(FLAG_DECIMAL, true) }
func execCLI(c *CPU, _ AddrMode) { c.setFlag(FLAG_IRQD, false) }
func execSEI(c *CPU, _ AddrMode) { c.setFlag(FLAG_IRQD, true) }
func execCLV(c *CPU, _ AddrMode) { c.setFlag(FLAG_OVERFLOW, false) }

func execREP(c *CPU, _ AddrMode) {
	mask := c.fetch8()
	c.p &^= mask
	if c.emulation {
		c.p |= FLAG_MEM8
	}
	c.ArmIntDelay()
}

func execSEP(c *CPU, _ AddrMode) {
	mask := c.fetch8()
	c.p |= mask
	c.widenOnFlagChange()
	c.ArmIntDelay()
}

func execXCE(c *CPU, _ AddrMode) {
	carry := c.flag(FLAG_CARRY)
	c.setFlag(FLAG_CARRY, c.emulation)
	c.emulation = carry
	if c.emulation {
		c.p |= FLAG_MEM8 | FLAG_INDEX8
		c.sp = 0x0100 | (c.sp & 0xFF)
		c.x &= 0xFF
		c.y &= 0xFF
	}
	c.ArmIntDelay()
}

func execXBA(c *CPU, _ AddrMode) {
	lo, hi := uint8(c.a), uint8(c.a>>8)
	c.a = uint16(lo)<<8 | uint16(hi)
	c.setNZ8(hi)
}

func execNOP(c *CPU, _ AddrMode) {}
func execWDM(c *CPU, _ AddrMode) { c.fetch8() }

func execSTP(c *CPU, _ AddrMode) { c.stopped = true }
func execWAI(c *CPU, _ AddrMode) { c.waiting = true; c.idle() }

// execMVN/execMVP implement the block-move instructions: one iteration
// per Step() call, re-entering (by rewinding PC) until A == 0xFFFF.
func execMVN(c *CPU, _ AddrMode) {
	destBank := c.fetch8()
	srcBank := c.fetch8()
	v := c.read(srcBank, c.x)
	c.write(destBank, c.y, v)
	c.dbr = destBank
	c.x++
	c.y++
	c.a--
	c.idle()
	c.idle()
	if c.a != 0xFFFF {
		c.pc -= 3
	}
}

func execMVP(c *CPU, _ AddrMode) {
	destBank := c.fetch8()
	srcBank := c.fetch8()
	v := c.read(srcBank, c.x)
	c.write(destBank, c.y, v)
	c.dbr = destBank
	c.x--
	c.y--
	c.a--
	c.idle()
	c.idle()
	if c.a != 0xFFFF {
		c.pc -= 3
	}
}
