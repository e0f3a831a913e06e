package ppu

import "testing"

type nullBus struct {
	nmis   int
	vblank bool
}

func (b *nullBus) TriggerNMI()    { b.nmis++ }
func (b *nullBus) InVblank() bool { return b.vblank }

func TestINIDISPSetsBrightnessAndBlank(t *testing.T) {
	p := New(&nullBus{})
	p.WriteReg(REG_INIDISP, 0x8A)

	if !p.ForcedBlank {
		t.Errorf("ForcedBlank = false, wanted true")
	}
	if p.Brightness != 0x0A {
		t.Errorf("Brightness = %#x, wanted 0xA", p.Brightness)
	}
}

func TestVRAMWriteReadRoundTrip(t *testing.T) {
	p := New(&nullBus{})
	p.WriteReg(REG_VMAIN, 0x80) // +1 word after each high-byte write
	p.WriteReg(REG_VMADDL, 0x34)
	p.WriteReg(REG_VMADDH, 0x12)
	p.WriteReg(REG_VMDATAL, 0xAD)
	p.WriteReg(REG_VMDATAH, 0xDE)

	if got := p.VRAM[0x1234]; got != 0xDEAD {
		t.Errorf("VRAM[0x1234] = %#04x, wanted 0xDEAD", got)
	}
}

func TestCGRAMWriteIsLowThenHighLatched(t *testing.T) {
	p := New(&nullBus{})
	p.WriteReg(REG_CGADD, 0x10)
	p.WriteReg(REG_CGDATA, 0xEF)
	p.WriteReg(REG_CGDATA, 0x7B) // top bit of high byte ignored (15-bit color)

	if got := p.CGRAM[0x10]; got != 0x7BEF {
		t.Errorf("CGRAM[0x10] = %#04x, wanted 0x7bef", got)
	}
}

func TestOAMAddressAutoIncrements(t *testing.T) {
	p := New(&nullBus{})
	p.WriteReg(REG_OAMADDL, 0xFE)
	p.WriteReg(REG_OAMADDH, 0x00)
	p.WriteReg(REG_OAMDATA, 0x11)
	p.WriteReg(REG_OAMDATA, 0x22)

	if p.OAMLow[0xFE] != 0x11 || p.OAMLow[0xFF] != 0x22 {
		t.Errorf("OAMLow[0xfe:0x100] = %02x %02x, wanted 11 22", p.OAMLow[0xFE], p.OAMLow[0xFF])
	}
}

func TestColorMathAdditiveClampsAt31(t *testing.T) {
	p := New(&nullBus{})
	p.MathEnable[0] = true
	main := [ScreenWidth]pixel{{color: packBGR(31, 20, 0), layer: 0}}
	sub := [ScreenWidth]pixel{{color: packBGR(10, 20, 0), layer: 5}}

	p.applyColorMath(&main, &sub)

	r, g, _ := unpackBGR(main[0].color)
	if r != 31 {
		t.Errorf("r = %d, wanted clamped to 31", r)
	}
	if g != 31 {
		t.Errorf("g = %d, wanted clamped to 31 (20+20)", g)
	}
}

func TestColorMathSubtractiveClampsAtZero(t *testing.T) {
	p := New(&nullBus{})
	p.MathEnable[0] = true
	p.Subtract = true
	main := [ScreenWidth]pixel{{color: packBGR(5, 5, 5), layer: 0}}
	sub := [ScreenWidth]pixel{{color: packBGR(10, 2, 5), layer: 5}}

	p.applyColorMath(&main, &sub)

	r, g, b := unpackBGR(main[0].color)
	if r != 0 {
		t.Errorf("r = %d, wanted clamped to 0 (5-10)", r)
	}
	if g != 3 {
		t.Errorf("g = %d, wanted 3 (5-2)", g)
	}
	if b != 0 {
		t.Errorf("b = %d, wanted 0 (5-5)", b)
	}
}

// fillOAM places n sprites, all at the given line, each 8x8 (size
// selector 0), to exercise the 32-sprite and 34-sliver limits.
func fillOAM(p *PPU, n int, line uint8) {
	for i := 0; i < n; i++ {
		base := i * 4
		p.OAMLow[base] = uint8(i * 8 % 256) // x
		p.OAMLow[base+1] = line             // y
		p.OAMLow[base+2] = 0                // tile
		p.OAMLow[base+3] = 0                // attr
	}
}

func TestSpriteRangeOverAtThirtyThirdSprite(t *testing.T) {
	p := New(&nullBus{})
	fillOAM(p, 33, 10)

	found := p.evaluateSprites(10)

	if len(found) != 32 {
		t.Errorf("len(found) = %d, wanted 32", len(found))
	}
	if !p.rangeOver {
		t.Errorf("rangeOver = false, wanted true with 33 sprites on one line")
	}
}

func TestSpriteNoOverflowAtThirtyTwoSprites(t *testing.T) {
	p := New(&nullBus{})
	fillOAM(p, 32, 10)

	found := p.evaluateSprites(10)

	if len(found) != 32 {
		t.Errorf("len(found) = %d, wanted 32", len(found))
	}
	if p.rangeOver {
		t.Errorf("rangeOver = true, wanted false with exactly 32 sprites")
	}
}

func TestMode7WrapIsTwosComplementNotSaturating(t *testing.T) {
	got := wrap13(0x1000) // exactly the sign boundary
	if got != -4096 {
		t.Errorf("wrap13(0x1000) = %d, wanted -4096", got)
	}
	got = wrap13(0x0FFF)
	if got != 0x0FFF {
		t.Errorf("wrap13(0x0fff) = %d, wanted 0x0fff", got)
	}
}

func TestHVCounterLatchTwoReadToggle(t *testing.T) {
	p := New(&nullBus{})
	p.LatchCounters(0x1A3, 0x0F0)

	lo := p.ReadReg(REG_OPHCT)
	hi := p.ReadReg(REG_OPHCT)

	if lo != 0xA3 {
		t.Errorf("first OPHCT read = %#02x, wanted 0xa3", lo)
	}
	if hi != 0x01 {
		t.Errorf("second OPHCT read = %#02x, wanted top bit 0x01", hi)
	}
}

func TestBrightnessScalesOutputChannel(t *testing.T) {
	p := New(&nullBus{})
	if v := scaleChannel(31, 15); v != 31 {
		t.Errorf("scaleChannel(31,15) = %d, wanted 31 (full brightness)", v)
	}
	if v := scaleChannel(31, 0); v != 0 {
		t.Errorf("scaleChannel(31,0) = %d, wanted 0 (forced black)", v)
	}
	_ = p
}
