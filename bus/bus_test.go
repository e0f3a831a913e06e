package bus

import (
	"testing"

	"github.com/bdwalton/gosnes/apu"
	"github.com/bdwalton/gosnes/cartridge"
	"github.com/bdwalton/gosnes/cpu"
	"github.com/bdwalton/gosnes/ppu"
)

// makeTestBus builds a Bus directly (bypassing New/cartridge loading)
// so register-level scenarios from spec.md can be exercised without a
// real ROM image.
func makeTestBus() *Bus {
	b := &Bus{evenFrame: true}
	b.mapper = cartridge.NewDummy()
	b.dma = newDMAEngine(b)
	b.ppu = ppu.New(b)
	b.apu = apu.New()
	b.cpu = cpu.New(b)
	return b
}

func TestMultiplierLatchesOnSecondOperand(t *testing.T) {
	b := makeTestBus()
	b.writeInternalReg(0x4202, 0x12)
	b.writeInternalReg(0x4203, 0x34)

	lo := b.readInternalReg(0x4216)
	hi := b.readInternalReg(0x4217)

	if lo != 0xA8 || hi != 0x03 {
		t.Errorf("product = %02x%02x, wanted 0x03a8", hi, lo)
	}
}

func TestDividerComputesQuotientAndRemainder(t *testing.T) {
	b := makeTestBus()
	b.writeInternalReg(0x4204, 0x00)
	b.writeInternalReg(0x4205, 0x10)
	b.writeInternalReg(0x4206, 0x05)

	qlo := b.readInternalReg(0x4214)
	qhi := b.readInternalReg(0x4215)
	rlo := b.readInternalReg(0x4216)
	rhi := b.readInternalReg(0x4217)

	if uint16(qhi)<<8|uint16(qlo) != 0x0333 {
		t.Errorf("quotient = %#04x, wanted 0x0333", uint16(qhi)<<8|uint16(qlo))
	}
	if uint16(rhi)<<8|uint16(rlo) != 0x0001 {
		t.Errorf("remainder = %#04x, wanted 0x0001", uint16(rhi)<<8|uint16(rlo))
	}
}

func TestDivideByZeroYieldsFFFFQuotientAndDividendRemainder(t *testing.T) {
	b := makeTestBus()
	b.writeInternalReg(0x4204, 0x00)
	b.writeInternalReg(0x4205, 0x10)
	b.writeInternalReg(0x4206, 0x00)

	qlo := b.readInternalReg(0x4214)
	qhi := b.readInternalReg(0x4215)
	rlo := b.readInternalReg(0x4216)
	rhi := b.readInternalReg(0x4217)

	if uint16(qhi)<<8|uint16(qlo) != 0xFFFF {
		t.Errorf("quotient = %#04x, wanted 0xffff", uint16(qhi)<<8|uint16(qlo))
	}
	if uint16(rhi)<<8|uint16(rlo) != 0x1000 {
		t.Errorf("remainder = %#04x, wanted 0x1000 (the dividend)", uint16(rhi)<<8|uint16(rlo))
	}
}

func TestAccessTimeTableMatchesDocumentedRegions(t *testing.T) {
	b := makeTestBus()
	b.buildAccessTimeTable(false)

	cases := []struct {
		bank   uint8
		offset uint16
		want   uint8
	}{
		{0x00, 0x0100, cycRAM},
		{0x00, 0x2104, cycB},
		{0x00, 0x4016, cycJoypad},
		{0x00, 0x4210, cycB},
		{0x00, 0x4300, cycDMA},
		{0x00, 0x4100, cycXSlow},
		{0x00, 0x7000, cycSRAM},
		{0x00, 0x8000, cycSlow},
		{0x7E, 0x0000, cycRAM},
	}
	for _, c := range cases {
		got := b.accessTime[uint32(c.bank)<<16|uint32(c.offset)]
		if got != c.want {
			t.Errorf("accessTime[%#02x:%#04x] = %d, wanted %d", c.bank, c.offset, got, c.want)
		}
	}
}

func TestFastROMSpeedsUpHighBankAccess(t *testing.T) {
	if got := accessTimeFor(0x80, 0x8000, true); got != cycFast {
		t.Errorf("fastMem high-bank access = %d, wanted %d", got, cycFast)
	}
	if got := accessTimeFor(0x80, 0x8000, false); got != cycSlow {
		t.Errorf("slow-mem high-bank access = %d, wanted %d", got, cycSlow)
	}
}

func TestHPosStaysWithinLineBoundsAcrossAFrame(t *testing.T) {
	b := makeTestBus()
	for i := 0; i < 400000; i++ {
		if b.hPos >= hPosMax+8 {
			t.Fatalf("hPos = %d, exceeded maximum line length", b.hPos)
		}
		if b.hPos%2 != 0 {
			t.Fatalf("hPos = %d, expected always even", b.hPos)
		}
		b.runCycle()
	}
}

func TestVPosStaysUnderNTSCFrameCount(t *testing.T) {
	b := makeTestBus()
	for i := 0; i < 600; i++ {
		b.endLine()
		if b.vPos >= 263 {
			t.Fatalf("vPos = %d, exceeded NTSC frame bound", b.vPos)
		}
	}
}
