package bus

// Internal CPU-bus register offsets ($4200-$421F).
const (
	regNMITIMEN = 0x00
	regWRIO     = 0x01
	regWRMPYA   = 0x02
	regWRMPYB   = 0x03
	regWRDIVL   = 0x04
	regWRDIVH   = 0x05
	regWRDVDD   = 0x06
	regHTIMEL   = 0x07
	regHTIMEH   = 0x08
	regVTIMEL   = 0x09
	regVTIMEH   = 0x0A
	regMDMAEN   = 0x0B
	regHDMAEN   = 0x0C
	regMEMSEL   = 0x0D

	regRDNMI   = 0x10
	regTIMEUP  = 0x11
	regHVBJOY  = 0x12
	regRDIO    = 0x13
	regRDDIVL  = 0x14
	regRDDIVH  = 0x15
	regRDMPYL  = 0x16
	regRDMPYH  = 0x17
	regJOY1L   = 0x18
	regJOY1H   = 0x19
	regJOY2L   = 0x1A
	regJOY2H   = 0x1B
	regJOY3L   = 0x1C
	regJOY3H   = 0x1D
	regJOY4L   = 0x1E
	regJOY4H   = 0x1F
)

func (b *Bus) writeInternalReg(offset uint16, v uint8) {
	switch offset & 0xFF {
	case regNMITIMEN:
		b.nmiEnabled = v&0x80 != 0
		b.vIrqEn = v&0x20 != 0
		b.hIrqEn = v&0x10 != 0
		b.autoJoyEnabled = v&0x01 != 0
		if !b.vIrqEn && !b.hIrqEn {
			b.inIrq = false
			b.cpu.SetIRQLine(false)
		}
		b.cpu.ArmIntDelay()
	case regWRIO:
		// bit 7 is the H/V-latch strobe; real hardware latches the
		// counters on its falling edge, independent of SLHV reads.
		if b.wrio&0x80 != 0 && v&0x80 == 0 {
			b.ppu.LatchCounters(uint16(b.hPos/4), uint16(b.vPos))
		}
		b.wrio = v
	case regWRMPYA:
		b.mulA = v
	case regWRMPYB:
		b.mulB = v
		result := uint16(b.mulA) * uint16(v)
		b.mulResult = result
	case regWRDIVL:
		b.divA = (b.divA &^ 0xFF) | uint16(v)
	case regWRDIVH:
		b.divA = (b.divA & 0xFF) | uint16(v)<<8
	case regWRDVDD:
		if v == 0 {
			b.divResult = 0xFFFF
			b.divRemainder = b.divA
		} else {
			b.divResult = b.divA / uint16(v)
			b.divRemainder = b.divA % uint16(v)
		}
	case regHTIMEL:
		b.hTimer = (b.hTimer &^ 0xFF) | uint16(v)
	case regHTIMEH:
		b.hTimer = (b.hTimer & 0xFF) | uint16(v&0x01)<<8
	case regVTIMEL:
		b.vTimer = (b.vTimer &^ 0xFF) | uint16(v)
	case regVTIMEH:
		b.vTimer = (b.vTimer & 0xFF) | uint16(v&0x01)<<8
	case regMDMAEN:
		b.dma.startChannels(v)
	case regHDMAEN:
		b.dma.hdmaEnableMask = v
	case regMEMSEL:
		if (v&0x01 != 0) != b.fastMem {
			b.buildAccessTimeTable(v&0x01 != 0)
		}
	}
}

func (b *Bus) readInternalReg(offset uint16) uint8 {
	switch offset & 0xFF {
	case regRDNMI:
		v := uint8(0x02) // CPU version nibble
		if b.inNmi {
			v |= 0x80
		}
		b.inNmi = false
		return v
	case regTIMEUP:
		v := uint8(0)
		if b.inIrq {
			v = 0x80
			b.inIrq = false
			b.cpu.SetIRQLine(false)
		}
		return v
	case regHVBJOY:
		var v uint8
		if b.autoJoyTimer > 0 {
			v |= 0x01
		}
		if b.hPos < 4 || b.hPos >= 1096 {
			v |= 0x40
		}
		if b.inVblank {
			v |= 0x80
		}
		return v
	case regRDDIVL:
		return uint8(b.divResult)
	case regRDDIVH:
		return uint8(b.divResult >> 8)
	case regRDMPYL:
		return uint8(b.mulResult)
	case regRDMPYH:
		return uint8(b.mulResult >> 8)
	case regJOY1L:
		return uint8(b.joypad[0])
	case regJOY1H:
		return uint8(b.joypad[0] >> 8)
	case regJOY2L:
		return uint8(b.joypad[1])
	case regJOY2H:
		return uint8(b.joypad[1] >> 8)
	}
	return 0
}
