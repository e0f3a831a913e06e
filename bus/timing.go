package bus

// runCycles advances the master clock by n cycles (always an even
// number coming from CPU accesses), driving the raster loop two
// cycles at a time per spec.md §4.2.
func (b *Bus) runCycles(n int) {
	for i := 0; i < n; i += 2 {
		b.runCycle()
	}
}

func (b *Bus) lastLine() int {
	if b.pal {
		return 312
	}
	return 262
}

func (b *Bus) lineLength() int {
	// 1360 on the last line of an odd field of an interlaced frame;
	// 1368 on the last line of a non-interlaced PAL frame; 1364 the
	// common case.
	last := b.lastLine() - 1
	switch {
	case b.interlace && !b.evenFrame && b.vPos == last:
		return 1360
	case b.pal && b.vPos == last && !b.interlace:
		return 1368
	default:
		return 1364
	}
}

// runCycle advances two master cycles: IRQ condition sampling every
// fourth cycle, then positional event dispatch.
func (b *Bus) runCycle() {
	b.masterCycles += 2
	b.hPos += 2

	if b.hPos%4 == 0 {
		b.sampleIRQCondition()
	}
	if b.hvTimer > 0 {
		b.hvTimer -= 2
		if b.hvTimer <= 0 {
			b.inIrq = true
			b.cpu.SetIRQLine(true)
		}
	}
	if b.autoJoyTimer > 0 {
		b.autoJoyTimer -= 2
	}

	switch b.hPos {
	case 16:
		if b.vPos == 0 {
			b.dma.requestHDMAInit()
		}
	case 512:
		if !b.inVblank && b.vPos > 0 {
			b.ppu.RenderScanline(b.vPos - 1)
		}
	case 1104:
		if !b.inVblank {
			b.dma.requestHDMARun()
		}
	}

	if b.hPos >= b.lineLength() {
		b.endLine()
	}
}

func (b *Bus) sampleIRQCondition() {
	cond := (b.vIrqEn || b.hIrqEn) &&
		(uint16(b.vPos) == b.vTimer || !b.vIrqEn) &&
		(uint16(b.hPos) == b.hTimer || !b.hIrqEn)
	if cond && !b.irqCondition {
		b.hvTimer = 4
	}
	b.irqCondition = cond
}

func (b *Bus) endLine() {
	b.hPos = 0
	b.vPos++

	last := b.lastLine()
	if !b.evenFrame {
		last++
	}
	if b.vPos >= last {
		b.vPos = 0
		b.evenFrame = !b.evenFrame
		b.ppu.NewFrame()
	}

	switch {
	case b.vPos == 0:
		b.inVblank = false
		b.inNmi = false
		b.cpu.ClearNMI()
	case b.vPos == 225:
		if !b.ppu.InOverscan() {
			b.enterVblank()
		}
	case b.vPos == 240:
		if !b.inVblank {
			b.enterVblank()
		}
	}
}

func (b *Bus) enterVblank() {
	b.catchupApu()
	b.inVblank = true
	b.inNmi = true
	b.ppu.LatchOAMAddress()
	if b.autoJoyEnabled {
		b.autoJoyTimer = 4224
		b.autoJoypadSample()
	}
	b.TriggerNMI()
}
