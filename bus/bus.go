// Package bus implements the SNES memory map decoder and timing
// controller: the component that multiplexes CPU access, DMA/HDMA,
// timers, NMI and auto-joypad polling against exact raster position.
package bus

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/bdwalton/gosnes/apu"
	"github.com/bdwalton/gosnes/cartridge"
	"github.com/bdwalton/gosnes/cpu"
	"github.com/bdwalton/gosnes/ppu"
	"github.com/bdwalton/gosnes/romformat"
	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

const (
	wramSize = 128 * 1024

	accessTableSize = 1 << 24
)

// Access-time constants per spec.md's memory map decoder table, in
// master cycles.
const (
	cycFast   = 6
	cycSlow   = 8
	cycXSlow  = 12
	cycRAM    = 8
	cycB      = 6
	cycJoypad = 6
	cycDMA    = 6
	cycSRAM   = 8
)

// NTSC/PAL frame geometry.
const (
	hPosMax = 1364 // cycles/line for the common line length
)

type Bus struct {
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	apu    *apu.APU
	mapper cartridge.Mapper

	wram     [wramSize]uint8
	wramAddr uint32

	accessTime [accessTableSize]uint8
	fastMem    bool

	hPos, vPos   int
	masterCycles uint64
	interlace    bool
	pal          bool
	evenFrame    bool

	vIrqEn, hIrqEn bool
	vTimer, hTimer uint16
	hvTimer        int
	irqCondition   bool
	inIrq          bool

	inVblank, inNmi bool
	nmiEnabled      bool

	autoJoyEnabled bool
	autoJoyTimer   int
	joypad         [2]uint16
	pad            [2]padController
	wrio           uint8 // last value written to $4201, for latch-bit edge detection

	mulA, mulB            uint8
	mulResult             uint16
	divA                  uint16
	divResult, divRemainder uint16

	dma *dmaEngine
}

// New constructs a Bus wired to a freshly loaded cartridge. The CPU,
// PPU and APU are created here so each can be handed the interfaces
// it needs (cpu.Bus, ppu.Bus) without a circular package import.
func New(rom *romformat.ROM) (*Bus, error) {
	mapper, err := cartridge.Get(rom)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}

	b := &Bus{mapper: mapper, evenFrame: true}
	b.ppu = ppu.New(b)
	b.apu = apu.New()
	b.dma = newDMAEngine(b) // before cpu.New: its reset-vector read goes through the DMA hook
	b.cpu = cpu.New(b)
	b.buildAccessTimeTable(rom.FastROM())

	ebiten.SetWindowSize(ppu.ScreenWidth*2, ppu.ScreenHeight*2)
	ebiten.SetWindowTitle("gosnes")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return b, nil
}

// CPU exposes the wired CPU for the debug REPL and frontend.
func (b *Bus) CPU() *cpu.CPU { return b.cpu }

// PPU exposes the wired PPU for the debug REPL.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// The methods below satisfy debug.Core, letting the debug REPL drive
// this bus through the same interfaces the core uses internally.

func (b *Bus) Step() int           { return b.cpu.Step() }
func (b *Bus) Reset()              { b.cpu.Reset(false) }
func (b *Bus) String() string      { return b.cpu.String() }
func (b *Bus) Inst() string        { return b.cpu.Inst() }
func (b *Bus) StackAddr() uint16   { return b.cpu.StackAddr() }
func (b *Bus) ReadByte(bank uint8, offset uint16) uint8 { return b.readNoClock(bank, offset) }
func (b *Bus) PPUStatus() string {
	return fmt.Sprintf("mode=%d brightness=%d forcedBlank=%v vPos=%d hPos=%d",
		b.ppu.Mode, b.ppu.Brightness, b.ppu.ForcedBlank, b.vPos, b.hPos)
}

// AttachAudio wires a live oto context to the APU bridge, called once
// by the frontend after opening the platform audio device.
func (b *Bus) AttachAudio(ctx *oto.Context) { b.apu.AttachPlayback(ctx) }

// TriggerNMI implements ppu.Bus. enterVblank calls it at the vblank
// edge; it raises the CPU's NMI only when NMITIMEN has NMI enabled.
func (b *Bus) TriggerNMI() {
	if b.nmiEnabled {
		b.cpu.TriggerNMI()
	}
}

// InVblank implements ppu.Bus, gating VRAM writes to forced-blank-or-
// vblank per spec.
func (b *Bus) InVblank() bool { return b.inVblank }

// buildAccessTimeTable fills b.accessTime, the 16 MiB byte table of
// access times, in place from accessTimeFor and records fastMem; it is
// rerun whenever fastMem (MEMSEL bit 0) changes.
func (b *Bus) buildAccessTimeTable(fastMem bool) {
	b.fastMem = fastMem
	for addr := 0; addr < accessTableSize; addr++ {
		bank := uint8(addr >> 16)
		offset := uint16(addr)
		b.accessTime[addr] = accessTimeFor(bank, offset, fastMem)
	}
}

func accessTimeFor(bank uint8, offset uint16, fastMem bool) uint8 {
	if bank == 0x7E || bank == 0x7F {
		return cycRAM
	}
	lowBank := bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF)
	if lowBank {
		switch {
		case offset <= 0x1FFF:
			return cycRAM
		case offset >= 0x2100 && offset <= 0x21FF:
			return cycB
		case offset == 0x4016 || offset == 0x4017:
			return cycJoypad
		case offset >= 0x4200 && offset <= 0x421F:
			return cycB
		case offset >= 0x4300 && offset <= 0x437F:
			return cycDMA
		case offset >= 0x4000 && offset <= 0x41FF:
			return cycXSlow
		case offset >= 0x6000 && offset <= 0x7FFF:
			return cycSRAM
		default: // 0x8000-0xFFFF cartridge ROM
			if bank >= 0x80 {
				if fastMem {
					return cycFast
				}
				return cycSlow
			}
			return cycSlow
		}
	}
	// Banks 0x40-0x7D and 0xC0-0xFF: cartridge only, any offset.
	if fastMem && bank >= 0xC0 {
		return cycFast
	}
	return cycSlow
}

// Idle implements cpu.Bus: a cycle where the CPU does not access
// memory still advances the master clock and runs DMA/raster logic.
func (b *Bus) Idle() {
	b.dma.handleDMA(2)
	b.runCycles(2)
}

// Read implements cpu.Bus.
func (b *Bus) Read(bank uint8, offset uint16) uint8 {
	b.dma.handleDMA(int(b.accessTime[uint32(bank)<<16|uint32(offset)]))
	v := b.readNoClock(bank, offset)
	b.runCycles(int(b.accessTime[uint32(bank)<<16|uint32(offset)]))
	return v
}

// Write implements cpu.Bus.
func (b *Bus) Write(bank uint8, offset uint16, val uint8) {
	b.dma.handleDMA(int(b.accessTime[uint32(bank)<<16|uint32(offset)]))
	b.writeNoClock(bank, offset, val)
	b.runCycles(int(b.accessTime[uint32(bank)<<16|uint32(offset)]))
}

func (b *Bus) readNoClock(bank uint8, offset uint16) uint8 {
	if bank == 0x7E || bank == 0x7F {
		return b.wram[uint32(bank-0x7E)<<16|uint32(offset)]
	}
	lowBank := bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF)
	if lowBank {
		switch {
		case offset <= 0x1FFF:
			return b.wram[offset]
		case offset >= 0x2100 && offset <= 0x21FF:
			return b.readBBus(uint8(offset))
		case offset == 0x4016 || offset == 0x4017:
			return b.readJoypad(offset)
		case offset >= 0x4200 && offset <= 0x421F:
			return b.readInternalReg(offset)
		case offset >= 0x4300 && offset <= 0x437F:
			return b.dma.readReg(offset)
		}
	}
	return b.mapper.Read(bank, offset)
}

func (b *Bus) writeNoClock(bank uint8, offset uint16, val uint8) {
	if bank == 0x7E || bank == 0x7F {
		b.wram[uint32(bank-0x7E)<<16|uint32(offset)] = val
		return
	}
	lowBank := bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF)
	if lowBank {
		switch {
		case offset <= 0x1FFF:
			b.wram[offset] = val
			return
		case offset >= 0x2100 && offset <= 0x21FF:
			b.writeBBus(uint8(offset), val)
			return
		case offset == 0x4016:
			b.pad[0].write(val)
			b.pad[1].write(val)
			return
		case offset >= 0x4200 && offset <= 0x421F:
			b.writeInternalReg(offset, val)
			return
		case offset >= 0x4300 && offset <= 0x437F:
			b.dma.writeReg(offset, val)
			return
		}
	}
	b.mapper.Write(bank, offset, val)
}

// readBBus/writeBBus dispatch B-bus register space: PPU (<0x40), APU
// ports (0x40-0x7F, catching the APU up first), WMDATA (0x80-0x83).
func (b *Bus) readBBus(reg uint8) uint8 {
	sub := reg
	switch {
	case sub < 0x40:
		if sub == ppu.REG_SLHV {
			// real hardware latches the H/V counters on any SLHV
			// read, independent of the WRIO falling-edge path.
			b.ppu.LatchCounters(uint16(b.hPos/4), uint16(b.vPos))
		}
		return b.ppu.ReadReg(sub)
	case sub < 0x80:
		b.catchupApu()
		return b.apu.ReadPort(sub - 0x40)
	case sub <= 0x83:
		return b.readWMDATA()
	}
	return 0
}

func (b *Bus) writeBBus(reg uint8, val uint8) {
	sub := reg
	switch {
	case sub < 0x40:
		b.ppu.WriteReg(sub, val)
	case sub < 0x80:
		b.catchupApu()
		b.apu.WritePort(sub-0x40, val)
	case sub == 0x80:
		b.writeWMDATA(val)
	case sub == 0x81:
		b.wramAddr = (b.wramAddr &^ 0xFF) | uint32(val)
	case sub == 0x82:
		b.wramAddr = (b.wramAddr &^ 0xFF00) | uint32(val)<<8
	case sub == 0x83:
		b.wramAddr = (b.wramAddr &^ 0x10000) | uint32(val&0x01)<<16
	}
}

func (b *Bus) readWMDATA() uint8 {
	v := b.wram[b.wramAddr&(wramSize-1)]
	b.wramAddr = (b.wramAddr + 1) & 0x1FFFF
	return v
}

func (b *Bus) writeWMDATA(v uint8) {
	b.wram[b.wramAddr&(wramSize-1)] = v
	b.wramAddr = (b.wramAddr + 1) & 0x1FFFF
}

// catchupApu asks the audio coprocessor to simulate cycles up to the
// current master clock before either side touches its ports.
func (b *Bus) catchupApu() {
	b.apu.CatchUp(b.masterCycles)
}

// Layout implements ebiten.Game: a fixed native resolution so ebiten
// scales the window instead of us.
func (b *Bus) Layout(w, h int) (int, int) { return ppu.ScreenWidth, ppu.ScreenHeight }

// standardFieldHeight is the 224-line NTSC safe area a real TV frames,
// versus the 239-line field the PPU renders when overscan is enabled.
const standardFieldHeight = 224

// Draw implements ebiten.Game, blitting the PPU's current field. This
// is the putPixels output stage: the native BGR555 field is converted
// to RGBA, then golang.org/x/image/draw places it in the output
// window. Without overscan the 224 rendered lines are centred with
// black bars above and below instead of being stretched to the full
// window height; with overscan all 239 lines fill the window.
func (b *Bus) Draw(screen *ebiten.Image) {
	pix := b.ppu.FrameBuffer()
	src := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			c := pix[y*ppu.ScreenWidth+x]
			r := uint8(c&0x1F) << 3
			g := uint8((c>>5)&0x1F) << 3
			bl := uint8((c>>10)&0x1F) << 3
			src.SetRGBA(x, y, color.RGBA{r, g, bl, 0xFF})
		}
	}

	visible := src.Bounds()
	out := visible
	if !b.ppu.InOverscan() && ppu.ScreenHeight > standardFieldHeight {
		top := (ppu.ScreenHeight - standardFieldHeight) / 2
		visible = image.Rect(0, 0, ppu.ScreenWidth, standardFieldHeight)
		out = image.Rect(0, top, ppu.ScreenWidth, top+standardFieldHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	draw.NearestNeighbor.Scale(dst, out, src, visible, draw.Src, nil)
	screen.WritePixels(dst.Pix)
}

// Update implements ebiten.Game. Emulation runs on a background
// goroutine via Run, so Update is a no-op required only to satisfy the
// interface.
func (b *Bus) Update() error { return nil }

// Run drives the emulation continuously until ctx is cancelled,
// stepping the CPU (which drives the bus clock through its own
// Read/Write/Idle calls).
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.cpu.Step()
		}
	}
}

