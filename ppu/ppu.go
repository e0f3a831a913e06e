// Package ppu implements the SNES Picture Processing Unit: VRAM/CGRAM/OAM
// storage, the register file at B-bus offsets 0x00-0x3F, and the
// scanline rendering pipeline including the mode-7 affine transform.
package ppu

const (
	VRAM_WORDS = 1 << 15 // 32Ki x 16-bit
	CGRAM_SIZE = 256     // 256 x 16-bit (BGR555)
	OAM_SIZE   = 128*4 + 32
)

const (
	ScreenWidth  = 256
	ScreenHeight = 239 // one field; interlace doubles this in the frame buffer
)

// Bus is the PPU's view of the outside world. The PPU consults
// InVblank to gate VRAM writes; it never calls TriggerNMI itself, as
// the bus raises NMI from its own vblank handling. The PPU is
// otherwise a passive register file driven entirely by writes.
type Bus interface {
	TriggerNMI()
	InVblank() bool
}

// OAM entry, decoded from the 128x4-byte low table plus the 32-byte
// high table (2 bits size/x-msb per sprite, packed 4 per byte).
type sprite struct {
	x        int16
	y        uint8
	tile     uint16
	palette  uint8
	priority uint8
	hFlip    bool
	vFlip    bool
	size     bool // false = small, true = large (per OBSEL)
}

// Layer holds the per-background-layer register state for BG1-4.
type Layer struct {
	HScroll, VScroll uint16
	TilemapAddr      uint16 // VRAM word address / 0x400
	TileAddr         uint16 // VRAM word address / 0x1000
	BigTiles         bool
	MosaicEn         bool
	TilemapWide      bool
	TilemapHigh      bool
}

// ScreenLayer tracks main/sub-screen enable and windowing for one of
// the five compositing layers (BG1-4, OBJ).
type ScreenLayer struct {
	MainOn, SubOn           bool
	MainWindowed, SubWindowed bool
}

// Window holds one of the two window definitions shared across layers.
type Window struct {
	Left, Right uint8
}

type PPU struct {
	bus Bus

	VRAM  [VRAM_WORDS]uint16
	CGRAM [CGRAM_SIZE]uint16
	OAMLow  [128 * 4]uint8
	OAMHigh [32]uint8

	BG      [4]Layer
	Screen  [5]ScreenLayer // index 0-3 BG1-4, index 4 OBJ
	Window  [2]Window
	WinEnable [6]bool // per-layer window 1/2 enable packed by caller
	WinInvert [6]bool
	WinAndLogic [6]bool

	Mode        uint8
	BG3Priority bool
	DirectColor bool

	Mode7Matrix [4]int16 // A,B,C,D (13-bit signed, sign-extended)
	Mode7Center [2]int16 // X0,Y0
	Mode7Scroll [2]int16 // H,V
	Mode7Flip   [2]bool
	Mode7Fill   bool // char-fill vs. wrap outside tilemap

	MosaicSize  uint8
	MosaicStart int

	Brightness  uint8 // 0-15
	ForcedBlank bool
	Interlace   bool
	Overscan    bool
	PseudoHires bool

	FixedColor struct{ R, G, B uint8 }
	MathEnable  [5]bool // per main layer (BG1-4, OBJ); backdrop handled separately
	MathBackdrop bool
	Subtract    bool
	Half        bool
	AddSubscreen bool

	ObjBaseAddr  uint16
	ObjNameSel   uint16
	ObjSizeSel   uint8

	vramAddr    uint16
	vramIncr    uint16
	vramIncrHigh bool
	vramRemap   uint8
	vramPrefetch uint16

	cgramAddr uint8
	cgramLatch uint8
	cgramHigh  bool

	oamAddr       uint16
	oamAddrReload uint16 // value OAMADDL/H last programmed; relatched at vblank
	oamLatch      uint8
	oamPriorityRotate bool

	hCount, vCount uint16
	hFlip2, vFlip2 bool // two-read toggles for H/V counter latches

	scrollPrev8, scrollPrev16 uint8

	rangeOver bool
	timeOver  bool

	frame [ScreenWidth * ScreenHeight * 2]uint16 // two fields, the second stored after the first, BGR555
	evenFrame bool
}

func New(b Bus) *PPU {
	return &PPU{bus: b, Brightness: 0x0F, ForcedBlank: true}
}

// Reset clears volatile state on a hard or soft reset; VRAM/CGRAM/OAM
// content is left as real hardware leaves it (undefined garbage) so
// tests seed it explicitly.
func (p *PPU) Reset() {
	p.ForcedBlank = true
	p.Brightness = 0
	p.Mode = 0
	p.evenFrame = true
}

func (p *PPU) InOverscan() bool { return p.Overscan }

// FrameBuffer exposes the rendered field for the frontend's putPixels
// compositing stage.
func (p *PPU) FrameBuffer() []uint16 { return p.frame[:] }

func (p *PPU) NewFrame() { p.evenFrame = !p.evenFrame }
