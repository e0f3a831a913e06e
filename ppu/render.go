package ppu

// RenderScanline draws one visible line (0-223/0-238 depending on
// overscan) into the frame buffer. It follows the eight-step pipeline
// the hardware effectively performs once per line: fetch backgrounds,
// evaluate sprites, apply mosaic, apply windows, compose by priority,
// apply color math, then write the line to the active field.
func (p *PPU) RenderScanline(line int) {
	if p.ForcedBlank || line < 0 || line >= ScreenHeight {
		p.clearLine(line)
		return
	}

	var mainLine, subLine [ScreenWidth]pixel
	p.initBackdrop(&mainLine, &subLine)

	switch p.Mode {
	case 7:
		p.renderMode7(line, &mainLine, &subLine)
	default:
		p.renderTileModes(line, &mainLine, &subLine)
	}

	sprites := p.evaluateSprites(line)
	p.compositeSprites(line, sprites, &mainLine, &subLine)

	p.applyWindows(line, &mainLine, &subLine)
	p.applyColorMath(&mainLine, &subLine)
	p.writeLine(line, &mainLine)
}

// pixel is an intermediate compositing sample: a resolved 15-bit color
// plus the layer index and priority it came from, used for both the
// priority sort and the color-math enable lookup.
type pixel struct {
	color    uint16
	layer    int // 0-3 BG, 4 OBJ, 5 backdrop
	priority uint8
	windowed bool
}

func (p *PPU) initBackdrop(main, sub *[ScreenWidth]pixel) {
	backdrop := p.CGRAM[0]
	for i := range main {
		main[i] = pixel{color: backdrop, layer: 5}
		sub[i] = pixel{color: p.fixedColorWord(), layer: 5}
	}
}

func (p *PPU) fixedColorWord() uint16 {
	return uint16(p.FixedColor.R) | uint16(p.FixedColor.G)<<5 | uint16(p.FixedColor.B)<<10
}

// renderTileModes rasterizes BG1-4 for modes 0-6 using simple opaque
// 8x8-tile lookups at each layer's bit depth from modeBitDepths, with
// per-tile horizontal/vertical flip honored. The BigTiles (16x16)
// setting is not applied: every layer is drawn with 8x8 tiles.
func (p *PPU) renderTileModes(line int, main, sub *[ScreenWidth]pixel) {
	depths := modeBitDepths[p.Mode]
	layerCount := 4
	if p.Mode == 5 || p.Mode == 6 {
		layerCount = 2
	}
	for layerIdx := layerCount - 1; layerIdx >= 0; layerIdx-- {
		if depths[layerIdx] == 0 {
			continue
		}
		if !p.Screen[layerIdx].MainOn && !p.Screen[layerIdx].SubOn {
			continue
		}
		bg := p.BG[layerIdx]
		y := (line + int(bg.VScroll)) & 0x1FF
		if bg.MosaicEn && p.MosaicSize > 0 {
			y -= y % (int(p.MosaicSize) + 1)
		}
		for x := 0; x < ScreenWidth; x++ {
			sx := x
			if bg.MosaicEn && p.MosaicSize > 0 {
				sx -= sx % (int(p.MosaicSize) + 1)
			}
			px := (sx + int(bg.HScroll)) & 0x1FF
			color, opaque, prio := p.fetchBGPixel(layerIdx, bg, px, y, depths[layerIdx])
			if !opaque {
				continue
			}
			samp := pixel{color: color, layer: layerIdx, priority: prio}
			if p.Screen[layerIdx].MainOn && samp.priority >= main[x].priority {
				main[x] = samp
			}
			if p.Screen[layerIdx].SubOn && samp.priority >= sub[x].priority {
				sub[x] = samp
			}
		}
	}
}

// modeBitDepths gives the color depth (bits per pixel, 0 = layer
// absent) of BG1-4 for each of the eight background modes.
var modeBitDepths = [8][4]uint8{
	{2, 2, 2, 2}, // mode 0
	{4, 4, 2, 0}, // mode 1
	{4, 4, 0, 0}, // mode 2 (offset-per-tile, approximated as plain scroll)
	{8, 4, 0, 0}, // mode 3
	{8, 2, 0, 0}, // mode 4
	{4, 2, 0, 0}, // mode 5 (hires)
	{4, 0, 0, 0}, // mode 6 (hires + big tiles only)
	{0, 0, 0, 0}, // mode 7 handled separately
}

func (p *PPU) fetchBGPixel(layer int, bg Layer, px, py int, depth uint8) (uint16, bool, uint8) {
	tileCol, tileRow := px/8, py/8
	mapW, mapH := 32, 32
	if bg.TilemapWide {
		mapW = 64
	}
	if bg.TilemapHigh {
		mapH = 64
	}
	tileCol &= mapW - 1
	tileRow &= mapH - 1
	mapBase := bg.TilemapAddr
	mapOffset := uint16(tileRow%32)*32 + uint16(tileCol%32)
	if tileCol >= 32 {
		mapOffset += 0x400
	}
	if tileRow >= 32 {
		mapOffset += 0x800
	}
	entry := p.VRAM[(mapBase+mapOffset)&(VRAM_WORDS-1)]
	tileIdx := entry & 0x3FF
	palGroup := uint8((entry >> 10) & 0x07)
	priority := uint8((entry >> 13) & 0x01)
	hFlip := entry&0x4000 != 0
	vFlip := entry&0x8000 != 0

	fx, fy := px%8, py%8
	if hFlip {
		fx = 7 - fx
	}
	if vFlip {
		fy = 7 - fy
	}

	wordsPerTile := uint16(depth)
	tileBase := bg.TileAddr + tileIdx*wordsPerTile*8/2
	idx := p.decodeTilePixel(tileBase, depth, fx, fy)
	if idx == 0 {
		return 0, false, priority
	}

	palBase := uint16(0)
	if depth < 8 {
		palBase = uint16(palGroup) << depth
	}
	return p.CGRAM[(palBase+uint16(idx))&(CGRAM_SIZE-1)], true, priority
}

// decodeTilePixel reads one pixel out of a bitplane-encoded tile. The
// 2/4/8bpp SNES planar format stores bitplanes in pairs of
// sequential words; this walks each pair and accumulates bits.
func (p *PPU) decodeTilePixel(tileWordBase uint16, depth uint8, fx, fy int) uint8 {
	var idx uint8
	planePairs := depth / 2
	for pair := uint8(0); pair < planePairs; pair++ {
		word := p.VRAM[(tileWordBase+uint16(fy)+uint16(pair)*8)&(VRAM_WORDS-1)]
		lo := uint8(word>>uint(7-fx)) & 0x01
		hi := uint8(word>>uint(15-fx)) & 0x01
		idx |= lo << (pair * 2)
		idx |= hi << (pair*2 + 1)
	}
	return idx
}

// renderMode7 implements the affine transform: screen (x, line) maps
// through the 2x2 matrix plus center/scroll registers into a 1024x1024
// tile-mapped texture. Out-of-bounds behavior follows Mode7Fill: wrap
// (default) or a border filled with tile 0; a transparent border is
// not modelled.
func (p *PPU) renderMode7(line int, main, sub *[ScreenWidth]pixel) {
	if !p.Screen[0].MainOn && !p.Screen[0].SubOn {
		return
	}
	a, b, c, d := int32(p.Mode7Matrix[0]), int32(p.Mode7Matrix[1]), int32(p.Mode7Matrix[2]), int32(p.Mode7Matrix[3])
	cx, cy := int32(p.Mode7Center[0]), int32(p.Mode7Center[1])
	hScroll, vScroll := int32(p.Mode7Scroll[0]), int32(p.Mode7Scroll[1])
	y := int32(line)
	if p.Mode7Flip[1] {
		y = ScreenHeight - 1 - y
	}

	for sx := 0; sx < ScreenWidth; sx++ {
		x := int32(sx)
		if p.Mode7Flip[0] {
			x = ScreenWidth - 1 - x
		}
		relX := x + hScroll - cx
		relY := y + vScroll - cy

		// wrap-to-13-bit semantics per the hardware's (x<<3)>>3 trick,
		// applied to the fixed-point product before rounding to pixels.
		worldX := wrap13((a*relX + b*relY) >> 8)
		worldY := wrap13((c*relX + d*relY) >> 8)
		worldX += cx
		worldY += cy

		tileX, tileY := (worldX>>3)&0x7F, (worldY>>3)&0x7F
		tileEntry := uint8(p.VRAM[uint16(tileY)*128+uint16(tileX)] & 0xFF)
		if (worldX < 0 || worldX >= 1024 || worldY < 0 || worldY >= 1024) && p.Mode7Fill {
			tileEntry = 0
		}
		fx, fy := uint16(worldX)&7, uint16(worldY)&7
		colorIdx := uint8(p.VRAM[uint16(tileEntry)*64+fy*8+fx] >> 8)
		if colorIdx == 0 {
			continue
		}
		color := p.CGRAM[colorIdx]
		samp := pixel{color: color, layer: 0, priority: 1}
		if p.Screen[0].MainOn {
			main[sx] = samp
		}
		if p.Screen[0].SubOn {
			sub[sx] = samp
		}
	}
}

// wrap13 reproduces the 13-bit sign-wrapping the real PPU's mode-7
// multiplier applies (no saturation, pure two's-complement wrap).
func wrap13(v int32) int32 {
	v &= 0x1FFF
	if v&0x1000 != 0 {
		v -= 0x2000
	}
	return v
}

// evaluateSprites walks OAM once per line, enforcing the 32
// sprites-per-line and 34 tile-slivers-per-line hardware limits and
// setting rangeOver/timeOver accordingly.
func (p *PPU) evaluateSprites(line int) []sprite {
	p.rangeOver = false
	p.timeOver = false
	var found []sprite
	slivers := 0
	for i := 0; i < 128; i++ {
		s := p.decodeSprite(i)
		h := spriteHeight(s, p.ObjSizeSel)
		top := int(s.y)
		if top > 255-h {
			top -= 256
		}
		if line < top || line >= top+h {
			continue
		}
		if len(found) == 32 {
			p.rangeOver = true
			continue
		}
		w := spriteWidth(s, p.ObjSizeSel)
		slivers += (w + 7) / 8
		if slivers > 34 {
			p.timeOver = true
			break
		}
		found = append(found, s)
	}
	return found
}

func (p *PPU) decodeSprite(i int) sprite {
	base := i * 4
	x := uint16(p.OAMLow[base])
	y := p.OAMLow[base+1]
	tile := uint16(p.OAMLow[base+2])
	attr := p.OAMLow[base+3]

	hiByte := p.OAMHigh[i/4]
	shift := uint((i % 4) * 2)
	xMSB := (hiByte >> shift) & 0x01
	sizeBit := (hiByte >> (shift + 1)) & 0x01

	sx := int16(x) | int16(xMSB)<<8
	if xMSB != 0 {
		sx -= 512
	}

	return sprite{
		x:        sx,
		y:        y,
		tile:     tile | uint16(attr&0x01)<<8,
		palette:  (attr >> 1) & 0x07,
		priority: (attr >> 4) & 0x03,
		hFlip:    attr&0x40 != 0,
		vFlip:    attr&0x80 != 0,
		size:     sizeBit != 0,
	}
}

var objSmallSizes = [8][2]int{{8, 8}, {8, 8}, {8, 8}, {16, 16}, {16, 16}, {32, 32}, {16, 32}, {16, 32}}
var objLargeSizes = [8][2]int{{16, 16}, {32, 32}, {64, 64}, {32, 32}, {64, 64}, {64, 64}, {32, 64}, {32, 32}}

func spriteWidth(s sprite, sizeSel uint8) int {
	if s.size {
		return objLargeSizes[sizeSel&7][0]
	}
	return objSmallSizes[sizeSel&7][0]
}

func spriteHeight(s sprite, sizeSel uint8) int {
	if s.size {
		return objLargeSizes[sizeSel&7][1]
	}
	return objSmallSizes[sizeSel&7][1]
}

func (p *PPU) compositeSprites(line int, sprites []sprite, main, sub *[ScreenWidth]pixel) {
	if !p.Screen[4].MainOn && !p.Screen[4].SubOn {
		return
	}
	// Sprites are drawn back-to-front in OAM order so earlier indices
	// (drawn last) win ties, matching hardware priority.
	for i := len(sprites) - 1; i >= 0; i-- {
		s := sprites[i]
		w := spriteWidth(s, p.ObjSizeSel)
		h := spriteHeight(s, p.ObjSizeSel)
		top := int(s.y)
		if top > 255-h {
			top -= 256
		}
		row := line - top
		if s.vFlip {
			row = h - 1 - row
		}
		for col := 0; col < w; col++ {
			sx := int(s.x) + col
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			fx := col
			if s.hFlip {
				fx = w - 1 - fx
			}
			tileCol := fx / 8
			tileRow := row / 8
			tileNum := s.tile + uint16(tileRow)*16 + uint16(tileCol)
			base := p.ObjBaseAddr + p.objTileBankFor(s) + tileNum*16
			idx := p.decodeTilePixel(base, 4, fx%8, row%8)
			if idx == 0 {
				continue
			}
			color := p.CGRAM[(128 + uint16(s.palette)*16 + uint16(idx)) & (CGRAM_SIZE - 1)]
			samp := pixel{color: color, layer: 4, priority: s.priority + 1}
			if p.Screen[4].MainOn && samp.priority >= main[sx].priority {
				main[sx] = samp
			}
			if p.Screen[4].SubOn && samp.priority >= sub[sx].priority {
				sub[sx] = samp
			}
		}
	}
}

func (p *PPU) objTileBankFor(s sprite) uint16 {
	if s.tile&0x100 != 0 {
		return p.ObjNameSel
	}
	return 0
}

// applyWindows replaces main-screen samples that fall inside window 1
// (or outside it, when that layer's invert bit is set) with the
// backdrop color. Only window 1 is consulted; window 2, the
// AND/OR/XOR/XNOR combination logic and the sub screen are not
// handled.
func (p *PPU) applyWindows(line int, main, sub *[ScreenWidth]pixel) {
	for x := 0; x < ScreenWidth; x++ {
		layer := main[x].layer
		if layer > 4 {
			continue
		}
		if p.pointInWindow(layer, x) {
			main[x].windowed = true
			if main[x].layer < 5 {
				main[x] = pixel{color: p.CGRAM[0], layer: 5}
			}
		}
	}
}

func (p *PPU) pointInWindow(layer, x int) bool {
	w1 := p.WinEnable[layer] && inRange(x, p.Window[0])
	if p.WinEnable[layer] && p.WinInvert[layer] {
		w1 = !inRange(x, p.Window[0])
	}
	return w1
}

func inRange(x int, w Window) bool { return x >= int(w.Left) && x <= int(w.Right) }

// applyColorMath performs the additive/subtractive blend between the
// main and sub screens for layers with math enabled, clamping each
// 5-bit channel to [0,31].
func (p *PPU) applyColorMath(main, sub *[ScreenWidth]pixel) {
	for x := range main {
		if main[x].layer > 4 || !p.MathEnable[clampLayer(main[x].layer)] {
			continue
		}
		mr, mg, mb := unpackBGR(main[x].color)
		sr, sg, sb := unpackBGR(sub[x].color)
		var r, g, b int
		if p.Subtract {
			r, g, b = int(mr)-int(sr), int(mg)-int(sg), int(mb)-int(sb)
		} else {
			r, g, b = int(mr)+int(sr), int(mg)+int(sg), int(mb)+int(sb)
		}
		if p.Half {
			r, g, b = r/2, g/2, b/2
		}
		main[x].color = packBGR(clamp5(r), clamp5(g), clamp5(b))
	}
}

func clampLayer(l int) int {
	if l < 0 || l > 4 {
		return 4
	}
	return l
}

func clamp5(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}

func unpackBGR(c uint16) (r, g, b uint8) {
	return uint8(c & 0x1F), uint8((c >> 5) & 0x1F), uint8((c >> 10) & 0x1F)
}

func packBGR(r, g, b uint8) uint16 {
	return uint16(r) | uint16(g)<<5 | uint16(b)<<10
}

func (p *PPU) writeLine(line int, main *[ScreenWidth]pixel) {
	fieldOffset := 0
	if p.Interlace && !p.evenFrame {
		fieldOffset = ScreenWidth * ScreenHeight
	}
	scale := p.Brightness
	for x, px := range main {
		r, g, b := unpackBGR(px.color)
		r, g, b = scaleChannel(r, scale), scaleChannel(g, scale), scaleChannel(b, scale)
		p.frame[fieldOffset+line*ScreenWidth+x] = packBGR(r, g, b)
	}
}

func scaleChannel(v, brightness uint8) uint8 {
	return uint8((uint16(v) * uint16(brightness)) / 15)
}

func (p *PPU) clearLine(line int) {
	if line < 0 || line >= ScreenHeight {
		return
	}
	for x := 0; x < ScreenWidth; x++ {
		p.frame[line*ScreenWidth+x] = 0
	}
}
