package bus

import "github.com/hajimehoshi/ebiten/v2"

// SNES pad bit order, per the 16-bit serial shift-out protocol
// (B, Y, Select, Start, Up, Down, Left, Right, A, X, L, R, then four
// always-1 padding bits for the 16-bit auto-joypad word).
var padKeys = [12]ebiten.Key{
	ebiten.KeyZ,     // B
	ebiten.KeyX,     // Y
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
	ebiten.KeyC,        // A
	ebiten.KeyV,        // X
	ebiten.KeyQ,        // L
	ebiten.KeyW,        // R
}

type padController struct {
	strobe bool
	latch  uint16
	idx    uint8
}

func (c *padController) write(val uint8) {
	strobe := val&0x01 != 0
	if c.strobe && !strobe {
		c.poll()
		c.idx = 0
	}
	c.strobe = strobe
}

func (c *padController) poll() {
	var buttons uint16
	for i, key := range padKeys {
		if ebiten.IsKeyPressed(key) {
			buttons |= 1 << uint(i)
		}
	}
	c.latch = buttons | 0xF000
}

func (c *padController) read() uint8 {
	if c.strobe {
		c.poll()
		c.idx = 0
	}
	if c.idx > 15 {
		return 1
	}
	bit := uint8((c.latch >> c.idx) & 0x01)
	c.idx++
	return bit
}

// readJoypad services the legacy serial $4016/$4017 ports.
func (b *Bus) readJoypad(offset uint16) uint8 {
	if offset == 0x4016 {
		return b.pad[0].read()
	}
	return b.pad[1].read()
}

// autoJoypadSample latches both pads' full 16-bit state into the
// $4218-$421B shadow registers, as the hardware does once per frame
// during the auto-joypad window.
func (b *Bus) autoJoypadSample() {
	for i := range b.pad {
		b.pad[i].poll()
		b.joypad[i] = b.pad[i].latch
	}
}
