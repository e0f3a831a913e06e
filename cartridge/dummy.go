package cartridge

import "github.com/bdwalton/gosnes/romformat"

// Dummy is a flat 16MiB address-space mapper used by cpu/bus/ppu
// tests that need a cartridge-shaped backend without a real ROM
// image, mirroring the teacher's dummyMapper test harness.
type Dummy struct {
	Mem [1 << 24]uint8
}

func NewDummy() *Dummy { return &Dummy{} }

func (d *Dummy) ID() uint16                { return 0xFFFF }
func (d *Dummy) Name() string              { return "dummy mapper" }
func (d *Dummy) Init(r *romformat.ROM)     {}
func (d *Dummy) Reset()                    {}
func (d *Dummy) Read(bank uint8, offset uint16) uint8 {
	return d.Mem[uint32(bank)<<16|uint32(offset)]
}
func (d *Dummy) Write(bank uint8, offset uint16, val uint8) {
	d.Mem[uint32(bank)<<16|uint32(offset)] = val
}
