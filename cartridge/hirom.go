package cartridge

import "github.com/bdwalton/gosnes/romformat"

func init() {
	RegisterMapper(IDHiROM, &hiROM{name: "HiROM"})
	RegisterMapper(IDExHiROM, &hiROM{name: "ExHiROM", exH: true})
}

// hiROM implements the 64KiB-per-bank address decoding scheme: banks
// 0xC0-0xFF (mirrored at 0x40-0x7D) map the full 64KiB ROM bank
// directly; the low banks additionally expose the top half
// (0x8000-0xFFFF) of the same data for CPU-bus access, plus SRAM at
// 0x6000-0x7FFF in banks 0x20-0x3F/0xA0-0xBF.
type hiROM struct {
	name string
	exH  bool
	rom  *romformat.ROM
	data []uint8
	sram []uint8
}

func (m *hiROM) ID() uint16 {
	if m.exH {
		return IDExHiROM
	}
	return IDHiROM
}
func (m *hiROM) Name() string { return m.name }

func (m *hiROM) Init(r *romformat.ROM) {
	m.rom = r
	m.data = r.Data()
	m.sram = make([]uint8, r.RAMSizeKB()*1024)
}

func (m *hiROM) Reset() {
	for i := range m.sram {
		m.sram[i] = 0
	}
}

func (m *hiROM) bankIndex(bank uint8) int {
	return int(bank) & 0x3F
}

func (m *hiROM) Read(bank uint8, offset uint16) uint8 {
	if bank&0x40 == 0 && offset < 0x6000 {
		return 0
	}
	if bank&0x40 == 0 && offset < 0x8000 {
		b := bank & 0x3F
		if len(m.sram) > 0 && b >= 0x20 {
			idx := int(offset-0x6000) % len(m.sram)
			return m.sram[idx]
		}
	}
	idx := m.bankIndex(bank)*0x10000 + int(offset)
	if idx >= len(m.data) {
		idx %= len(m.data)
	}
	return m.data[idx]
}

func (m *hiROM) Write(bank uint8, offset uint16, val uint8) {
	b := bank & 0x3F
	if bank&0x40 == 0 && offset >= 0x6000 && offset < 0x8000 && len(m.sram) > 0 && b >= 0x20 {
		m.sram[int(offset-0x6000)%len(m.sram)] = val
	}
}
