package cartridge

import "github.com/bdwalton/gosnes/romformat"

func init() {
	RegisterMapper(IDLoROM, &loROM{name: "LoROM"})
}

// loROM implements the 32KiB-per-bank address decoding scheme: each
// bank 0x00-0x7D/0x80-0xFF exposes one 32KiB half of a 64KiB ROM
// window at offset 0x8000-0xFFFF, with SRAM (when present) banked in
// at 0x6000-0x7FFF of the low banks.
type loROM struct {
	name string
	rom  *romformat.ROM
	data []uint8
	sram []uint8
}

func (m *loROM) ID() uint16   { return IDLoROM }
func (m *loROM) Name() string { return m.name }

func (m *loROM) Init(r *romformat.ROM) {
	m.rom = r
	m.data = r.Data()
	m.sram = make([]uint8, r.RAMSizeKB()*1024)
}

func (m *loROM) Reset() {
	for i := range m.sram {
		m.sram[i] = 0
	}
}

// romOffset maps (bank, offset) within the 0x8000-0xFFFF window to a
// flat index into the 32KiB-bank-addressed ROM image.
func (m *loROM) romOffset(bank uint8, offset uint16) int {
	b := int(bank) & 0x7F
	return b*0x8000 + int(offset&0x7FFF)
}

func (m *loROM) Read(bank uint8, offset uint16) uint8 {
	b := bank & 0x7F
	switch {
	case offset < 0x6000:
		return 0 // open bus: not this mapper's concern, bus decodes RAM/registers first
	case offset < 0x8000:
		if len(m.sram) == 0 || b >= 0x70 {
			return 0
		}
		idx := int(offset-0x6000) % len(m.sram)
		return m.sram[idx]
	default:
		idx := m.romOffset(bank, offset)
		if idx >= len(m.data) {
			idx %= len(m.data)
		}
		return m.data[idx]
	}
}

func (m *loROM) Write(bank uint8, offset uint16, val uint8) {
	b := bank & 0x7F
	if offset >= 0x6000 && offset < 0x8000 && len(m.sram) > 0 && b < 0x70 {
		m.sram[int(offset-0x6000)%len(m.sram)] = val
	}
}
