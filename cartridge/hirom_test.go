package cartridge

import "testing"

func newTestHiROM(romLen int, ramKB int) *hiROM {
	data := make([]uint8, romLen)
	for i := range data {
		data[i] = uint8(i)
	}
	return &hiROM{name: "HiROM", data: data, sram: make([]uint8, ramKB*1024)}
}

func TestHiROMReadMapsFullBank(t *testing.T) {
	m := newTestHiROM(0x10000, 0)
	if got := m.Read(0xC0, 0x0000); got != 0 {
		t.Errorf("Read(0xC0,0x0000) = %d, wanted 0", got)
	}
	if got := m.Read(0xC0, 0x0001); got != 1 {
		t.Errorf("Read(0xC0,0x0001) = %d, wanted 1", got)
	}
}

func TestHiROMSRAMReadWrite(t *testing.T) {
	m := newTestHiROM(0x10000, 2)
	m.Write(0x20, 0x6000, 0x99)
	if got := m.Read(0x20, 0x6000); got != 0x99 {
		t.Errorf("Read(0x20,0x6000) = %#x, wanted 0x99", got)
	}
}

func TestHiROMIDs(t *testing.T) {
	hi := &hiROM{}
	if hi.ID() != IDHiROM {
		t.Errorf("ID() = %d, wanted IDHiROM", hi.ID())
	}
	ex := &hiROM{exH: true}
	if ex.ID() != IDExHiROM {
		t.Errorf("ID() = %d, wanted IDExHiROM", ex.ID())
	}
}
