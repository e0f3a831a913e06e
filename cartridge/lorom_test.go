package cartridge

import "testing"

func newTestLoROM(romLen int, ramKB int) *loROM {
	data := make([]uint8, romLen)
	for i := range data {
		data[i] = uint8(i)
	}
	return &loROM{name: "LoROM", data: data, sram: make([]uint8, ramKB*1024)}
}

func TestLoROMReadMapsBankAndOffset(t *testing.T) {
	m := newTestLoROM(0x8000, 0)
	// bank 0, offset 0x8000 -> flat index 0
	if got := m.Read(0x00, 0x8000); got != 0 {
		t.Errorf("Read(0,0x8000) = %d, wanted 0", got)
	}
	// bank 0x80 mirrors bank 0x00 (b & 0x7F)
	if got := m.Read(0x80, 0x8000); got != m.Read(0x00, 0x8000) {
		t.Errorf("Read(0x80,0x8000) = %d, wanted mirror of bank 0", got)
	}
}

func TestLoROMSRAMReadWrite(t *testing.T) {
	m := newTestLoROM(0x8000, 2)
	m.Write(0x00, 0x6000, 0x42)
	if got := m.Read(0x00, 0x6000); got != 0x42 {
		t.Errorf("Read(0,0x6000) = %#x, wanted 0x42", got)
	}
}

func TestLoROMReadBelowSRAMWindow(t *testing.T) {
	m := newTestLoROM(0x8000, 2)
	if got := m.Read(0x00, 0x1000); got != 0 {
		t.Errorf("Read(0,0x1000) = %#x, wanted 0 (not this mapper's concern)", got)
	}
}
