package cartridge

import (
	"testing"

	"github.com/bdwalton/gosnes/romformat"
)

func TestRegisterMapperDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("RegisterMapper with duplicate id did not panic")
		}
	}()
	RegisterMapper(IDLoROM, &loROM{name: "duplicate"})
}

func makeLoROMBytes() []byte {
	data := make([]byte, 0x8000)
	data[0x7FD5] = 0x20 // map byte: LoROM
	csum, comp := uint16(0x1234), uint16(0x1234^0xFFFF)
	data[0x7FDC] = uint8(comp)
	data[0x7FDD] = uint8(comp >> 8)
	data[0x7FDE] = uint8(csum)
	data[0x7FDF] = uint8(csum >> 8)
	return data
}

func TestGetReturnsRegisteredMapper(t *testing.T) {
	rom, err := romformat.New(makeLoROMBytes())
	if err != nil {
		t.Fatalf("romformat.New() error = %v", err)
	}
	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get() error = %v, wanted nil", err)
	}
	if m.ID() != IDLoROM {
		t.Errorf("Get() mapper id = %d, wanted IDLoROM", m.ID())
	}
}
