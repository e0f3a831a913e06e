package romformat

import "testing"

func TestNewStripsSMCHeader(t *testing.T) {
	body := makeLoROMImage("SMC STRIPPED GAME", MAP_MODE_LOROM, 0x00, 0x1234, 0x1234^0xFFFF)
	withCopier := append(make([]byte, smcHeaderLen), body...)

	r, err := New(withCopier)
	if err != nil {
		t.Fatalf("New() error = %v, wanted nil", err)
	}
	if len(r.Data()) != len(body) {
		t.Errorf("len(Data()) = %d, wanted %d (copier header not stripped)", len(r.Data()), len(body))
	}
	if r.Layout() != LoROM {
		t.Errorf("Layout() = %s, wanted LoROM", r.Layout())
	}
}

func TestNewNoCopierHeader(t *testing.T) {
	body := makeLoROMImage("PLAIN GAME", MAP_MODE_LOROM, 0x00, 0x1234, 0x1234^0xFFFF)

	r, err := New(body)
	if err != nil {
		t.Fatalf("New() error = %v, wanted nil", err)
	}
	if len(r.Data()) != len(body) {
		t.Errorf("len(Data()) = %d, wanted %d", len(r.Data()), len(body))
	}
}

func TestNewTooShort(t *testing.T) {
	if _, err := New([]byte{1, 2, 3}); err == nil {
		t.Errorf("New() error = nil, wanted ErrShortRead")
	}
}

func TestNewPrefersPlausibleHeader(t *testing.T) {
	// Build a HiROM-sized image whose LoROM-offset bytes are garbage
	// (implausible checksum) but whose HiROM-offset header is valid;
	// New should prefer the higher-scoring candidate regardless of the
	// map byte found at the LoROM offset.
	data := make([]byte, hiromHeaderOffset+headerLen)
	copy(data[hiromHeaderOffset:], "A VALID HIROM GAME")
	for i := len("A VALID HIROM GAME"); i < 21; i++ {
		data[hiromHeaderOffset+i] = ' '
	}
	data[hiromHeaderOffset+21] = MAP_MODE_HIROM
	data[hiromHeaderOffset+30] = 0x34
	data[hiromHeaderOffset+31] = 0x12
	data[hiromHeaderOffset+28] = uint8((0x1234 ^ 0xFFFF) & 0xFF)
	data[hiromHeaderOffset+29] = uint8((0x1234 ^ 0xFFFF) >> 8)

	r, err := New(data)
	if err != nil {
		t.Fatalf("New() error = %v, wanted nil", err)
	}
	if r.Layout() != HiROM {
		t.Errorf("Layout() = %s, wanted HiROM", r.Layout())
	}
}
