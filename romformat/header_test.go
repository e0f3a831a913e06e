package romformat

import "testing"

func makeLoROMImage(title string, mapByte, destCode uint8, csum, comp uint16) []byte {
	data := make([]byte, 0x8000) // one whole 32 KiB LoROM bank
	copy(data[loromHeaderOffset:], title)
	for i := len(title); i < 21; i++ {
		data[loromHeaderOffset+i] = ' '
	}
	data[loromHeaderOffset+21] = mapByte
	data[loromHeaderOffset+25] = destCode
	data[loromHeaderOffset+28] = uint8(comp)
	data[loromHeaderOffset+29] = uint8(comp >> 8)
	data[loromHeaderOffset+30] = uint8(csum)
	data[loromHeaderOffset+31] = uint8(csum >> 8)
	return data
}

func TestParseHeaderAt(t *testing.T) {
	cases := []struct {
		title    string
		mapByte  uint8
		wantMode Layout
		wantFast bool
	}{
		{"A SLOW LOROM GAME", MAP_MODE_LOROM, LoROM, false},
		{"A FAST HIROM GAME", MAP_MODE_HIROM | MAP_MODE_FASTROM, HiROM, true},
		{"AN EXHIROM GAME", MAP_MODE_EXHIROM, ExHiROM, true},
	}

	for i, c := range cases {
		data := makeLoROMImage(c.title, c.mapByte, 0x01, 0x1234, 0x1234^0xFFFF)
		h := parseHeaderAt(data, loromHeaderOffset)
		if h == nil {
			t.Fatalf("%d: parseHeaderAt returned nil", i)
		}
		if got := h.layout(); got != c.wantMode {
			t.Errorf("%d: layout() = %s, wanted %s", i, got, c.wantMode)
		}
		if got := h.fastROM(); got != c.wantFast {
			t.Errorf("%d: fastROM() = %t, wanted %t", i, got, c.wantFast)
		}
		if !h.checksumValid() {
			t.Errorf("%d: checksumValid() = false, wanted true", i)
		}
	}
}

func TestParseHeaderAtShort(t *testing.T) {
	if h := parseHeaderAt([]byte{1, 2, 3}, loromHeaderOffset); h != nil {
		t.Errorf("parseHeaderAt on short input = %v, wanted nil", h)
	}
}

func TestRegion(t *testing.T) {
	cases := []struct {
		destCode uint8
		want     uint8
	}{
		{0x00, REGION_NTSC},
		{0x01, REGION_NTSC},
		{0x02, REGION_PAL},
		{0x06, REGION_PAL},
		{0x0C, REGION_PAL},
		{0x0D, REGION_NTSC},
	}

	for i, c := range cases {
		data := makeLoROMImage("REGION TEST", MAP_MODE_LOROM, c.destCode, 0, 0xFFFF)
		h := parseHeaderAt(data, loromHeaderOffset)
		if got := h.region(); got != c.want {
			t.Errorf("%d: region() = %d, wanted %d", i, got, c.want)
		}
	}
}
