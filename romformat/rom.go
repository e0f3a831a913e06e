package romformat

import "fmt"

// smcHeaderLen is the size of the copier header some SNES dumps carry
// ahead of the actual ROM image (so named after the Super Magicom
// copier that popularized it). Its presence is detected, not assumed:
// file length modulo 1024 is 512 when one is present.
const smcHeaderLen = 512

// ROM is a loaded SNES cartridge image plus its decoded header.
type ROM struct {
	header *header
	data   []uint8 // raw PRG data, copier header stripped
}

// ErrShortRead is returned when the input is too small to contain a
// valid internal header at either candidate offset.
var ErrShortRead = fmt.Errorf("romformat: input too small to contain a header")

// New parses raw file bytes into a ROM, stripping a leading copier
// header if detected and choosing between the LoROM and HiROM header
// offsets by plausibility score.
func New(raw []byte) (*ROM, error) {
	data := raw
	if len(raw)%1024 == smcHeaderLen {
		data = raw[smcHeaderLen:]
	}

	lo := parseHeaderAt(data, loromHeaderOffset)
	hi := parseHeaderAt(data, hiromHeaderOffset)
	if lo == nil && hi == nil {
		return nil, fmt.Errorf("romformat.New: %w", ErrShortRead)
	}

	h := lo
	if hi.score() > lo.score() {
		h = hi
	}

	return &ROM{header: h, data: data}, nil
}

// Layout reports the decoded address-space layout.
func (r *ROM) Layout() Layout { return r.header.layout() }

// FastROM reports whether bank 0x80-0xFF ROM access should run at the
// faster 3.58MHz cycle timing.
func (r *ROM) FastROM() bool { return r.header.fastROM() }

// Title is the 21-character cartridge title field, right-padded with
// spaces on the original media.
func (r *ROM) Title() string { return r.header.title }

// Region reports the NTSC/PAL destination code.
func (r *ROM) Region() uint8 { return r.header.region() }

// RAMSizeKB reports the on-cartridge work-RAM size in KiB, 0 if none.
func (r *ROM) RAMSizeKB() int { return int(r.header.ramSizeKB) }

// Data returns the raw PRG bytes with any copier header already
// stripped.
func (r *ROM) Data() []uint8 { return r.data }

func (r *ROM) String() string {
	return fmt.Sprintf("ROM(%s, %d bytes)", r.header, len(r.data))
}
