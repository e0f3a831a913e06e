// Package cartridge implements the address-space contract the bus
// delegates to for cartridge-mapped banks: an external mapper supplies
// read, write and reset, and is authoritative over what it returns.
// The core never decodes banks 0x40-0x7D/0xC0-0xFF itself.
package cartridge

import (
	"fmt"

	"github.com/bdwalton/gosnes/romformat"
)

// Mapper is the contract a cartridge address-decoder fulfils for the
// bus. bank is the full 8-bit bank number (0x00-0xFF); offset is the
// 16-bit address within that bank.
type Mapper interface {
	ID() uint16
	Name() string
	Init(*romformat.ROM)
	Read(bank uint8, offset uint16) uint8
	Write(bank uint8, offset uint16, val uint8)
	Reset()
}

// allMappers is a global registry of mapper constructors keyed by a
// small numeric id, mirroring the teacher's iNES mapper-number
// registry but keyed on address-decoding scheme rather than a wire
// format number, since SNES carts don't carry one.
var allMappers = map[uint16]Mapper{}

// RegisterMapper registers m under id. Panics on a duplicate
// registration, since that can only be a programming error: two init
// funcs claiming the same id.
func RegisterMapper(id uint16, m Mapper) {
	if om, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("cartridge: can't re-register mapper id %d, already used by %q", id, om.Name()))
	}
	allMappers[id] = m
}

const (
	IDLoROM uint16 = iota
	IDHiROM
	IDExHiROM
)

// Get returns the mapper appropriate for rom's decoded layout,
// initialized and ready to serve reads.
func Get(rom *romformat.ROM) (Mapper, error) {
	var id uint16
	switch rom.Layout() {
	case romformat.LoROM, romformat.ExLoROM:
		id = IDLoROM
	case romformat.HiROM:
		id = IDHiROM
	case romformat.ExHiROM:
		id = IDExHiROM
	}

	m, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("cartridge.Get: unknown mapper id %d", id)
	}

	m.Init(rom)
	return m, nil
}
