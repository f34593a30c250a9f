/*
   PicoFlash - Raspberry Pi Pico flash maintenance utility
   Copyright (c) 2023, Andre St-Louys

   This file is part of PicoFlash.

   PicoFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   PicoFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with PicoFlash. If not, see <http://www.gnu.org/licenses/>.
*/

package flash

import (
	"fmt"
)

/*
	MemDevice is an in-RAM flash simulation. It behaves like the real part at
	the granularity the engine cares about: erase works on whole sectors and
	sets them to the blank value, program requires a previously erased range.

	Beyond simulating, it counts erase and program calls and flags any of
	them issued outside an interrupt disable bracket, so tests can verify
	the engine's atomicity discipline.
*/
type MemDevice struct {
	layout Layout
	memory []byte
	info   DeviceInfo

	execAddr uint32
	stuck    map[uint32]byte

	// instrumentation
	EraseCount      int
	ProgramCount    int
	UnbracketedOps  int
	interruptsOff   bool
	savedMask       uint32
	restoreBalance  int
}

//
func NewMemDevice(l Layout) (*MemDevice, error) {

	if err := l.Validate(); err != nil {
		return nil, err
	}

	d := &MemDevice{
		layout: l,
		memory: make([]byte, l.Size),
		info: DeviceInfo{
			Model:    "Raspberry Pi Pico (simulated)",
			UniqueID: "E660 38AB 0734 9C21",
		},
		// simulated firmware runs from RAM, not from the flash window
		execAddr: 0x20000000,
	}

	for i := range d.memory {
		d.memory[i] = Blank
	}

	return d, nil
}

//
func (d *MemDevice) Layout() Layout {
	return d.layout
}

//
func (d *MemDevice) ReadAt(p []byte, off uint32) error {

	if !d.layout.Contains(off, uint32(len(p))) {
		return &RangeError{
			Offset: off, Length: uint32(len(p)), Size: d.layout.Size}
	}

	copy(p, d.memory[off:])

	for at, v := range d.stuck {
		if at >= off && at < off+uint32(len(p)) {
			p[at-off] = v
		}
	}

	return nil
}

//
func (d *MemDevice) EraseSector(off uint32) error {

	if off%d.layout.SectorSize != 0 {
		return fmt.Errorf("erase offset 0x%X is not sector aligned", off)
	}
	if !d.layout.Contains(off, d.layout.SectorSize) {
		return &RangeError{
			Offset: off, Length: d.layout.SectorSize, Size: d.layout.Size}
	}

	if !d.interruptsOff {
		d.UnbracketedOps++
	}
	d.EraseCount++

	sector := d.memory[off : off+d.layout.SectorSize]
	for i := range sector {
		sector[i] = Blank
	}

	return nil
}

//
func (d *MemDevice) Program(off uint32, p []byte) error {

	if off%d.layout.SectorSize != 0 {
		return fmt.Errorf("program offset 0x%X is not sector aligned", off)
	}
	if !d.layout.Contains(off, uint32(len(p))) {
		return &RangeError{
			Offset: off, Length: uint32(len(p)), Size: d.layout.Size}
	}

	if !d.interruptsOff {
		d.UnbracketedOps++
	}
	d.ProgramCount++

	// real flash can only clear bits; since the writer always erases first,
	// a plain copy is faithful here
	copy(d.memory[off:], p)
	return nil
}

//
func (d *MemDevice) SaveAndDisableInterrupts() uint32 {
	d.interruptsOff = true
	d.savedMask++
	d.restoreBalance++
	return d.savedMask
}

//
func (d *MemDevice) RestoreInterrupts(mask uint32) {
	d.interruptsOff = false
	d.restoreBalance--
}

// InterruptsBalanced reports whether every interrupt disable was matched by
// a restore.
func (d *MemDevice) InterruptsBalanced() bool {
	return d.restoreBalance == 0
}

//
func (d *MemDevice) ExecutionAddress() uint32 {
	return d.execAddr
}

// SetExecutionAddress overrides the simulated execution address. Tests use
// this to trip the self destruction precondition of whole flash erases.
func (d *MemDevice) SetExecutionAddress(addr uint32) {
	d.execAddr = addr
}

// StickAt makes the byte at off always read back as v, no matter what was
// erased or programmed, simulating a worn out cell.
func (d *MemDevice) StickAt(off uint32, v byte) {
	if d.stuck == nil {
		d.stuck = make(map[uint32]byte)
	}
	d.stuck[off] = v
}

//
func (d *MemDevice) Info() DeviceInfo {
	return d.info
}

// Seed places data into the simulated flash without going through the erase
// and program path. It is how a factory written record ends up in the device.
func (d *MemDevice) Seed(off uint32, data []byte) error {

	if !d.layout.Contains(off, uint32(len(data))) {
		return &RangeError{
			Offset: off, Length: uint32(len(data)), Size: d.layout.Size}
	}

	copy(d.memory[off:], data)
	return nil
}

// Snapshot returns a copy of the full simulated flash content.
func (d *MemDevice) Snapshot() []byte {
	cp := make([]byte, len(d.memory))
	copy(cp, d.memory)
	return cp
}

/*
	SyntheticFactoryRecord returns a deterministic stand-in for the factory
	written record of a real device, n bytes long. The content is printable
	text that avoids the blank value and the endurance test patterns, so a
	simulated device shows exactly the analytically expected discrepancy
	counts.
*/
func SyntheticFactoryRecord(n uint32) []byte {

	const header = "RP2-B1 FT PASS 2022-11-08 "
	const filler = "0123456789ABCDEFGHIJKLMNOPQRSTVWXYZ" // no 'U' (0x55)

	rec := make([]byte, n)
	for i := range rec {
		rec[i] = filler[i%len(filler)]
	}
	copy(rec, header)

	return rec
}

// Restore replaces the full simulated flash content, for image backed runs.
func (d *MemDevice) Restore(img []byte) error {

	if uint32(len(img)) != d.layout.Size {
		return fmt.Errorf(
			"image size %d does not match flash size %d",
			len(img), d.layout.Size)
	}

	copy(d.memory, img)
	return nil
}
