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

/*
	Device is the flash controller the engine drives. Offsets are relative to
	the start of the flash range. The engine guarantees that EraseSector and
	Program are only called with sector aligned offsets, and that both are
	bracketed by SaveAndDisableInterrupts/RestoreInterrupts: the controller
	requires uninterrupted command sequences during erase and program.

	There is exactly one agent performing flash I/O, so no further locking
	discipline is required from implementations.
*/
type Device interface {

	// ReadAt fills p with flash content starting at off.
	ReadAt(p []byte, off uint32) error

	// EraseSector erases the sector starting at the given aligned offset.
	// Every byte of the sector reads back as the blank value afterwards.
	EraseSector(off uint32) error

	// Program writes p to flash starting at the given aligned offset. The
	// target range must have been erased beforehand.
	Program(off uint32, p []byte) error

	// SaveAndDisableInterrupts disables interrupts and returns the previous
	// interrupt mask, to be handed back via RestoreInterrupts.
	SaveAndDisableInterrupts() uint32

	//
	RestoreInterrupts(mask uint32)

	// ExecutionAddress returns the absolute address the controlling code is
	// currently executing from.
	ExecutionAddress() uint32

	//
	Info() DeviceInfo
}

// DeviceInfo identifies the microcontroller the utility is talking to. The
// unique ID comes from the flash memory IC and survives every erase.
type DeviceInfo struct {
	Model    string `json:"model"`
	UniqueID string `json:"uniqueId"`
}
