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
	BoundaryError is returned by the sector writer when a write request would
	straddle a sector boundary. The request is rejected outright and no flash
	is touched. Note that a merely misaligned target offset is not an error;
	it is realigned onto its enclosing sector, with a warning.
*/
type BoundaryError struct {
	Sector      uint32
	IntraOffset uint32
	Length      int
	SectorSize  uint32
}

//
func (e *BoundaryError) Error() string {
	return fmt.Sprintf(
		"write of %d bytes at offset 0x%X within sector 0x%X crosses the "+
			"sector boundary (sector size %d)",
		e.Length, e.IntraOffset, e.Sector, e.SectorSize)
}

/*
	SelfDestructError is the fatal precondition failure raised when a whole
	flash erase is requested while the executing code's own address lies
	inside the flash range about to be erased. The operation refuses to
	start; nothing has been erased when this error is returned.
*/
type SelfDestructError struct {
	ExecAddr uint32
	Base     uint32
	Size     uint32
}

//
func (e *SelfDestructError) Error() string {
	return fmt.Sprintf(
		"refusing to erase flash [0x%08X, 0x%08X) while executing from "+
			"0x%08X within it",
		e.Base, e.Base+e.Size, e.ExecAddr)
}

//
type RangeError struct {
	Offset uint32
	Length uint32
	Size   uint32
}

//
func (e *RangeError) Error() string {
	return fmt.Sprintf(
		"range [0x%X, 0x%X) lies outside the flash address space of 0x%X bytes",
		e.Offset, e.Offset+e.Length, e.Size)
}
