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

// Blank is the value an erased flash byte reads back as.
const Blank = 0xff

/*
	Layout describes the flash address space of the target device. All offsets
	used throughout the engine are relative to XIPBase, which is only needed
	when rendering absolute addresses and when checking whether the currently
	executing code lives inside the flash range. Size is the exclusive end
	offset of the erasable range.

	The layout also locates the protected record, a small factory written
	block (manufacturing test results on the Pico) that must survive every
	erase and write this utility performs.
*/
type Layout struct {
	XIPBase         uint32 `mapstructure:"xip-base"`
	Size            uint32 `mapstructure:"size"`
	SectorSize      uint32 `mapstructure:"sector-size"`
	ProtectedOffset uint32 `mapstructure:"protected-offset"`
	ProtectedLength uint32 `mapstructure:"protected-length"`
}

// DefaultLayout returns the layout of a stock Raspberry Pi Pico: 2 MBytes of
// flash in 4096 byte sectors, manufacturing test results at 0x7F000,
// 107 bytes long.
func DefaultLayout() Layout {
	return Layout{
		XIPBase:         0x10000000,
		Size:            0x200000,
		SectorSize:      4096,
		ProtectedOffset: 0x7f000,
		ProtectedLength: 107,
	}
}

//
func (l Layout) Validate() error {

	if l.SectorSize == 0 {
		return fmt.Errorf("sector size must not be zero")
	}

	if l.Size == 0 || l.Size%l.SectorSize != 0 {
		return fmt.Errorf(
			"flash size 0x%X is not a multiple of sector size 0x%X",
			l.Size, l.SectorSize)
	}

	if l.ProtectedOffset%l.SectorSize != 0 {
		return fmt.Errorf(
			"protected record offset 0x%X is not sector aligned",
			l.ProtectedOffset)
	}

	if l.ProtectedLength >= l.SectorSize {
		return fmt.Errorf(
			"protected record length %d must be smaller than one sector (%d)",
			l.ProtectedLength, l.SectorSize)
	}

	if l.ProtectedOffset+l.ProtectedLength > l.Size {
		return fmt.Errorf(
			"protected record [0x%X, 0x%X) lies outside the flash range",
			l.ProtectedOffset, l.ProtectedOffset+l.ProtectedLength)
	}

	return nil
}

// SectorCount returns the number of erasable sectors in the address space.
func (l Layout) SectorCount() int {
	return int(l.Size / l.SectorSize)
}

// SectorStart rounds off down to the start of its enclosing sector.
func (l Layout) SectorStart(off uint32) uint32 {
	return off - off%l.SectorSize
}

// Contains reports whether [off, off+length) lies within the address space.
func (l Layout) Contains(off, length uint32) bool {
	return off < l.Size && l.Size-off >= length
}

// InExecutableRange reports whether the absolute address addr falls into the
// memory mapped flash window. Erasing flash while executing from it is
// unrecoverable, so bulk operations refuse to start in that case.
func (l Layout) InExecutableRange(addr uint32) bool {
	return addr >= l.XIPBase && addr < l.XIPBase+l.Size
}
