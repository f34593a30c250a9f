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
	log "github.com/sirupsen/logrus"
)

/*
	EraseSector erases exactly one flash sector. A misaligned offset is
	rounded down to the enclosing sector boundary, with a warning.

	If the target sector holds the protected record, the erase is converted
	into a write of all blank bytes spanning the sector: the write path's
	archive and restore step then physically preserves the record while
	every other byte of the sector becomes blank.
*/
func (e *Engine) EraseSector(off uint32) error {

	sector := e.layout.SectorStart(off)
	if sector != off {
		log.Warnf(
			"erase offset 0x%X is not sector aligned, rounded down to 0x%X",
			off, sector)
	}

	if !e.layout.Contains(sector, e.layout.SectorSize) {
		return &RangeError{
			Offset: sector, Length: e.layout.SectorSize, Size: e.layout.Size}
	}

	if e.guard.IsProtected(sector) {
		blank := make([]byte, e.layout.SectorSize)
		for i := range blank {
			blank[i] = Blank
		}
		return e.Write(sector, blank)
	}

	mask := e.dev.SaveAndDisableInterrupts()
	defer e.dev.RestoreInterrupts(mask)

	return e.dev.EraseSector(sector)
}
