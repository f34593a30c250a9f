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

	log "github.com/sirupsen/logrus"
)

/*
	protection implements the protected region policy: it knows where the
	factory written record lives and converts any destructive operation on
	its enclosing sector into one that carries the record across unchanged.

	This is the single safety invariant of the whole utility: no code path
	may leave the protected bytes different from their value before the
	operation, not even a sector erase aimed exactly at that sector.
*/
type protection struct {
	layout Layout
}

// IsProtected reports whether the sector starting at sectorOff contains the
// protected record. The protected record never straddles sectors, its offset
// is sector aligned and it is shorter than one sector.
func (p protection) IsProtected(sectorOff uint32) bool {
	return p.layout.ProtectedLength > 0 &&
		p.layout.SectorStart(p.layout.ProtectedOffset) == sectorOff
}

// archive copies the protected record bytes out of a freshly read sector
// buffer. The returned slice is an independent copy.
func (p protection) archive(sector []byte) []byte {
	cp := make([]byte, p.layout.ProtectedLength)
	copy(cp, sector[:p.layout.ProtectedLength])
	return cp
}

// restore writes an archived record back over the start of the sector
// buffer, undoing whatever a caller's payload may have put there. If a
// payload overlaps the protected range, the protected content wins.
func (p protection) restore(sector, archived []byte) {
	copy(sector[:p.layout.ProtectedLength], archived)
}

/*
	RestoreProtectedRecord programs a previously archived copy of the
	protected record back into flash. This is an out of band recovery tool
	for a record that was lost through means outside this utility, invoked
	explicitly by the operator; normal operation never needs it, since every
	erase and write path preserves the record by itself.
*/
func (e *Engine) RestoreProtectedRecord(backup []byte) error {

	want := int(e.layout.ProtectedLength)
	if len(backup) != want {
		return fmt.Errorf(
			"backup is %d bytes, protected record is %d", len(backup), want)
	}

	log.WithFields(log.Fields{
		"offset": fmt.Sprintf("0x%X", e.layout.ProtectedOffset),
		"length": want,
	}).Info("restoring protected record from backup")

	// write with protection off for this one operation: the record in flash
	// is what we are replacing
	saved := e.guard.layout.ProtectedLength
	e.guard.layout.ProtectedLength = 0
	defer func() { e.guard.layout.ProtectedLength = saved }()

	return e.Write(e.layout.ProtectedOffset, backup)
}

// ReadProtectedRecord returns a copy of the protected record as currently
// stored in flash.
func (e *Engine) ReadProtectedRecord() ([]byte, error) {
	rec := make([]byte, e.layout.ProtectedLength)
	if err := e.dev.ReadAt(rec, e.layout.ProtectedOffset); err != nil {
		return nil, err
	}
	return rec, nil
}
