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
	"io"

	log "github.com/sirupsen/logrus"
)

/*
	Engine owns all flash mutation. It holds the one scratch sector buffer,
	allocated at construction and reused for every write, and the protected
	region policy. Reports produced while operating (blank check findings,
	endurance test output) are rendered to out, which is typically the
	operator's terminal.

	The engine is single threaded by design: exactly one agent performs
	flash I/O, and every physical erase and program pair runs with
	interrupts disabled.
*/
type Engine struct {
	dev    Device
	layout Layout
	guard  protection
	sector []byte
	out    io.Writer

	progress progressBoard
}

//
func NewEngine(dev Device, l Layout, out io.Writer) (*Engine, error) {

	if err := l.Validate(); err != nil {
		return nil, err
	}

	if out == nil {
		out = io.Discard
	}

	e := &Engine{
		dev:    dev,
		layout: l,
		guard:  protection{layout: l},
		sector: make([]byte, l.SectorSize),
		out:    out,
	}
	e.progress.publish(Progress{})

	return e, nil
}

//
func (e *Engine) Layout() Layout {
	return e.layout
}

//
func (e *Engine) Device() Device {
	return e.dev
}

/*
	Write updates an arbitrary sub range within one flash sector. off need
	not be sector aligned; a misaligned offset is silently realigned onto
	its enclosing sector, with the payload landing at the corresponding
	intra sector position. A payload that would straddle into the next
	sector is rejected with a BoundaryError without touching flash.

	Since physical erase is destructive at sector granularity, the whole
	current sector is read first, the payload overlaid, and the sector
	erased and reprogrammed in one interrupts-disabled bracket. If the
	sector holds the protected record, the record is archived from the
	just read content and restored over the buffer before programming, so
	a payload overlapping the protected range never wins against it.
*/
func (e *Engine) Write(off uint32, payload []byte) error {

	sector := e.layout.SectorStart(off)
	intra := off - sector

	if intra != 0 {
		log.Warnf(
			"write offset 0x%X is not sector aligned, realigned to sector "+
				"0x%X at intra offset 0x%X", off, sector, intra)
	}

	if intra+uint32(len(payload)) > e.layout.SectorSize {
		return &BoundaryError{
			Sector:      sector,
			IntraOffset: intra,
			Length:      len(payload),
			SectorSize:  e.layout.SectorSize,
		}
	}

	if !e.layout.Contains(sector, e.layout.SectorSize) {
		return &RangeError{
			Offset: sector, Length: e.layout.SectorSize, Size: e.layout.Size}
	}

	// read before write: untouched bytes in the sector must survive
	if err := e.dev.ReadAt(e.sector, sector); err != nil {
		return err
	}

	var archived []byte
	if e.guard.IsProtected(sector) {
		archived = e.guard.archive(e.sector)
	}

	copy(e.sector[intra:], payload)

	if archived != nil {
		e.guard.restore(e.sector, archived)
	}

	mask := e.dev.SaveAndDisableInterrupts()
	defer e.dev.RestoreInterrupts(mask)

	if err := e.dev.EraseSector(sector); err != nil {
		return err
	}
	return e.dev.Program(sector, e.sector)
}
