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
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/hexdump"
)

/*
	EraseAll erases every sector of the flash address space, front to back.
	The protected record survives, since the sector eraser routes its sector
	through the preserving write path.

	A fatal precondition is checked first: if the executing code's own
	address lies inside the flash range, the operation refuses to start,
	because erasing the flash one is running from is unrecoverable.

	Cancellation via ctx is honored between sectors only; a sector erase
	either completes or the device is in an undefined state, so there is no
	mid-sector abort.
*/
func (e *Engine) EraseAll(ctx context.Context) error {

	if exec := e.dev.ExecutionAddress(); e.layout.InExecutableRange(exec) {
		return &SelfDestructError{
			ExecAddr: exec,
			Base:     e.layout.XIPBase,
			Size:     e.layout.Size,
		}
	}

	log.WithFields(log.Fields{
		"base": fmt.Sprintf("0x%08X", e.layout.XIPBase),
		"size": fmt.Sprintf("0x%X", e.layout.Size),
	}).Info("erasing whole flash address space")

	count := 0
	for off := uint32(0); off < e.layout.Size; off += e.layout.SectorSize {

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("erase stopped before sector 0x%X: %w", off, err)
		}

		fmt.Fprintf(e.out, "0x%08X   ", e.layout.XIPBase+off)
		count++
		if count%8 == 0 {
			fmt.Fprintln(e.out)
		}

		if err := e.EraseSector(off); err != nil {
			return err
		}
	}
	if count%8 != 0 {
		fmt.Fprintln(e.out)
	}

	log.WithField("sectors", count).Info("whole flash erase done")
	return nil
}

/*
	BlankCheck scans the whole flash address space in 16 byte windows and
	counts every byte not holding the blank value. Each dirty window is
	rendered with address, hex content and ASCII; runs of consecutive blank
	windows are collapsed into a single line break so the report stays
	readable without losing any finding.

	The count includes the protected record bytes, which survive every erase
	and therefore never read blank.
*/
func (e *Engine) BlankCheck(ctx context.Context) (uint64, error) {

	var total uint64

	buf := make([]byte, e.layout.SectorSize)
	skipping := false
	started := false

	for sector := uint32(0); sector < e.layout.Size; sector += e.layout.SectorSize {

		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf(
				"blank check stopped before sector 0x%X: %w", sector, err)
		}

		if err := e.dev.ReadAt(buf, sector); err != nil {
			return total, err
		}

		for w := uint32(0); w < e.layout.SectorSize; w += hexdump.BytesPerLine {

			window := buf[w : w+hexdump.BytesPerLine]
			dirty := 0
			for _, b := range window {
				if b != Blank {
					dirty++
				}
			}

			if dirty == 0 {
				if started && !skipping {
					fmt.Fprintln(e.out)
				}
				skipping = true
			} else {
				total += uint64(dirty)
				skipping = false
				fmt.Fprintln(e.out,
					hexdump.FormatLine(e.layout.XIPBase, sector+w, window))
			}

			started = true
		}
	}

	log.WithField("errors", total).Info("flash blank check done")
	return total, nil
}
