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

/*
	Package console implements the interactive operator surface: the menu
	loop, line edited text input and the glue between operator choices and
	the flash engine. It talks to the operator over any io.ReadWriter,
	typically a serial port or the local terminal.
*/
package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/flash"
	"github.com/astlouys/picoflash/pkg/hexdump"
)

const rule = "=================================================================================="

//
type Console struct {
	term   io.ReadWriter
	engine *flash.Engine

	// line input state, see ReadLine
	swallowLF bool
}

//
func New(term io.ReadWriter, engine *flash.Engine) *Console {
	return &Console{term: term, engine: engine}
}

/*
	Run drives the operator menu until the operator quits or ctx is
	canceled. Every operation runs to completion before the menu is shown
	again; whole flash operations honor cancellation between sectors only.
*/
func (c *Console) Run(ctx context.Context) error {

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.identify()
		c.printMenu()

		fmt.Fprint(c.term, "                    Enter an option: ")
		choice, err := c.ReadLine()
		if err != nil {
			return err
		}
		if choice == "" {
			continue
		}
		if strings.EqualFold(choice, "q") {
			fmt.Fprint(c.term, "\r\nBye.\r\n")
			return nil
		}

		n, err := strconv.Atoi(strings.TrimSpace(choice))
		if err != nil {
			fmt.Fprintf(c.term,
				"\r\n                    Invalid choice... please re-enter [%s]\r\n\r\n",
				choice)
			continue
		}

		fmt.Fprint(c.term, "\r\n")
		if err := c.dispatch(ctx, n); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(c.term, "\r\n%v\r\n", err)
			log.Errorf("operation failed: %v", err)
		}
		fmt.Fprint(c.term, "\r\n")
	}
}

//
func (c *Console) printMenu() {
	fmt.Fprint(c.term, ""+
		"                    1) Display the protected record.\r\n"+
		"                    2) Display a specific flash sector.\r\n"+
		"                    3) Display the complete flash address space.\r\n"+
		"                    4) Display device identification.\r\n"+
		"                    5) Erase all flash and generate a complete log.\r\n"+
		"                    6) Erase a specific flash sector.\r\n"+
		"                    7) Erase the whole flash address space.\r\n"+
		"                    8) Flash memory blank check.\r\n"+
		"                    9) Flash memory endurance test.\r\n"+
		"                   10) Clear screen.\r\n"+
		"                    q) Quit.\r\n\r\n")
}

//
func (c *Console) dispatch(ctx context.Context, choice int) error {

	switch choice {
	case 1:
		return c.showProtectedRecord()
	case 2:
		return c.showSector()
	case 3:
		return c.showAllFlash()
	case 4:
		c.identify()
		return nil
	case 5:
		return c.completeLog(ctx)
	case 6:
		return c.eraseSector()
	case 7:
		return c.eraseAll(ctx, true)
	case 8:
		return c.blankCheck(ctx)
	case 9:
		return c.enduranceTest(ctx)
	case 10:
		// VT101 clear screen, then home
		fmt.Fprint(c.term, "\x1b[2J\x1b[H")
		return nil
	default:
		fmt.Fprintf(c.term,
			"                    Invalid choice... please re-enter [%d]\r\n",
			choice)
		return nil
	}
}

// identify renders the device identification banner: model and the unique
// ID read from the flash memory IC.
func (c *Console) identify() {
	info := c.engine.Device().Info()
	l := c.engine.Layout()
	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprint(c.term, "                                 PicoFlash utility\r\n")
	fmt.Fprintf(c.term, "                    Device:  %s\r\n", info.Model)
	fmt.Fprintf(c.term, "                    ID:      %s\r\n", info.UniqueID)
	fmt.Fprintf(c.term,
		"                    Flash:   0x%08X - 0x%08X (%d sectors of %d bytes)\r\n",
		l.XIPBase, l.XIPBase+l.Size-1, l.SectorCount(), l.SectorSize)
	fmt.Fprintf(c.term, "%s\r\n\r\n", rule)
}

//
func (c *Console) showProtectedRecord() error {

	l := c.engine.Layout()
	rec, err := c.engine.ReadProtectedRecord()
	if err != nil {
		return err
	}

	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprintf(c.term,
		"Protected record   offset: 0x%06X   length: 0x%X (%d)\r\n\r\n",
		l.ProtectedOffset, l.ProtectedLength, l.ProtectedLength)

	if err := hexdump.Dump(c.term, l.XIPBase, l.ProtectedOffset, rec); err != nil {
		return err
	}

	fmt.Fprintf(c.term, "\r\nEnd of protected record.\r\n%s\r\n", rule)
	return nil
}

//
func (c *Console) showSector() error {

	l := c.engine.Layout()
	off, ok, err := c.promptHex(fmt.Sprintf(
		"                    Enter sector offset in hex (0 to %X): ",
		l.Size-1), l.Size-1)
	if err != nil || !ok {
		return err
	}

	// display starts on a sector boundary
	off = l.SectorStart(off)

	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprintf(c.term,
		"Flash sector   offset: 0x%06X   length: 0x%X (%d)\r\n\r\n",
		off, l.SectorSize, l.SectorSize)

	if err := c.dumpRange(off, l.SectorSize); err != nil {
		return err
	}

	fmt.Fprintf(c.term, "\r\nEnd of sector display.\r\n%s\r\n", rule)
	return nil
}

//
func (c *Console) showAllFlash() error {

	l := c.engine.Layout()
	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprintf(c.term,
		"Complete flash address space   base: 0x%08X   length: 0x%X (%d)\r\n\r\n",
		l.XIPBase, l.Size, l.Size)

	if err := c.dumpRange(0, l.Size); err != nil {
		return err
	}

	fmt.Fprintf(c.term, "\r\nEnd of flash address space display.\r\n%s\r\n", rule)
	return nil
}

// dumpRange renders [off, off+length) of flash sector by sector, so even a
// full 2 MByte dump needs no more than one sector of RAM at a time.
func (c *Console) dumpRange(off, length uint32) error {

	l := c.engine.Layout()
	buf := make([]byte, l.SectorSize)

	for length > 0 {
		chunk := l.SectorSize - off%l.SectorSize
		if chunk > length {
			chunk = length
		}
		if err := c.engine.Device().ReadAt(buf[:chunk], off); err != nil {
			return err
		}
		if err := hexdump.Dump(c.term, l.XIPBase, off, buf[:chunk]); err != nil {
			return err
		}
		off += chunk
		length -= chunk
	}

	return nil
}

// completeLog is the unattended "macro": identification, protected record,
// whole flash erase, blank check, full dump.
func (c *Console) completeLog(ctx context.Context) error {

	fmt.Fprint(c.term,
		"                    This will erase the whole flash address space except the protected record.\r\n")
	ok, err := c.confirm("                    Are you sure you want to proceed <Y/N>: ")
	if err != nil || !ok {
		return err
	}

	c.identify()
	if err := c.showProtectedRecord(); err != nil {
		return err
	}
	if err := c.eraseAll(ctx, false); err != nil {
		return err
	}
	if err := c.blankCheck(ctx); err != nil {
		return err
	}
	return c.showAllFlash()
}

//
func (c *Console) eraseSector() error {

	l := c.engine.Layout()
	off, ok, err := c.promptHex(
		"                    Enter offset of the sector to erase in hex (or <Enter> to return to menu): ",
		l.Size-1)
	if err != nil || !ok {
		return err
	}

	sector := l.SectorStart(off)
	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprintf(c.term,
		"Current content of sector at offset 0x%06X:\r\n\r\n", sector)
	if err := c.dumpRange(sector, l.SectorSize); err != nil {
		return err
	}

	fmt.Fprint(c.term, "\r\n")
	ok, err = c.confirm(
		"                    Are you sure you want to erase this sector <Y/N>: ")
	if err != nil || !ok {
		return err
	}

	if err := c.engine.EraseSector(off); err != nil {
		return err
	}

	fmt.Fprintf(c.term,
		"\r\nSector at offset 0x%06X erased.\r\n%s\r\n", sector, rule)
	return nil
}

//
func (c *Console) eraseAll(ctx context.Context, interactive bool) error {

	if interactive {
		fmt.Fprint(c.term,
			"                    This will erase the whole flash address space except the protected record.\r\n")
		ok, err := c.confirm(
			"                    Are you sure you want to proceed <Y/N>: ")
		if err != nil || !ok {
			return err
		}
	}

	fmt.Fprintf(c.term, "%s\r\nErasing sectors...\r\n", rule)
	if err := c.engine.EraseAll(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.term, "End of whole flash erase.\r\n%s\r\n", rule)
	return nil
}

//
func (c *Console) blankCheck(ctx context.Context) error {

	l := c.engine.Layout()
	fmt.Fprintf(c.term, "%s\r\nFlash blank check   0x%08X - 0x%08X\r\n\r\n",
		rule, l.XIPBase, l.XIPBase+l.Size-1)

	n, err := c.engine.BlankCheck(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.term,
		"\r\nTotal non-blank bytes found: %d (the %d bytes of the protected "+
			"record are expected here)\r\n%s\r\n",
		n, l.ProtectedLength, rule)
	return nil
}

//
func (c *Console) enduranceTest(ctx context.Context) error {

	l := c.engine.Layout()
	expected := c.engine.ExpectedDiscrepancies(flash.DefaultTestCycles)

	fmt.Fprintf(c.term, "%s\r\n", rule)
	fmt.Fprintf(c.term, ""+
		"The endurance test performs %d complete write cycles. For each cycle and\r\n"+
		"each of the patterns 0x00, 0x55, 0xAA, 0x55/0xAA and 0xAA/0x55, the flash\r\n"+
		"is erased, blank checked, written with the pattern and read back.\r\n\r\n"+
		"The protected record is never overwritten, so every full pass finds its\r\n"+
		"%d bytes differing twice: %d discrepancies at the end are normal.\r\n\r\n"+
		"NOTE: Flash endures on the order of 100,000 write cycles and no wear\r\n"+
		"      leveling is implemented. The test takes about an hour; you may\r\n"+
		"      want to let the system go and come back later...\r\n\r\n",
		flash.DefaultTestCycles, l.ProtectedLength, expected)

	ok, err := c.confirm(
		"                    Are you sure you want to proceed <Y/N>: ")
	if err != nil || !ok {
		return err
	}

	report, err := c.engine.RunEnduranceTest(ctx, flash.DefaultTestCycles)
	if report != nil {
		fmt.Fprintf(c.term, "%s\r\n", rule)
		fmt.Fprintf(c.term,
			"Endurance test final report after %d write cycles (%s elapsed):\r\n",
			report.Cycles, report.Elapsed.Round(1e9))
		fmt.Fprintf(c.term, "Total discrepancies observed: %d\r\n", report.Observed)
		fmt.Fprintf(c.term, "Analytically expected:        %d\r\n", report.Expected)
		if report.Clean() {
			fmt.Fprint(c.term,
				"All discrepancies are accounted for by the preserved protected record.\r\n")
		} else {
			fmt.Fprint(c.term,
				"Discrepancy counts differ: the flash device shows real anomalies.\r\n")
		}
		fmt.Fprintf(c.term, "%s\r\n", rule)
	}
	return err
}

// confirm asks a yes/no question; anything but Y or y declines.
func (c *Console) confirm(prompt string) (bool, error) {

	fmt.Fprint(c.term, prompt)
	line, err := c.ReadLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

// promptHex asks for a hex offset no larger than max. Enter alone cancels,
// invalid input re-prompts.
func (c *Console) promptHex(prompt string, max uint32) (uint32, bool, error) {

	for {
		fmt.Fprint(c.term, prompt)
		line, err := c.ReadLine()
		if err != nil {
			return 0, false, err
		}
		if line == "" {
			return 0, false, nil
		}

		v, err := strconv.ParseUint(
			strings.TrimPrefix(strings.TrimSpace(line), "0x"), 16, 32)
		if err == nil && uint32(v) <= max {
			return uint32(v), true, nil
		}

		fmt.Fprintf(c.term,
			"                    Invalid offset entered...[%s]\r\n"+
				"                    Offset must be a hexadecimal value between 0 and %X\r\n",
			line, max)
	}
}
