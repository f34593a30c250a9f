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
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTestCycles is the number of complete write cycles the endurance
// test performs when the operator does not override it.
const DefaultTestCycles = 5

//
type pattern struct {
	name string
	even byte
	odd  byte
}

// the five patterns written per cycle, in order
var testPatterns = []pattern{
	{"0x00", 0x00, 0x00},
	{"0x55", 0x55, 0x55},
	{"0xAA", 0xAA, 0xAA},
	{"0x55/0xAA", 0x55, 0xAA},
	{"0xAA/0x55", 0xAA, 0x55},
}

//
func (p pattern) expect(off uint32) byte {
	if off%2 == 0 {
		return p.even
	}
	return p.odd
}

/*
	Progress is an immutable snapshot of a running endurance test, published
	by the orchestrator after every step. The periodic status reporter and
	the control API only ever read these snapshots, so they never race the
	orchestrator's own state.
*/
type Progress struct {
	Running     bool      `json:"running"`
	Cycle       int       `json:"cycle"`
	TotalCycles int       `json:"totalCycles"`
	Pattern     int       `json:"pattern"`
	PatternName string    `json:"patternName"`
	Errors      uint64    `json:"errors"`
	Expected    uint64    `json:"expected"`
	Started     time.Time `json:"started,omitempty"`
}

//
type progressBoard struct {
	v atomic.Value
}

//
func (b *progressBoard) publish(p Progress) {
	b.v.Store(p)
}

//
func (b *progressBoard) load() Progress {
	if v := b.v.Load(); v != nil {
		return v.(Progress)
	}
	return Progress{}
}

// Progress returns the latest progress snapshot. Safe to call from any
// goroutine while a test is running.
func (e *Engine) Progress() Progress {
	return e.progress.load()
}

// TestReport is the final outcome of an endurance test. Observed holds every
// discrepancy tallied across all passes; Expected is the analytically
// derived count caused by the protected record being carried across every
// erase and write, so a caller can tell real failures from expected ones.
type TestReport struct {
	Cycles   int           `json:"cycles"`
	Patterns int           `json:"patterns"`
	Observed uint64        `json:"observed"`
	Expected uint64        `json:"expected"`
	Elapsed  time.Duration `json:"elapsed"`
}

//
func (r *TestReport) Clean() bool {
	return r.Observed == r.Expected
}

// ExpectedDiscrepancies returns the analytically expected discrepancy count
// for an endurance test of the given number of cycles: every pattern pass
// runs one blank check and one read back over the full address space, and
// each of those intentionally finds the protected record bytes differing.
func (e *Engine) ExpectedDiscrepancies(cycles int) uint64 {
	return uint64(e.layout.ProtectedLength) * 2 *
		uint64(len(testPatterns)) * uint64(cycles)
}

/*
	RunEnduranceTest performs the multi cycle write/erase endurance test:
	for each cycle and each of the five bit patterns, the whole flash is
	erased, blank checked, written with the pattern sector by sector, and
	read back byte for byte against the expected pattern. All discrepancies
	are tallied and reported, never aborted on: the test is meant to run
	unattended for on the order of an hour and to report everything it saw.

	A final whole flash erase leaves the device blank, also when the test
	exits abnormally. Cancellation is honored between sectors.
*/
func (e *Engine) RunEnduranceTest(ctx context.Context, cycles int) (*TestReport, error) {

	if cycles <= 0 {
		cycles = DefaultTestCycles
	}

	started := time.Now()
	report := &TestReport{
		Cycles:   cycles,
		Patterns: len(testPatterns),
		Expected: e.ExpectedDiscrepancies(cycles),
	}

	defer func() {
		// leave flash blank no matter how we exit
		if err := e.EraseAll(context.Background()); err != nil {
			log.Errorf("final erase after endurance test failed: %v", err)
		}
		report.Elapsed = time.Since(started)
		e.progress.publish(Progress{})
	}()

	for cycle := 1; cycle <= cycles; cycle++ {

		fmt.Fprintf(e.out,
			"= = = = = = = = = = = = = = = = CYCLE %d = = = = = = = = = = = = = = = =\r\n",
			cycle)

		for px, pat := range testPatterns {

			e.progress.publish(Progress{
				Running:     true,
				Cycle:       cycle,
				TotalCycles: cycles,
				Pattern:     px + 1,
				PatternName: pat.name,
				Errors:      report.Observed,
				Expected:    report.Expected,
				Started:     started,
			})

			if err := e.EraseAll(ctx); err != nil {
				return report, err
			}

			n, err := e.BlankCheck(ctx)
			if err != nil {
				return report, err
			}
			report.Observed += n

			if err := e.writePattern(ctx, pat); err != nil {
				return report, err
			}

			n, err = e.verifyPattern(ctx, pat)
			if err != nil {
				return report, err
			}
			report.Observed += n

			passes := uint64((cycle-1)*len(testPatterns) + px + 1)
			expectedSoFar := uint64(e.layout.ProtectedLength) * 2 * passes
			fmt.Fprintf(e.out,
				"Total discrepancies so far: %d (%d expected from the "+
					"preserved protected record)\r\n",
				report.Observed, expectedSoFar)

			log.WithFields(log.Fields{
				"cycle":    cycle,
				"pattern":  pat.name,
				"observed": report.Observed,
				"expected": expectedSoFar,
			}).Info("endurance test pattern pass done")
		}
	}

	return report, nil
}

// writePattern writes the given pattern to every sector of the address
// space through the sector writer, so the protected record stays intact.
func (e *Engine) writePattern(ctx context.Context, pat pattern) error {

	fmt.Fprintf(e.out, "Writing %s to all flash memory...\r\n", pat.name)

	buf := make([]byte, e.layout.SectorSize)
	for i := range buf {
		buf[i] = pat.expect(uint32(i))
	}

	for off := uint32(0); off < e.layout.Size; off += e.layout.SectorSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf(
				"pattern write stopped before sector 0x%X: %w", off, err)
		}
		if err := e.Write(off, buf); err != nil {
			return err
		}
	}

	return nil
}

// verifyPattern reads back the entire address space and compares every byte
// against the expected pattern. Mismatches are rendered and tallied, never
// fatal: the protected record alone accounts for a fixed number of them.
func (e *Engine) verifyPattern(ctx context.Context, pat pattern) (uint64, error) {

	fmt.Fprintf(e.out,
		"Checking all flash memory for a match with %s...\r\n", pat.name)

	var mismatches uint64
	buf := make([]byte, e.layout.SectorSize)

	for sector := uint32(0); sector < e.layout.Size; sector += e.layout.SectorSize {

		if err := ctx.Err(); err != nil {
			return mismatches, fmt.Errorf(
				"read back stopped before sector 0x%X: %w", sector, err)
		}

		if err := e.dev.ReadAt(buf, sector); err != nil {
			return mismatches, err
		}

		for i, b := range buf {
			off := sector + uint32(i)
			if want := pat.expect(off); b != want {
				mismatches++
				fmt.Fprintf(e.out,
					"Offset: 0x%08X   Data read: 0x%02X instead of 0x%02X\r\n",
					off, b, want)
			}
		}
	}

	return mismatches, nil
}
