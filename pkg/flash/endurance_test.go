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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedDiscrepancies(t *testing.T) {

	e, _ := newTestEngine(t)

	// 107 record bytes, found once by the blank check and once by the read
	// back, across 5 patterns per cycle
	assert.EqualValues(t, 107*2*5, e.ExpectedDiscrepancies(1))
	assert.EqualValues(t, 107*2*5*5, e.ExpectedDiscrepancies(5))
}

func TestEnduranceTest(t *testing.T) {

	t.Run("clean device shows only the expected discrepancies", func(t *testing.T) {
		e, dev := newTestEngine(t)
		l := e.Layout()

		record := readBack(t, dev, l.ProtectedOffset, l.ProtectedLength)

		report, err := e.RunEnduranceTest(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, report)

		assert.Equal(t, 1, report.Cycles)
		assert.Equal(t, 5, report.Patterns)
		assert.EqualValues(t, 107*2*5, report.Expected)
		assert.Equal(t, report.Expected, report.Observed)
		assert.True(t, report.Clean())

		// the final erase leaves the device blank, record aside
		assert.Equal(t, record,
			readBack(t, dev, l.ProtectedOffset, l.ProtectedLength))
		n, err := e.BlankCheck(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, l.ProtectedLength, n)

		assert.Zero(t, dev.UnbracketedOps)
		assert.True(t, dev.InterruptsBalanced())
	})

	t.Run("a real anomaly surfaces in the tally", func(t *testing.T) {
		e, dev := newTestEngine(t)

		// a stuck bit: reads back blank even after a pattern write
		dev.StickAt(3*4096+17, Blank)

		report, err := e.RunEnduranceTest(context.Background(), 1)
		require.NoError(t, err)

		assert.False(t, report.Clean())
		assert.Greater(t, report.Observed, report.Expected)
	})

	t.Run("progress resets to idle when the test ends", func(t *testing.T) {
		e, _ := newTestEngine(t)

		_, err := e.RunEnduranceTest(context.Background(), 1)
		require.NoError(t, err)

		p := e.Progress()
		assert.False(t, p.Running)
		assert.Zero(t, p.Cycle)
	})

	t.Run("cancellation aborts but still erases", func(t *testing.T) {
		e, dev := newTestEngine(t)
		l := e.Layout()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.RunEnduranceTest(ctx, 1)
		require.ErrorIs(t, err, context.Canceled)

		// the deferred final erase ran with a fresh context
		img := dev.Snapshot()
		for off := uint32(0); off < l.Size; off++ {
			if off >= l.ProtectedOffset && off < l.ProtectedOffset+l.ProtectedLength {
				continue
			}
			require.EqualValues(t, Blank, img[off],
				"byte at 0x%X after aborted test", off)
		}
	})

	t.Run("non positive cycle count falls back to the default", func(t *testing.T) {
		e, _ := newTestEngine(t)

		report, err := e.RunEnduranceTest(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, DefaultTestCycles, report.Cycles)
		assert.True(t, report.Clean())
	})
}
