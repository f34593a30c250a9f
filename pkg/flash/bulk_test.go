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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraseAll(t *testing.T) {

	t.Run("everything blank except the protected record", func(t *testing.T) {
		e, dev := newTestEngine(t)
		l := e.Layout()

		record := readBack(t, dev, l.ProtectedOffset, l.ProtectedLength)

		// dirty a few sectors, including the protected one
		require.NoError(t, e.Write(0, []byte("sector zero")))
		require.NoError(t, e.Write(5*4096+99, []byte("sector five")))
		require.NoError(t, e.Write(l.ProtectedOffset+3000, []byte("seven")))
		require.NoError(t, e.Write(15*4096, []byte("last sector")))

		require.NoError(t, e.EraseAll(context.Background()))

		assert.Equal(t, record,
			readBack(t, dev, l.ProtectedOffset, l.ProtectedLength),
			"protected record after whole flash erase")

		img := dev.Snapshot()
		for off := uint32(0); off < l.Size; off++ {
			if off >= l.ProtectedOffset && off < l.ProtectedOffset+l.ProtectedLength {
				continue
			}
			if img[off] != Blank {
				t.Fatalf("byte at 0x%X is 0x%02X after whole flash erase",
					off, img[off])
			}
		}

		assert.Zero(t, dev.UnbracketedOps)
		assert.True(t, dev.InterruptsBalanced())
	})

	t.Run("refuses to erase while executing from flash", func(t *testing.T) {
		e, dev := newTestEngine(t)
		l := e.Layout()

		require.NoError(t, e.Write(0, []byte("still here afterwards")))
		erases := dev.EraseCount

		dev.SetExecutionAddress(l.XIPBase + 0x1234)

		var sdErr *SelfDestructError
		err := e.EraseAll(context.Background())
		require.ErrorAs(t, err, &sdErr)
		assert.EqualValues(t, l.XIPBase+0x1234, sdErr.ExecAddr)

		assert.Equal(t, erases, dev.EraseCount, "no sector erased")
		assert.Equal(t, []byte("still here afterwards"),
			readBack(t, dev, 0, 21))
	})

	t.Run("cancellation stops between sectors", func(t *testing.T) {
		e, _ := newTestEngine(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := e.EraseAll(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBlankCheck(t *testing.T) {

	t.Run("counts exactly the protected record after an erase", func(t *testing.T) {
		e, _ := newTestEngine(t)
		l := e.Layout()

		require.NoError(t, e.EraseAll(context.Background()))

		n, err := e.BlankCheck(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, l.ProtectedLength, n)
	})

	t.Run("repeated checks report the same count", func(t *testing.T) {
		e, _ := newTestEngine(t)

		require.NoError(t, e.Write(9*4096, bytes.Repeat([]byte{0x01}, 33)))

		first, err := e.BlankCheck(context.Background())
		require.NoError(t, err)
		second, err := e.BlankCheck(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first, second, "blank check does not modify flash")
	})

	t.Run("counts every dirty byte and renders its window", func(t *testing.T) {
		l := testLayout()
		dev, err := NewMemDevice(l)
		require.NoError(t, err)

		var out strings.Builder
		e, err := NewEngine(dev, l, &out)
		require.NoError(t, err)

		// no record seeded, so these three bytes are the only findings
		require.NoError(t, dev.Seed(11*4096+5, []byte{0x01, 0x02, 0x03}))

		n, err := e.BlankCheck(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
		assert.Contains(t, out.String(), "[1000B000]",
			"the dirty window's absolute address")
	})

	t.Run("fully blank device reports zero", func(t *testing.T) {
		l := testLayout()
		dev, err := NewMemDevice(l)
		require.NoError(t, err)
		e, err := NewEngine(dev, l, nil)
		require.NoError(t, err)

		n, err := e.BlankCheck(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
