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

package console

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astlouys/picoflash/pkg/flash"
)

// newTestConsole wires a console to a simulated device over a scaled down
// address space, with the operator's keystrokes scripted in advance.
func newTestConsole(t *testing.T, keys string) (*Console, *fakeTerm, *flash.MemDevice) {

	l := flash.Layout{
		XIPBase:         0x10000000,
		Size:            16 * 4096,
		SectorSize:      4096,
		ProtectedOffset: 7 * 4096,
		ProtectedLength: 107,
	}

	dev, err := flash.NewMemDevice(l)
	require.NoError(t, err)
	require.NoError(t,
		dev.Seed(l.ProtectedOffset, flash.SyntheticFactoryRecord(l.ProtectedLength)))

	term := &fakeTerm{in: strings.NewReader(keys)}
	engine, err := flash.NewEngine(dev, l, term)
	require.NoError(t, err)

	return New(term, engine), term, dev
}

func TestRun(t *testing.T) {

	t.Run("q quits", func(t *testing.T) {
		c, term, _ := newTestConsole(t, "q\r")

		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, term.out.String(), "Bye.")
	})

	t.Run("shows the protected record", func(t *testing.T) {
		c, term, _ := newTestConsole(t, "1\rq\r")

		require.NoError(t, c.Run(context.Background()))
		out := term.out.String()
		assert.Contains(t, out, "Protected record")
		// the record's factory header shows up in the ASCII column
		assert.Contains(t, out, "RP2-B1 FT PASS")
	})

	t.Run("shows a specific sector", func(t *testing.T) {
		c, term, _ := newTestConsole(t, "2\r7123\rq\r")

		require.NoError(t, c.Run(context.Background()))
		out := term.out.String()
		assert.Contains(t, out, "offset: 0x007000",
			"display starts on the sector boundary")
	})

	t.Run("declined erase leaves flash alone", func(t *testing.T) {
		c, term, dev := newTestConsole(t, "7\rn\rq\r")

		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, term.out.String(), "Are you sure")
		assert.Zero(t, dev.EraseCount)
	})

	t.Run("confirmed erase runs and reports", func(t *testing.T) {
		c, term, dev := newTestConsole(t, "7\ry\rq\r")

		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, term.out.String(), "End of whole flash erase.")
		assert.Equal(t, 16, dev.EraseCount)
	})

	t.Run("blank check reports the record's byte count", func(t *testing.T) {
		c, term, _ := newTestConsole(t, "7\ry\r8\rq\r")

		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, term.out.String(),
			"Total non-blank bytes found: 107")
	})

	t.Run("invalid choice re-prompts", func(t *testing.T) {
		c, term, _ := newTestConsole(t, "zz\rq\r")

		require.NoError(t, c.Run(context.Background()))
		assert.Contains(t, term.out.String(), "Invalid choice")
	})

	t.Run("canceled context ends the loop", func(t *testing.T) {
		c, _, _ := newTestConsole(t, "q\r")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, c.Run(ctx), context.Canceled)
	})
}

func TestPromptHex(t *testing.T) {

	t.Run("accepts a plain hex value", func(t *testing.T) {
		c, _ := typed("7f00\r")

		v, ok, err := c.promptHex("offset: ", 0xffff)
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 0x7f00, v)
	})

	t.Run("accepts the 0x prefix", func(t *testing.T) {
		c, _ := typed("0x1000\r")

		v, ok, err := c.promptHex("offset: ", 0xffff)
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 0x1000, v)
	})

	t.Run("enter alone cancels", func(t *testing.T) {
		c, _ := typed("\r")

		_, ok, err := c.promptHex("offset: ", 0xffff)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("out of range input re-prompts", func(t *testing.T) {
		c, term := typed("10000\rffff\r")

		v, ok, err := c.promptHex("offset: ", 0xffff)
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 0xffff, v)
		assert.Contains(t, term.out.String(), "Invalid offset")
	})
}

func TestConfirm(t *testing.T) {

	for keys, want := range map[string]bool{
		"y\r": true, "Y\r": true, "n\r": false, "\r": false, "yes\r": false,
	} {
		c, _ := typed(keys)
		got, err := c.confirm("sure? ")
		require.NoError(t, err)
		assert.Equal(t, want, got, "keys %q", keys)
	}
}
