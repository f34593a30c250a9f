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
	"testing"

	"github.com/stretchr/testify/require"
)

// testLayout is a scaled down address space, 16 sectors instead of 512, so
// whole flash operations stay fast in tests. The protected record sits in
// sector 7, sector aligned and shorter than one sector, like on the real
// part.
func testLayout() Layout {
	return Layout{
		XIPBase:         0x10000000,
		Size:            16 * 4096,
		SectorSize:      4096,
		ProtectedOffset: 7 * 4096,
		ProtectedLength: 107,
	}
}

// newTestEngine returns an engine over a fresh simulated device with a
// synthetic factory record seeded into the protected range.
func newTestEngine(t *testing.T) (*Engine, *MemDevice) {

	l := testLayout()

	dev, err := NewMemDevice(l)
	require.NoError(t, err, "create simulated device")

	err = dev.Seed(l.ProtectedOffset, SyntheticFactoryRecord(l.ProtectedLength))
	require.NoError(t, err, "seed factory record")

	e, err := NewEngine(dev, l, nil)
	require.NoError(t, err, "create engine")

	return e, dev
}

// readBack reads length bytes at off, failing the test on error.
func readBack(t *testing.T, dev *MemDevice, off, length uint32) []byte {
	buf := make([]byte, length)
	require.NoError(t, dev.ReadAt(buf, off), "read back at 0x%X", off)
	return buf
}

// requireBlank asserts that every byte of data holds the blank value.
func requireBlank(t *testing.T, data []byte, msg string) {
	for i, b := range data {
		if b != Blank {
			t.Fatalf("%s: byte %d is 0x%02X, want blank", msg, i, b)
		}
	}
}
