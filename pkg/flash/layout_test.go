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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutValidate(t *testing.T) {

	t.Run("stock Pico layout is valid", func(t *testing.T) {
		require.NoError(t, DefaultLayout().Validate())
	})

	t.Run("invalid layouts are rejected", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Layout)
		}{
			{"zero sector size", func(l *Layout) { l.SectorSize = 0 }},
			{"size not sector multiple", func(l *Layout) { l.Size = 4096 + 1 }},
			{"zero size", func(l *Layout) { l.Size = 0 }},
			{"record offset not aligned", func(l *Layout) { l.ProtectedOffset += 3 }},
			{"record as long as a sector", func(l *Layout) { l.ProtectedLength = l.SectorSize }},
			{"record outside the range", func(l *Layout) { l.ProtectedOffset = l.Size }},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				l := DefaultLayout()
				test.mutate(&l)
				assert.Error(t, l.Validate())
			})
		}
	})
}

func TestLayoutGeometry(t *testing.T) {

	l := DefaultLayout()

	assert.Equal(t, 512, l.SectorCount())

	assert.EqualValues(t, 0, l.SectorStart(0))
	assert.EqualValues(t, 0, l.SectorStart(4095))
	assert.EqualValues(t, 4096, l.SectorStart(4096))
	assert.EqualValues(t, 0x7f000, l.SectorStart(0x7f06a))

	assert.True(t, l.Contains(0, l.Size), "the full range")
	assert.True(t, l.Contains(l.Size-1, 1), "the last byte")
	assert.False(t, l.Contains(l.Size, 0), "offset at the exclusive end")
	assert.False(t, l.Contains(l.Size-1, 2), "range crossing the end")

	assert.False(t, l.InExecutableRange(0x20000000), "RAM")
	assert.True(t, l.InExecutableRange(l.XIPBase))
	assert.True(t, l.InExecutableRange(l.XIPBase+l.Size-1))
	assert.False(t, l.InExecutableRange(l.XIPBase+l.Size))
}
