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

package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astlouys/picoflash/pkg/flash"
)

//
func newTestAPI(t *testing.T) *api {

	l := flash.DefaultLayout()
	dev, err := flash.NewMemDevice(l)
	require.NoError(t, err)
	engine, err := flash.NewEngine(dev, l, nil)
	require.NoError(t, err)

	return NewAPI("127.0.0.1:0", engine)
}

//
func get(t *testing.T, handler http.HandlerFunc, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "http://unit.test/", nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestStatus(t *testing.T) {

	t.Run("idle in plain text", func(t *testing.T) {
		a := newTestAPI(t)

		w := get(t, a.status, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "idle\n", w.Body.String())
	})

	t.Run("idle as JSON", func(t *testing.T) {
		a := newTestAPI(t)

		w := get(t, a.status, "application/json")
		assert.Equal(t, http.StatusOK, w.Code)

		var p flash.Progress
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.False(t, p.Running)
	})
}

func TestLayout(t *testing.T) {

	t.Run("plain text", func(t *testing.T) {
		a := newTestAPI(t)

		w := get(t, a.layout, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "base 0x10000000")
		assert.Contains(t, w.Body.String(), "length 107")
	})

	t.Run("JSON carries the full geometry", func(t *testing.T) {
		a := newTestAPI(t)

		w := get(t, a.layout, "application/json")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]uint32
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 0x10000000, body["xipBase"])
		assert.EqualValues(t, 0x200000, body["size"])
		assert.EqualValues(t, 4096, body["sectorSize"])
		assert.EqualValues(t, 0x7f000, body["protectedOffset"])
		assert.EqualValues(t, 107, body["protectedLength"])
	})
}

func TestVersion(t *testing.T) {

	a := newTestAPI(t)

	w := get(t, a.version, "application/json")
	require.Equal(t, http.StatusOK, w.Code)

	var ver Version
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ver))
	assert.NotEmpty(t, ver.Utility)
	assert.Contains(t, ver.Device, "Pico")
	assert.NotEmpty(t, ver.ID)
}
