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
	"fmt"
	"net/http"
	"time"
)

//
func (a *api) status(w http.ResponseWriter, req *http.Request) {

	p := a.engine.Progress()

	if wantsJSON(req) {
		sendJSONReply(p, http.StatusOK, w)
		return
	}

	if !p.Running {
		sendReply([]byte("idle\n"), http.StatusOK, w)
		return
	}

	sendReply([]byte(fmt.Sprintf(
		"endurance test: cycle %d/%d, pattern %d (%s), "+
			"%d discrepancies so far (%d expected), running for %s\n",
		p.Cycle, p.TotalCycles, p.Pattern, p.PatternName,
		p.Errors, p.Expected,
		time.Since(p.Started).Round(time.Second))), http.StatusOK, w)
}

//
func (a *api) layout(w http.ResponseWriter, req *http.Request) {

	l := a.engine.Layout()

	if wantsJSON(req) {
		sendJSONReply(map[string]interface{}{
			"xipBase":         l.XIPBase,
			"size":            l.Size,
			"sectorSize":      l.SectorSize,
			"protectedOffset": l.ProtectedOffset,
			"protectedLength": l.ProtectedLength,
		}, http.StatusOK, w)
		return
	}

	sendReply([]byte(fmt.Sprintf(
		"flash: base 0x%08X, size 0x%X, sector size %d\n"+
			"protected record: offset 0x%X, length %d\n",
		l.XIPBase, l.Size, l.SectorSize,
		l.ProtectedOffset, l.ProtectedLength)), http.StatusOK, w)
}
