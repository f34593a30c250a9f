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

	"github.com/astlouys/picoflash/pkg/util"
)

//
type Version struct {
	Utility string `json:"utility"`
	Device  string `json:"device"`
	ID      string `json:"id"`
}

//
func (a *api) version(w http.ResponseWriter, req *http.Request) {

	info := a.engine.Device().Info()
	ver := &Version{
		Utility: util.PicoFlashVersion,
		Device:  info.Model,
		ID:      info.UniqueID,
	}

	if wantsJSON(req) {
		sendJSONReply(ver, http.StatusOK, w)
		return
	}

	sendReply([]byte(fmt.Sprintf("picoflash %s\ndevice:  %s\nid:      %s\n",
		ver.Utility, ver.Device, ver.ID)), http.StatusOK, w)
}
