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

package run

import (
	"fmt"

	"github.com/astlouys/picoflash/pkg/util"
)

//
func NewVersion() *Version {
	v := &Version{}
	v.Runner = *NewRunner(
		"version", "show utility version", "", "", v.Run)
	return v
}

//
type Version struct {
	Runner
}

//
func (v *Version) Run() error {
	PrintVersion()
	return nil
}

//
func PrintVersion() {
	fmt.Printf(`
  ____  _           _____ _           _
 |  _ \(_) ___ ___ |  ___| | __ _ ___| |__
 | |_) | |/ __/ _ \| |_  | |/ _' / __| '_ \
 |  __/| | (_| (_) |  _| | | (_| \__ \ | | |
 |_|   |_|\___\___/|_|   |_|\__,_|___/_| |_|

picoflash: %s
`, util.PicoFlashVersion)
}
