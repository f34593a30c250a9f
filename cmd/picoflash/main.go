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

package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/run"
)

//
func main() {
	if err := run.NewRoot().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
