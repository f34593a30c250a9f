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
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/flash"
)

//
func NewErase() *Erase {

	e := &Erase{}
	e.Runner = *NewRunner(
		"erase [-s|--sector {offset}] [-a|--all] [-y|--yes] [-i|--image {file}]",
		"erase one sector or the whole flash",
		`
Use the erase command to erase a single sector (offset in hex, rounded down
to the sector boundary) or the whole flash address space. The protected
record survives in either case.`,
		runnerHelpEpilogue, e.Run)

	e.AddBaseSettings()
	e.AddSetting(&e.Sector, "sector", "s", "", "offset of the sector to erase, in hex")
	e.AddSetting(&e.All, "all", "a", false, "erase the whole flash address space")
	e.AddSetting(&e.Yes, "yes", "y", false, "skip confirmation")

	return e
}

//
type Erase struct {
	Runner
	//
	Sector string
	All    bool
	Yes    bool
}

//
func (e *Erase) Run() error {

	e.ParseSettings()

	if e.All == (e.Sector != "") {
		return fmt.Errorf("specify either --sector or --all")
	}

	dev, save, err := openDevice(e.Image)
	if err != nil {
		return err
	}

	engine, err := flash.NewEngine(dev, dev.Layout(), os.Stdout)
	if err != nil {
		return err
	}

	if e.All {
		if !e.Yes && !GetUserConfirmation(
			"this will erase the whole flash address space except the "+
				"protected record; proceed?") {
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := engine.EraseAll(ctx); err != nil {
			return err
		}

	} else {
		off, err := parseHex(e.Sector)
		if err != nil {
			return err
		}
		if err := engine.EraseSector(off); err != nil {
			return err
		}
		log.WithField(
			"sector", fmt.Sprintf("0x%X", engine.Layout().SectorStart(off)),
		).Info("sector erased")
	}

	return save()
}
