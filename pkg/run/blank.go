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

	"github.com/astlouys/picoflash/pkg/flash"
)

//
func NewBlank() *Blank {

	b := &Blank{}
	b.Runner = *NewRunner(
		"blank [-i|--image {file}]",
		"check whether the flash address space is blank",
		`
Use the blank command to scan the whole flash address space for bytes not
holding the erased value. Every dirty 16 byte window is rendered; the total
count is reported at the end. The protected record bytes are expected
findings on an otherwise blank device.`,
		runnerHelpEpilogue, b.Run)

	b.AddBaseSettings()

	return b
}

//
type Blank struct {
	Runner
}

//
func (b *Blank) Run() error {

	b.ParseSettings()

	dev, _, err := openDevice(b.Image)
	if err != nil {
		return err
	}

	engine, err := flash.NewEngine(dev, dev.Layout(), os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n, err := engine.BlankCheck(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\ntotal non-blank bytes: %d\n", n)
	return nil
}
