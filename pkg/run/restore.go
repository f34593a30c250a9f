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
	"os"

	"github.com/astlouys/picoflash/pkg/flash"
	"github.com/astlouys/picoflash/pkg/hexdump"
)

//
func NewRestore() *Restore {

	r := &Restore{}
	r.Runner = *NewRunner(
		"restore -f|--file {backup} [-y|--yes] [-i|--image {file}]",
		"restore the protected record from a backup file",
		`
Use the restore command to program a previously archived copy of the
protected record back into flash. This is an out of band recovery tool for a
record lost through means outside this utility; normal operation preserves
the record on every erase and write by itself.`,
		runnerHelpEpilogue, r.Run)

	r.AddBaseSettings()
	r.AddSetting(&r.File, "file", "f", "", "backup file holding the record bytes")
	r.AddSetting(&r.Yes, "yes", "y", false, "skip confirmation")

	return r
}

//
type Restore struct {
	Runner
	//
	File string
	Yes  bool
}

//
func (r *Restore) Run() error {

	r.ParseSettings()

	if r.File == "" {
		return fmt.Errorf("no backup file given")
	}

	backup, err := os.ReadFile(r.File)
	if err != nil {
		return err
	}

	dev, save, err := openDevice(r.Image)
	if err != nil {
		return err
	}

	engine, err := flash.NewEngine(dev, dev.Layout(), os.Stdout)
	if err != nil {
		return err
	}
	l := engine.Layout()

	fmt.Printf("record to be programmed at offset 0x%X:\n\n", l.ProtectedOffset)
	if err := hexdump.Dump(
		os.Stdout, l.XIPBase, l.ProtectedOffset, backup); err != nil {
		return err
	}

	if !r.Yes && !GetUserConfirmation(
		"\nthis overwrites the protected record in flash; proceed?") {
		return nil
	}

	if err := engine.RestoreProtectedRecord(backup); err != nil {
		return err
	}

	fmt.Println("protected record restored")
	return save()
}
