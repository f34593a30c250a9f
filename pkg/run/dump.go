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
	"strconv"
	"strings"

	"github.com/astlouys/picoflash/pkg/hexdump"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		`dump [-o|--offset {offset}] [-n|--length {length}] [-p|--protected]
      [-i|--image {file}]`,
		"dump a flash range as hex/ASCII",
		`
Use the dump command to render a byte range of the flash address space on
stdout. Offset and length are hexadecimal. Without options, the complete
address space is dumped; with --protected, only the protected record.`,
		runnerHelpEpilogue, d.Run)

	d.AddBaseSettings()
	d.AddSetting(&d.Offset, "offset", "o", "0", "start offset in hex")
	d.AddSetting(&d.Length, "length", "n", "",
		"length in hex, defaults to the rest of the space")
	d.AddSetting(&d.Protected, "protected", "p", false,
		"dump the protected record only")

	return d
}

//
type Dump struct {
	Runner
	//
	Offset    string
	Length    string
	Protected bool
}

//
func (d *Dump) Run() error {

	d.ParseSettings()

	dev, _, err := openDevice(d.Image)
	if err != nil {
		return err
	}
	l := dev.Layout()

	off, length := uint32(0), l.Size

	if d.Protected {
		off, length = l.ProtectedOffset, l.ProtectedLength

	} else {
		if off, err = parseHex(d.Offset); err != nil {
			return err
		}
		if d.Length != "" {
			if length, err = parseHex(d.Length); err != nil {
				return err
			}
		} else {
			length = l.Size - off
		}
		if !l.Contains(off, length) {
			return fmt.Errorf(
				"range [0x%X, 0x%X) is outside the flash address space",
				off, off+length)
		}
	}

	buf := make([]byte, length)
	if err := dev.ReadAt(buf, off); err != nil {
		return err
	}

	return hexdump.Dump(os.Stdout, l.XIPBase, off, buf)
}

//
func parseHex(s string) (uint32, error) {

	v, err := strconv.ParseUint(
		strings.TrimPrefix(strings.TrimSpace(s), "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("not a hexadecimal value: %s", s)
	}
	return uint32(v), nil
}
