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

package console

import (
	"fmt"
	"io"
)

// maximum accepted input line length
const maxLineLength = 128

const (
	keyBackspace = 0x08
	keyReturn    = 0x0d
	keyLineFeed  = 0x0a
	keyDelete    = 0x7f
)

/*
	ReadLine reads one line of text from the operator's terminal, with
	destructive backspace editing and echo. The line is terminated by a
	carriage return and bounded to 128 characters. An empty return value
	means the operator pressed Enter alone, which is used throughout the
	console as the cancel signal.
*/
func (c *Console) ReadLine() (string, error) {

	buf := make([]byte, 0, maxLineLength)
	one := make([]byte, 1)

	for {
		if _, err := io.ReadFull(c.term, one); err != nil {
			return "", err
		}

		switch ch := one[0]; ch {

		case keyReturn:
			c.swallowLF = true
			fmt.Fprint(c.term, "\r\n")
			return string(buf), nil

		case keyLineFeed:
			// a LF right after CR is the tail of a CRLF pair; a bare LF
			// (local cooked terminal) terminates the line
			if c.swallowLF {
				c.swallowLF = false
				continue
			}
			return string(buf), nil

		case keyBackspace, keyDelete:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				// erase the character under the cursor
				fmt.Fprintf(c.term, "%c %c", keyBackspace, keyBackspace)
			}

		default:
			c.swallowLF = false
			if len(buf) < maxLineLength {
				buf = append(buf, ch)
				fmt.Fprintf(c.term, "%c", ch)
			}
		}

		if len(buf) >= maxLineLength {
			return string(buf), nil
		}
	}
}
