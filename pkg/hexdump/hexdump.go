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

/*
	Package hexdump renders byte ranges the way the utility presents memory
	on the operator's terminal: one line per 16 bytes, with the absolute
	address, space separated two digit hex bytes, a separator, and an ASCII
	column substituting '.' for anything not printable.
*/
package hexdump

import (
	"fmt"
	"io"
	"strings"
)

// BytesPerLine is the fixed width of a rendered line.
const BytesPerLine = 16

// escapeByte never renders as itself in the ASCII column; it is reserved by
// the VT101 escape handling of the terminal transport.
const escapeByte = 0x25

/*
	FormatLine renders up to BytesPerLine bytes at the given offset into one
	dump line. Absolute addresses are formed from base+off. When data is
	shorter than a full line, the hex columns are padded with blanks so the
	ASCII column stays aligned.
*/
func FormatLine(base, off uint32, data []byte) string {

	if len(data) > BytesPerLine {
		data = data[:BytesPerLine]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%08X] ", base+off)

	for i := 0; i < BytesPerLine; i++ {
		if i < len(data) {
			fmt.Fprintf(&b, "%02X ", data[i])
		} else {
			b.WriteString("   ")
		}
	}

	b.WriteString("| ")

	for i := 0; i < BytesPerLine; i++ {
		if i < len(data) {
			b.WriteByte(printable(data[i]))
		} else {
			b.WriteByte(' ')
		}
	}

	return b.String()
}

//
func printable(c byte) byte {
	if c >= 0x20 && c <= 0x7e && c != escapeByte {
		return c
	}
	return '.'
}

// Dump renders data as a sequence of lines to w, starting at off relative
// to base. The final line is padded when data is not a multiple of the
// line width.
func Dump(w io.Writer, base, off uint32, data []byte) error {

	for i := 0; i < len(data); i += BytesPerLine {
		end := i + BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		if _, err := fmt.Fprintf(w, "%s\r\n",
			FormatLine(base, off+uint32(i), data[i:end])); err != nil {
			return err
		}
	}

	return nil
}
