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
	"github.com/spf13/cobra"
)

//
func NewRoot() *cobra.Command {

	var cfgFile string

	root := &cobra.Command{
		Use:   "picoflash",
		Short: "diagnostic and maintenance utility for microcontroller flash",
		Long: `
PicoFlash lets an operator inspect flash memory regions, erase sectors,
verify blankness, and run an extended write/erase endurance test, while
preserving the factory written protected record embedded in flash.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return InitConfig(cfgFile)
		},
	}

	root.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: picoflash.yaml)")

	root.AddCommand(
		NewConsole().Cmd(),
		NewDump().Cmd(),
		NewErase().Cmd(),
		NewBlank().Cmd(),
		NewEndurance().Cmd(),
		NewRestore().Cmd(),
		NewVersion().Cmd(),
	)

	return root
}
