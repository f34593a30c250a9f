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
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const runnerHelpEpilogue = `Settings can also come from the config file or
from PICOFLASH_* environment variables; command line flags win.`

/*
	Runner is the base for all commands. It wraps a cobra command and keeps
	track of registered settings, so that values not given on the command
	line fall back to the config file and environment via viper.
*/
type Runner struct {
	cmd      *cobra.Command
	settings []string

	// base settings shared by every command
	Image  string
	Listen string
}

//
func NewRunner(use, short, long, epilogue string, run func() error) *Runner {

	if epilogue != "" {
		long = fmt.Sprintf("%s\n\n%s", long, epilogue)
	}

	r := &Runner{}
	r.cmd = &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return run()
		},
	}

	return r
}

//
func (r *Runner) Cmd() *cobra.Command {
	return r.cmd
}

// AddBaseSettings registers the settings every command understands.
func (r *Runner) AddBaseSettings() {
	r.AddSetting(&r.Image, "image", "i", "",
		"flash image file backing the simulated device")
}

/*
	AddSetting registers one command setting. The flag is also bound as a
	viper key of the same name, so it can be provided via config file or a
	PICOFLASH_* environment variable.
*/
func (r *Runner) AddSetting(
	p interface{}, name, short string, def interface{}, help string) {

	flags := r.cmd.Flags()

	switch ptr := p.(type) {
	case *string:
		flags.StringVarP(ptr, name, short, def.(string), help)
	case *int:
		flags.IntVarP(ptr, name, short, def.(int), help)
	case *bool:
		flags.BoolVarP(ptr, name, short, def.(bool), help)
	default:
		panic(fmt.Sprintf("unsupported setting type for %s", name))
	}

	r.settings = append(r.settings, name)
}

/*
	ParseSettings resolves every registered setting that was not set on the
	command line against viper, i.e. config file and environment.
*/
func (r *Runner) ParseSettings() {

	registered := make(map[string]bool)
	for _, name := range r.settings {
		registered[name] = true
	}

	r.cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !registered[f.Name] || f.Changed || !viper.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(viper.GetString(f.Name)); err != nil {
			log.Warnf("ignoring config value for %s: %v", f.Name, err)
		}
	})
}

//
func (r *Runner) IsSet(name string) bool {
	return r.cmd.Flags().Changed(name) || viper.IsSet(name)
}

// GetUserConfirmation asks a yes/no question on the local terminal;
// anything but y/Y declines.
func GetUserConfirmation(msg string) bool {

	fmt.Printf("%s [y/N]: ", msg)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
