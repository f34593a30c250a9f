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
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/console"
	"github.com/astlouys/picoflash/pkg/control"
	"github.com/astlouys/picoflash/pkg/flash"
)

//
func NewConsole() *Console {

	c := &Console{}
	c.Runner = *NewRunner(
		`console [-d|--device {port}] [-b|--baud {rate}] [-i|--image {file}]
      [--listen {address}]`,
		"run the interactive operator console",
		`
Use the console command to operate the utility interactively: inspect memory
regions, erase sectors, verify blankness, and run the endurance test. Without
a serial device, the console runs on the local terminal.`,
		runnerHelpEpilogue, c.Run)

	c.AddBaseSettings()
	c.AddSetting(&c.Device, "device", "d", "",
		"serial port of the operator terminal, e.g. /dev/ttyACM0")
	c.AddSetting(&c.Baud, "baud", "b", 115200, "serial baud rate")
	c.AddSetting(&c.Listen, "listen", "", "",
		"listen address of the read-only control API, e.g. :8580")

	return c
}

//
type Console struct {
	Runner
	//
	Device string
	Baud   int
}

//
func (c *Console) Run() error {

	c.ParseSettings()

	dev, save, err := openDevice(c.Image)
	if err != nil {
		return err
	}
	defer func() {
		if err := save(); err != nil {
			log.Error(err)
		}
	}()

	term, closer, err := c.openTerminal()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	engine, err := flash.NewEngine(dev, dev.Layout(), term)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Listen != "" {
		go func() {
			if err := control.NewAPI(c.Listen, engine).Serve(ctx); err != nil {
				log.Errorf("control API failed: %v", err)
			}
		}()
	}

	reporter := console.NewStatusReporter(engine, 0)
	reporter.Start()
	defer reporter.Stop()

	err = console.New(term, engine).Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// openTerminal connects the operator terminal: a serial port when one is
// configured, the local stdio otherwise.
func (c *Console) openTerminal() (io.ReadWriter, io.Closer, error) {

	if c.Device == "" {
		return struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}, nil, nil
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        c.Device,
		BaudRate:        uint(c.Baud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"device": c.Device,
		"baud":   c.Baud,
	}).Info("operator terminal connected")

	return port, port, nil
}
