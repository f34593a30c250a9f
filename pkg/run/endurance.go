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

	"github.com/astlouys/picoflash/pkg/console"
	"github.com/astlouys/picoflash/pkg/control"
	"github.com/astlouys/picoflash/pkg/flash"
)

//
func NewEndurance() *Endurance {

	e := &Endurance{}
	e.Runner = *NewRunner(
		`endurance [-c|--cycles {count}] [-y|--yes] [-i|--image {file}]
      [--listen {address}]`,
		"run the flash write/erase endurance test",
		`
Use the endurance command to run the multi cycle write/erase test: per cycle,
five bit patterns are each erased, blank checked, written and read back over
the whole address space. Discrepancies are tallied and compared against the
analytically expected count caused by the preserved protected record. The
full test runs on the order of an hour on real hardware.`,
		runnerHelpEpilogue, e.Run)

	e.AddBaseSettings()
	e.AddSetting(&e.Cycles, "cycles", "c", flash.DefaultTestCycles,
		"number of complete write cycles")
	e.AddSetting(&e.Yes, "yes", "y", false, "skip confirmation")
	e.AddSetting(&e.Listen, "listen", "", "",
		"listen address of the read-only control API, e.g. :8580")

	return e
}

//
type Endurance struct {
	Runner
	//
	Cycles int
	Yes    bool
}

//
func (e *Endurance) Run() error {

	e.ParseSettings()

	dev, save, err := openDevice(e.Image)
	if err != nil {
		return err
	}

	engine, err := flash.NewEngine(dev, dev.Layout(), os.Stdout)
	if err != nil {
		return err
	}

	expected := engine.ExpectedDiscrepancies(e.Cycles)
	if !e.Yes && !GetUserConfirmation(fmt.Sprintf(
		"this runs %d full write/erase cycles over the whole flash and "+
			"ends with a blank device (%d discrepancies are expected from "+
			"the preserved protected record); proceed?", e.Cycles, expected)) {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if e.Listen != "" {
		go func() {
			_ = control.NewAPI(e.Listen, engine).Serve(ctx)
		}()
	}

	reporter := console.NewStatusReporter(engine, 0)
	reporter.Start()
	defer reporter.Stop()

	report, err := engine.RunEnduranceTest(ctx, e.Cycles)
	if err != nil {
		return err
	}
	if err := save(); err != nil {
		return err
	}

	fmt.Printf("\nendurance test done after %d cycles in %s\n",
		report.Cycles, report.Elapsed.Round(1e6))
	fmt.Printf("observed discrepancies: %d\n", report.Observed)
	fmt.Printf("expected discrepancies: %d\n", report.Expected)

	if !report.Clean() {
		return fmt.Errorf(
			"discrepancy count %d differs from the expected %d, the flash "+
				"device shows real anomalies", report.Observed, report.Expected)
	}

	fmt.Println("all discrepancies accounted for by the protected record")
	return nil
}
