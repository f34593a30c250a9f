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
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/flash"
)

// DefaultStatusInterval is the cadence of the periodic progress report
// during long running operations.
const DefaultStatusInterval = 15 * time.Second

/*
	StatusReporter periodically signals endurance test progress. It only
	reads the immutable progress snapshots the orchestrator publishes, never
	the engine's working state, so it cannot race a running operation.
*/
type StatusReporter struct {
	engine   *flash.Engine
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

//
func NewStatusReporter(e *flash.Engine, interval time.Duration) *StatusReporter {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &StatusReporter{
		engine:   e,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

//
func (s *StatusReporter) Start() {

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				p := s.engine.Progress()
				if !p.Running {
					continue
				}
				log.WithFields(log.Fields{
					"cycle":   p.Cycle,
					"of":      p.TotalCycles,
					"pattern": p.PatternName,
					"errors":  p.Errors,
					"elapsed": time.Since(p.Started).Round(time.Second),
				}).Info("endurance test running")
			}
		}
	}()
}

//
func (s *StatusReporter) Stop() {
	close(s.stop)
	<-s.done
}
