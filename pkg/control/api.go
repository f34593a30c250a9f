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
	Package control exposes a small read-only HTTP API next to the operator
	console, so a long running endurance test can be watched from elsewhere.
	All handlers consume progress snapshots and static configuration only;
	flash I/O stays exclusively with the console's single agent.
*/
package control

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/astlouys/picoflash/pkg/flash"
)

//
type api struct {
	engine *flash.Engine
	server *http.Server
}

//
func NewAPI(listen string, e *flash.Engine) *api {

	a := &api{engine: e}

	router := mux.NewRouter()
	router.HandleFunc("/status", a.status).Methods("GET")
	router.HandleFunc("/layout", a.layout).Methods("GET")
	router.HandleFunc("/version", a.version).Methods("GET")

	a.server = &http.Server{
		Addr:         listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return a
}

// Serve runs the API until ctx is canceled.
func (a *api) Serve(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(
			context.Background(), 3*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdown); err != nil {
			log.Errorf("error shutting down control API: %v", err)
		}
	}()

	log.WithField("address", a.server.Addr).Info("control API listening")

	if err := a.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

//
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

//
func sendReply(body []byte, statusCode int, w http.ResponseWriter) {
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Errorf("problem sending reply: %v", err)
	}
}

//
func sendJSONReply(obj interface{}, statusCode int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		log.Errorf("problem sending JSON reply: %v", err)
	}
}

//
func handleError(err error, statusCode int, w http.ResponseWriter) bool {
	if err != nil {
		http.Error(w, err.Error(), statusCode)
		return true
	}
	return false
}
