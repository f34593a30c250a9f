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
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/astlouys/picoflash/pkg/flash"
)

/*
	InitConfig wires up viper: config file (picoflash.yaml, searched in the
	working directory, ~/.picoflash and /etc/picoflash, unless an explicit
	file is given), PICOFLASH_* environment variables, and defaults matching
	a stock Pico. The config file is watched; log level changes take effect
	without a restart.
*/
func InitConfig(cfgFile string) error {

	def := flash.DefaultLayout()
	viper.SetDefault("log-level", "info")
	viper.SetDefault("flash.xip-base", def.XIPBase)
	viper.SetDefault("flash.size", def.Size)
	viper.SetDefault("flash.sector-size", def.SectorSize)
	viper.SetDefault("flash.protected-offset", def.ProtectedOffset)
	viper.SetDefault("flash.protected-length", def.ProtectedLength)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("picoflash")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.picoflash")
		viper.AddConfigPath("/etc/picoflash")
	}

	viper.SetEnvPrefix("picoflash")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("cannot read config: %w", err)
		}
	} else {
		log.WithField("file", viper.ConfigFileUsed()).Debug("config loaded")
		viper.OnConfigChange(func(e fsnotify.Event) {
			log.WithField("file", e.Name).Info("config file changed")
			applyLogLevel()
		})
		viper.WatchConfig()
	}

	applyLogLevel()
	return nil
}

//
func applyLogLevel() {

	lvl, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		log.Warnf("invalid log level %q, staying at %s",
			viper.GetString("log-level"), log.GetLevel())
		return
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// LayoutFromConfig assembles the flash layout from configuration.
func LayoutFromConfig() flash.Layout {
	return flash.Layout{
		XIPBase:         viper.GetUint32("flash.xip-base"),
		Size:            viper.GetUint32("flash.size"),
		SectorSize:      viper.GetUint32("flash.sector-size"),
		ProtectedOffset: viper.GetUint32("flash.protected-offset"),
		ProtectedLength: viper.GetUint32("flash.protected-length"),
	}
}

/*
	openDevice creates the simulated flash device. When image names an
	existing file, its content becomes the flash content; otherwise the
	device starts blank with a synthetic factory record seeded into the
	protected range. The returned save function persists the flash content
	back to the image file, when one was given.
*/
func openDevice(image string) (*flash.MemDevice, func() error, error) {

	l := LayoutFromConfig()
	dev, err := flash.NewMemDevice(l)
	if err != nil {
		return nil, nil, err
	}

	loaded := false
	if image != "" {
		if data, err := os.ReadFile(image); err == nil {
			if err := dev.Restore(data); err != nil {
				return nil, nil, fmt.Errorf("cannot load image %s: %w", image, err)
			}
			log.WithField("image", image).Info("flash image loaded")
			loaded = true
		} else if !os.IsNotExist(err) {
			return nil, nil, err
		}
	}

	if !loaded {
		if err := dev.Seed(l.ProtectedOffset,
			flash.SyntheticFactoryRecord(l.ProtectedLength)); err != nil {
			return nil, nil, err
		}
	}

	save := func() error {
		if image == "" {
			return nil
		}
		if err := os.WriteFile(image, dev.Snapshot(), 0644); err != nil {
			return fmt.Errorf("cannot save image %s: %w", image, err)
		}
		log.WithField("image", image).Info("flash image saved")
		return nil
	}

	return dev, save, nil
}
