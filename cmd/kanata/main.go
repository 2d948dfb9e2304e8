// Copyright 2025 The kanata-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command kanata runs the remapping engine against a compiled
// configuration, reading physical key events from a simulated capture
// device and writing resolved output events to a simulated emit
// device.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/katakey/kanata-go"
	"github.com/katakey/kanata-go/internal/simdevice"
)

// Exit codes mirror the original CLI's convention: 0 success, 1
// fatal runtime error, 2 configuration validation failure.
const (
	exitOK          = 0
	exitDeviceError = 1
	exitConfigError = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("kanata", flag.ContinueOnError)
	checkOnly := fs.Bool("check", false, "validate the configuration and exit")
	cfgPath := fs.String("cfg", "", "path to a compiled configuration fixture (yaml)")
	verbose := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "kanata: -cfg is required")
		return exitConfigError
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		return exitConfigError
	}
	log.WithField("layers", len(cfg.Layout.Layers)).Info("configuration loaded")

	if *checkOnly {
		fmt.Println("configuration OK")
		return exitOK
	}

	dev, closeFn, err := simdevice.OpenControllingTty()
	if err != nil {
		log.WithError(err).Error("failed to open capture/emit device")
		return exitDeviceError
	}
	defer closeFn()

	if err := dev.EnterRaw(); err != nil {
		log.WithError(err).Error("failed to enter raw mode")
		return exitDeviceError
	}
	defer dev.ExitRaw()

	eng := kanata.NewEngine(cfg, dev, log)
	go eng.Run()
	defer eng.Close()

	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			log.WithError(err).Warn("capture device closed")
			return exitOK
		}
		if err := eng.PostEvent(ev); err != nil {
			log.WithError(err).Warn("dropped input event, reducer queue full")
		}
	}
}
