// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Gridcast-daemon is the wall application's privileged process. It
// serves the WebSocket bridge the design-tool plugin connects to,
// keeps the calibration the renderer publishes, stores received frames
// in the scratch area and tells renderers where to find them.
//
// Only one daemon runs per user. A second one exits with status 3 and
// a notice that another instance is running, whether it finds the
// lock held or the bridge port taken.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gridcast/gridcast/bridge"
	"github.com/gridcast/gridcast/daemon"
	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/instance"
	"github.com/gridcast/gridcast/lib/logging"
	"github.com/gridcast/gridcast/lib/process"
	"github.com/gridcast/gridcast/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath string
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("gridcast-daemon", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to gridcast.yaml (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("gridcast-daemon")
		return nil
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Level(verbose))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return classify(err)
	}
	defer d.Close()

	return classify(d.Run(ctx))
}

// classify gives the two "already running" failures their own exit
// status and notice.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, instance.ErrAlreadyRunning) || errors.Is(err, bridge.ErrAddressInUse) {
		return &process.ExitError{
			Code:   process.ExitAlreadyRunning,
			Notice: "gridcast-daemon: another instance is running",
			Err:    err,
		}
	}
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Gridcast daemon: bridge, calibration store and frame receiver for the wall.

Usage:
  gridcast-daemon [flags]

Flags:
%s`, flagSet.FlagUsages())
}
