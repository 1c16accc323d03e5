// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Gridcast-wall is a terminal renderer for the wall. It connects to
// the daemon's renderer socket, publishes the calibration for the
// terminal's size and the configured wall, and lists the frames the
// plugin sends.
//
// The wall size comes from --preset (a monitor model in the preset
// catalogue), from --width and --height in inches, or from the
// config file's wall section, in that order.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/ipc"
	"github.com/gridcast/gridcast/lib/logging"
	"github.com/gridcast/gridcast/lib/presets"
	"github.com/gridcast/gridcast/lib/process"
	"github.com/gridcast/gridcast/lib/version"
	"github.com/gridcast/gridcast/lib/wallui"
	"github.com/gridcast/gridcast/presentation"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		presetName  string
		width       float64
		height      float64
		logOutput   string
		verbose     bool
		listPresets bool
	)

	flagSet := pflag.NewFlagSet("gridcast-wall", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to gridcast.yaml (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&presetName, "preset", "", "monitor preset ID or name")
	flagSet.Float64Var(&width, "width", 0, "wall width in inches")
	flagSet.Float64Var(&height, "height", 0, "wall height in inches")
	flagSet.BoolVar(&listPresets, "list-presets", false, "print the preset catalogue and exit")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("gridcast-wall")
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

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	catalogue, err := presets.Load(cfg.Presets.File)
	if err != nil {
		return err
	}
	if listPresets {
		printPresets(os.Stdout, catalogue)
		return nil
	}

	wall, err := resolveWall(cfg.Wall, catalogue, presetName, width, height)
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if logOutput != "" {
		fileLogger, closer, err := logging.NewFile(logOutput, logging.Level(verbose))
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = fileLogger
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := ipc.Dial(ctx, cfg.IPC.SocketPath, logger)
	if err != nil {
		return fmt.Errorf("is gridcast-daemon running? %w", err)
	}
	defer client.Close()

	renderer := presentation.NewRenderer(client, logger)
	if _, err := renderer.SetMonitor(wall.width, wall.height); err != nil {
		return err
	}
	go func() {
		if err := renderer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("renderer stopped", "error", err)
		}
	}()

	model := wallui.NewModel(renderer, renderer.Events(), wallui.Options{Title: wall.title})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

type wallSize struct {
	title  string
	width  float64
	height float64
}

// resolveWall picks the wall size: the preset flag, then the width and
// height flags, then the config's preset, then the config's size.
func resolveWall(cfg config.WallConfig, catalogue *presets.Catalogue, presetFlag string, width, height float64) (wallSize, error) {
	fromPreset := func(query string) (wallSize, error) {
		preset, ok := catalogue.Find(query)
		if !ok {
			return wallSize{}, fmt.Errorf("unknown monitor preset %q (see --list-presets)", query)
		}
		w, h := preset.Inches()
		return wallSize{title: preset.Name, width: w, height: h}, nil
	}

	switch {
	case presetFlag != "":
		return fromPreset(presetFlag)
	case width > 0 || height > 0:
		if width <= 0 || height <= 0 {
			return wallSize{}, errors.New("--width and --height must both be positive")
		}
		return wallSize{title: fmt.Sprintf("%.1f × %.1f in", width, height), width: width, height: height}, nil
	case cfg.Preset != "":
		return fromPreset(cfg.Preset)
	case cfg.MonitorWidth > 0 && cfg.MonitorHeight > 0:
		return wallSize{
			title:  fmt.Sprintf("%.1f × %.1f in", cfg.MonitorWidth, cfg.MonitorHeight),
			width:  cfg.MonitorWidth,
			height: cfg.MonitorHeight,
		}, nil
	}
	return wallSize{}, errors.New("no wall size: use --preset, --width and --height, or the wall section of the config")
}

func printPresets(w io.Writer, catalogue *presets.Catalogue) {
	for _, preset := range catalogue.Presets {
		width, height := preset.Inches()
		fmt.Fprintf(w, "%-10s %-14s %6.1f × %5.1f cm  %5.1f × %5.1f in\n",
			preset.ID, preset.Name, preset.Width, preset.Height, width, height)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Gridcast wall console: a terminal renderer for the wall.

Usage:
  gridcast-wall [--preset ID | --width IN --height IN] [flags]

Flags:
%s`, flagSet.FlagUsages())
}
