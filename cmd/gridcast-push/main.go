// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Gridcast-push sends a folder of PNG files to the wall the way the
// design-tool plugin sends frames. Each file is a frame named after
// the file, so the names follow the plugin's convention:
// "Lobby#SA#.png" or "Lobby#12.5x7.png".
//
// It runs the plugin's collector and its UI-host relay in one process
// and needs a running gridcast-daemon.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/gridcast/gridcast/collector"
	"github.com/gridcast/gridcast/lib/clock"
	"github.com/gridcast/gridcast/lib/config"
	"github.com/gridcast/gridcast/lib/logging"
	"github.com/gridcast/gridcast/lib/process"
	"github.com/gridcast/gridcast/lib/protocol"
	"github.com/gridcast/gridcast/lib/version"
	"github.com/gridcast/gridcast/relay"
)

// connectTimeout bounds the wait for the first bridge connection.
const connectTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath string
		directory  string
		only       []string
		assumeYes  bool
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("gridcast-push", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to gridcast.yaml (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&directory, "dir", ".", "folder of PNG frames")
	flagSet.StringSliceVar(&only, "only", nil, "send only these frames (file names without .png; repeatable)")
	flagSet.BoolVarP(&assumeYes, "yes", "y", false, "confirm large scans without asking")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("gridcast-push")
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
	logger := logging.New(logging.Level(verbose))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := &reporter{out: os.Stdout}
	session, err := newSession(ctx, cfg.Relay, newFolderHost(directory, only, logger), report, logger)
	if err != nil {
		return err
	}

	confirm := func() bool {
		if assumeYes {
			return true
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return false
		}
		return ask(os.Stdin, os.Stdout, "Continue? [y/N] ")
	}
	return session.push(ctx, confirm)
}

// session wires a collector to a relay through the JSON boundary.
type session struct {
	collector *collector.Collector
	relay     *relay.Relay
	report    *reporter
	logger    *slog.Logger
}

func newSession(ctx context.Context, cfg config.RelayConfig, host collector.Host, report *reporter, logger *slog.Logger) (*session, error) {
	s := &session{report: report, logger: logger}

	var err error
	s.relay, err = relay.New(relay.Config{
		URL:        cfg.URL,
		Origin:     cfg.Origin,
		MinBackoff: cfg.MinBackoff,
		MaxBackoff: cfg.MaxBackoff,
		Sandbox: commandBoundary{
			deliver: func(command protocol.Command) {
				if err := s.collector.Handle(ctx, command); err != nil {
					logger.Debug("sandbox command failed", "type", command.MessageType(), "error", err)
				}
			},
			logger: logger,
		},
		Observer: report.observe,
		Logger:   logger.With("component", "relay"),
	})
	if err != nil {
		return nil, err
	}
	s.collector = collector.New(host, eventBoundary{deliver: s.relay.Emit, logger: logger}, collector.Options{
		Logger: logger.With("component", "collector"),
	})

	go s.relay.Run(ctx)
	return s, nil
}

// push scans, confirms when asked to, exports every scanned frame and
// waits for the transfer.
func (s *session) push(ctx context.Context, confirm func() bool) error {
	if err := s.waitConnected(ctx); err != nil {
		return err
	}
	s.collector.Start()

	if err := s.collector.Scan(ctx, false); err != nil {
		return err
	}
	if s.collector.State() == collector.StateAwaitingConfirmation {
		if !confirm() {
			return errors.New("scan not confirmed (use --yes to skip the question)")
		}
		if err := s.collector.Scan(ctx, true); err != nil {
			return err
		}
	}
	if s.collector.State() != collector.StateReady {
		return nil
	}

	frames := s.collector.Frames()
	names := make([]string, len(frames))
	for index, descriptor := range frames {
		names[index] = descriptor.OriginalName
	}
	if err := s.collector.Export(ctx, names); err != nil {
		if errors.Is(err, collector.ErrCancelled) {
			return errors.New("export cancelled")
		}
		return err
	}

	exported, failed, notices := s.report.summary()
	switch {
	case notices > 0:
		return errors.New("frames were not delivered to the wall")
	case failed > 0:
		return fmt.Errorf("%d of %d frames failed to export", failed, exported+failed)
	}
	return nil
}

// waitConnected polls the relay until its first connection opens.
func (s *session) waitConnected(ctx context.Context) error {
	clk := clock.Real()
	deadline := clk.Now().Add(connectTimeout)
	for !s.relay.Connected() {
		if clk.Now().After(deadline) {
			return errors.New("cannot reach the wall: is gridcast-daemon running?")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(50 * time.Millisecond):
		}
	}
	return nil
}

func ask(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Gridcast push: send a folder of PNG frames to the wall.

Usage:
  gridcast-push --dir FOLDER [--only NAME ...] [--yes]

Frame files are named like the plugin's frames: "Lobby#SA#.png",
"Lobby#12.5x7.png". Other PNG files are not sent.

Flags:
%s`, flagSet.FlagUsages())
}
