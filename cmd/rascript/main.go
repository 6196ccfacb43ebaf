// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/rascript/pkg/cli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("rascript", flag.ContinueOnError)
	flags := cli.SetupFlags(fs)

	exit, err := flags.Pre(fs, os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	if exit {
		return 0
	}

	var logWriters []io.Writer
	if *flags.Watch {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}

	osFs := afero.NewOsFs()
	cfg, err := cli.Setup(osFs, flags, logWriters)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &cli.Runner{
		Fs:     osFs,
		Cfg:    cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Out:    *flags.Out,
	}

	compile := func(ctx context.Context) error {
		_, err := runner.Run(ctx, *flags.In)
		switch {
		case err == nil, errors.Is(err, cli.ErrDiagnostics):
		case errors.Is(err, context.Canceled):
			log.Debug().Msg("compile superseded")
		default:
			_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		return err
	}

	err = compile(ctx)
	if !*flags.Watch {
		if err != nil {
			return 1
		}
		return 0
	}

	watcher := &cli.Watcher{
		Path:     *flags.In,
		Debounce: cfg.WatchDebounce(),
		Compile:  func(ctx context.Context) { _ = compile(ctx) },
	}
	if err := watcher.Watch(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
