// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// smolevm executes programs for a small stack machine.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/smolevm/go-smolevm/cmd/utils"
	"github.com/smolevm/go-smolevm/internal/debug"
	"github.com/smolevm/go-smolevm/log"
)

var (
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
)

const clientVersion = "0.1.0"

func version() string {
	v := clientVersion
	if len(gitCommit) >= 8 {
		v += "-" + gitCommit[:8]
	}
	if gitDate != "" {
		v += "-" + gitDate
	}
	return v
}

func newApp() *cli.App {
	var stopLogging = func() {}

	app := &cli.App{
		Name:    "smolevm",
		Usage:   "the smolevm command line interface",
		Version: version(),
		Flags:   append(append([]cli.Flag{utils.ConfigFileFlag}, utils.LoggingFlags...), debug.Flags...),
		Commands: []*cli.Command{
			runCommand,
			disasmCommand,
			batchCommand,
			dumpConfigCommand,
		},
		Copyright:            "Copyright 2024 The go-ethereum Authors",
		EnableBashCompletion: true,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		stop, err := utils.SetupLogging(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		stopLogging = stop
		log.Debug("Logging configured", "verbosity", cfg.Log.Verbosity, "file", cfg.Log.File)
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		stopLogging()
		return nil
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
