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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/smolevm/go-smolevm/cmd/utils"
	"github.com/smolevm/go-smolevm/core/vm"
	"github.com/smolevm/go-smolevm/core/vm/runtime"
	"github.com/smolevm/go-smolevm/params"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       append(append([]cli.Flag{}, utils.VMFlags...), utils.WorkersFlag, utils.ProgressFlag),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type vmConfig struct {
	StepLimit         uint64
	MaxMemory         uint64
	AnalysisCacheSize int
	ProgressInterval  uint32 `toml:",omitempty"`
}

type batchConfig struct {
	Workers int
}

type smolConfig struct {
	VM    vmConfig
	Batch batchConfig
	Log   utils.LogConfig
}

func defaultConfig() smolConfig {
	return smolConfig{
		VM: vmConfig{
			StepLimit:         params.DefaultStepLimit,
			MaxMemory:         params.MaxMemorySize,
			AnalysisCacheSize: params.DefaultAnalysisCacheSize,
		},
		Log: utils.DefaultLogConfig,
	}
}

func loadConfig(file string, cfg *smolConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, and applies the flags on top.
func makeConfig(ctx *cli.Context) (smolConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	utils.ApplyLogFlags(ctx, &cfg.Log)

	if ctx.IsSet(utils.StepLimitFlag.Name) {
		cfg.VM.StepLimit = ctx.Uint64(utils.StepLimitFlag.Name)
	}
	if ctx.IsSet(utils.MaxMemoryFlag.Name) {
		cfg.VM.MaxMemory = ctx.Uint64(utils.MaxMemoryFlag.Name)
	}
	if ctx.IsSet(utils.AnalysisCacheFlag.Name) {
		cfg.VM.AnalysisCacheSize = ctx.Int(utils.AnalysisCacheFlag.Name)
	}
	if ctx.IsSet(utils.ProgressFlag.Name) {
		cfg.VM.ProgressInterval = uint32(ctx.Uint(utils.ProgressFlag.Name))
	}
	if ctx.IsSet(utils.WorkersFlag.Name) {
		cfg.Batch.Workers = ctx.Int(utils.WorkersFlag.Name)
	}
	return cfg, nil
}

// runtimeConfig translates the settings into an execution config. The shared
// analysis cache is used unless a different size was asked for.
func (c *smolConfig) runtimeConfig() *runtime.Config {
	cfg := &runtime.Config{
		StepLimit:        c.VM.StepLimit,
		MaxMemory:        c.VM.MaxMemory,
		ProgressInterval: c.VM.ProgressInterval,
		Workers:          c.Batch.Workers,
	}
	if c.VM.AnalysisCacheSize != params.DefaultAnalysisCacheSize {
		cfg.AnalysisCache = vm.NewAnalysisCache(c.VM.AnalysisCacheSize)
	}
	return cfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	dump.Write(out)

	return nil
}
