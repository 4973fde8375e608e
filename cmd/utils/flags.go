// Copyright 2015 The go-ethereum Authors
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

// Package utils contains internal helper functions for smolevm commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"

	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/log"
	"github.com/smolevm/go-smolevm/params"
)

const (
	VMCategory      = "VIRTUAL MACHINE"
	TracingCategory = "TRACING AND STATISTICS"
	LoggingCategory = "LOGGING AND DEBUGGING"
	MiscCategory    = "MISC"
)

var (
	// General settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: MiscCategory,
	}

	// Program input
	CodeFlag = &cli.StringFlag{
		Name:     "code",
		Usage:    "Bytecode to execute, hex encoded",
		Category: VMCategory,
	}
	CodeFileFlag = &cli.StringFlag{
		Name:     "codefile",
		Usage:    "File containing hex encoded bytecode ('-' reads stdin)",
		Category: VMCategory,
	}
	InputFlag = &cli.StringFlag{
		Name:     "input",
		Usage:    "Calldata supplied to the program, hex encoded",
		Category: VMCategory,
	}

	// Execution limits
	StepLimitFlag = &cli.Uint64Flag{
		Name:     "steps",
		Usage:    "Maximum number of instructions executed per run",
		Value:    params.DefaultStepLimit,
		Category: VMCategory,
	}
	MaxMemoryFlag = &cli.Uint64Flag{
		Name:     "memory.limit",
		Usage:    "Maximum size of program memory in bytes",
		Value:    params.MaxMemorySize,
		Category: VMCategory,
	}
	AnalysisCacheFlag = &cli.IntFlag{
		Name:     "cache.analysis",
		Usage:    "Number of jump destination analyses kept in the shared cache",
		Value:    params.DefaultAnalysisCacheSize,
		Category: VMCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Number of concurrent executions in batch mode (0 = number of CPUs)",
		Category: VMCategory,
	}

	// Tracing and statistics
	TraceFlag = &cli.BoolFlag{
		Name:     "trace",
		Usage:    "Print the machine state before every instruction",
		Category: TracingCategory,
	}
	TraceFormatFlag = &cli.StringFlag{
		Name:     "trace.format",
		Usage:    "Trace output format (legacy, table, json)",
		Value:    "legacy",
		Category: TracingCategory,
	}
	TraceMemoryFlag = &cli.BoolFlag{
		Name:     "trace.memory",
		Usage:    "Include memory contents in table and json traces",
		Category: TracingCategory,
	}
	TraceLimitFlag = &cli.IntFlag{
		Name:     "trace.limit",
		Usage:    "Maximum number of trace entries kept (0 = unlimited)",
		Category: TracingCategory,
	}
	StatsFlag = &cli.BoolFlag{
		Name:     "stats",
		Usage:    "Print execution metrics and opcode counts after the run",
		Category: TracingCategory,
	}
	StatsLabelsFlag = &cli.StringFlag{
		Name:     "stats.labels",
		Usage:    "Comma separated list of k=v labels attached to the statistics",
		Category: TracingCategory,
	}
	ProgressFlag = &cli.UintFlag{
		Name:     "progress",
		Usage:    "Log a progress line every N instructions (0 = disabled)",
		Category: TracingCategory,
	}

	// Logging
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file instead of stderr",
		Category: LoggingCategory,
	}
	LogMaxSizeFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in megabytes of the log file before it gets rotated",
		Value:    100,
		Category: LoggingCategory,
	}
	LogMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of rotated log files to retain",
		Value:    3,
		Category: LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: LoggingCategory,
	}
	NoColorFlag = &cli.BoolFlag{
		Name:     "nocolor",
		Usage:    "Disable colored terminal output",
		Category: LoggingCategory,
	}
)

var (
	// VMFlags are the flags controlling a single execution.
	VMFlags = []cli.Flag{
		CodeFlag,
		CodeFileFlag,
		InputFlag,
		StepLimitFlag,
		MaxMemoryFlag,
		AnalysisCacheFlag,
	}
	// TracingFlags select tracers and statistics output.
	TracingFlags = []cli.Flag{
		TraceFlag,
		TraceFormatFlag,
		TraceMemoryFlag,
		TraceLimitFlag,
		StatsFlag,
		StatsLabelsFlag,
		ProgressFlag,
	}
	// LoggingFlags are shared by every command.
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogFileFlag,
		LogMaxSizeFlag,
		LogMaxBackupsFlag,
		LogJSONFlag,
		NoColorFlag,
	}
)

// LogConfig holds the logging settings, from flags or the config file.
type LogConfig struct {
	Verbosity  int
	File       string `toml:",omitempty"`
	MaxSizeMB  int
	MaxBackups int
	JSON       bool
	NoColor    bool `toml:",omitempty"`
}

// DefaultLogConfig mirrors the flag defaults.
var DefaultLogConfig = LogConfig{
	Verbosity:  3,
	MaxSizeMB:  100,
	MaxBackups: 3,
}

// ApplyLogFlags overrides cfg with any logging flag set on the command line.
func ApplyLogFlags(ctx *cli.Context, cfg *LogConfig) {
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(LogFileFlag.Name) {
		cfg.File = ctx.String(LogFileFlag.Name)
	}
	if ctx.IsSet(LogMaxSizeFlag.Name) {
		cfg.MaxSizeMB = ctx.Int(LogMaxSizeFlag.Name)
	}
	if ctx.IsSet(LogMaxBackupsFlag.Name) {
		cfg.MaxBackups = ctx.Int(LogMaxBackupsFlag.Name)
	}
	if ctx.IsSet(LogJSONFlag.Name) {
		cfg.JSON = ctx.Bool(LogJSONFlag.Name)
	}
	if ctx.IsSet(NoColorFlag.Name) {
		cfg.NoColor = ctx.Bool(NoColorFlag.Name)
	}
}

// SetupLogging installs the root logger described by cfg. The returned
// function flushes and closes any log file and must be called on exit.
func SetupLogging(cfg LogConfig, stderr *os.File) (func(), error) {
	var (
		output   io.Writer = stderr
		useColor           = false
		closer             = func() {}
		level              = log.FromLegacyLevel(cfg.Verbosity)
	)
	if cfg.Verbosity <= 0 {
		log.SetDefault(log.NewLogger(log.DiscardHandler()))
		return closer, nil
	}
	if cfg.File != "" {
		writer := log.NewAsyncFileWriter(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups, 0)
		if err := writer.Start(); err != nil {
			return closer, errors.Wrapf(err, "open log file %s", cfg.File)
		}
		output, closer = writer, writer.Stop
	} else if !cfg.NoColor && !cfg.JSON {
		useColor = isTerminal(stderr)
		if useColor {
			output = colorable.NewColorable(stderr)
		}
	}
	var handler slog.Handler
	if cfg.JSON {
		handler = log.JSONHandlerWithLevel(output, level)
	} else {
		handler = log.NewTerminalHandlerWithLevel(output, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return closer, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReadHexInput decodes the program or calldata given inline or in a file.
// The inline value wins when both are set.
func ReadHexInput(inline, file string) ([]byte, error) {
	if inline != "" {
		return parseHexArg(inline)
	}
	if file == "" {
		return nil, nil
	}
	var (
		raw []byte
		err error
	)
	if file == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	data, err := parseHexArg(string(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", file)
	}
	return data, nil
}

func parseHexArg(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	return common.ParseHex(s)
}

// SplitTagsFlag parses a comma-separated list of k=v tags.
func SplitTagsFlag(tagsFlag string) map[string]string {
	tags := strings.Split(tagsFlag, ",")
	tagsMap := map[string]string{}

	for _, t := range tags {
		if t != "" {
			kv := strings.Split(t, "=")

			if len(kv) == 2 {
				tagsMap[kv[0]] = kv[1]
			}
		}
	}

	return tagsMap
}

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}
