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
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/smolevm/go-smolevm/cmd/utils"
	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/core/vm/runtime"
	"github.com/smolevm/go-smolevm/eth/tracers/logger"
	"github.com/smolevm/go-smolevm/eth/tracers/native"
	"github.com/smolevm/go-smolevm/internal/debug"
	"github.com/smolevm/go-smolevm/log"
	"github.com/smolevm/go-smolevm/metrics"
)

var runCommand = &cli.Command{
	Action:    runCmd,
	Name:      "run",
	Usage:     "Execute a program and print its return data",
	ArgsUsage: "[<code>]",
	Flags:     append(append([]cli.Flag{}, utils.VMFlags...), utils.TracingFlags...),
	Description: `
The run command executes a single program. The code is taken from --code,
--codefile or the first argument, in that order. On a normal halt the return
data is printed as

    Output : 0x<hex>

A fault is reported as an error and makes the command exit with a non-zero
status.`,
}

func runCmd(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	inline := ctx.String(utils.CodeFlag.Name)
	if inline == "" {
		inline = ctx.Args().First()
	}
	code, err := utils.ReadHexInput(inline, ctx.String(utils.CodeFileFlag.Name))
	if err != nil {
		return errors.Wrap(err, "invalid code")
	}
	if len(code) == 0 {
		return errors.New("no code given, use --code, --codefile or pass it as an argument")
	}
	input, err := utils.ReadHexInput(ctx.String(utils.InputFlag.Name), "")
	if err != nil {
		return errors.Wrap(err, "invalid input")
	}

	var (
		out          = ctx.App.Writer
		format       = ctx.String(utils.TraceFormatFlag.Name)
		structLogger *logger.StructLogger
		counter      *native.OpCountTracer
		tracers      []*tracing.Hooks
	)
	if ctx.Bool(utils.TraceFlag.Name) {
		tcfg := &logger.Config{
			EnableMemory: format == "legacy" || ctx.Bool(utils.TraceMemoryFlag.Name),
			Limit:        ctx.Int(utils.TraceLimitFlag.Name),
		}
		switch format {
		case "legacy", "table":
			structLogger = logger.NewStructLogger(tcfg)
			tracers = append(tracers, structLogger.Hooks())
		case "json":
			tracers = append(tracers, logger.NewJSONLogger(tcfg, out).Hooks())
		default:
			return errors.Errorf("unknown trace format %q", format)
		}
	}
	if ctx.Bool(utils.StatsFlag.Name) {
		counter = native.NewOpCountTracer()
		tracers = append(tracers, counter.Hooks())
	}

	rcfg := cfg.runtimeConfig()
	rcfg.Tracer = native.NewMuxTracer(tracers...)
	endRegion := debug.Handler.StartRegionAuto("execute")
	res := runtime.Execute(code, input, rcfg)
	endRegion()
	log.Debug("Execution finished", "steps", res.Steps, "halted", res.Halted, "err", res.Err)

	if structLogger != nil {
		if format == "table" {
			logger.WriteTrace(out, structLogger.StructLogs())
		} else {
			logger.WriteLegacy(out, structLogger.StructLogs())
		}
	}
	if counter != nil {
		rcfg.Label()
		printStats(out, counter, utils.SplitTagsFlag(ctx.String(utils.StatsLabelsFlag.Name)))
	}
	if res.Failed() {
		return errors.Errorf("execution failed at pc %d after %d steps: %v", res.FaultPC, res.Steps, res.Err)
	}
	fmt.Fprintf(out, "Output : 0x%x\n", res.ReturnData)
	return nil
}

// printStats renders the metrics registry and the opcode histogram.
func printStats(w io.Writer, counter *native.OpCountTracer, labels map[string]string) {
	if len(labels) > 0 {
		value := make(map[string]interface{}, len(labels))
		for k, v := range labels {
			value[k] = v
		}
		metrics.GetOrRegisterLabel("smolevm/labels", nil).Mark(value)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Kind", "Value"})
	table.SetAutoWrapText(false)
	for _, s := range metrics.Collect(nil) {
		table.Append([]string{s.Name, s.Kind, s.Value})
	}
	table.Render()

	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Opcode", "Count"})
	for _, c := range counter.Counts() {
		table.Append([]string{c.Op, strconv.FormatUint(c.Count, 10)})
	}
	faults := counter.Faults()
	kinds := make([]string, 0, len(faults))
	for k := range faults {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		table.Append([]string{"fault:" + k, strconv.FormatUint(faults[k], 10)})
	}
	table.Render()
}
