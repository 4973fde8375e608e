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
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/smolevm/go-smolevm/cmd/utils"
	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/core/vm/runtime"
	"github.com/smolevm/go-smolevm/eth/tracers/native"
	"github.com/smolevm/go-smolevm/internal/debug"
	"github.com/smolevm/go-smolevm/log"
)

var batchCommand = &cli.Command{
	Action:    batchCmd,
	Name:      "batch",
	Usage:     "Execute every program listed in one or more files",
	ArgsUsage: "<file> [<file>...]",
	Flags: []cli.Flag{
		utils.StepLimitFlag,
		utils.MaxMemoryFlag,
		utils.AnalysisCacheFlag,
		utils.WorkersFlag,
		utils.StatsFlag,
		utils.StatsLabelsFlag,
	},
	Description: `
Every non-empty line of the input files holds one hex encoded program,
optionally followed by whitespace and its hex encoded calldata. Lines starting
with '#' are ignored. The programs run concurrently and a summary table is
printed in input order. The command fails if any program faults.`,
}

// batchEntry is a program read from a batch file.
type batchEntry struct {
	source string // file:line
	job    runtime.Job
}

// parseBatchFile reads the programs listed in file.
func parseBatchFile(file string) ([]batchEntry, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		entries []batchEntry
		scanner = bufio.NewScanner(f)
		line    int
	)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) > 2 {
			return nil, errors.Errorf("%s:%d: expected code and optional input, got %d fields", file, line, len(fields))
		}
		code, err := common.ParseHex(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: code", file, line)
		}
		var input []byte
		if len(fields) == 2 {
			if input, err = common.ParseHex(fields[1]); err != nil {
				return nil, errors.Wrapf(err, "%s:%d: input", file, line)
			}
		}
		entries = append(entries, batchEntry{
			source: fmt.Sprintf("%s:%d", file, line),
			job:    runtime.Job{Code: code, Input: input},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	return entries, nil
}

// readBatchFiles parses all files concurrently, keeping the file order.
func readBatchFiles(ctx context.Context, files []string) ([]batchEntry, error) {
	parsed := make([][]batchEntry, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			entries, err := parseBatchFile(file)
			if err != nil {
				return err
			}
			parsed[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []batchEntry
	for _, entries := range parsed {
		all = append(all, entries...)
	}
	return all, nil
}

func batchCmd(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("no batch file given")
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	entries, err := readBatchFiles(ctx.Context, ctx.Args().Slice())
	if err != nil {
		return err
	}
	jobs := make([]runtime.Job, len(entries))
	for i, e := range entries {
		jobs[i] = e.job
	}

	logger := log.New("batch", uuid.New())
	logger.Debug("Batch loaded", "files", ctx.NArg(), "programs", len(jobs), "workers", cfg.Batch.Workers)

	rcfg := cfg.runtimeConfig()
	var counter *native.OpCountTracer
	if ctx.Bool(utils.StatsFlag.Name) {
		counter = native.NewOpCountTracer()
		rcfg.Tracer = counter.Hooks()
	}
	endRegion := debug.Handler.StartRegionAuto("execute")
	start := time.Now()
	results, err := runtime.ExecuteBatch(ctx.Context, jobs, rcfg)
	endRegion()
	if err != nil {
		return err
	}
	logger.Info("Batch executed", "programs", len(jobs), "elapsed", time.Since(start))

	out := ctx.App.Writer
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Program", "Steps", "Output", "Fault", "PC"})
	table.SetAutoWrapText(false)
	failed := 0
	for i, res := range results {
		row := []string{entries[i].source, strconv.FormatUint(res.Steps, 10), fmt.Sprintf("0x%x", res.ReturnData), "", ""}
		if res.Failed() {
			failed++
			row[3], row[4] = res.Fault.String(), strconv.FormatUint(res.FaultPC, 10)
		}
		table.Append(row)
	}
	table.SetFooter([]string{"", "", "", "failed", fmt.Sprintf("%d/%d", failed, len(results))})
	table.Render()

	if counter != nil {
		rcfg.Label()
		printStats(out, counter, utils.SplitTagsFlag(ctx.String(utils.StatsLabelsFlag.Name)))
	}
	if failed > 0 {
		return errors.Errorf("%d of %d programs faulted", failed, len(results))
	}
	return nil
}
