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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolevm/go-smolevm/log"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer log.SetDefault(log.Root())

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"smolevm", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestRunReturn(t *testing.T) {
	out, err := runApp(t, "run", "--code", "602A60005360016000F3")
	require.NoError(t, err)
	assert.Equal(t, "Output : 0x2a\n", out)
}

func TestRunCodeArgument(t *testing.T) {
	out, err := runApp(t, "run", "0x600160020100")
	require.NoError(t, err)
	assert.Equal(t, "Output : 0x\n", out)
}

func TestRunCodeFileAndInput(t *testing.T) {
	// PUSH1 0 CALLDATALOAD PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	file := filepath.Join(t.TempDir(), "echo.hex")
	require.NoError(t, os.WriteFile(file, []byte("60003560005260206000f3\n"), 0o600))

	out, err := runApp(t, "run", "--codefile", file, "--input", "0xff")
	require.NoError(t, err)
	assert.Equal(t, "Output : 0xff"+strings.Repeat("00", 31)+"\n", out)
}

func TestRunFault(t *testing.T) {
	out, err := runApp(t, "run", "--code", "600556")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution failed at pc 2")
	assert.Contains(t, err.Error(), "invalid jump destination")
	assert.NotContains(t, out, "Output")
}

func TestRunStepLimit(t *testing.T) {
	_, err := runApp(t, "run", "--steps", "10", "--code", "5b600056")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 10 steps")
}

func TestRunNoCode(t *testing.T) {
	_, err := runApp(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code given")

	_, err = runApp(t, "run", "--code", "0x6")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid code")
}

func TestRunLegacyTrace(t *testing.T) {
	out, err := runApp(t, "run", "--trace", "--code", "602A60005360016000F3")
	require.NoError(t, err)

	want := "PUSH1 @ pc=0\nStack: []\nMemory: 0x\n---------\n" +
		"PUSH1 @ pc=2\nStack: [42]\nMemory: 0x\n---------\n"
	assert.True(t, strings.HasPrefix(out, want), out)
	assert.Contains(t, out, "RETURN @ pc=9\nStack: [1, 0]\n")
	assert.True(t, strings.HasSuffix(out, "---------\nOutput : 0x2a\n"), out)
}

func TestRunTableTrace(t *testing.T) {
	out, err := runApp(t, "run", "--trace", "--trace.format", "table", "--code", "600160020100")
	require.NoError(t, err)
	assert.Contains(t, out, "STACK (TOP FIRST)")
	assert.Contains(t, out, "ADD")
	assert.Contains(t, out, "STOP")
}

func TestRunJSONTrace(t *testing.T) {
	out, err := runApp(t, "run", "--trace", "--trace.format", "json", "--code", "600160020100")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], `"pc":0`)
	assert.Contains(t, lines[4], `"steps":4`)
	assert.Equal(t, "Output : 0x", lines[5])

	_, err = runApp(t, "run", "--trace", "--trace.format", "xml", "--code", "00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trace format")
}

func TestRunStats(t *testing.T) {
	out, err := runApp(t, "run", "--stats", "--stats.labels", "env=test", "--code", "600160020100")
	require.NoError(t, err)
	assert.Contains(t, out, "evm/runs")
	assert.Contains(t, out, "vm/config")
	assert.Contains(t, out, "env=test")
	assert.Contains(t, out, "PUSH1")
	assert.True(t, strings.HasSuffix(out, "Output : 0x\n"), out)
}

func TestDisasm(t *testing.T) {
	out, err := runApp(t, "disasm", "--code", "6007565b00fe600556")
	require.NoError(t, err)

	want := "00000: PUSH1 0x07\t(-0 +1)\n" +
		"00002: JUMP\t(-1 +0)\n" +
		"00003: JUMPDEST\t(-0 +0)\n" +
		"00004: STOP\t(-0 +0)\n" +
		"00005: INVALID 0xfe\n" +
		"00006: PUSH1 0x05\t(-0 +1)\n" +
		"00008: JUMP\t(-1 +0)\n" +
		"jumpdests: [3]\n" +
		"invalid static jump targets: [5 7]\n"
	assert.Equal(t, want, out)
}

func TestDisasmTruncatedPush(t *testing.T) {
	out, err := runApp(t, "disasm", "0x5b61ff")
	require.NoError(t, err)
	assert.Equal(t, "00000: JUMPDEST\t(-0 +0)\n00001: PUSH2 0xff\t(-0 +1)\njumpdests: [0]\n", out)
}

func writeBatchFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeBatchFile(t, dir, "a.hex", "# programs\n600160020100\n\n602A60005360016000F3\n")
	b := writeBatchFile(t, dir, "b.hex", "60003560005260016000f3 0x07\n")

	out, err := runApp(t, "batch", "--workers", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "a.hex:2")
	assert.Contains(t, out, "a.hex:4")
	assert.Contains(t, out, "b.hex:1")
	assert.Contains(t, out, "0x2a")
	assert.Contains(t, out, "0x07")
	assert.Contains(t, out, "0/3")
	assert.Less(t, strings.Index(out, "a.hex:4"), strings.Index(out, "b.hex:1"))
}

func TestBatchFault(t *testing.T) {
	dir := t.TempDir()
	a := writeBatchFile(t, dir, "a.hex", "600556\n00\n")

	out, err := runApp(t, "batch", "--stats", a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 programs faulted")
	assert.Contains(t, out, "InvalidJumpDestination")
	assert.Contains(t, out, "fault:InvalidJumpDestination")
}

func TestBatchBadInput(t *testing.T) {
	dir := t.TempDir()
	bad := writeBatchFile(t, dir, "bad.hex", "600100\nzz\n")

	_, err := runApp(t, "batch", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.hex:2")

	_, err = runApp(t, "batch", filepath.Join(dir, "missing.hex"))
	require.Error(t, err)

	_, err = runApp(t, "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no batch file given")
}

func TestRunProfiling(t *testing.T) {
	dir := t.TempDir()
	cpu, trace := filepath.Join(dir, "cpu.out"), filepath.Join(dir, "trace.out")

	out, err := runApp(t, "--pprof.cpuprofile", cpu, "--go-execution-trace", trace, "run", "--code", "600160020100")
	require.NoError(t, err)
	assert.Equal(t, "Output : 0x\n", out)
	assert.FileExists(t, cpu)
	assert.FileExists(t, trace)
}
