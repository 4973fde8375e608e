// Copyright 2021 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolevm/go-smolevm/common"
	"github.com/smolevm/go-smolevm/core/vm"
	"github.com/smolevm/go-smolevm/core/vm/runtime"
)

func TestStructLogger(t *testing.T) {
	logger := NewStructLogger(&Config{EnableMemory: true})
	res := runtime.Execute(common.FromHex("602A60005360016000F3"), nil, &runtime.Config{Tracer: logger.Hooks()})
	require.NoError(t, res.Err)

	logs := logger.StructLogs()
	require.Len(t, logs, 6)
	assert.Equal(t, vm.PUSH1, logs[0].Op)
	assert.Empty(t, logs[0].Stack)
	assert.Equal(t, vm.MSTORE8, logs[2].Op)
	assert.Len(t, logs[2].Stack, 2)
	assert.Equal(t, uint64(0x2a), logs[2].Stack[0].Uint64())
	assert.Equal(t, vm.RETURN, logs[5].Op)
	assert.Equal(t, 32, logs[5].MemorySize)
	assert.Equal(t, byte(0x2a), logs[5].Memory[0])

	assert.Equal(t, []byte{0x2a}, logger.Output())
	assert.Equal(t, uint64(6), logger.Steps())
	assert.NoError(t, logger.Error())
}

func TestStructLoggerFault(t *testing.T) {
	logger := NewStructLogger(nil)
	runtime.Execute(common.FromHex("600556"), nil, &runtime.Config{Tracer: logger.Hooks()})

	logs := logger.StructLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, vm.JUMP, logs[1].Op)
	assert.ErrorIs(t, logs[1].Err, vm.ErrInvalidJump)
	assert.ErrorIs(t, logger.Error(), vm.ErrInvalidJump)

	// The invalid opcode is never stepped, it only faults.
	logger.Reset()
	runtime.Execute(common.FromHex("6001fe"), nil, &runtime.Config{Tracer: logger.Hooks()})
	logs = logger.StructLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, vm.OpCode(0xfe), logs[1].Op)
	assert.Contains(t, logs[1].ErrorString(), "invalid opcode")
}

func TestStructLoggerLimit(t *testing.T) {
	logger := NewStructLogger(&Config{Limit: 3, DisableStack: true})
	runtime.Execute(common.FromHex("5b600056"), nil, &runtime.Config{Tracer: logger.Hooks(), StepLimit: 50})
	logs := logger.StructLogs()
	assert.Len(t, logs, 3)
	assert.Nil(t, logs[1].Stack)
	assert.Equal(t, uint64(50), logger.Steps())
}

func TestJSONLogger(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewJSONLogger(nil, out)
	runtime.Execute(common.FromHex("600160020156"), nil, &runtime.Config{Tracer: logger.Hooks()})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)

	var step map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &step))
	assert.Equal(t, "ADD", step["opName"])
	assert.Equal(t, []interface{}{"0x1", "0x2"}, step["stack"])

	require.NoError(t, json.Unmarshal([]byte(lines[3]), &step))
	assert.Equal(t, "JUMP", step["opName"])
	assert.Equal(t, "invalid jump destination", step["error"])

	var end map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[4]), &end))
	assert.Equal(t, "0x", end["output"])
	assert.Equal(t, float64(3), end["steps"])
	assert.Equal(t, "invalid jump destination", end["error"])
}

func TestWriteTrace(t *testing.T) {
	logger := NewStructLogger(nil)
	runtime.Execute(common.FromHex("600160020100"), nil, &runtime.Config{Tracer: logger.Hooks()})

	out := new(bytes.Buffer)
	WriteTrace(out, logger.StructLogs())
	have := out.String()
	for _, want := range []string{"PC", "OP", "PUSH1", "ADD", "STOP", "0x3"} {
		assert.Contains(t, have, want)
	}
}

func TestWriteLegacy(t *testing.T) {
	logger := NewStructLogger(&Config{EnableMemory: true})
	runtime.Execute(common.FromHex("600160020100"), nil, &runtime.Config{Tracer: logger.Hooks()})

	out := new(bytes.Buffer)
	WriteLegacy(out, logger.StructLogs())
	want := strings.Join([]string{
		"PUSH1 @ pc=0", "Stack: []", "Memory: 0x", "---------",
		"PUSH1 @ pc=2", "Stack: [1]", "Memory: 0x", "---------",
		"ADD @ pc=4", "Stack: [1, 2]", "Memory: 0x", "---------",
		"STOP @ pc=5", "Stack: [3]", "Memory: 0x", "---------",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}
