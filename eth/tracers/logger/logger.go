// Copyright 2015 The go-ethereum Authors
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

// Package logger implements tracers that record or stream the steps of a run.
package logger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"

	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/core/vm"
)

// Config are the configuration options for structured logger the EVM
type Config struct {
	EnableMemory bool // enable memory capture
	DisableStack bool // disable stack capture
	Limit        int  // maximum number of steps to record, zero is unlimited
}

// StructLog is emitted to the EVM each cycle and lists information about the
// current internal state prior to the execution of the statement.
type StructLog struct {
	Pc         uint64        `json:"pc"`
	Op         vm.OpCode     `json:"op"`
	Stack      []uint256.Int `json:"stack"`
	Memory     []byte        `json:"memory,omitempty"`
	MemorySize int           `json:"memSize"`
	Err        error         `json:"-"`
}

// OpName formats the operand name in a human-readable format.
func (s *StructLog) OpName() string {
	return s.Op.String()
}

// ErrorString formats the log's error as a string.
func (s *StructLog) ErrorString() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return ""
}

type structLogMarshaling struct {
	Pc         uint64    `json:"pc"`
	Op         vm.OpCode `json:"op"`
	OpName     string    `json:"opName"`
	Stack      []string  `json:"stack"`
	Memory     string    `json:"memory,omitempty"`
	MemorySize int       `json:"memSize"`
	Error      string    `json:"error,omitempty"`
}

// MarshalJSON encodes stack words and memory as hex strings.
func (s StructLog) MarshalJSON() ([]byte, error) {
	enc := structLogMarshaling{
		Pc:         s.Pc,
		Op:         s.Op,
		OpName:     s.OpName(),
		Stack:      make([]string, len(s.Stack)),
		MemorySize: s.MemorySize,
		Error:      s.ErrorString(),
	}
	for i := range s.Stack {
		enc.Stack[i] = s.Stack[i].Hex()
	}
	if len(s.Memory) > 0 {
		enc.Memory = "0x" + hex.EncodeToString(s.Memory)
	}
	return json.Marshal(&enc)
}

// StructLogger records every executed step, its stack and optionally its
// memory. It is not safe for concurrent use.
type StructLogger struct {
	cfg Config

	logs   []StructLog
	output []byte
	steps  uint64
	err    error
}

// NewStructLogger returns a new logger
func NewStructLogger(cfg *Config) *StructLogger {
	logger := &StructLogger{}
	if cfg != nil {
		logger.cfg = *cfg
	}
	return logger
}

// Hooks returns the tracing hooks feeding this logger.
func (l *StructLogger) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnStep:  l.OnStep,
		OnFault: l.OnFault,
		OnExit:  l.OnExit,
	}
}

// Reset clears the data held by the logger.
func (l *StructLogger) Reset() {
	l.logs = l.logs[:0]
	l.output = nil
	l.steps = 0
	l.err = nil
}

// OnStep records the state before the instruction at pc executes.
func (l *StructLogger) OnStep(pc uint64, op byte, scope tracing.OpContext) {
	if l.cfg.Limit != 0 && l.cfg.Limit <= len(l.logs) {
		return
	}
	l.logs = append(l.logs, l.capture(pc, vm.OpCode(op), scope))
}

// OnFault attaches the error to the step that caused it. Faults raised
// before the step was recorded, such as an invalid opcode, get their own
// entry.
func (l *StructLogger) OnFault(pc uint64, op byte, scope tracing.OpContext, err error) {
	if n := len(l.logs); n > 0 && l.logs[n-1].Pc == pc && l.logs[n-1].Err == nil && l.logs[n-1].Op == vm.OpCode(op) {
		l.logs[n-1].Err = err
		return
	}
	if l.cfg.Limit != 0 && l.cfg.Limit <= len(l.logs) {
		return
	}
	entry := l.capture(pc, vm.OpCode(op), scope)
	entry.Err = err
	l.logs = append(l.logs, entry)
}

// OnExit records the outcome of the run.
func (l *StructLogger) OnExit(output []byte, steps uint64, err error) {
	l.output = append([]byte(nil), output...)
	l.steps = steps
	l.err = err
}

func (l *StructLogger) capture(pc uint64, op vm.OpCode, scope tracing.OpContext) StructLog {
	memory := scope.MemoryData()
	entry := StructLog{Pc: pc, Op: op, MemorySize: len(memory)}
	if l.cfg.EnableMemory {
		entry.Memory = append([]byte(nil), memory...)
	}
	if !l.cfg.DisableStack {
		entry.Stack = append([]uint256.Int(nil), scope.StackData()...)
	}
	return entry
}

// StructLogs returns the captured log entries.
func (l *StructLogger) StructLogs() []StructLog { return l.logs }

// Error returns the VM error captured by the trace.
func (l *StructLogger) Error() error { return l.err }

// Output returns the VM return value captured by the trace.
func (l *StructLogger) Output() []byte { return l.output }

// Steps returns the number of executed instructions reported at exit.
func (l *StructLogger) Steps() uint64 { return l.steps }

// WriteTrace writes a formatted trace to the given writer
func WriteTrace(writer io.Writer, logs []StructLog) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader([]string{"PC", "Op", "Stack (top first)", "Memory", "Error"})
	table.SetAutoWrapText(false)
	for _, log := range logs {
		table.Append([]string{
			strconv.FormatUint(log.Pc, 10),
			log.OpName(),
			formatStackTop(log.Stack, 4),
			strconv.Itoa(log.MemorySize),
			log.ErrorString(),
		})
	}
	table.Render()
}

func formatStackTop(stack []uint256.Int, n int) string {
	var parts []string
	for i := len(stack) - 1; i >= 0 && len(parts) < n; i-- {
		parts = append(parts, stack[i].Hex())
	}
	if len(stack) > n {
		parts = append(parts, fmt.Sprintf("... (%d)", len(stack)))
	}
	return strings.Join(parts, " ")
}

// WriteLegacy writes the trace as blocks of opcode, stack and memory
// separated by dashed lines.
func WriteLegacy(writer io.Writer, logs []StructLog) {
	for _, log := range logs {
		fmt.Fprintf(writer, "%s @ pc=%d\n", log.OpName(), log.Pc)
		stack := make([]string, len(log.Stack))
		for i := range log.Stack {
			stack[i] = log.Stack[i].ToBig().String()
		}
		fmt.Fprintf(writer, "Stack: [%s]\n", strings.Join(stack, ", "))
		fmt.Fprintf(writer, "Memory: 0x%x\n", log.Memory)
		if log.Err != nil {
			fmt.Fprintf(writer, "Error: %v\n", log.Err)
		}
		fmt.Fprintln(writer, "---------")
	}
}
