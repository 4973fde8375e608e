// Copyright 2017 The go-ethereum Authors
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
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/core/vm"
)

// JSONLogger streams one JSON object per executed step, followed by a
// summary object once the run ends.
type JSONLogger struct {
	encoder *json.Encoder
	cfg     Config
	pending *StructLog
}

// NewJSONLogger creates a new EVM tracer that prints execution steps as JSON objects
// into the provided stream.
func NewJSONLogger(cfg *Config, writer io.Writer) *JSONLogger {
	l := &JSONLogger{encoder: json.NewEncoder(writer)}
	if cfg != nil {
		l.cfg = *cfg
	}
	return l
}

// Hooks returns the tracing hooks feeding this logger.
func (l *JSONLogger) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnStep:  l.OnStep,
		OnFault: l.OnFault,
		OnExit:  l.OnExit,
	}
}

// OnStep buffers the step so a fault raised by it can be reported on the
// same line.
func (l *JSONLogger) OnStep(pc uint64, op byte, scope tracing.OpContext) {
	l.flush()
	entry := l.capture(pc, op, scope)
	l.pending = &entry
}

func (l *JSONLogger) OnFault(pc uint64, op byte, scope tracing.OpContext, err error) {
	if l.pending != nil && l.pending.Pc == pc && l.pending.Op == vm.OpCode(op) {
		l.pending.Err = err
		l.flush()
		return
	}
	l.flush()
	entry := l.capture(pc, op, scope)
	entry.Err = err
	l.encoder.Encode(entry)
}

func (l *JSONLogger) OnExit(output []byte, steps uint64, err error) {
	l.flush()
	type endLog struct {
		Output string `json:"output"`
		Steps  uint64 `json:"steps"`
		Err    string `json:"error,omitempty"`
	}
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	l.encoder.Encode(&endLog{"0x" + hex.EncodeToString(output), steps, errMsg})
}

func (l *JSONLogger) flush() {
	if l.pending != nil {
		l.encoder.Encode(l.pending)
		l.pending = nil
	}
}

func (l *JSONLogger) capture(pc uint64, op byte, scope tracing.OpContext) StructLog {
	s := StructLogger{cfg: l.cfg}
	return s.capture(pc, vm.OpCode(op), scope)
}
