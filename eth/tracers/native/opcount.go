// Copyright 2022 The go-ethereum Authors
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

// Package native holds tracers that aggregate over a run instead of
// recording every step.
package native

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/smolevm/go-smolevm/core/tracing"
	"github.com/smolevm/go-smolevm/core/vm"
)

// OpCount is one row of an opcode histogram.
type OpCount struct {
	Op    string `json:"op"`
	Count uint64 `json:"count"`
}

// OpCountTracer tallies executed opcodes and faults. It is safe for
// concurrent use, so a single instance can observe a whole batch.
type OpCountTracer struct {
	mu     sync.Mutex
	counts [256]uint64
	faults map[string]uint64
	runs   uint64
}

// NewOpCountTracer returns an empty tracer.
func NewOpCountTracer() *OpCountTracer {
	return &OpCountTracer{faults: make(map[string]uint64)}
}

// Hooks returns the tracing hooks feeding this tracer.
func (t *OpCountTracer) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnStep:  t.OnStep,
		OnFault: t.OnFault,
		OnExit:  t.OnExit,
	}
}

func (t *OpCountTracer) OnStep(pc uint64, op byte, scope tracing.OpContext) {
	t.mu.Lock()
	t.counts[op]++
	t.mu.Unlock()
}

func (t *OpCountTracer) OnFault(pc uint64, op byte, scope tracing.OpContext, err error) {
	t.mu.Lock()
	t.faults[vm.FaultKindOf(err).String()]++
	t.mu.Unlock()
}

func (t *OpCountTracer) OnExit(output []byte, steps uint64, err error) {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
}

// Counts returns the executed opcodes, most frequent first.
func (t *OpCountTracer) Counts() []OpCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res []OpCount
	for op, n := range t.counts {
		if n > 0 {
			res = append(res, OpCount{Op: vm.OpCode(op).String(), Count: n})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Count > res[j].Count })
	return res
}

// Faults returns the number of runs that ended in each fault kind.
func (t *OpCountTracer) Faults() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := make(map[string]uint64, len(t.faults))
	for k, v := range t.faults {
		res[k] = v
	}
	return res
}

// GetResult returns the histogram as a json object.
func (t *OpCountTracer) GetResult() (json.RawMessage, error) {
	t.mu.Lock()
	runs := t.runs
	t.mu.Unlock()
	return json.Marshal(struct {
		Runs   uint64            `json:"runs"`
		Ops    []OpCount         `json:"ops"`
		Faults map[string]uint64 `json:"faults"`
	}{runs, t.Counts(), t.Faults()})
}
