// Copyright 2024 The go-ethereum Authors
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

package vm

import (
	"math"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/smolevm/go-smolevm/core/tracing"
)

// ExecutionContext holds the state of a single run: the stack, memory,
// code and calldata buffers, the program counter and the halting state.
// It is owned by one interpreter at a time.
type ExecutionContext struct {
	Stack    *Stack
	Memory   *Memory
	Code     *Calldata
	Calldata *Calldata

	analysis *CodeAnalysis

	pc         uint64
	halted     bool
	returnData []byte
	steps      uint64

	err     error
	faultPC uint64

	abort atomic.Bool
}

// ContextOption customises an ExecutionContext at construction.
type ContextOption func(*contextOptions)

type contextOptions struct {
	cache       *AnalysisCache
	memoryLimit uint64
}

// WithAnalysisCache looks the jump destination analysis up in c instead of
// scanning the code.
func WithAnalysisCache(c *AnalysisCache) ContextOption {
	return func(o *contextOptions) { o.cache = c }
}

// WithMemoryLimit caps memory expansion at limit bytes.
func WithMemoryLimit(limit uint64) ContextOption {
	return func(o *contextOptions) { o.memoryLimit = limit }
}

// NewExecutionContext prepares a run of code with the given call input. The
// jump destinations are computed here, once.
func NewExecutionContext(code, calldata []byte, opts ...ContextOption) *ExecutionContext {
	var o contextOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx := &ExecutionContext{
		Stack:    newstack(),
		Code:     NewCalldata(code),
		Calldata: NewCalldata(calldata),
	}
	if o.memoryLimit > 0 {
		ctx.Memory = NewMemoryWithLimit(o.memoryLimit)
	} else {
		ctx.Memory = NewMemory()
	}
	if o.cache != nil {
		ctx.analysis = o.cache.Analysis(ctx.Code.Bytes())
	} else {
		ctx.analysis = AnalyzeCode(ctx.Code.Bytes())
	}
	return ctx
}

// Release hands the stack back to the pool. The context must not be used
// afterwards.
func (c *ExecutionContext) Release() {
	if c.Stack != nil {
		returnStack(c.Stack)
		c.Stack = nil
	}
}

// Abort asks a running interpreter to stop at the next jump. It is safe to
// call from any goroutine.
func (c *ExecutionContext) Abort() {
	c.abort.Store(true)
}

// ReadCode returns the n code bytes at pc as a big-endian integer and
// advances pc past them. Bytes past the end of the code read as zero.
func (c *ExecutionContext) ReadCode(n int) uint256.Int {
	var w uint256.Int
	w.SetBytes(c.Code.Slice(c.pc, uint64(n)))
	c.pc += uint64(n)
	return w
}

// Stop halts the run normally with an empty return buffer.
func (c *ExecutionContext) Stop() {
	c.halted = true
}

// SetReturnData halts the run normally, returning size bytes of memory
// starting at offset.
func (c *ExecutionContext) SetReturnData(offset, size uint64) error {
	ret, err := c.Memory.LoadRange(offset, size)
	if err != nil {
		return err
	}
	c.returnData = ret
	c.halted = true
	return nil
}

// SetPC moves the program counter. The target must have been validated
// with ValidJumpDest.
func (c *ExecutionContext) SetPC(target uint64) {
	c.pc = target
}

// ValidJumpDest reports whether dest is a JUMPDEST outside of PUSH data.
func (c *ExecutionContext) ValidJumpDest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	// PC cannot go beyond len(code) and certainly can't be bigger than 63bits.
	// Don't bother checking for JUMPDEST in that case.
	if overflow || udest > math.MaxInt64 {
		return false
	}
	return c.analysis.IsJumpDest(udest)
}

// JumpDests lists the valid jump destinations of the code.
func (c *ExecutionContext) JumpDests() []uint64 {
	return c.analysis.JumpDests()
}

// PC returns the offset of the next byte to decode.
func (c *ExecutionContext) PC() uint64 { return c.pc }

// Halted reports whether the run stopped normally through STOP or RETURN.
func (c *ExecutionContext) Halted() bool { return c.halted }

// Done reports whether the run is over, normally or by a fault.
func (c *ExecutionContext) Done() bool { return c.halted || c.err != nil }

// ReturnData returns the bytes set by RETURN, empty otherwise.
func (c *ExecutionContext) ReturnData() []byte { return c.returnData }

// Steps returns the number of instructions executed so far.
func (c *ExecutionContext) Steps() uint64 { return c.steps }

// Err returns the fault the run halted with, if any.
func (c *ExecutionContext) Err() error { return c.err }

// FaultPC returns the offset of the instruction that faulted.
func (c *ExecutionContext) FaultPC() uint64 { return c.faultPC }

// MemoryData returns the underlying memory slice. Callers must not modify the contents
// of the returned data.
func (c *ExecutionContext) MemoryData() []byte {
	if c.Memory == nil {
		return nil
	}
	return c.Memory.Data()
}

// StackData returns the stack data. Callers must not modify the contents
// of the returned data.
func (c *ExecutionContext) StackData() []uint256.Int {
	if c.Stack == nil {
		return nil
	}
	return c.Stack.Data()
}

// CallInput returns the input/calldata with this call. Callers must not modify
// the contents of the returned data.
func (c *ExecutionContext) CallInput() []byte {
	return c.Calldata.Bytes()
}

// ContractCode returns the code being executed.
func (c *ExecutionContext) ContractCode() []byte {
	return c.Code.Bytes()
}

var _ tracing.OpContext = (*ExecutionContext)(nil)
