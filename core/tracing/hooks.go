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

// Package tracing defines the hooks the interpreter invokes while executing,
// so that callers can observe a run without the core producing any output.
package tracing

import (
	"github.com/holiman/uint256"
)

// OpContext provides the context at which the opcode is being
// executed in, including the memory, stack and various contract-level information.
type OpContext interface {
	MemoryData() []byte
	StackData() []uint256.Int
	CallInput() []byte
	ContractCode() []byte
}

type (
	// EnterHook is invoked once when a run starts.
	EnterHook = func(code, input []byte)

	// ExitHook is invoked once when a run ends, normally or not. err is nil
	// for a normal halt.
	ExitHook = func(output []byte, steps uint64, err error)

	// StepHook is invoked for each instruction before it executes. pc is the
	// offset of the opcode byte; the stack and memory in scope are those
	// the instruction is about to operate on.
	StepHook = func(pc uint64, op byte, scope OpContext)

	// FaultHook is invoked when an instruction fails. Once it fires the run
	// is over.
	FaultHook = func(pc uint64, op byte, scope OpContext, err error)
)

// Hooks is a set of optional callbacks. Nil members are skipped.
type Hooks struct {
	OnEnter EnterHook
	OnExit  ExitHook
	OnStep  StepHook
	OnFault FaultHook
}
