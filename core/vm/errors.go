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
	"errors"
	"fmt"
)

// List of execution errors.
var (
	ErrInvalidStackIndex  = errors.New("invalid stack index")
	ErrInvalidMemoryValue = errors.New("memory value out of byte range")
	ErrInvalidJump        = errors.New("invalid jump destination")
	ErrStepLimitReached   = errors.New("step limit reached")
	ErrMemoryLimit        = errors.New("memory limit exceeded")
	ErrAborted            = errors.New("execution aborted")

	// errStopToken is an internal token indicating interpreter loop termination,
	// never returned to outside callers.
	errStopToken = errors.New("stop token")
)

// ErrStackUnderflow wraps an evm error when the items on the stack less
// than the minimal requirement.
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

func (e ErrStackUnderflow) Unwrap() error {
	return fmt.Errorf("stack underflow")
}

// ErrStackOverflow wraps an evm error when the items on the stack exceeds
// the maximum allowance.
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

func (e ErrStackOverflow) Unwrap() error {
	return fmt.Errorf("stack overflow")
}

// ErrInvalidOpCode wraps an evm error when an invalid opcode is encountered.
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string { return fmt.Sprintf("invalid opcode: %s", e.opcode) }

// FaultKind classifies the error a run halted with.
type FaultKind uint8

const (
	FaultNone FaultKind = iota
	FaultStackOverflow
	FaultStackUnderflow
	FaultInvalidStackIndex
	FaultInvalidMemoryValue
	FaultInvalidOpCode
	FaultInvalidJump
	FaultStepLimit
	FaultMemoryLimit
	FaultAborted
	FaultUnknown
)

var faultKindNames = [...]string{
	FaultNone:               "none",
	FaultStackOverflow:      "StackOverflow",
	FaultStackUnderflow:     "StackUnderflow",
	FaultInvalidStackIndex:  "InvalidStackIndex",
	FaultInvalidMemoryValue: "InvalidMemoryValue",
	FaultInvalidOpCode:      "InvalidOpcode",
	FaultInvalidJump:        "InvalidJumpDestination",
	FaultStepLimit:          "StepBudgetExceeded",
	FaultMemoryLimit:        "MemoryLimitExceeded",
	FaultAborted:            "Aborted",
	FaultUnknown:            "Unknown",
}

func (k FaultKind) String() string {
	if int(k) < len(faultKindNames) {
		return faultKindNames[k]
	}
	return fmt.Sprintf("FaultKind(%d)", uint8(k))
}

// FaultKindOf maps an execution error to its kind. A nil error yields
// FaultNone.
func FaultKindOf(err error) FaultKind {
	var (
		overflow  *ErrStackOverflow
		underflow *ErrStackUnderflow
		invalidOp *ErrInvalidOpCode
	)
	switch {
	case err == nil:
		return FaultNone
	case errors.As(err, &overflow):
		return FaultStackOverflow
	case errors.As(err, &underflow):
		return FaultStackUnderflow
	case errors.As(err, &invalidOp):
		return FaultInvalidOpCode
	case errors.Is(err, ErrInvalidStackIndex):
		return FaultInvalidStackIndex
	case errors.Is(err, ErrInvalidMemoryValue):
		return FaultInvalidMemoryValue
	case errors.Is(err, ErrInvalidJump):
		return FaultInvalidJump
	case errors.Is(err, ErrStepLimitReached):
		return FaultStepLimit
	case errors.Is(err, ErrMemoryLimit):
		return FaultMemoryLimit
	case errors.Is(err, ErrAborted):
		return FaultAborted
	}
	return FaultUnknown
}
