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

package vm

import (
	"github.com/smolevm/go-smolevm/params"
)

type operation struct {
	// minStack tells how many stack items are required
	minStack int
	// maxStack specifies the max length the stack can have for this operation
	// to not overflow the stack.
	maxStack int
	// pushes is the number of items the operation leaves on the stack.
	pushes int
}

// JumpTable contains the operations the interpreter accepts, indexed by
// opcode. Nil entries are undefined opcodes.
type JumpTable [256]*operation

// DefaultInstructionSet is the instruction set every interpreter uses unless
// told otherwise. It must not be modified; derive a copy with Without.
var DefaultInstructionSet = NewInstructionSet()

func minStack(pops, push int) int {
	return pops
}

func maxStack(pop, push int) int {
	return int(params.StackLimit) + pop - push
}

func newOp(pops, pushes int) *operation {
	return &operation{
		minStack: minStack(pops, pushes),
		maxStack: maxStack(pops, pushes),
		pushes:   pushes,
	}
}

// NewInstructionSet returns a freshly built table of every supported opcode.
func NewInstructionSet() JumpTable {
	tbl := JumpTable{
		STOP:         newOp(0, 0),
		ADD:          newOp(2, 1),
		MUL:          newOp(2, 1),
		SUB:          newOp(2, 1),
		DIV:          newOp(2, 1),
		SDIV:         newOp(2, 1),
		MOD:          newOp(2, 1),
		SMOD:         newOp(2, 1),
		ADDMOD:       newOp(3, 1),
		MULMOD:       newOp(3, 1),
		EXP:          newOp(2, 1),
		SIGNEXTEND:   newOp(2, 1),
		LT:           newOp(2, 1),
		GT:           newOp(2, 1),
		SLT:          newOp(2, 1),
		SGT:          newOp(2, 1),
		EQ:           newOp(2, 1),
		ISZERO:       newOp(1, 1),
		AND:          newOp(2, 1),
		OR:           newOp(2, 1),
		XOR:          newOp(2, 1),
		NOT:          newOp(1, 1),
		BYTE:         newOp(2, 1),
		SHL:          newOp(2, 1),
		SHR:          newOp(2, 1),
		SAR:          newOp(2, 1),
		CALLDATALOAD: newOp(1, 1),
		CALLDATASIZE: newOp(0, 1),
		CALLDATACOPY: newOp(3, 0),
		CODESIZE:     newOp(0, 1),
		CODECOPY:     newOp(3, 0),
		POP:          newOp(1, 0),
		MLOAD:        newOp(1, 1),
		MSTORE:       newOp(2, 0),
		MSTORE8:      newOp(2, 0),
		JUMP:         newOp(1, 0),
		JUMPI:        newOp(2, 0),
		PC:           newOp(0, 1),
		MSIZE:        newOp(0, 1),
		JUMPDEST:     newOp(0, 0),
		PUSH0:        newOp(0, 1),
		RETURN:       newOp(2, 0),
	}
	for i := 0; i < 32; i++ {
		tbl[PUSH1+OpCode(i)] = newOp(0, 1)
	}
	for i := 1; i <= 16; i++ {
		tbl[DUP1+i-1] = newOp(i, i+1)
		tbl[SWAP1+i-1] = newOp(i+1, i+1)
	}
	return tbl
}

// Defined reports whether op has an entry in the table.
func (jt *JumpTable) Defined(op OpCode) bool {
	return jt[op] != nil
}

// Without returns a copy of the table with the given opcodes undefined. The
// receiver is left untouched.
func (jt JumpTable) Without(ops ...OpCode) JumpTable {
	for _, op := range ops {
		jt[op] = nil
	}
	return jt
}
