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
	"sync"

	"github.com/holiman/uint256"

	"github.com/smolevm/go-smolevm/params"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is an object for basic stack operations. Items popped to the stack are
// expected to be changed and modified. stack does not take care of adding newly
// initialised objects.
//
// The exported methods check their bounds. The unexported ones are used by
// the instruction handlers, whose bounds are validated up front from the
// jump table's minStack and maxStack.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{data: make([]uint256.Int, 0, 16)}
}

// Data returns the underlying uint256.Int array, bottom first.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

// Len returns the number of items on the stack.
func (st *Stack) Len() int {
	return len(st.data)
}

// Push appends a copy of d to the top of the stack.
func (st *Stack) Push(d *uint256.Int) error {
	if len(st.data) >= int(params.StackLimit) {
		return &ErrStackOverflow{stackLen: len(st.data), limit: int(params.StackLimit)}
	}
	st.push(d)
	return nil
}

// Pop removes and returns the top item.
func (st *Stack) Pop() (uint256.Int, error) {
	if len(st.data) == 0 {
		return uint256.Int{}, &ErrStackUnderflow{stackLen: 0, required: 1}
	}
	return st.pop(), nil
}

// Peek returns the item n positions below the top, 0 being the top.
func (st *Stack) Peek(n int) (*uint256.Int, error) {
	if n < 0 || n >= len(st.data) {
		return nil, &ErrStackUnderflow{stackLen: len(st.data), required: n + 1}
	}
	return st.Back(n), nil
}

// Swap exchanges the top item with the one n positions below it, as done
// by SWAPn.
func (st *Stack) Swap(n int) error {
	if n <= 0 {
		return ErrInvalidStackIndex
	}
	if len(st.data) <= n {
		return &ErrStackUnderflow{stackLen: len(st.data), required: n + 1}
	}
	st.swap(n)
	return nil
}

// Dup pushes a copy of the n-th item from the top, 1 being the top, as done
// by DUPn.
func (st *Stack) Dup(n int) error {
	if n <= 0 {
		return ErrInvalidStackIndex
	}
	if len(st.data) < n {
		return &ErrStackUnderflow{stackLen: len(st.data), required: n}
	}
	if len(st.data) >= int(params.StackLimit) {
		return &ErrStackOverflow{stackLen: len(st.data), limit: int(params.StackLimit)}
	}
	st.dup(n)
	return nil
}

// Back returns the n'th item in stack
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[len(st.data)-n-1]
}

func (st *Stack) push(d *uint256.Int) {
	// NOTE push limit (1024) is checked in the interpreter loop
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) pop2() (uint256.Int, uint256.Int) {
	return st.pop(), st.pop()
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

func (st *Stack) swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[len(st.data)-n])
}
